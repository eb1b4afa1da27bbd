// Package hand models a blackjack hand and its totals.
package hand

import (
	"fmt"
	"strings"

	"github.com/lox/bjtrainer/internal/deck"
)

// Bust is the first total that loses.
const Bust = 22

// Evaluate returns the best total for cards and whether an ace is still
// counted as 11. Aces start at 11 and drop to 1 one at a time while the
// total is over 21.
func Evaluate(cards []deck.Card) (total int, soft bool) {
	aces := 0
	for _, c := range cards {
		total += c.Points()
		if c.IsAce() {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total, aces > 0
}

// IsPair reports whether cards are exactly two cards of the same rank.
func IsPair(cards []deck.Card) bool {
	return len(cards) == 2 && cards[0].Rank == cards[1].Rank
}

// Hand is the cards held by one participant, or one of the player's split
// hands, together with its wager.
type Hand struct {
	Cards     []deck.Card
	Bet       int
	Doubled   bool
	FromSplit bool
	Stood     bool
}

// New creates a hand carrying bet.
func New(bet int) *Hand {
	return &Hand{Cards: make([]deck.Card, 0, 4), Bet: bet}
}

// Add appends a card.
func (h *Hand) Add(c deck.Card) {
	h.Cards = append(h.Cards, c)
}

// Total returns the best total of the hand.
func (h *Hand) Total() int {
	total, _ := Evaluate(h.Cards)
	return total
}

// IsSoft reports whether an ace is counted as 11.
func (h *Hand) IsSoft() bool {
	_, soft := Evaluate(h.Cards)
	return soft
}

// IsBust reports whether the total exceeds 21.
func (h *Hand) IsBust() bool {
	return h.Total() >= Bust
}

// IsBlackjack reports a two-card 21. Hands created by splitting never count.
func (h *Hand) IsBlackjack() bool {
	return !h.FromSplit && len(h.Cards) == 2 && h.Total() == 21
}

// CanSplit reports whether the hand is a pair.
func (h *Hand) CanSplit() bool {
	return IsPair(h.Cards)
}

// CanDouble reports whether the hand still has its first two cards.
func (h *Hand) CanDouble() bool {
	return len(h.Cards) == 2 && !h.Stood
}

// IsTerminal reports whether the hand takes no further cards.
func (h *Hand) IsTerminal() bool {
	return h.Stood || h.IsBust()
}

// String renders the hand as "[10♠ 6♦] (16)".
func (h *Hand) String() string {
	parts := make([]string, len(h.Cards))
	for i, c := range h.Cards {
		parts[i] = c.String()
	}
	total, soft := Evaluate(h.Cards)
	if soft && total < 21 {
		return fmt.Sprintf("[%s] (soft %d)", strings.Join(parts, " "), total)
	}
	return fmt.Sprintf("[%s] (%d)", strings.Join(parts, " "), total)
}
