package game

import (
	"fmt"

	"github.com/lox/bjtrainer/internal/deck"
)

// DealerStandsOn is the total at which the dealer stops drawing. The dealer
// stands on soft and hard 17 alike.
const DealerStandsOn = 17

// openingCards is the number of cards dealt to start a round.
const openingCards = 4

// Count verification is requested every 1 to 3 rounds.
const (
	minQueryInterval = 1
	maxQueryInterval = 3
)

// Payout is a win ratio such as 3:2.
type Payout struct {
	Num int
	Den int
}

// Winnings returns the profit on bet, rounded down.
func (p Payout) Winnings(bet int) int {
	return bet * p.Num / p.Den
}

func (p Payout) String() string {
	return fmt.Sprintf("%d:%d", p.Num, p.Den)
}

// Rules holds the table constants for a session.
type Rules struct {
	Decks            int
	Penetration      float64
	BlackjackPayout  Payout
	DoubleAfterSplit bool
	MaxHands         int
}

// DefaultRules returns a six-deck shoe dealt to 75%, 3:2 naturals, double
// after split, and up to four hands from splitting.
func DefaultRules() Rules {
	return Rules{
		Decks:            6,
		Penetration:      deck.DefaultPenetration,
		BlackjackPayout:  Payout{Num: 3, Den: 2},
		DoubleAfterSplit: true,
		MaxHands:         4,
	}
}

// Validate checks the rules are playable.
func (r Rules) Validate() error {
	if r.Decks < 1 {
		return fmt.Errorf("game: decks must be at least 1, got %d", r.Decks)
	}
	if r.Penetration <= 0 || r.Penetration >= 1 {
		return fmt.Errorf("game: penetration must be between 0 and 1 exclusive, got %v", r.Penetration)
	}
	if r.BlackjackPayout.Num <= 0 || r.BlackjackPayout.Den <= 0 {
		return fmt.Errorf("game: invalid blackjack payout %s", r.BlackjackPayout)
	}
	if r.MaxHands < 1 {
		return fmt.Errorf("game: max hands must be at least 1, got %d", r.MaxHands)
	}
	return nil
}
