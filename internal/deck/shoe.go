package deck

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
)

// CardsPerDeck is the size of a standard deck.
const CardsPerDeck = 52

// DefaultPenetration is the fraction of the shoe dealt before a reshuffle is due.
const DefaultPenetration = 0.75

// ErrEmptyShoe is returned when drawing from a shoe with no cards left. A
// correctly driven engine reshuffles before this can happen.
var ErrEmptyShoe = errors.New("deck: shoe is empty")

// Shoe is one or more decks dealt through a cursor. Dealt cards are never
// reused until Reshuffle.
type Shoe struct {
	cards       []Card
	next        int
	penetration float64
	rng         *rand.Rand
	stacked     []Card // fixed order restored on reshuffle, nil for random shoes
}

// NewShoe builds a shoe of decks×52 cards shuffled with rng.
func NewShoe(rng *rand.Rand, decks int, penetration float64) (*Shoe, error) {
	if rng == nil {
		panic("rng is required for shoe creation")
	}
	if decks < 1 {
		return nil, fmt.Errorf("deck: deck count must be at least 1, got %d", decks)
	}
	if err := validatePenetration(penetration); err != nil {
		return nil, err
	}

	s := &Shoe{
		cards:       make([]Card, 0, decks*CardsPerDeck),
		penetration: penetration,
		rng:         rng,
	}
	for range decks {
		for _, suit := range Suits {
			for rank := Two; rank <= Ace; rank++ {
				s.cards = append(s.cards, NewCard(suit, rank))
			}
		}
	}
	s.shuffle()
	return s, nil
}

// NewStackedShoe builds a shoe that deals cards in the given order. On
// reshuffle the original order is restored and, when rng is non-nil, shuffled.
// Used for scripted drills and deterministic tests.
func NewStackedShoe(cards []Card, penetration float64, rng *rand.Rand) (*Shoe, error) {
	if len(cards) == 0 {
		return nil, fmt.Errorf("deck: stacked shoe needs at least one card")
	}
	if err := validatePenetration(penetration); err != nil {
		return nil, err
	}

	stacked := make([]Card, len(cards))
	copy(stacked, cards)
	s := &Shoe{
		cards:       make([]Card, len(cards)),
		penetration: penetration,
		rng:         rng,
		stacked:     stacked,
	}
	copy(s.cards, stacked)
	return s, nil
}

func validatePenetration(p float64) error {
	if p <= 0 || p >= 1 {
		return fmt.Errorf("deck: penetration must be between 0 and 1 exclusive, got %v", p)
	}
	return nil
}

// shuffle applies Fisher-Yates to the whole shoe and rewinds the cursor.
func (s *Shoe) shuffle() {
	s.next = 0
	s.shuffleFrom(0)
}

// shuffleFrom shuffles cards[start:] in place.
func (s *Shoe) shuffleFrom(start int) {
	if s.rng == nil {
		return
	}
	for i := len(s.cards) - 1; i > start; i-- {
		j := start + s.rng.IntN(i-start+1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
}

// Draw removes and returns the next card.
func (s *Shoe) Draw() (Card, error) {
	if s.next >= len(s.cards) {
		return Card{}, ErrEmptyShoe
	}
	card := s.cards[s.next]
	s.next++
	return card, nil
}

// NeedsReshuffle reports whether the remaining fraction has fallen below
// 1 - penetration.
func (s *Shoe) NeedsReshuffle() bool {
	return float64(s.Remaining()) < float64(s.Total())*(1-s.penetration)
}

// Reshuffle gathers every card back into the shoe and shuffles it. The caller
// owns any running count and must reset it.
func (s *Shoe) Reshuffle() {
	if s.stacked != nil {
		copy(s.cards, s.stacked)
	}
	s.shuffle()
}

// ReshuffleDiscards gathers every card except inPlay back into the shoe and
// shuffles it. The inPlay cards stay dealt, so Remaining is Total minus the
// cards on the table. Cards in inPlay that the shoe never held are ignored.
func (s *Shoe) ReshuffleDiscards(inPlay []Card) {
	if s.stacked != nil {
		copy(s.cards, s.stacked)
	}

	pending := slices.Clone(inPlay)
	held := make([]Card, 0, len(inPlay))
	rest := make([]Card, 0, len(s.cards))
	for _, c := range s.cards {
		if i := slices.Index(pending, c); i >= 0 {
			pending = slices.Delete(pending, i, i+1)
			held = append(held, c)
			continue
		}
		rest = append(rest, c)
	}

	n := copy(s.cards, held)
	copy(s.cards[n:], rest)
	s.next = n
	s.shuffleFrom(n)
}

// Remaining returns the number of undealt cards.
func (s *Shoe) Remaining() int {
	return len(s.cards) - s.next
}

// Total returns the full size of the shoe.
func (s *Shoe) Total() int {
	return len(s.cards)
}

// Penetration returns the configured reshuffle point.
func (s *Shoe) Penetration() float64 {
	return s.penetration
}

// DecksRemaining estimates how many decks are left to deal.
func (s *Shoe) DecksRemaining() float64 {
	return float64(s.Remaining()) / CardsPerDeck
}
