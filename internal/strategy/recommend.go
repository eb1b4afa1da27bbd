package strategy

import (
	"github.com/lox/bjtrainer/internal/deck"
	"github.com/lox/bjtrainer/internal/hand"
)

// Allowed describes which optional actions the rules permit for a hand.
type Allowed struct {
	Double bool
	Split  bool
}

// Unrestricted permits every action.
var Unrestricted = Allowed{Double: true, Split: true}

// Recommend returns the basic-strategy action for cards against the dealer
// upcard, assuming doubling and splitting are both available.
func Recommend(cards []deck.Card, upcard deck.Card) Action {
	return RecommendFor(cards, upcard, Unrestricted)
}

// RecommendFor returns the basic-strategy action restricted to what the
// player may actually do. A chart double that is not allowed becomes a hit,
// or a stand for double-else-stand entries. A chart split that is not
// allowed is re-read as a soft or hard total.
func RecommendFor(cards []deck.Card, upcard deck.Card, allowed Allowed) Action {
	if allowed.Split && hand.IsPair(cards) {
		if c, ok := lookup(Pair, cards[0].Points(), upcard); ok {
			return resolve(c, allowed)
		}
	}

	total, soft := hand.Evaluate(cards)
	if soft {
		if c, ok := lookup(Soft, total, upcard); ok {
			return resolve(c, allowed)
		}
	}

	c, _ := lookup(Hard, total, upcard)
	return resolve(c, allowed)
}

// Classify reports which chart section RecommendFor would consult.
func Classify(cards []deck.Card, allowed Allowed) (Category, int) {
	if allowed.Split && hand.IsPair(cards) {
		return Pair, cards[0].Points()
	}
	total, soft := hand.Evaluate(cards)
	if soft {
		if _, ok := softRows[total]; ok {
			return Soft, total
		}
	}
	return Hard, total
}

func resolve(c cell, allowed Allowed) Action {
	switch c {
	case s:
		return Stand
	case d:
		if allowed.Double {
			return Double
		}
		return Hit
	case ds:
		if allowed.Double {
			return Double
		}
		return Stand
	case p:
		return Split
	default:
		return Hit
	}
}
