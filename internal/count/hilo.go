// Package count implements the Hi-Lo card counting system.
package count

import "github.com/lox/bjtrainer/internal/deck"

// HiLo returns the Hi-Lo tag for a rank.
func HiLo(r deck.Rank) int {
	return r.HiLo()
}

// Counter accumulates the Hi-Lo running count for a shoe.
type Counter struct {
	running int
	seen    int
}

// Observe adds the tags of revealed cards to the running count.
func (c *Counter) Observe(cards ...deck.Card) {
	for _, card := range cards {
		c.running += card.HiLo()
		c.seen++
	}
}

// Running returns the current running count.
func (c *Counter) Running() int {
	return c.running
}

// Seen returns how many cards have been observed since the last reset.
func (c *Counter) Seen() int {
	return c.seen
}

// Reset zeroes the count. Only a reshuffle should trigger this.
func (c *Counter) Reset() {
	c.running = 0
	c.seen = 0
}

// TrueCount divides the running count by the decks left to deal. With less
// than half a deck remaining the divisor is clamped to 0.5.
func (c *Counter) TrueCount(decksRemaining float64) float64 {
	if decksRemaining < 0.5 {
		decksRemaining = 0.5
	}
	return float64(c.running) / decksRemaining
}
