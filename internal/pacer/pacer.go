// Package pacer plays out the dealer's turn at a human-readable speed.
package pacer

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/bjtrainer/internal/game"
)

// Stepper is the part of the engine the pacer drives.
type Stepper interface {
	Phase() game.Phase
	AdvanceDealerStep() (game.Snapshot, error)
}

// Pacer advances the dealer one card at a time with a pause between cards.
type Pacer struct {
	clock  quartz.Clock
	delay  time.Duration
	logger *log.Logger
}

// New creates a pacer. A zero delay steps without pausing.
func New(clock quartz.Clock, delay time.Duration, logger *log.Logger) *Pacer {
	return &Pacer{
		clock:  clock,
		delay:  delay,
		logger: logger.WithPrefix("pacer"),
	}
}

// Run steps the dealer until the round is over, calling onStep with every
// snapshot. The first card is shown immediately. The pause before each
// later card is already running when onStep is called.
func (p *Pacer) Run(ctx context.Context, s Stepper, onStep func(game.Snapshot)) (game.Snapshot, error) {
	var last game.Snapshot
	for s.Phase() == game.DealerTurn {
		snap, err := s.AdvanceDealerStep()
		if err != nil {
			return last, err
		}
		last = snap

		if snap.Phase != game.DealerTurn || p.delay <= 0 {
			onStep(snap)
			continue
		}

		timer := p.clock.NewTimer(p.delay, "pacer", "dealer")
		onStep(snap)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.logger.Debug("Dealer turn interrupted", "round", snap.Round)
			return last, ctx.Err()
		case <-timer.C:
		}
	}
	return last, nil
}
