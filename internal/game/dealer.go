package game

import (
	"fmt"
	"iter"

	"github.com/lox/bjtrainer/internal/hand"
)

// AdvanceDealerStep reveals or draws exactly one dealer card. The first call
// turns over the hole card; later calls draw while the dealer is under 17.
// The call that completes the dealer hand also settles the round and moves
// to RoundOver, so callers animate by calling until the phase changes.
func (e *Engine) AdvanceDealerStep() (Snapshot, error) {
	if e.phase != DealerTurn {
		return Snapshot{}, fmt.Errorf("%w: no dealer step during %s", ErrIllegalAction, e.phase)
	}

	if !e.holeRevealed {
		e.holeRevealed = true
		hole := e.dealer.Cards[1]
		e.counter.Observe(hole)
		e.publishDealerCard(len(e.dealer.Cards) - 1)
	} else {
		if err := e.reserve(1); err != nil {
			return Snapshot{}, fmt.Errorf("game: dealer draw: %w", err)
		}
		c, _ := e.shoe.Draw()
		e.dealer.Add(c)
		e.counter.Observe(c)
		e.publishDealerCard(len(e.dealer.Cards) - 1)
	}

	if !e.dealerMustDraw() {
		e.settle()
	}
	return e.Snapshot(), nil
}

// DealerSteps returns the remaining dealer steps as a lazy sequence. It is
// not restartable: once the round is over it yields nothing. A shoe error
// is yielded once and ends the sequence.
func (e *Engine) DealerSteps() iter.Seq2[Snapshot, error] {
	return func(yield func(Snapshot, error) bool) {
		for e.phase == DealerTurn {
			snap, err := e.AdvanceDealerStep()
			if !yield(snap, err) || err != nil {
				return
			}
		}
	}
}

func (e *Engine) publishDealerCard(i int) {
	c := e.dealer.Cards[i]
	e.logger.Debug("Dealer card", "round", e.round, "card", c, "total", e.dealer.Total())
	e.bus.Publish(DealerCardEvent{Round: e.round, Card: c, Total: e.dealer.Total()})
}

// dealerMustDraw reports whether the dealer takes another card. The dealer
// stands on all 17s and does not draw when no player hand can still win or
// lose against its total.
func (e *Engine) dealerMustDraw() bool {
	if e.dealer.Total() >= DealerStandsOn {
		return false
	}
	for _, h := range e.hands {
		if !h.IsBust() && !h.IsBlackjack() {
			return true
		}
	}
	return false
}

// settle pays every hand, enters RoundOver and schedules count checks.
func (e *Engine) settle() {
	e.results = make([]Result, len(e.hands))
	for i, h := range e.hands {
		r := e.settleHand(h)
		e.bankroll += r.Payout
		e.results[i] = r
	}
	e.phase = RoundOver
	e.stats.Rounds++

	e.handsUntilQuery--
	if e.handsUntilQuery <= 0 {
		e.handsUntilQuery = 0
		e.needsVerification = true
	}

	e.logger.Debug("Round settled",
		"round", e.round,
		"dealer", e.dealer,
		"bankroll", e.bankroll,
		"countCheck", e.needsVerification)
	results := make([]Result, len(e.results))
	copy(results, e.results)
	e.bus.Publish(RoundEndEvent{Round: e.round, Results: results, Bankroll: e.bankroll})
}

func (e *Engine) settleHand(h *hand.Hand) Result {
	d := e.dealer
	var r Result
	switch {
	case h.IsBust():
		r = Result{Outcome: Bust}
	case d.IsBlackjack() && h.IsBlackjack():
		r = Result{Outcome: Push, Payout: h.Bet}
	case d.IsBlackjack():
		r = Result{Outcome: Lose}
	case h.IsBlackjack():
		r = Result{Outcome: Natural, Payout: h.Bet + e.rules.BlackjackPayout.Winnings(h.Bet)}
	case d.IsBust(), h.Total() > d.Total():
		r = Result{Outcome: Win, Payout: 2 * h.Bet}
	case h.Total() == d.Total():
		r = Result{Outcome: Push, Payout: h.Bet}
	default:
		r = Result{Outcome: Lose}
	}
	r.Net = r.Payout - h.Bet
	return r
}
