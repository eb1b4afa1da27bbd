package game

import (
	"slices"

	"github.com/lox/bjtrainer/internal/deck"
	"github.com/lox/bjtrainer/internal/hand"
	"github.com/lox/bjtrainer/internal/strategy"
)

// Feedback grades the most recent player decision against basic strategy.
type Feedback struct {
	HandIndex   int
	Action      strategy.Action
	Recommended strategy.Action
	Correct     bool
}

// Text returns the message shown to the player, e.g. "Incorrect, should Hit".
func (f Feedback) Text() string {
	if f.Correct {
		return "Correct"
	}
	return "Incorrect, should " + f.Recommended.String()
}

// Result is the settlement of one player hand.
type Result struct {
	Outcome Outcome
	// Payout is the amount returned to the bankroll, stake included.
	Payout int
	// Net is Payout minus the amount wagered on the hand.
	Net int
}

// DealerView is the dealer hand as the player may see it. While the hole
// card is hidden only the upcard is listed.
type DealerView struct {
	Cards      []deck.Card
	HoleHidden bool
	Total      int
	Soft       bool
	Blackjack  bool
	Bust       bool
}

// HandView is one player hand.
type HandView struct {
	Cards     []deck.Card
	Total     int
	Soft      bool
	Bet       int
	Terminal  bool
	Bust      bool
	Blackjack bool
	Doubled   bool
	FromSplit bool
	CanSplit  bool
	CanDouble bool
	Result    *Result
}

// Snapshot is the observable state of an engine. It never carries the
// running count.
type Snapshot struct {
	Round                  int
	Phase                  Phase
	Dealer                 DealerView
	Hands                  []HandView
	ActiveHand             int // -1 outside the player turn
	Bankroll               int
	Feedback               *Feedback
	NeedsCountVerification bool
	CardsRemaining         int
	Reshuffled             bool
}

// Snapshot returns a copy of the current observable state.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		Round:                  e.round,
		Phase:                  e.phase,
		ActiveHand:             -1,
		Bankroll:               e.bankroll,
		NeedsCountVerification: e.needsVerification,
		CardsRemaining:         e.shoe.Remaining(),
		Reshuffled:             e.reshuffled,
	}
	if e.phase == PlayerTurn {
		snap.ActiveHand = e.active
	}
	if e.feedback != nil {
		fb := *e.feedback
		snap.Feedback = &fb
	}
	if e.dealer != nil {
		snap.Dealer = e.dealerView()
	}
	for i, h := range e.hands {
		view := HandView{
			Cards:     slices.Clone(h.Cards),
			Total:     h.Total(),
			Soft:      h.IsSoft(),
			Bet:       h.Bet,
			Terminal:  h.IsTerminal(),
			Bust:      h.IsBust(),
			Blackjack: h.IsBlackjack(),
			Doubled:   h.Doubled,
			FromSplit: h.FromSplit,
		}
		if e.phase == PlayerTurn && i == e.active {
			view.CanSplit = e.checkSplit(h) == nil
			view.CanDouble = e.checkDouble(h) == nil
		}
		if i < len(e.results) {
			r := e.results[i]
			view.Result = &r
		}
		snap.Hands = append(snap.Hands, view)
	}
	return snap
}

func (e *Engine) dealerView() DealerView {
	if !e.holeRevealed {
		up := e.dealer.Cards[:1]
		total, soft := hand.Evaluate(up)
		return DealerView{
			Cards:      slices.Clone(up),
			HoleHidden: true,
			Total:      total,
			Soft:       soft,
		}
	}
	return DealerView{
		Cards:     slices.Clone(e.dealer.Cards),
		Total:     e.dealer.Total(),
		Soft:      e.dealer.IsSoft(),
		Blackjack: e.dealer.IsBlackjack(),
		Bust:      e.dealer.IsBust(),
	}
}
