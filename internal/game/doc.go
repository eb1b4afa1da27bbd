// Package game implements the blackjack training engine.
//
// The main type is Engine, which owns one session: a persistent shoe, the
// Hi-Lo running count, the bankroll, and the round in progress. Every player
// decision is graded against basic strategy, and every one to three rounds
// the engine asks the player for the running count.
//
// # Basic Usage
//
//	rng := randutil.New(42)
//	e, err := game.NewEngine(rng, game.WithBankroll(500))
//	snap, err := e.StartRound(10)
//	snap, err = e.Hit()
//	snap, err = e.Stand()
//	for snap, err := range e.DealerSteps() {
//	    // redraw after each dealer card
//	}
//	if e.NeedsCountVerification() {
//	    res, err := e.SubmitCountGuess(guess)
//	}
//
// # Round Lifecycle
//
// Rounds move Betting -> PlayerTurn -> DealerTurn -> RoundOver. The dealer
// turn is pull-based: each AdvanceDealerStep call reveals or draws one card,
// so a presentation layer can pace the animation itself. The engine has no
// timers and no goroutines.
//
// # Errors
//
// Rejected calls return ErrInvalidBet, ErrIllegalAction or ErrNotPrompted
// wrapped with detail and leave the engine unchanged. A shoe that runs dry
// mid-round is rebuilt from the discards, so deck.ErrEmptyShoe only reaches
// callers whose shoe is smaller than the cards on the table.
//
// # Deterministic Testing
//
// Supply a stacked shoe to script the deal:
//
//	shoe, _ := deck.NewStackedShoe(deck.MustParseCards("Ts9c6d7h5s"), 0.75, nil)
//	e, _ := game.NewEngine(rng, game.WithShoe(shoe))
package game
