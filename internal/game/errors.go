package game

import "errors"

// Rejected calls return one of these wrapped with detail. The engine state is
// left exactly as it was.
var (
	// ErrInvalidBet is returned for bets that are not positive or exceed the bankroll.
	ErrInvalidBet = errors.New("game: invalid bet")
	// ErrIllegalAction is returned for actions not valid in the current phase or hand shape.
	ErrIllegalAction = errors.New("game: illegal action")
	// ErrNotPrompted is returned for count guesses when no verification is pending.
	ErrNotPrompted = errors.New("game: count guess not requested")
)
