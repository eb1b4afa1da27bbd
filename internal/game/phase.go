package game

// Phase is a state of the round state machine:
// Betting -> PlayerTurn -> DealerTurn -> RoundOver -> Betting.
type Phase int

const (
	Betting Phase = iota
	PlayerTurn
	DealerTurn
	RoundOver
)

// String returns the display name of the phase
func (p Phase) String() string {
	switch p {
	case Betting:
		return "Betting"
	case PlayerTurn:
		return "Player Turn"
	case DealerTurn:
		return "Dealer Turn"
	case RoundOver:
		return "Round Over"
	default:
		return "Unknown"
	}
}

// Outcome is the result of one player hand against the dealer.
type Outcome int

const (
	Lose Outcome = iota
	Bust
	Push
	Win
	Natural
)

// String returns the display name of the outcome
func (o Outcome) String() string {
	switch o {
	case Lose:
		return "Lose"
	case Bust:
		return "Bust"
	case Push:
		return "Push"
	case Win:
		return "Win"
	case Natural:
		return "Blackjack"
	default:
		return "Unknown"
	}
}
