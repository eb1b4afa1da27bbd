package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/bjtrainer/internal/deck"
	"github.com/lox/bjtrainer/internal/randutil"
)

// newTestEngine builds an engine with bankroll 100 whose shoe deals script
// first (player, dealer up, player, dealer hole, then draws in order),
// followed by an unshuffled deck so stray draws stay deterministic.
func newTestEngine(t *testing.T, script string, opts ...EngineOption) *Engine {
	t.Helper()

	cards := deck.MustParseCards(script)
	for _, suit := range deck.Suits {
		for rank := deck.Two; rank <= deck.Ace; rank++ {
			cards = append(cards, deck.NewCard(suit, rank))
		}
	}
	shoe, err := deck.NewStackedShoe(cards, 0.9, nil)
	require.NoError(t, err)

	base := []EngineOption{WithShoe(shoe), WithBankroll(100)}
	e, err := NewEngine(randutil.New(42), append(base, opts...)...)
	require.NoError(t, err)
	return e
}

// finishDealer steps the dealer until the round is over.
func finishDealer(t *testing.T, e *Engine) Snapshot {
	t.Helper()

	var last Snapshot
	for snap, err := range e.DealerSteps() {
		require.NoError(t, err)
		last = snap
	}
	require.Equal(t, RoundOver, last.Phase)
	return last
}

// recorder collects published events.
type recorder struct {
	events []GameEvent
}

func (r *recorder) OnEvent(event GameEvent) {
	r.events = append(r.events, event)
}

func (r *recorder) ofType(et EventType) []GameEvent {
	var out []GameEvent
	for _, ev := range r.events {
		if ev.EventType() == et {
			out = append(out, ev)
		}
	}
	return out
}
