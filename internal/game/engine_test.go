package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/bjtrainer/internal/deck"
	"github.com/lox/bjtrainer/internal/randutil"
	"github.com/lox/bjtrainer/internal/strategy"
)

func TestNewEngine(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		e, err := NewEngine(randutil.New(1))
		require.NoError(t, err)
		assert.Equal(t, Betting, e.Phase())
		assert.Equal(t, DefaultBankroll, e.Bankroll())
		assert.Equal(t, DefaultRules(), e.Rules())

		snap := e.Snapshot()
		assert.Equal(t, 312, snap.CardsRemaining)
		assert.Empty(t, snap.Hands)
		assert.Equal(t, -1, snap.ActiveHand)
		assert.GreaterOrEqual(t, e.handsUntilQuery, 1)
		assert.LessOrEqual(t, e.handsUntilQuery, 3)
	})

	t.Run("requires RNG", func(t *testing.T) {
		assert.Panics(t, func() { _, _ = NewEngine(nil) })
	})

	t.Run("rejects invalid rules", func(t *testing.T) {
		r := DefaultRules()
		r.Penetration = 1.5
		_, err := NewEngine(randutil.New(1), WithRules(r))
		assert.Error(t, err)

		_, err = NewEngine(randutil.New(1), WithBankroll(-1))
		assert.Error(t, err)
	})
}

// Scenario: bankroll 100, bet 10, player T♠ 6♦ against dealer 9♣.
// Standing on hard 16 against a 9 is graded as a mistake.
func TestStandOnSixteenAgainstNine(t *testing.T) {
	e := newTestEngine(t, "Ts9c6d7h5s")

	snap, err := e.StartRound(10)
	require.NoError(t, err)
	assert.Equal(t, PlayerTurn, snap.Phase)
	assert.Equal(t, 90, snap.Bankroll)
	require.Len(t, snap.Hands, 1)
	assert.Equal(t, 16, snap.Hands[0].Total)
	assert.Equal(t, []deck.Card{deck.NewCard(deck.Clubs, deck.Nine)}, snap.Dealer.Cards)
	assert.True(t, snap.Dealer.HoleHidden)
	assert.Equal(t, 9, snap.Dealer.Total)

	advice, err := e.Advice()
	require.NoError(t, err)
	assert.Equal(t, strategy.Hit, advice)

	snap, err = e.Stand()
	require.NoError(t, err)
	require.NotNil(t, snap.Feedback)
	assert.False(t, snap.Feedback.Correct)
	assert.Equal(t, "Incorrect, should Hit", snap.Feedback.Text())
	assert.Equal(t, DealerTurn, snap.Phase)
	assert.Equal(t, -1, snap.ActiveHand)

	// Hole card 7♥ gives the dealer 16, so another card is needed.
	snap, err = e.AdvanceDealerStep()
	require.NoError(t, err)
	assert.Equal(t, DealerTurn, snap.Phase)
	assert.False(t, snap.Dealer.HoleHidden)
	assert.Equal(t, 16, snap.Dealer.Total)

	snap, err = e.AdvanceDealerStep()
	require.NoError(t, err)
	assert.Equal(t, RoundOver, snap.Phase)
	assert.Equal(t, 21, snap.Dealer.Total)
	require.NotNil(t, snap.Hands[0].Result)
	assert.Equal(t, Lose, snap.Hands[0].Result.Outcome)
	assert.Equal(t, -10, snap.Hands[0].Result.Net)
	assert.Equal(t, 90, snap.Bankroll)

	// T(-1) 9(0) 6(+1) 7(0) 5(+1)
	assert.Equal(t, 1, e.counter.Running())
}

func TestHoleCardNotCountedUntilRevealed(t *testing.T) {
	e := newTestEngine(t, "Ts9c6d2h5s")

	_, err := e.StartRound(10)
	require.NoError(t, err)
	assert.Equal(t, 0, e.counter.Running(), "only T, 9 and 6 are visible")

	_, err = e.Stand()
	require.NoError(t, err)
	_, err = e.AdvanceDealerStep()
	require.NoError(t, err)
	assert.Equal(t, 1, e.counter.Running(), "2♥ counted on reveal")
}

func TestSplitEights(t *testing.T) {
	e := newTestEngine(t, "8h6c8sTh3dKd9c")

	_, err := e.StartRound(10)
	require.NoError(t, err)

	snap, err := e.Split()
	require.NoError(t, err)
	require.NotNil(t, snap.Feedback)
	assert.True(t, snap.Feedback.Correct)
	assert.Equal(t, 80, snap.Bankroll, "second bet taken immediately")
	require.Len(t, snap.Hands, 2)
	assert.Equal(t, deck.MustParseCards("8h3d"), snap.Hands[0].Cards)
	assert.Equal(t, deck.MustParseCards("8sKd"), snap.Hands[1].Cards)
	assert.Equal(t, 10, snap.Hands[0].Bet)
	assert.Equal(t, 10, snap.Hands[1].Bet)
	assert.True(t, snap.Hands[0].FromSplit)
	assert.True(t, snap.Hands[1].FromSplit)
	assert.Equal(t, 0, snap.ActiveHand)

	// 11 against a 6 should be doubled.
	snap, err = e.Stand()
	require.NoError(t, err)
	assert.Equal(t, "Incorrect, should Double Down", snap.Feedback.Text())
	assert.Equal(t, 1, snap.ActiveHand)
	assert.Equal(t, PlayerTurn, snap.Phase)

	snap, err = e.Stand()
	require.NoError(t, err)
	assert.True(t, snap.Feedback.Correct)
	assert.Equal(t, 1, snap.Feedback.HandIndex)
	assert.Equal(t, DealerTurn, snap.Phase)

	// Dealer T6 draws 9 and busts.
	snap = finishDealer(t, e)
	assert.True(t, snap.Dealer.Bust)
	assert.Equal(t, Win, snap.Hands[0].Result.Outcome)
	assert.Equal(t, Win, snap.Hands[1].Result.Outcome)
	assert.Equal(t, 120, snap.Bankroll)
}

func TestBustedHandLosesWhenDealerBusts(t *testing.T) {
	e := newTestEngine(t, "8h6c8sThTd4dKd9c")

	_, err := e.StartRound(10)
	require.NoError(t, err)
	snap, err := e.Split()
	require.NoError(t, err)
	require.Equal(t, 18, snap.Hands[0].Total)
	require.Equal(t, 12, snap.Hands[1].Total)

	_, err = e.Stand()
	require.NoError(t, err)
	snap, err = e.Hit()
	require.NoError(t, err)
	assert.True(t, snap.Hands[1].Bust)
	assert.Equal(t, DealerTurn, snap.Phase)

	// One hand is still live, so the dealer plays out 16 and busts on the 9.
	snap = finishDealer(t, e)
	assert.True(t, snap.Dealer.Bust)
	assert.Equal(t, 25, snap.Dealer.Total)
	assert.Equal(t, Win, snap.Hands[0].Result.Outcome)
	assert.Equal(t, 10, snap.Hands[0].Result.Net)
	assert.Equal(t, Bust, snap.Hands[1].Result.Outcome)
	assert.Equal(t, -10, snap.Hands[1].Result.Net)
	assert.Equal(t, 100, snap.Bankroll)
}

func TestSplitAcesTakeOneCardEach(t *testing.T) {
	e := newTestEngine(t, "As6cAd9hKd5c")

	_, err := e.StartRound(10)
	require.NoError(t, err)

	snap, err := e.Split()
	require.NoError(t, err)
	assert.Equal(t, DealerTurn, snap.Phase)
	require.Len(t, snap.Hands, 2)
	assert.Equal(t, 21, snap.Hands[0].Total)
	assert.False(t, snap.Hands[0].Blackjack, "21 after a split is not a natural")
	assert.Equal(t, 16, snap.Hands[1].Total)
	assert.True(t, snap.Hands[0].Terminal)
	assert.True(t, snap.Hands[1].Terminal)

	// Dealer 6 9 draws the 2 at the top of the filler deck and stands on 17.
	snap = finishDealer(t, e)
	assert.Equal(t, 17, snap.Dealer.Total)
	assert.Equal(t, Win, snap.Hands[0].Result.Outcome)
	assert.Equal(t, 10, snap.Hands[0].Result.Net, "a split 21 pays even money")
	assert.Equal(t, Lose, snap.Hands[1].Result.Outcome)
	assert.Equal(t, 100, snap.Bankroll)
}

func TestSplitRejections(t *testing.T) {
	t.Run("unequal ranks", func(t *testing.T) {
		e := newTestEngine(t, "Kh6cQs9h")
		_, err := e.StartRound(10)
		require.NoError(t, err)

		before := e.Snapshot()
		_, err = e.Split()
		assert.ErrorIs(t, err, ErrIllegalAction)
		assert.Equal(t, before, e.Snapshot())
	})

	t.Run("bankroll cannot cover", func(t *testing.T) {
		e := newTestEngine(t, "8h6c8s9h", WithBankroll(10))
		_, err := e.StartRound(10)
		require.NoError(t, err)

		before := e.Snapshot()
		_, err = e.Split()
		assert.ErrorIs(t, err, ErrIllegalAction)
		assert.Equal(t, before, e.Snapshot())
		assert.False(t, before.Hands[0].CanSplit)
	})

	t.Run("max hands", func(t *testing.T) {
		r := DefaultRules()
		r.MaxHands = 2
		e := newTestEngine(t, "8h6c8s9h8d3c", WithRules(r))
		_, err := e.StartRound(10)
		require.NoError(t, err)

		snap, err := e.Split()
		require.NoError(t, err)
		require.Equal(t, deck.MustParseCards("8h8d"), snap.Hands[0].Cards)

		_, err = e.Split()
		assert.ErrorIs(t, err, ErrIllegalAction)
	})
}

func TestDoubleDown(t *testing.T) {
	e := newTestEngine(t, "6h6c5sTh9dTs")

	_, err := e.StartRound(10)
	require.NoError(t, err)

	snap, err := e.DoubleDown()
	require.NoError(t, err)
	assert.True(t, snap.Feedback.Correct)
	assert.Equal(t, 80, snap.Bankroll)
	assert.Equal(t, 20, snap.Hands[0].Bet)
	assert.True(t, snap.Hands[0].Doubled)
	assert.Equal(t, 20, snap.Hands[0].Total)
	assert.Equal(t, DealerTurn, snap.Phase)

	snap = finishDealer(t, e)
	assert.True(t, snap.Dealer.Bust)
	assert.Equal(t, Win, snap.Hands[0].Result.Outcome)
	assert.Equal(t, 20, snap.Hands[0].Result.Net)
	assert.Equal(t, 120, snap.Bankroll)
}

func TestDoubleRejections(t *testing.T) {
	t.Run("three cards", func(t *testing.T) {
		e := newTestEngine(t, "2h9c3sTh4d")
		_, err := e.StartRound(10)
		require.NoError(t, err)
		_, err = e.Hit()
		require.NoError(t, err)

		before := e.Snapshot()
		_, err = e.DoubleDown()
		assert.ErrorIs(t, err, ErrIllegalAction)
		assert.Equal(t, before, e.Snapshot())
	})

	t.Run("bankroll cannot cover", func(t *testing.T) {
		e := newTestEngine(t, "6h6c5sTh", WithBankroll(15))
		_, err := e.StartRound(10)
		require.NoError(t, err)

		_, err = e.DoubleDown()
		assert.ErrorIs(t, err, ErrIllegalAction)
		assert.Equal(t, 5, e.Bankroll())
	})

	t.Run("after split when disallowed", func(t *testing.T) {
		r := DefaultRules()
		r.DoubleAfterSplit = false
		e := newTestEngine(t, "8h6c8s9h3d2c", WithRules(r))
		_, err := e.StartRound(10)
		require.NoError(t, err)
		_, err = e.Split()
		require.NoError(t, err)

		_, err = e.DoubleDown()
		assert.ErrorIs(t, err, ErrIllegalAction)

		// 8+3 against a 6 would double, but the rules force a hit.
		advice, err := e.Advice()
		require.NoError(t, err)
		assert.Equal(t, strategy.Hit, advice)
	})
}

func TestHitBust(t *testing.T) {
	e := newTestEngine(t, "Ts9c6d7hKd")

	_, err := e.StartRound(10)
	require.NoError(t, err)

	snap, err := e.Hit()
	require.NoError(t, err)
	assert.True(t, snap.Feedback.Correct)
	assert.True(t, snap.Hands[0].Bust)
	assert.Equal(t, DealerTurn, snap.Phase)

	// Every player hand is bust so the dealer only reveals.
	snap, err = e.AdvanceDealerStep()
	require.NoError(t, err)
	assert.Equal(t, RoundOver, snap.Phase)
	assert.Len(t, snap.Dealer.Cards, 2)
	assert.Equal(t, Bust, snap.Hands[0].Result.Outcome)
	assert.Equal(t, 90, snap.Bankroll)
}

func TestSettlement(t *testing.T) {
	tests := []struct {
		name     string
		script   string
		play     func(*Engine) error
		outcome  Outcome
		bankroll int
	}{
		{
			name:     "player natural pays 3:2",
			script:   "As9cKh7d",
			outcome:  Natural,
			bankroll: 115,
		},
		{
			name:     "dealer natural beats twenty",
			script:   "TsAhQhKd",
			outcome:  Lose,
			bankroll: 90,
		},
		{
			name:     "both naturals push",
			script:   "AsAhKhKd",
			outcome:  Push,
			bankroll: 100,
		},
		{
			name:     "equal totals push",
			script:   "TsTh8h8d",
			play:     func(e *Engine) error { _, err := e.Stand(); return err },
			outcome:  Push,
			bankroll: 100,
		},
		{
			name:     "higher total wins",
			script:   "TsTh9h7d",
			play:     func(e *Engine) error { _, err := e.Stand(); return err },
			outcome:  Win,
			bankroll: 110,
		},
		{
			name:     "dealer bust pays a standing hand",
			script:   "TsTh8h6dKc",
			play:     func(e *Engine) error { _, err := e.Stand(); return err },
			outcome:  Win,
			bankroll: 110,
		},
		{
			name:     "lower total loses",
			script:   "TsTh7h9d",
			play:     func(e *Engine) error { _, err := e.Stand(); return err },
			outcome:  Lose,
			bankroll: 90,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, tt.script)
			_, err := e.StartRound(10)
			require.NoError(t, err)
			if tt.play != nil {
				require.NoError(t, tt.play(e))
			}
			snap := finishDealer(t, e)
			require.Len(t, snap.Hands, 1)
			assert.Equal(t, tt.outcome, snap.Hands[0].Result.Outcome)
			assert.Equal(t, tt.bankroll, snap.Bankroll)
			assert.Equal(t, tt.bankroll-100, snap.Hands[0].Result.Net)
		})
	}
}

func TestSixToFivePayout(t *testing.T) {
	r := DefaultRules()
	r.BlackjackPayout = Payout{Num: 6, Den: 5}
	e := newTestEngine(t, "As9cKh7d", WithRules(r))

	_, err := e.StartRound(10)
	require.NoError(t, err)
	snap := finishDealer(t, e)
	assert.Equal(t, 112, snap.Bankroll)
}

func TestStartRoundValidation(t *testing.T) {
	e := newTestEngine(t, "Ts9c6d7h")

	for _, bet := range []int{0, -5, 101} {
		_, err := e.StartRound(bet)
		assert.ErrorIs(t, err, ErrInvalidBet, "bet %d", bet)
		assert.Equal(t, Betting, e.Phase())
		assert.Equal(t, 100, e.Bankroll())
	}

	_, err := e.StartRound(100)
	require.NoError(t, err, "betting the whole bankroll is allowed")

	_, err = e.StartRound(10)
	assert.ErrorIs(t, err, ErrIllegalAction, "round already in progress")
}

func TestActionsOutsidePlayerTurn(t *testing.T) {
	e := newTestEngine(t, "Ts9c6d7h")

	_, err := e.Hit()
	assert.ErrorIs(t, err, ErrIllegalAction)
	_, err = e.Stand()
	assert.ErrorIs(t, err, ErrIllegalAction)
	_, err = e.DoubleDown()
	assert.ErrorIs(t, err, ErrIllegalAction)
	_, err = e.Split()
	assert.ErrorIs(t, err, ErrIllegalAction)
	_, err = e.AdvanceDealerStep()
	assert.ErrorIs(t, err, ErrIllegalAction)
	_, err = e.Advice()
	assert.ErrorIs(t, err, ErrIllegalAction)
	_, err = e.NextRound()
	assert.ErrorIs(t, err, ErrIllegalAction)
	_, err = e.SubmitCountGuess(0)
	assert.ErrorIs(t, err, ErrNotPrompted)
}

func TestRestrictedFeedback(t *testing.T) {
	// A,2,5 is soft 18 against a 4: the chart doubles, but with three cards
	// the right play is to stand.
	e := newTestEngine(t, "As4c2h9h5d")

	_, err := e.StartRound(10)
	require.NoError(t, err)
	_, err = e.Hit()
	require.NoError(t, err)

	advice, err := e.Advice()
	require.NoError(t, err)
	assert.Equal(t, strategy.Stand, advice)

	snap, err := e.Stand()
	require.NoError(t, err)
	assert.True(t, snap.Feedback.Correct)
}

func TestDealerStepsNotRestartable(t *testing.T) {
	e := newTestEngine(t, "Ts9c6d7h5s")
	_, err := e.StartRound(10)
	require.NoError(t, err)
	_, err = e.Stand()
	require.NoError(t, err)

	steps := 0
	for _, err := range e.DealerSteps() {
		require.NoError(t, err)
		steps++
	}
	assert.Equal(t, 2, steps)

	for range e.DealerSteps() {
		t.Fatal("sequence yielded after the round was over")
	}
}

func TestDealerStepsStopEarly(t *testing.T) {
	e := newTestEngine(t, "Ts9c6d7h5s")
	_, err := e.StartRound(10)
	require.NoError(t, err)
	_, err = e.Stand()
	require.NoError(t, err)

	for snap, err := range e.DealerSteps() {
		require.NoError(t, err)
		assert.Equal(t, DealerTurn, snap.Phase)
		break
	}
	assert.Equal(t, DealerTurn, e.Phase(), "breaking out leaves the dealer mid-turn")

	snap := finishDealer(t, e)
	assert.Equal(t, 21, snap.Dealer.Total)
}

func TestNextRound(t *testing.T) {
	e := newTestEngine(t, "TsTh9h7d")
	_, err := e.StartRound(10)
	require.NoError(t, err)
	_, err = e.Stand()
	require.NoError(t, err)
	finishDealer(t, e)

	snap, err := e.NextRound()
	require.NoError(t, err)
	assert.Equal(t, Betting, snap.Phase)
	assert.Empty(t, snap.Hands)
	assert.Nil(t, snap.Feedback)
	assert.Empty(t, snap.Dealer.Cards)
}

func TestEnginesAreIndependent(t *testing.T) {
	a, err := NewEngine(randutil.New(99))
	require.NoError(t, err)
	b, err := NewEngine(randutil.New(99))
	require.NoError(t, err)

	sa, err := a.StartRound(10)
	require.NoError(t, err)
	sb, err := b.StartRound(10)
	require.NoError(t, err)
	assert.Equal(t, sa, sb, "same seed deals the same round")

	if sa.Phase == PlayerTurn {
		_, err = a.Stand()
		require.NoError(t, err)
	}
	assert.Equal(t, sb, b.Snapshot(), "acting on one engine leaves the other untouched")
}

func TestEventsPublished(t *testing.T) {
	rec := &recorder{}
	bus := NewEventBus()
	bus.Subscribe(rec)
	e := newTestEngine(t, "Ts9c6d7h5s", WithEventBus(bus))

	_, err := e.StartRound(10)
	require.NoError(t, err)
	_, err = e.Stand()
	require.NoError(t, err)
	finishDealer(t, e)

	assert.Len(t, rec.ofType(EventTypeRoundStart), 1)
	assert.Len(t, rec.ofType(EventTypePlayerAction), 1)
	assert.Len(t, rec.ofType(EventTypeDealerCard), 2)
	ends := rec.ofType(EventTypeRoundEnd)
	require.Len(t, ends, 1)
	end := ends[0].(RoundEndEvent)
	assert.Equal(t, 1, end.Round)
	assert.Equal(t, 90, end.Bankroll)
	assert.Equal(t, Lose, end.Results[0].Outcome)

	bus.Unsubscribe(rec)
	if e.NeedsCountVerification() {
		_, err = e.SubmitCountGuess(0)
		require.NoError(t, err)
	}
	_, err = e.StartRound(10)
	require.NoError(t, err)
	assert.Len(t, rec.ofType(EventTypeRoundStart), 1)
}

func TestStats(t *testing.T) {
	e := newTestEngine(t, "Ts9c6d7h5s")
	_, err := e.StartRound(10)
	require.NoError(t, err)
	_, err = e.Stand()
	require.NoError(t, err)
	finishDealer(t, e)

	st := e.Stats()
	assert.Equal(t, 1, st.Rounds)
	assert.Equal(t, 1, st.Decisions)
	assert.Equal(t, 0, st.CorrectDecisions)
}
