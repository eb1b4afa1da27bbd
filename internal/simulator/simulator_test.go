package simulator

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/bjtrainer/internal/game"
	"github.com/lox/bjtrainer/internal/strategy"
)

func TestRunPerfectPlay(t *testing.T) {
	sim := New(Config{Sessions: 4, Rounds: 150, Workers: 2, Seed: 1000})

	res, err := sim.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 600, res.Stats.Rounds)
	assert.Positive(t, res.Decisions)
	assert.Equal(t, res.Decisions, res.CorrectDecisions, "autoplay follows the chart")
	assert.Positive(t, res.CountChecks)
	assert.Equal(t, res.CountChecks, res.CorrectCounts, "autoplay counts every visible card")
	assert.Positive(t, res.Reshuffles)
	assert.Equal(t, 1.0, res.DecisionAccuracy())
}

func TestRunDeterministicAcrossWorkers(t *testing.T) {
	cfg := Config{Sessions: 6, Rounds: 50, Seed: 7, MistakeRate: 0.2}

	cfg.Workers = 1
	a, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	cfg.Workers = 4
	b, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a.Stats.SumUnits, b.Stats.SumUnits)
	assert.Equal(t, a.Stats.Wins, b.Stats.Wins)
	assert.Equal(t, a.Decisions, b.Decisions)
	assert.Equal(t, a.CorrectDecisions, b.CorrectDecisions)
	assert.Less(t, a.CorrectDecisions, a.Decisions, "mistakes are graded")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{Sessions: 2, Rounds: 10}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRejectsEmptyConfig(t *testing.T) {
	_, err := New(Config{}).Run(context.Background())
	assert.Error(t, err)
}

func TestRunCustomRules(t *testing.T) {
	rules := game.DefaultRules()
	rules.Decks = 2
	rules.DoubleAfterSplit = false

	res, err := New(Config{Sessions: 1, Rounds: 100, Seed: 3, Rules: rules}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, res.Decisions, res.CorrectDecisions)
	assert.Greater(t, res.Reshuffles, 3, "a short shoe is rebuilt often")
}

func TestMistake(t *testing.T) {
	assert.Equal(t, strategy.Hit, mistake(strategy.Stand, nil))
	assert.Equal(t, strategy.Stand, mistake(strategy.Hit, nil))
}

func TestWriteSummary(t *testing.T) {
	res, err := New(Config{Sessions: 1, Rounds: 20, Seed: 5}).Run(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	WriteSummary(&buf, res)
	out := buf.String()
	assert.Contains(t, out, "Rounds played: 20")
	assert.Contains(t, out, "Decisions:")
	assert.Contains(t, out, "TRUE COUNT ANALYSIS")
}
