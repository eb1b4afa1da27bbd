// Package simulator plays headless training sessions with basic-strategy
// autoplay and perfect counting, for checking the engine end to end.
package simulator

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/bjtrainer/internal/count"
	"github.com/lox/bjtrainer/internal/deck"
	"github.com/lox/bjtrainer/internal/game"
	"github.com/lox/bjtrainer/internal/randutil"
	"github.com/lox/bjtrainer/internal/statistics"
	"github.com/lox/bjtrainer/internal/strategy"
)

// Config holds configuration for running simulations
type Config struct {
	Sessions int
	Rounds   int // Rounds per session
	Bet      int
	Workers  int
	Seed     int64
	Rules    game.Rules
	// MistakeRate is the chance the autoplayer deviates from basic strategy
	MistakeRate float64
	Logger      *log.Logger
}

// Result aggregates every session of a run
type Result struct {
	Stats            *statistics.Statistics
	Decisions        int
	CorrectDecisions int
	CountChecks      int
	CorrectCounts    int
	Reshuffles       int
}

// DecisionAccuracy returns the share of decisions graded correct
func (r *Result) DecisionAccuracy() float64 {
	if r.Decisions == 0 {
		return 0
	}
	return float64(r.CorrectDecisions) / float64(r.Decisions)
}

func (r *Result) add(s *statistics.Statistics, es game.Stats) {
	r.Stats.Merge(s)
	r.Decisions += es.Decisions
	r.CorrectDecisions += es.CorrectDecisions
	r.CountChecks += es.CountChecks
	r.CorrectCounts += es.CorrectCounts
	r.Reshuffles += es.Reshuffles
}

// Simulator runs blackjack sessions
type Simulator struct {
	config Config
	logger *log.Logger
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.Bet <= 0 {
		config.Bet = 10
	}
	if config.Rules == (game.Rules{}) {
		config.Rules = game.DefaultRules()
	}
	logger := config.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Simulator{config: config, logger: logger.WithPrefix("simulator")}
}

// Run plays every session across the worker pool. Sessions are seeded
// from Seed by index, so results do not depend on the worker count.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	if s.config.Sessions <= 0 || s.config.Rounds <= 0 {
		return nil, fmt.Errorf("simulator: sessions and rounds must be positive")
	}

	result := &Result{Stats: &statistics.Statistics{}}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i := 0; i < s.config.Sessions; i++ {
		seed := s.config.Seed + int64(i)
		g.Go(func() error {
			stats, engineStats, err := s.playSession(ctx, seed)
			if err != nil {
				return fmt.Errorf("session %d (seed %d): %w", i, seed, err)
			}
			mu.Lock()
			result.add(stats, engineStats)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := result.Stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	s.logger.Info("Simulation complete",
		"sessions", s.config.Sessions,
		"rounds", result.Stats.Rounds,
		"mean", result.Stats.Mean(),
		"accuracy", result.DecisionAccuracy())
	return result, nil
}

// playSession runs one engine for the configured number of rounds.
func (s *Simulator) playSession(ctx context.Context, seed int64) (*statistics.Statistics, game.Stats, error) {
	rng := randutil.New(seed)
	// Enough to cover every round losing four doubled hands.
	bankroll := s.config.Bet * 8 * s.config.Rounds
	e, err := game.NewEngine(rng,
		game.WithRules(s.config.Rules),
		game.WithBankroll(bankroll),
		game.WithLogger(s.logger.With("seed", seed)))
	if err != nil {
		return nil, game.Stats{}, err
	}

	stats := &statistics.Statistics{}
	var counter count.Counter
	remaining := e.Snapshot().CardsRemaining

	for round := 0; round < s.config.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, game.Stats{}, err
		}

		if e.NeedsCountVerification() {
			if _, err := e.SubmitCountGuess(counter.Running()); err != nil {
				return nil, game.Stats{}, err
			}
		}

		trueCount := counter.TrueCount(float64(remaining) / deck.CardsPerDeck)
		snap, err := e.StartRound(s.config.Bet)
		if err != nil {
			return nil, game.Stats{}, err
		}
		if snap.Reshuffled {
			counter.Reset()
			trueCount = 0
		}

		for snap.Phase == game.PlayerTurn {
			action, err := e.Advice()
			if err != nil {
				return nil, game.Stats{}, err
			}
			if s.config.MistakeRate > 0 && rng.Float64() < s.config.MistakeRate {
				action = mistake(action, rng)
			}
			if snap, err = e.Apply(action); err != nil {
				return nil, game.Stats{}, err
			}
		}

		for snap, err = range e.DealerSteps() {
			if err != nil {
				return nil, game.Stats{}, err
			}
		}

		stats.Add(roundResult(snap, seed, trueCount, s.config.Bet))
		if snap.Reshuffled {
			// The shoe may have been rebuilt from the discards mid-round.
			counter.Reset()
		}
		observeRound(&counter, snap)
		remaining = snap.CardsRemaining
	}

	return stats, e.Stats(), nil
}

// mistake swaps a recommended action for one that is always legal.
func mistake(action strategy.Action, rng *rand.Rand) strategy.Action {
	if action == strategy.Stand {
		return strategy.Hit
	}
	if action == strategy.Hit || rng.IntN(2) == 0 {
		return strategy.Stand
	}
	return strategy.Hit
}

func roundResult(snap game.Snapshot, seed int64, trueCount float64, bet int) statistics.RoundResult {
	r := statistics.RoundResult{
		Seed:      seed,
		TrueCount: int(math.Round(trueCount)),
		Split:     len(snap.Hands) > 1,
	}
	net := 0
	for _, h := range snap.Hands {
		if h.Result != nil {
			net += h.Result.Net
			r.Outcomes = append(r.Outcomes, h.Result.Outcome)
		}
		if h.Doubled {
			r.Doubled = true
		}
	}
	r.NetUnits = float64(net) / float64(bet)
	return r
}

// observeRound counts every card left face up at the end of a round.
func observeRound(c *count.Counter, snap game.Snapshot) {
	for _, h := range snap.Hands {
		c.Observe(h.Cards...)
	}
	c.Observe(snap.Dealer.Cards...)
}

// WriteSummary prints a summary of simulation results
func WriteSummary(w io.Writer, r *Result) {
	stats := r.Stats
	low, high := stats.ConfidenceInterval95()

	fmt.Fprintf(w, "\n=== RESULTS ===\n")
	fmt.Fprintf(w, "Rounds played: %d (%d hands)\n", stats.Rounds, stats.Hands)
	fmt.Fprintf(w, "Mean: %.4f units/round\n", stats.Mean())
	fmt.Fprintf(w, "Std Dev: %.4f units\n", stats.StdDev())
	fmt.Fprintf(w, "95%% CI: [%.4f, %.4f] units/round\n", low, high)
	fmt.Fprintf(w, "Percentiles: P5=%.2f, P50=%.2f, P95=%.2f\n",
		stats.Percentile(0.05), stats.Median(), stats.Percentile(0.95))

	fmt.Fprintf(w, "\n=== OUTCOMES ===\n")
	fmt.Fprintf(w, "Wins: %d, Blackjacks: %d, Pushes: %d, Losses: %d, Busts: %d\n",
		stats.Wins, stats.Naturals, stats.Pushes, stats.Losses, stats.Busts)
	fmt.Fprintf(w, "Doubles: %d, Splits: %d, Reshuffles: %d\n", stats.Doubles, stats.Splits, r.Reshuffles)

	fmt.Fprintf(w, "\n=== TRAINING ===\n")
	fmt.Fprintf(w, "Decisions: %d/%d correct (%.1f%%)\n",
		r.CorrectDecisions, r.Decisions, r.DecisionAccuracy()*100)
	fmt.Fprintf(w, "Count checks: %d/%d correct\n", r.CorrectCounts, r.CountChecks)

	fmt.Fprintf(w, "\n=== TRUE COUNT ANALYSIS ===\n")
	for tc := statistics.MinTrueCount; tc <= statistics.MaxTrueCount; tc++ {
		b := stats.CountResults[statistics.BucketIndex(tc)]
		if b.Rounds > 0 {
			fmt.Fprintf(w, "TC %+d: %d rounds, %.3f units/round\n", tc, b.Rounds, stats.CountMean(tc))
		}
	}
}
