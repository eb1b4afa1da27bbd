package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/lox/bjtrainer/internal/fileutil"
	"github.com/lox/bjtrainer/internal/randutil"
	"github.com/lox/bjtrainer/internal/simulator"
)

type SimulateCmd struct {
	Sessions int     `default:"100" help:"Number of sessions"`
	Rounds   int     `default:"1000" help:"Rounds per session"`
	Bet      int     `default:"10" help:"Flat bet per round"`
	Workers  int     `default:"0" help:"Parallel workers (0 for one per CPU)"`
	Seed     int64   `default:"0" help:"RNG seed (0 uses the config seed, then the clock)"`
	Mistakes float64 `default:"0" help:"Chance of deviating from basic strategy (0-1)"`
	Report   string  `type:"path" help:"Also write the summary to this file"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}
	if c.Mistakes < 0 || c.Mistakes > 1 {
		return fmt.Errorf("mistakes must be between 0 and 1, got %v", c.Mistakes)
	}

	seed := c.Seed
	if seed == 0 {
		seed = cfg.Session.Seed
	}
	_, seed = randutil.FromSeedOrClock(seed)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Starting simulation: %d sessions x %d rounds (seed: %d)\n", c.Sessions, c.Rounds, seed)
	start := time.Now()

	sim := simulator.New(simulator.Config{
		Sessions:    c.Sessions,
		Rounds:      c.Rounds,
		Bet:         c.Bet,
		Workers:     c.Workers,
		Seed:        seed,
		Rules:       cfg.GameRules(),
		MistakeRate: c.Mistakes,
		Logger:      logger,
	})
	res, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	simulator.WriteSummary(os.Stdout, res)
	if c.Report != "" {
		err := fileutil.WriteAtomic(c.Report, 0o644, func(w io.Writer) error {
			simulator.WriteSummary(w, res)
			return nil
		})
		if err != nil {
			return err
		}
		logger.Info("Wrote report", "path", c.Report)
	}
	fmt.Printf("\nCompleted in %v\n", time.Since(start).Round(time.Millisecond))
	return nil
}
