package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/bjtrainer/internal/display"
	"github.com/lox/bjtrainer/internal/game"
	"github.com/lox/bjtrainer/internal/pacer"
	"github.com/lox/bjtrainer/internal/randutil"
	"github.com/lox/bjtrainer/internal/strategy"
)

type PlayCmd struct {
	Bankroll int           `default:"0" help:"Starting bankroll (0 uses the config)"`
	Seed     int64         `default:"0" help:"RNG seed (0 uses the config seed, then the clock)"`
	Delay    time.Duration `default:"-1ns" help:"Pause between dealer cards (negative uses the config)"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}

	seed := c.Seed
	if seed == 0 {
		seed = cfg.Session.Seed
	}
	rng, seed := randutil.FromSeedOrClock(seed)
	bankroll := cfg.Session.Bankroll
	if c.Bankroll > 0 {
		bankroll = c.Bankroll
	}
	delay := cfg.DealerDelay()
	if c.Delay >= 0 {
		delay = c.Delay
	}

	bus := game.NewEventBus()
	engine, err := game.NewEngine(rng,
		game.WithRules(cfg.GameRules()),
		game.WithBankroll(bankroll),
		game.WithLogger(logger),
		game.WithEventBus(bus))
	if err != nil {
		return err
	}
	logger.Debug("Session started", "seed", seed, "bankroll", bankroll, "rules", cfg.GameRules())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	t := &trainer{
		engine: engine,
		pacer:  pacer.New(quartz.NewReal(), delay, logger),
		render: display.New(os.Stdout, !g.NoColor),
		in:     bufio.NewScanner(os.Stdin),
		out:    os.Stdout,
		logger: logger,
	}
	bus.Subscribe(t)
	return t.run(ctx)
}

var errQuit = errors.New("quit")

// trainer is the line-based practice loop.
type trainer struct {
	engine *game.Engine
	pacer  *pacer.Pacer
	render *display.Renderer
	in     *bufio.Scanner
	out    io.Writer
	logger *log.Logger

	lastBet int
}

func (t *trainer) run(ctx context.Context) error {
	fmt.Fprintf(t.out, "Blackjack trainer. Bankroll %d. Commands: h hit, s stand, d double, p split, ? advice, q quit.\n",
		t.engine.Bankroll())

	for {
		err := t.round(ctx)
		switch {
		case errors.Is(err, errQuit), errors.Is(err, io.EOF), errors.Is(err, context.Canceled):
			t.summary()
			return nil
		case err != nil:
			return err
		}
		if t.engine.Bankroll() == 0 {
			fmt.Fprintln(t.out, "Bankroll exhausted.")
			t.summary()
			return nil
		}
	}
}

func (t *trainer) round(ctx context.Context) error {
	snap, err := t.bet()
	if err != nil {
		return err
	}
	fmt.Fprintln(t.out, t.render.Table(snap))

	for snap.Phase == game.PlayerTurn {
		if snap, err = t.decide(); err != nil {
			return err
		}
		if snap.Feedback != nil {
			fmt.Fprintln(t.out, t.render.Feedback(*snap.Feedback))
		}
		fmt.Fprintln(t.out, t.render.Table(snap))
	}

	_, err = t.pacer.Run(ctx, t.engine, func(s game.Snapshot) {
		fmt.Fprintln(t.out, t.render.Table(s))
	})
	if err != nil {
		return err
	}

	if t.engine.NeedsCountVerification() {
		if err := t.verifyCount(); err != nil {
			return err
		}
	}
	return nil
}

// OnEvent prints engine notices that do not come back in a snapshot.
func (t *trainer) OnEvent(event game.GameEvent) {
	switch ev := event.(type) {
	case game.ReshuffleEvent:
		t.logger.Debug("Shoe reshuffled", "round", ev.Round, "countBefore", ev.CountBefore)
		fmt.Fprintln(t.out, t.render.Reshuffle(ev.MidRound))
	case game.CountVerifiedEvent:
		t.logger.Debug("Count checked", "guess", ev.Guess, "correct", ev.Correct)
		fmt.Fprintln(t.out, t.render.CountResult(game.CountResult{Correct: ev.Correct, Actual: ev.Actual}))
	}
}

func (t *trainer) readLine(prompt string) (string, error) {
	fmt.Fprint(t.out, prompt)
	if !t.in.Scan() {
		if err := t.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	line := strings.TrimSpace(t.in.Text())
	if strings.EqualFold(line, "q") || strings.EqualFold(line, "quit") {
		return "", errQuit
	}
	return line, nil
}

// bet prompts until a round has been dealt.
func (t *trainer) bet() (game.Snapshot, error) {
	for {
		prompt := fmt.Sprintf("Bet (bankroll %d): ", t.engine.Bankroll())
		if t.lastBet > 0 {
			prompt = fmt.Sprintf("Bet (bankroll %d, enter for %d): ", t.engine.Bankroll(), t.lastBet)
		}
		line, err := t.readLine(prompt)
		if err != nil {
			return game.Snapshot{}, err
		}

		amount := t.lastBet
		if line != "" {
			if amount, err = strconv.Atoi(line); err != nil {
				fmt.Fprintln(t.out, t.render.Error(fmt.Errorf("not a number: %q", line)))
				continue
			}
		}

		snap, err := t.engine.StartRound(amount)
		if errors.Is(err, game.ErrInvalidBet) {
			fmt.Fprintln(t.out, t.render.Error(err))
			continue
		}
		if err != nil {
			return game.Snapshot{}, err
		}
		t.lastBet = amount
		return snap, nil
	}
}

// decide prompts until an action is accepted.
func (t *trainer) decide() (game.Snapshot, error) {
	for {
		line, err := t.readLine("Action [h/s/d/p/?]: ")
		if err != nil {
			return game.Snapshot{}, err
		}
		if line == "?" {
			if err := t.hint(); err != nil {
				return game.Snapshot{}, err
			}
			continue
		}

		action, err := strategy.ParseAction(line)
		if err != nil {
			fmt.Fprintln(t.out, t.render.Error(err))
			continue
		}
		snap, err := t.engine.Apply(action)
		if errors.Is(err, game.ErrIllegalAction) {
			fmt.Fprintln(t.out, t.render.Error(err))
			continue
		}
		return snap, err
	}
}

// hint prints the recommended action and the chart row it comes from.
func (t *trainer) hint() error {
	advice, err := t.engine.Advice()
	if err != nil {
		return err
	}
	snap := t.engine.Snapshot()
	h := snap.Hands[snap.ActiveHand]
	section, value := strategy.Classify(h.Cards, strategy.Allowed{Double: h.CanDouble, Split: h.CanSplit})
	fmt.Fprintf(t.out, "Basic strategy says: %s (%s %d against %s)\n", advice, section, value, snap.Dealer.Cards[0])
	return nil
}

func (t *trainer) verifyCount() error {
	for {
		line, err := t.readLine("Count check! What is the running count? ")
		if err != nil {
			return err
		}
		guess, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintln(t.out, t.render.Error(fmt.Errorf("not a number: %q", line)))
			continue
		}
		_, err = t.engine.SubmitCountGuess(guess)
		return err
	}
}

func (t *trainer) summary() {
	st := t.engine.Stats()
	fmt.Fprintf(t.out, "\nRounds: %d  Decisions: %d/%d correct  Count checks: %d/%d correct  Bankroll: %d\n",
		st.Rounds, st.CorrectDecisions, st.Decisions, st.CorrectCounts, st.CountChecks, t.engine.Bankroll())
}
