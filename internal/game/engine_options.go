package game

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/lox/bjtrainer/internal/deck"
)

// DefaultBankroll is the starting bankroll when none is configured.
const DefaultBankroll = 1000

// EngineOption configures an Engine during creation.
type EngineOption func(*engineConfig)

type engineConfig struct {
	rules    Rules
	bankroll int
	shoe     *deck.Shoe // If provided, used instead of building one from rules
	logger   *log.Logger
	bus      EventBus
}

// WithRules sets the table rules. Default is DefaultRules().
func WithRules(r Rules) EngineOption {
	return func(c *engineConfig) {
		c.rules = r
	}
}

// WithBankroll sets the starting bankroll.
func WithBankroll(n int) EngineOption {
	return func(c *engineConfig) {
		c.bankroll = n
	}
}

// WithShoe supplies a prepared shoe, typically a stacked one for drills and
// tests. Rules.Decks and Rules.Penetration are ignored for it.
func WithShoe(s *deck.Shoe) EngineOption {
	return func(c *engineConfig) {
		c.shoe = s
	}
}

// WithLogger sets the logger. Default discards output.
func WithLogger(l *log.Logger) EngineOption {
	return func(c *engineConfig) {
		c.logger = l
	}
}

// WithEventBus publishes engine events on bus instead of a private one.
func WithEventBus(bus EventBus) EngineOption {
	return func(c *engineConfig) {
		c.bus = bus
	}
}

func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		rules:    DefaultRules(),
		bankroll: DefaultBankroll,
	}
}

func (c *engineConfig) finish() {
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	if c.bus == nil {
		c.bus = NewEventBus()
	}
}
