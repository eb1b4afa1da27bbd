// Package config loads trainer settings from HCL files.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/bjtrainer/internal/game"
)

// Config represents the complete trainer configuration
type Config struct {
	Rules   RulesSettings
	Session SessionSettings
	Log     LogSettings
}

// file mirrors Config with optional blocks for decoding.
type file struct {
	Rules   *RulesSettings   `hcl:"rules,block"`
	Session *SessionSettings `hcl:"session,block"`
	Log     *LogSettings     `hcl:"log,block"`
}

// RulesSettings contains the table rules
type RulesSettings struct {
	Decks            int     `hcl:"decks,optional"`
	Penetration      float64 `hcl:"penetration,optional"`
	PayoutNum        int     `hcl:"blackjack_payout_num,optional"`
	PayoutDen        int     `hcl:"blackjack_payout_den,optional"`
	DoubleAfterSplit *bool   `hcl:"double_after_split,optional"`
	MaxHands         int     `hcl:"max_hands,optional"`
}

// SessionSettings contains per-session settings
type SessionSettings struct {
	Bankroll int   `hcl:"bankroll,optional"`
	Seed     int64 `hcl:"seed,optional"`
	// DealerDelayMS is the pause between dealer cards in interactive play
	DealerDelayMS int `hcl:"dealer_delay_ms,optional"`
}

// LogSettings contains logging settings
type LogSettings struct {
	Level string `hcl:"level,optional"`
}

// Default returns the default trainer configuration
func Default() *Config {
	rules := game.DefaultRules()
	das := rules.DoubleAfterSplit
	return &Config{
		Rules: RulesSettings{
			Decks:            rules.Decks,
			Penetration:      rules.Penetration,
			PayoutNum:        rules.BlackjackPayout.Num,
			PayoutDen:        rules.BlackjackPayout.Den,
			DoubleAfterSplit: &das,
			MaxHands:         rules.MaxHands,
		},
		Session: SessionSettings{
			Bankroll:      game.DefaultBankroll,
			DealerDelayMS: 600,
		},
		Log: LogSettings{
			Level: "warn",
		},
	}
}

// Load reads configuration from an HCL file. A missing file yields the
// defaults, and values absent from the file keep their defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: failed to parse HCL file: %s", diags.Error())
	}
	return decode(f.Body)
}

// Parse reads configuration from HCL source.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: failed to parse HCL: %s", diags.Error())
	}
	return decode(f.Body)
}

func decode(body hcl.Body) (*Config, error) {
	var raw file
	if diags := gohcl.DecodeBody(body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("config: failed to decode HCL: %s", diags.Error())
	}

	config := Default()
	if r := raw.Rules; r != nil {
		if r.Decks != 0 {
			config.Rules.Decks = r.Decks
		}
		if r.Penetration != 0 {
			config.Rules.Penetration = r.Penetration
		}
		if r.PayoutNum != 0 {
			config.Rules.PayoutNum = r.PayoutNum
		}
		if r.PayoutDen != 0 {
			config.Rules.PayoutDen = r.PayoutDen
		}
		if r.DoubleAfterSplit != nil {
			config.Rules.DoubleAfterSplit = r.DoubleAfterSplit
		}
		if r.MaxHands != 0 {
			config.Rules.MaxHands = r.MaxHands
		}
	}
	if s := raw.Session; s != nil {
		if s.Bankroll != 0 {
			config.Session.Bankroll = s.Bankroll
		}
		config.Session.Seed = s.Seed
		if s.DealerDelayMS != 0 {
			config.Session.DealerDelayMS = s.DealerDelayMS
		}
	}
	if l := raw.Log; l != nil && l.Level != "" {
		config.Log.Level = l.Level
	}
	return config, nil
}

// Validate validates the trainer configuration
func (c *Config) Validate() error {
	if err := c.GameRules().Validate(); err != nil {
		return err
	}
	if c.Session.Bankroll <= 0 {
		return fmt.Errorf("config: bankroll must be positive")
	}
	if c.Session.DealerDelayMS < 0 {
		return fmt.Errorf("config: dealer delay cannot be negative")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: invalid log level: %s", c.Log.Level)
	}
	return nil
}

// GameRules converts the rules block to engine rules
func (c *Config) GameRules() game.Rules {
	das := true
	if c.Rules.DoubleAfterSplit != nil {
		das = *c.Rules.DoubleAfterSplit
	}
	return game.Rules{
		Decks:            c.Rules.Decks,
		Penetration:      c.Rules.Penetration,
		BlackjackPayout:  game.Payout{Num: c.Rules.PayoutNum, Den: c.Rules.PayoutDen},
		DoubleAfterSplit: das,
		MaxHands:         c.Rules.MaxHands,
	}
}

// LogLevel returns the configured log level
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(strings.ToLower(c.Log.Level))
	if err != nil {
		return log.WarnLevel
	}
	return level
}

// DealerDelay returns the pause between dealer cards
func (c *Config) DealerDelay() time.Duration {
	return time.Duration(c.Session.DealerDelayMS) * time.Millisecond
}
