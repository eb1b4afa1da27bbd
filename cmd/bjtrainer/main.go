package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lox/bjtrainer/internal/config"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command
type Globals struct {
	Config  string `short:"c" default:"bjtrainer.hcl" help:"HCL configuration file"`
	Verbose bool   `short:"V" help:"Debug logging"`
	NoColor bool   `help:"Disable colored output"`
}

// load reads the configuration and builds the logger it asks for.
func (g *Globals) load() (*config.Config, *log.Logger, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level := cfg.LogLevel()
	if g.Verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: g.Verbose,
	})
	return cfg, logger, nil
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"1" help:"Practice basic strategy and counting"`
	Simulate SimulateCmd      `cmd:"" help:"Run headless sessions with perfect play"`
	Chart    ChartCmd         `cmd:"" help:"Print the basic strategy chart"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("bjtrainer"),
		kong.Description("Blackjack basic strategy and Hi-Lo counting trainer"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
