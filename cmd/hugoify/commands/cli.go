// Package commands implements the hugoify command line.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/hugoify/internal/config"
	"git.home.luguber.info/inful/hugoify/internal/observability"
)

// Global is shared state handed to every command.
type Global struct {
	Out    io.Writer
	Logger *slog.Logger
}

// CLI is the root command and its global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path (optional)" type:"path"`
	Verbose   bool             `short:"v" help:"Enable debug logging and detailed errors"`
	LogLevel  string           `name:"log-level" help:"Log level (debug|info|warn|error)"`
	LogFormat string           `name:"log-format" help:"Log format (text|json|pretty)"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" default:"withargs" help:"Convert every XML file in the input directory"`
	Watch   WatchCmd   `cmd:"" help:"Rebuild when the input directory changes"`
	History HistoryCmd `cmd:"" help:"List recent runs from the history database"`
}

// Load resolves the configuration, applies the global flags and installs the
// logger described by the result.
func (c *CLI) Load(g *Global) (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if c.LogLevel != "" {
		cfg.LogLevel = config.LogLevel(c.LogLevel)
	}
	if c.LogFormat != "" {
		cfg.LogFormat = config.LogFormat(c.LogFormat)
	}
	if c.Verbose {
		cfg.LogLevel = config.LogLevelDebug
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}

	g.Logger = slog.New(observability.NewHandler(os.Stderr, string(cfg.LogFormat), cfg.LogLevel.Slog()))
	slog.SetDefault(g.Logger)
	if g.Out == nil {
		g.Out = os.Stdout
	}
	return cfg, nil
}
