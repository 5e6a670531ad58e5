package commands

import (
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/puggle/internal/config"
	"git.home.luguber.info/inful/puggle/internal/foundation"
)

var logLevels = foundation.NewNormalizer(map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}, slog.LevelInfo)

// Global carries state shared by all subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI is the root command with global flags.
type CLI struct {
	ConfigPath string           `short:"c" name:"config-path" help:"Configuration file path" default:"${config_path}" type:"path"`
	Verbose    bool             `short:"v" help:"Enable verbose logging"`
	Version    kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build  BuildCmd  `cmd:"" help:"Render the site into dest_dir"`
	Server ServerCmd `cmd:"" help:"Serve dest_dir and rebuild on changes"`
	Init   InitCmd   `cmd:"" help:"Write an example configuration file"`
}

// Vars are the kong interpolation variables the CLI definition uses.
func Vars(version string) kong.Vars {
	return kong.Vars{
		"version":     version,
		"config_path": config.DefaultPath,
	}
}

// AfterApply runs after flag parsing and installs the default logger.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	g.Logger = NewLogger(c.Verbose, os.Getenv)
	slog.SetDefault(g.Logger)
	return nil
}

// NewLogger builds the process logger. PUGGLE_LOG_LEVEL overrides the
// verbose flag and PUGGLE_LOG_FORMAT=json selects JSON output.
func NewLogger(verbose bool, getenv func(string) string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(verbose, getenv("PUGGLE_LOG_LEVEL"))}
	if strings.EqualFold(getenv("PUGGLE_LOG_FORMAT"), "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func parseLogLevel(verbose bool, env string) slog.Level {
	if level, ok := logLevels.Lookup(env); ok {
		return level
	}
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func logger(g *Global) *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}
