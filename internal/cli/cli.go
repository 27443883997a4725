// Package cli implements the fadegraph command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fadegraph/pkg/buildinfo"
	"github.com/matzehuels/fadegraph/pkg/cache"
	"github.com/matzehuels/fadegraph/pkg/config"
	"github.com/matzehuels/fadegraph/pkg/engine"
	"github.com/matzehuels/fadegraph/pkg/errors"
	"github.com/matzehuels/fadegraph/pkg/graph"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "fadegraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	hooks      *cliHooks
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Fadegraph animates node-link graphs",
		Long: `Fadegraph lays out a graph of named nodes, eases every node toward its
target position and fades the edges in and out while the layout settles.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.installHooks()
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "TOML configuration file")

	root.AddCommand(c.runCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared Setup
// =============================================================================

// loadConfig reads --config, or the defaults when it is not set.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(c.configPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("config loaded", "path", c.configPath, "cache", cfg.Cache.Backend)
	return cfg, nil
}

// openSource resolves the graph location from the argument or [source] and
// opens it with the configured cache. The returned cache must be closed.
func (c *CLI) openSource(ctx context.Context, cfg *config.Config, args []string, noCache bool) (graph.Source, cache.Cache, error) {
	location := cfg.Source.Location
	if len(args) > 0 {
		location = args[0]
	}
	if location == "" {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "no graph given: pass a file or URL, or set [source] location")
	}

	var store cache.Cache = cache.NewNullCache()
	if !noCache {
		opened, err := cache.Open(ctx, cfg.CacheOptions())
		if err != nil {
			c.Logger.Warn("cache unavailable, continuing without it", "backend", cfg.Cache.Backend, "error", err)
		} else {
			store = opened
		}
	}

	src, err := graph.Open(location, store, c.Logger)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	if hs, ok := src.(*graph.HTTPSource); ok {
		hs.TTL = cfg.Source.TTL
		hs.Attempts = cfg.Source.Attempts
	}
	return src, store, nil
}

// newEngine creates an engine for cfg reading the given controls. Nil
// controls are fixed at the configured values.
func (c *CLI) newEngine(cfg *config.Config, controls *config.Controls) (*engine.Engine, error) {
	if controls == nil {
		controls = config.NewControls(cfg.Controls)
	}
	palette, err := cfg.PaletteWithOverrides()
	if err != nil {
		return nil, fmt.Errorf("palette: %w", err)
	}
	return engine.New(engine.Options{
		Viewport: cfg.ViewportSize(),
		Controls: controls,
		Palette:  palette,
		Logger:   c.Logger,
	}), nil
}
