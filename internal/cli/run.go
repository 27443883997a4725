package cli

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fadegraph/pkg/config"
)

// runOptions holds flags for the run command.
type runOptions struct {
	FPS     int
	LogFile string
	NoCache bool
	Watch   bool
}

// runCommand creates the interactive terminal animation command.
func (c *CLI) runCommand() *cobra.Command {
	opts := runOptions{Watch: true}

	cmd := &cobra.Command{
		Use:   "run [graph]",
		Short: "Animate a graph in the terminal",
		Long: `Animate a graph definition (JSON or YAML file, or http(s) URL) in the terminal.

Nodes can be dragged with the mouse. Hovering a node highlights its links.
When --config is given the file is watched and control values are applied live.`,
		Example: `  fadegraph run skills.json
  fadegraph run --config fadegraph.toml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAnimation(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().IntVar(&opts.FPS, "fps", 0, "frames per second (default from config)")
	cmd.Flags().StringVar(&opts.LogFile, "log-file", "", "write logs to this file while the animation runs")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "disable the source cache")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "reload control values when the config file changes")

	return cmd
}

func (c *CLI) runAnimation(ctx context.Context, args []string, opts runOptions) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.FPS > 0 {
		cfg.Animation.FPS = opts.FPS
	}

	src, store, err := c.openSource(ctx, cfg, args, opts.NoCache)
	if err != nil {
		return err
	}
	defer store.Close()

	// The alternate screen owns the terminal; logs go to --log-file or nowhere.
	var out io.Writer = io.Discard
	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	c.Logger.SetOutput(out)
	defer c.Logger.SetOutput(os.Stderr)

	controls := config.NewControls(cfg.Controls)
	e, err := c.newEngine(cfg, controls)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if opts.Watch && c.configPath != "" {
		w := config.NewWatcher(c.configPath, controls, c.Logger)
		go func() {
			if err := w.Run(ctx); err != nil {
				c.Logger.Error("config watcher stopped", "error", err)
			}
		}()
	}

	m := NewAnimationModel(ctx, e, controls, src, cfg.Animation.FPS)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}
