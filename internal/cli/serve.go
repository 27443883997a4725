package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fadegraph/pkg/config"
	"github.com/matzehuels/fadegraph/pkg/engine"
	"github.com/matzehuels/fadegraph/pkg/serve"
)

// serveOptions holds flags for the serve command.
type serveOptions struct {
	Addr           string
	FPS            int
	AllowedOrigins []string
	NoCache        bool
	Watch          bool
}

// serveCommand creates the HTTP host command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOptions{Watch: true}

	cmd := &cobra.Command{
		Use:   "serve [graph]",
		Short: "Serve the animation to browsers over HTTP and websockets",
		Long: `Run one engine and stream every frame to connected viewers over /ws.

Viewers send hover and drag input back on the same socket. GET /graph and
GET /nodes/{id} expose the current layout; POST /reload refetches the graph.`,
		Example: `  fadegraph serve skills.json --addr :8080
  fadegraph serve --config fadegraph.toml --allow-origin https://example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().IntVar(&opts.FPS, "fps", 0, "frames per second (default from config)")
	cmd.Flags().StringSliceVar(&opts.AllowedOrigins, "allow-origin", nil, "allowed websocket origins (default any)")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "disable the source cache")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "reload control values when the config file changes")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, args []string, opts serveOptions) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.Addr != "" {
		cfg.Serve.Addr = opts.Addr
	}
	if opts.FPS > 0 {
		cfg.Animation.FPS = opts.FPS
	}

	src, store, err := c.openSource(ctx, cfg, args, opts.NoCache)
	if err != nil {
		return err
	}
	defer store.Close()

	controls := config.NewControls(cfg.Controls)
	e, err := c.newEngine(cfg, controls)
	if err != nil {
		return err
	}

	// A failed first load leaves the engine gated; POST /reload can retry.
	if err := e.Load(ctx, src); err != nil {
		printWarning("Graph not loaded, waiting for POST /reload")
	}

	if opts.Watch && c.configPath != "" {
		w := config.NewWatcher(c.configPath, controls, c.Logger)
		go func() {
			if err := w.Run(ctx); err != nil {
				c.Logger.Error("config watcher stopped", "error", err)
			}
		}()
	}

	srv := serve.New(e, serve.Options{
		Source:         src,
		Logger:         c.Logger,
		AllowedOrigins: opts.AllowedOrigins,
	})

	printKeyValue("Listening", cfg.Serve.Addr)
	printKeyValue("Source", src.String())
	printNextStep("Stream frames", "ws://localhost"+portOf(cfg.Serve.Addr)+"/ws")

	ticker := engine.NewTicker(cfg.Animation.FPS)
	defer ticker.Stop()
	return srv.ListenAndServe(ctx, cfg.Serve.Addr, ticker)
}

// portOf returns the ":port" suffix of a listen address.
func portOf(addr string) string {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[i:]
		}
	}
	return ""
}
