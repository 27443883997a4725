package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fadegraph/pkg/engine"
	"github.com/matzehuels/fadegraph/pkg/errors"
	"github.com/matzehuels/fadegraph/pkg/fade"
	"github.com/matzehuels/fadegraph/pkg/graph"
	"github.com/matzehuels/fadegraph/pkg/render"
)

// Snapshot output formats.
const (
	formatSVG  = "svg"
	formatDOT  = "dot"
	formatPNG  = "png"
	formatText = "txt"
)

// defaultMaxFrames bounds the headless settle loop.
const defaultMaxFrames = 10000

// snapshotOptions holds flags for the snapshot command.
type snapshotOptions struct {
	Output    string
	Format    string
	MaxFrames int
	Graphviz  bool
	Labels    bool
	Cols      int
	Rows      int
	NoCache   bool
}

// snapshotCommand creates the headless render command.
func (c *CLI) snapshotCommand() *cobra.Command {
	var opts snapshotOptions

	cmd := &cobra.Command{
		Use:   "snapshot [graph]",
		Short: "Settle a graph headlessly and write the final frame",
		Long: `Run the animation without a display until every node has reached its target
and the edges have faded out, then write the final frame.

Formats: svg (default), dot, png (via Graphviz) and txt (terminal canvas).
The format is taken from --format or the output file extension.`,
		Example: `  fadegraph snapshot skills.json -o skills.svg
  fadegraph snapshot skills.json -o skills.png --labels
  fadegraph snapshot https://example.com/graph.yaml --format txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSnapshot(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "output format: svg, dot, png, txt")
	cmd.Flags().IntVar(&opts.MaxFrames, "max-frames", defaultMaxFrames, "give up settling after this many frames")
	cmd.Flags().BoolVar(&opts.Graphviz, "graphviz", false, "render svg through Graphviz instead of the built-in writer")
	cmd.Flags().BoolVar(&opts.Labels, "labels", false, "label every node (dot, png and Graphviz svg)")
	cmd.Flags().IntVar(&opts.Cols, "cols", 100, "canvas width in cells (txt)")
	cmd.Flags().IntVar(&opts.Rows, "rows", 40, "canvas height in cells (txt)")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "disable the source cache")

	return cmd
}

func (c *CLI) runSnapshot(ctx context.Context, args []string, opts snapshotOptions) error {
	format, err := snapshotFormat(opts.Format, opts.Output)
	if err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	src, store, err := c.openSource(ctx, cfg, args, opts.NoCache)
	if err != nil {
		return err
	}
	defer store.Close()

	e, err := c.newEngine(cfg, nil)
	if err != nil {
		return err
	}
	prog := newProgress(c.Logger)
	stats, ok, err := loadAndSettle(ctx, e, src, os.Stderr, opts.MaxFrames)
	if err != nil {
		return err
	}
	if !ok {
		c.Logger.Warn("graph did not settle, writing last frame", "frames", stats.Frame, "phase", stats.Phase)
	} else {
		prog.done(fmt.Sprintf("Settled after %d frames", stats.Frame))
	}

	data, err := renderSnapshot(e, format, opts)
	if err != nil {
		return err
	}

	if opts.Output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
		return err
	}
	snap := e.Snapshot()
	printSuccess("Snapshot written")
	printFile(opts.Output)
	printStats(len(snap.Nodes), countEdges(snap.Matrix), int(stats.Frame), c.cached())
	return nil
}

// loadAndSettle loads src into e and settles it headlessly while a spinner
// on w reports which step is running. It returns ctx's error when the run is
// interrupted.
func loadAndSettle(ctx context.Context, e *engine.Engine, src graph.Source, w io.Writer, maxFrames int) (engine.FrameStats, bool, error) {
	spinner := newSpinner(ctx, w, "Loading "+src.String()+"...")
	spinner.Start()
	defer spinner.Stop()

	if err := e.Load(ctx, src); err != nil {
		return engine.FrameStats{}, false, err
	}
	spinner.Update("Settling...")
	stats, ok := settle(ctx, e, maxFrames)
	if spinner.Cancelled() {
		return stats, false, ctx.Err()
	}
	return stats, ok, nil
}

// settle ticks e without drawing until the fade settles, ctx is done or
// maxFrames frames have run. It reports whether the graph settled.
func settle(ctx context.Context, e *engine.Engine, maxFrames int) (engine.FrameStats, bool) {
	var stats engine.FrameStats
	for i := 0; i < maxFrames; i++ {
		if ctx.Err() != nil {
			return stats, false
		}
		stats = e.Tick(engine.Discard)
		if !stats.Ran {
			return stats, false
		}
		if stats.Phase == fade.Settled {
			return stats, true
		}
	}
	return stats, false
}

// renderSnapshot draws the engine's current frame in format.
func renderSnapshot(e *engine.Engine, format string, opts snapshotOptions) ([]byte, error) {
	vp := e.Viewport()
	switch {
	case format == formatText:
		t := render.NewTerminal(opts.Cols, opts.Rows, vp)
		e.Tick(t)
		return []byte(t.Plain() + "\n"), nil

	case format == formatSVG && !opts.Graphviz:
		s := render.NewSVG(vp)
		e.Tick(s)
		return s.Bytes(), nil
	}

	dot := render.ToDOT(e.Snapshot(), render.DOTOptions{
		Palette: e.Palette(),
		Height:  vp.Height,
		Labels:  opts.Labels,
	})
	switch format {
	case formatDOT:
		return []byte(dot), nil
	case formatPNG:
		return render.RenderPNG(dot)
	default:
		return render.RenderSVG(dot)
	}
}

// snapshotFormat picks the format from the flag, then the output extension.
func snapshotFormat(flag, output string) (string, error) {
	f := strings.ToLower(flag)
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
	}
	switch f {
	case "":
		return formatSVG, nil
	case formatSVG, formatDOT, formatPNG, formatText:
		return f, nil
	case "gv":
		return formatDOT, nil
	case "text":
		return formatText, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported snapshot format %q", f)
}

func countEdges(matrix [][]int) int {
	n := 0
	for _, row := range matrix {
		n += len(row)
	}
	return n
}
