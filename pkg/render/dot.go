package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/fadegraph/pkg/engine"
	"github.com/matzehuels/fadegraph/pkg/fade"
	"github.com/matzehuels/fadegraph/pkg/scene"
)

// pointsPerInch converts viewport units (treated as points) to Graphviz inches.
const pointsPerInch = 72.0

// DOTOptions configures ToDOT.
type DOTOptions struct {
	// Palette resolves node fills. Nil uses scene.DefaultPalette.
	Palette scene.Palette
	// Height flips the y axis, since Graphviz grows upward. Zero leaves y as is.
	Height float64
	// Labels shows every node name instead of only the labelled ones.
	Labels bool
}

// ToDOT writes a snapshot as an undirected Graphviz graph with every node
// pinned at its current position. Edges use the snapshot's fade grey.
func ToDOT(snap engine.Snapshot, opts DOTOptions) string {
	palette := opts.Palette
	if palette == nil {
		palette = scene.DefaultPalette()
	}
	intensity := snap.State.Intensity
	if intensity == 0 {
		intensity = fade.Low
	}
	edge := engine.Grey(float64(intensity) / 255).Hex()

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, fontname=\"Arial\", fontsize=10];\n")
	fmt.Fprintf(&buf, "  edge [color=%q];\n", edge)
	buf.WriteString("\n")

	for _, n := range snap.Nodes {
		y := n.Position.Y
		if opts.Height > 0 {
			y = opts.Height - y
		}
		label := ""
		if opts.Labels || n.ShowLabel() {
			label = n.Name
		}
		fmt.Fprintf(&buf, "  %q [pos=\"%.2f,%.2f!\", width=%.3f, fillcolor=%q, label=%q];\n",
			n.Name, n.Position.X, y, 2*n.Radius/pointsPerInch, palette.Color(n.Category), label)
	}

	buf.WriteString("\n")
	for i, row := range snap.Matrix {
		for _, j := range row {
			fmt.Fprintf(&buf, "  %q -- %q;\n", snap.Nodes[i].Name, snap.Nodes[j].Name)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG lays out a DOT graph with neato, honouring pinned positions, and
// returns SVG bytes.
func RenderSVG(dot string) ([]byte, error) {
	return renderDOT(dot, graphviz.SVG)
}

// RenderPNG lays out a DOT graph with neato and returns PNG bytes.
func RenderPNG(dot string) ([]byte, error) {
	return renderDOT(dot, graphviz.PNG)
}

func renderDOT(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}
