package render

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/fadegraph/pkg/engine"
	"github.com/matzehuels/fadegraph/pkg/scene"
)

// SVG accumulates drawing operations since the last Clear into an SVG
// document.
type SVG struct {
	vp   scene.Viewport
	body bytes.Buffer
}

// NewSVG returns an empty SVG canvas of the viewport's size.
func NewSVG(vp scene.Viewport) *SVG {
	return &SVG{vp: vp}
}

// Clear drops everything drawn so far.
func (s *SVG) Clear() { s.body.Reset() }

// DrawEdges writes the lines as one group.
func (s *SVG) DrawEdges(lines []engine.Line, c engine.Color) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(&s.body, `  <g stroke="%s" stroke-opacity="%.2f" stroke-width="1">`+"\n", c.Hex(), c.A)
	for _, l := range lines {
		fmt.Fprintf(&s.body, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n", l.X1, l.Y1, l.X2, l.Y2)
	}
	s.body.WriteString("  </g>\n")
}

// DrawNode writes a circle and, if set, its label.
func (s *SVG) DrawNode(sp engine.Sprite) {
	stroke := "none"
	if sp.Outline {
		stroke = "black"
	}
	fmt.Fprintf(&s.body, `  <circle id="node-%d" cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="%s"/>`+"\n",
		sp.ID, sp.Position.X, sp.Position.Y, sp.Radius, sp.Fill, stroke)
	if sp.Label != "" {
		fmt.Fprintf(&s.body, `  <text x="%.2f" y="%.2f" text-anchor="middle" font-family="Arial" font-size="20" fill="black">%s</text>`+"\n",
			sp.Position.X, sp.Position.Y-sp.Radius, escapeXML(sp.Label))
	}
}

// Bytes returns the complete document.
func (s *SVG) Bytes() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		s.vp.Width, s.vp.Height, s.vp.Width, s.vp.Height)
	buf.Write(s.body.Bytes())
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
