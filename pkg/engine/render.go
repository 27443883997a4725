package engine

import (
	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/fadegraph/pkg/scene"
)

// Renderer draws frames. The engine never touches a drawing API directly.
type Renderer interface {
	// Clear wipes the canvas.
	Clear()
	// DrawEdges draws every line in one colour.
	DrawEdges(lines []Line, c Color)
	// DrawNode draws one node.
	DrawNode(s Sprite)
}

// FrameEnder is implemented by renderers that publish whole frames. EndFrame
// is called after every tick that ran.
type FrameEnder interface {
	EndFrame(stats FrameStats)
}

// Line is an edge segment (x1, y1, x2, y2).
type Line = scene.Line

// Color is an RGBA colour with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// Grey returns an opaque grey of the given level.
func Grey(level float64) Color {
	return Color{R: level, G: level, B: level, A: 1}
}

// White is used for hover highlights.
var White = Color{R: 1, G: 1, B: 1, A: 1}

// Hex returns the colour as #rrggbb, ignoring alpha.
func (c Color) Hex() string {
	return colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped().Hex()
}

// Sprite is everything a renderer needs to draw one node.
type Sprite struct {
	ID        int
	Position  r2.Vec
	Radius    float64
	Fill      string // hex colour
	Outline   bool
	Label     string // empty when the label is hidden
	Highlight bool   // drawn as part of a hover highlight
}

// Controls supplies the live control values. Each value is read once per node
// per tick, so implementations must be safe for concurrent use.
type Controls interface {
	Gravity() float64
	Rejection() float64
	NodeSize() float64
}

// Default control values.
const (
	DefaultGravity   = 50.0
	DefaultRejection = 50.0
	DefaultNodeSize  = 10.0
)

// StaticControls is a fixed set of control values.
type StaticControls struct {
	G, R, Size float64
}

// DefaultControls returns StaticControls with the default values.
func DefaultControls() StaticControls {
	return StaticControls{G: DefaultGravity, R: DefaultRejection, Size: DefaultNodeSize}
}

func (c StaticControls) Gravity() float64   { return c.G }
func (c StaticControls) Rejection() float64 { return c.R }
func (c StaticControls) NodeSize() float64  { return c.Size }

// Discard is a Renderer that draws nothing.
var Discard Renderer = discard{}

type discard struct{}

func (discard) Clear()                  {}
func (discard) DrawEdges([]Line, Color) {}
func (discard) DrawNode(Sprite)         {}
