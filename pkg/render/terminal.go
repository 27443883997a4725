package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/fadegraph/pkg/engine"
	"github.com/matzehuels/fadegraph/pkg/scene"
)

// Glyphs used by the terminal canvas.
const (
	glyphEdge  = '·'
	glyphNode  = '●'
	glyphEmpty = ' '
)

type cell struct {
	r     rune
	color string // hex, empty for the default foreground
}

// Terminal draws frames onto a grid of character cells. Viewport coordinates
// are scaled to the grid independently per axis, so circles become ellipses
// when the grid and viewport aspect ratios differ.
//
// The zero value is not usable; create one with NewTerminal.
type Terminal struct {
	vp         scene.Viewport
	cols, rows int
	cells      []cell
}

// NewTerminal returns a canvas of cols x rows cells showing vp.
func NewTerminal(cols, rows int, vp scene.Viewport) *Terminal {
	t := &Terminal{vp: vp}
	t.Resize(cols, rows)
	return t
}

// Resize changes the grid size and clears it.
func (t *Terminal) Resize(cols, rows int) {
	t.cols, t.rows = max(cols, 1), max(rows, 1)
	t.cells = make([]cell, t.cols*t.rows)
	t.Clear()
}

// Size returns the grid size in cells.
func (t *Terminal) Size() (cols, rows int) { return t.cols, t.rows }

// Clear blanks every cell.
func (t *Terminal) Clear() {
	for i := range t.cells {
		t.cells[i] = cell{r: glyphEmpty}
	}
}

// DrawEdges rasterises each line with Bresenham's algorithm. Lines are clipped
// to the grid first, so only visible cells are walked. Cells already holding a
// node glyph are kept.
func (t *Terminal) DrawEdges(lines []engine.Line, c engine.Color) {
	hex := c.Hex()
	sx, sy := t.scale()
	for _, l := range lines {
		a, b, ok := clip(r2.Vec{X: l.X1 * sx, Y: l.Y1 * sy}, r2.Vec{X: l.X2 * sx, Y: l.Y2 * sy},
			float64(t.cols), float64(t.rows))
		if !ok {
			continue
		}
		x0, y0 := t.gridCell(a)
		x1, y1 := t.gridCell(b)
		t.line(x0, y0, x1, y1, hex)
	}
}

// clip cuts the segment a-b to the box [0, w] x [0, h] (Liang-Barsky). It
// reports false when nothing of the segment lies inside or an endpoint is
// not finite.
func clip(a, b r2.Vec, w, h float64) (r2.Vec, r2.Vec, bool) {
	for _, v := range []float64{a.X, a.Y, b.X, b.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return a, b, false
		}
	}
	d := r2.Sub(b, a)
	t0, t1 := 0.0, 1.0
	for _, pq := range [4][2]float64{{-d.X, a.X}, {d.X, w - a.X}, {-d.Y, a.Y}, {d.Y, h - a.Y}} {
		p, q := pq[0], pq[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return a, b, false
			}
			t0 = max(t0, r)
		} else {
			if r < t0 {
				return a, b, false
			}
			t1 = min(t1, r)
		}
	}
	return r2.Add(a, r2.Scale(t0, d)), r2.Add(a, r2.Scale(t1, d)), true
}

// gridCell maps a point already clipped to the grid box onto a cell.
func (t *Terminal) gridCell(p r2.Vec) (int, int) {
	return min(int(p.X), t.cols-1), min(int(p.Y), t.rows-1)
}

func (t *Terminal) line(x0, y0, x1, y1 int, hex string) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		if c := t.at(x0, y0); c != nil && c.r != glyphNode {
			*c = cell{r: glyphEdge, color: hex}
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// DrawNode fills the cells covered by the node's circle and writes its label
// on the row above.
func (t *Terminal) DrawNode(s engine.Sprite) {
	cx, cy := t.toCell(s.Position)
	sx, sy := t.scale()
	rx := max(s.Radius*sx, 0.5)
	ry := max(s.Radius*sy, 0.5)

	for y := int(math.Floor(float64(cy) - ry)); y <= int(math.Ceil(float64(cy)+ry)); y++ {
		for x := int(math.Floor(float64(cx) - rx)); x <= int(math.Ceil(float64(cx)+rx)); x++ {
			nx, ny := float64(x-cx)/rx, float64(y-cy)/ry
			if nx*nx+ny*ny > 1 {
				continue
			}
			if c := t.at(x, y); c != nil {
				*c = cell{r: glyphNode, color: s.Fill}
			}
		}
	}

	if s.Label != "" {
		row := cy - int(math.Ceil(ry)) - 1
		start := cx - len([]rune(s.Label))/2
		for i, r := range []rune(s.Label) {
			if c := t.at(start+i, row); c != nil {
				*c = cell{r: r}
			}
		}
	}
}

// ToViewport maps a cell to the viewport coordinate at its centre.
func (t *Terminal) ToViewport(col, row int) r2.Vec {
	sx, sy := t.scale()
	return r2.Vec{X: (float64(col) + 0.5) / sx, Y: (float64(row) + 0.5) / sy}
}

// Plain returns the grid without colours, one line per row.
func (t *Terminal) Plain() string {
	var b strings.Builder
	for y := 0; y < t.rows; y++ {
		for x := 0; x < t.cols; x++ {
			b.WriteRune(t.cells[y*t.cols+x].r)
		}
		if y < t.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// View returns the grid with every run of same-coloured cells styled by
// lipgloss.
func (t *Terminal) View() string {
	var b strings.Builder
	for y := 0; y < t.rows; y++ {
		row := t.cells[y*t.cols : (y+1)*t.cols]
		for i := 0; i < len(row); {
			j := i
			var run strings.Builder
			for j < len(row) && row[j].color == row[i].color {
				run.WriteRune(row[j].r)
				j++
			}
			if row[i].color == "" {
				b.WriteString(run.String())
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(row[i].color)).Render(run.String()))
			}
			i = j
		}
		if y < t.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (t *Terminal) scale() (sx, sy float64) {
	return float64(t.cols) / t.vp.Width, float64(t.rows) / t.vp.Height
}

// cellLimit bounds cell coordinates so far-off points stay representable.
const cellLimit = 1 << 30

func (t *Terminal) toCell(p r2.Vec) (int, int) {
	sx, sy := t.scale()
	return clampCell(p.X * sx), clampCell(p.Y * sy)
}

func clampCell(v float64) int {
	switch {
	case math.IsNaN(v):
		return -cellLimit
	case v < -cellLimit:
		return -cellLimit
	case v > cellLimit:
		return cellLimit
	}
	return int(math.Floor(v))
}

func (t *Terminal) at(x, y int) *cell {
	if x < 0 || y < 0 || x >= t.cols || y >= t.rows {
		return nil
	}
	return &t.cells[y*t.cols+x]
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
