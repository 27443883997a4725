package engine

import (
	"github.com/matzehuels/fadegraph/pkg/fade"
	"github.com/matzehuels/fadegraph/pkg/scene"
)

// FrameStats summarises one tick.
type FrameStats struct {
	Frame     uint64
	Ran       bool // false when the tick was skipped because nothing is loaded
	Cleared   bool
	Moved     bool // nodes followed their targets this tick
	Phase     fade.Phase
	Intensity int
	Edges     int
	Nodes     int
}

// Tick runs one frame against r.
func (e *Engine) Tick(r Renderer) FrameStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, f := e.state.Begin()
	e.state = st
	if !f.Run {
		return FrameStats{Frame: e.frame, Phase: e.phase, Intensity: st.Intensity}
	}
	e.frame++

	if f.Clear {
		r.Clear()
	}

	lines := e.scene.Lines()
	r.DrawEdges(lines, Grey(st.Level()))

	move := st.AtPeak()
	for id := 0; id < e.scene.Len(); id++ {
		n := e.scene.Node(id)
		if move {
			n.Follow()
		}
		n.Resize(e.controls.NodeSize())
		n.ApplyForces(e.controls.Gravity(), e.controls.Rejection())
		r.DrawNode(e.sprite(n, e.palette.Color(n.Category), false))
	}
	e.drawHighlights(r)

	e.state = e.state.Settle(e.scene.AllInPosition())
	e.setPhase(e.state.Phase())

	stats := FrameStats{
		Frame:     e.frame,
		Ran:       true,
		Cleared:   f.Clear,
		Moved:     move,
		Phase:     e.phase,
		Intensity: e.state.Intensity,
		Edges:     len(lines),
		Nodes:     e.scene.Len(),
	}
	if fe, ok := r.(FrameEnder); ok {
		fe.EndFrame(stats)
	}
	return stats
}

// drawHighlights draws every hovered node, its children and parents in white
// with white lines from the hovered node to each of them.
func (e *Engine) drawHighlights(r Renderer) {
	for id := 0; id < e.scene.Len(); id++ {
		n := e.scene.Node(id)
		if !n.Hovered {
			continue
		}
		neighbors := e.scene.Neighbors(id)
		lines := make([]Line, 0, len(neighbors))
		for _, nid := range neighbors {
			m := e.scene.Node(nid)
			lines = append(lines, Line{X1: n.Position.X, Y1: n.Position.Y, X2: m.Position.X, Y2: m.Position.Y})
		}
		r.DrawEdges(lines, White)

		r.DrawNode(e.sprite(n, scene.HighlightColor, true))
		for _, nid := range neighbors {
			r.DrawNode(e.sprite(e.scene.Node(nid), scene.HighlightColor, true))
		}
	}
}

func (e *Engine) sprite(n *scene.Node, fill string, highlight bool) Sprite {
	s := Sprite{
		ID:        n.ID,
		Position:  n.Position,
		Radius:    n.Radius,
		Fill:      fill,
		Outline:   true,
		Highlight: highlight,
	}
	if n.ShowLabel() {
		s.Label = n.Name
	}
	return s
}
