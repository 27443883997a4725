package render

import (
	"sync"

	"github.com/matzehuels/fadegraph/pkg/engine"
)

// Frame is one recorded tick.
type Frame struct {
	Seq       uint64      `json:"seq"`
	Phase     string      `json:"phase"`
	Intensity int         `json:"intensity"`
	Cleared   bool        `json:"cleared"`
	Edges     []EdgeBatch `json:"edges"`
	Nodes     []Circle    `json:"nodes"`
}

// EdgeBatch is a set of lines drawn in one colour.
type EdgeBatch struct {
	Color string       `json:"color"`
	Alpha float64      `json:"alpha"`
	Lines [][4]float64 `json:"lines"`
}

// Circle is a drawn node.
type Circle struct {
	ID        int     `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	R         float64 `json:"r"`
	Fill      string  `json:"fill"`
	Outline   bool    `json:"outline,omitempty"`
	Label     string  `json:"label,omitempty"`
	Highlight bool    `json:"highlight,omitempty"`
}

// Recorder captures frames. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	cur     Frame
	last    Frame
	onFrame func(Frame)
}

// NewRecorder returns a recorder that passes every finished frame to onFrame,
// which may be nil.
func NewRecorder(onFrame func(Frame)) *Recorder {
	return &Recorder{onFrame: onFrame}
}

// Clear marks the frame as cleared and drops anything drawn so far.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cur.Cleared = true
	r.cur.Edges = nil
	r.cur.Nodes = nil
}

// DrawEdges records a batch of lines.
func (r *Recorder) DrawEdges(lines []engine.Line, c engine.Color) {
	batch := EdgeBatch{Color: c.Hex(), Alpha: c.A, Lines: make([][4]float64, len(lines))}
	for i, l := range lines {
		batch.Lines[i] = [4]float64{l.X1, l.Y1, l.X2, l.Y2}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cur.Edges = append(r.cur.Edges, batch)
}

// DrawNode records a node.
func (r *Recorder) DrawNode(s engine.Sprite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cur.Nodes = append(r.cur.Nodes, Circle{
		ID:        s.ID,
		X:         s.Position.X,
		Y:         s.Position.Y,
		R:         s.Radius,
		Fill:      s.Fill,
		Outline:   s.Outline,
		Label:     s.Label,
		Highlight: s.Highlight,
	})
}

// EndFrame finishes the current frame and hands it to the callback.
func (r *Recorder) EndFrame(stats engine.FrameStats) {
	r.mu.Lock()
	f := r.cur
	f.Seq = stats.Frame
	f.Phase = stats.Phase.String()
	f.Intensity = stats.Intensity
	r.last = f
	r.cur = Frame{}
	cb := r.onFrame
	r.mu.Unlock()

	if cb != nil {
		cb(f)
	}
}

// Last returns the most recently finished frame.
func (r *Recorder) Last() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}
