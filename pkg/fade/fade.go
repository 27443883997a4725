// Package fade implements the global fade state machine that drives edge
// colour.
//
// The state is a plain value. Each frame the engine calls [State.Begin] before
// drawing and [State.Settle] after every node has moved:
//
//	st, frame := st.Begin()
//	if !frame.Run {
//	    return
//	}
//	if frame.Clear { r.Clear() }
//	... draw edges with st.Color(), move nodes iff st.AtPeak() ...
//	st = st.Settle(scene.AllInPosition())
//
// Intensity starts at [Low] and moves in steps of [Step]: up while lines are
// not done and below [High], down while lines are done and above [Low]. Since
// both bounds are multiples of the step away from the start value, intensity
// never leaves [Low, High].
package fade

// Intensity bounds and step.
const (
	Low  = 65
	High = 215
	Step = 10
)

// State is the process-wide animation state.
type State struct {
	AllLoaded             bool
	GeneralHovered        bool
	LinesDisappearDone    bool
	StartingAnimationDone bool
	Intensity             int
}

// New returns the initial state: not loaded, intensity Low.
func New() State {
	return State{Intensity: Low}
}

// Frame tells the caller what to do with the current tick.
type Frame struct {
	Run   bool // false: skip the whole tick
	Clear bool // clear the canvas before drawing
}

// Begin evaluates the gate and clear rules and steps the intensity.
func (s State) Begin() (State, Frame) {
	if !s.AllLoaded {
		return s, Frame{}
	}
	f := Frame{
		Run:   true,
		Clear: s.GeneralHovered || !s.StartingAnimationDone,
	}
	switch {
	case !s.LinesDisappearDone && s.Intensity < High:
		s.Intensity += Step
	case s.LinesDisappearDone && s.Intensity > Low:
		s.Intensity -= Step
	}
	return s, f
}

// Settle recomputes the completion flags after the node update.
// allInPosition is the AND over every node's InPosition for this tick.
func (s State) Settle(allInPosition bool) State {
	s.LinesDisappearDone = allInPosition
	s.StartingAnimationDone = s.LinesDisappearDone && s.Intensity <= Low
	return s
}

// Loaded marks the graph as built, enabling animation.
func (s State) Loaded() State {
	s.AllLoaded = true
	return s
}

// AtPeak reports whether intensity is at High, the only level at which nodes
// move.
func (s State) AtPeak() bool {
	return s.Intensity == High
}

// Level returns the intensity as a grey level in [0, 1].
func (s State) Level() float64 {
	return float64(s.Intensity) / 255
}
