package fade

// Phase names the flag combination of a [State].
type Phase int

const (
	// Loading: the graph is not built yet; ticks are skipped.
	Loading Phase = iota
	// FadingIn: edges brighten toward High while nodes are still moving.
	FadingIn
	// Holding: intensity is at High and nodes follow their targets.
	Holding
	// FadingOut: every node arrived and edges darken toward Low.
	FadingOut
	// Settled: nodes arrived and intensity is back at Low.
	Settled
)

var phaseNames = [...]string{"loading", "fading-in", "holding", "fading-out", "settled"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Phase derives the current phase from the flags.
func (s State) Phase() Phase {
	switch {
	case !s.AllLoaded:
		return Loading
	case s.StartingAnimationDone:
		return Settled
	case s.LinesDisappearDone:
		return FadingOut
	case s.Intensity >= High:
		return Holding
	default:
		return FadingIn
	}
}
