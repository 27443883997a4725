package scene

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/fadegraph/pkg/errors"
)

// Motion constants.
const (
	// SnapDistance is the distance at which a node snaps onto its target.
	SnapDistance = 8.0

	// InitialVelocity is the per-axis step of a freshly built node.
	InitialVelocity = 0.1

	// VelocityStep is added to both velocity axes after every motion step.
	VelocityStep = 0.05

	// MaxVelocity stops velocity growth once reached.
	MaxVelocity = 8.0
)

// Follow advances the node one step toward its target.
//
// Far from the target the node moves by its velocity along the
// Manhattan-weighted direction. Within SnapDistance it is placed exactly on the
// target and marked in position. A dragged node is left alone, velocity
// included.
func (n *Node) Follow() {
	if n.Dragging {
		return
	}

	dist := r2.Norm(r2.Sub(n.Target, n.Position))
	switch {
	case dist > SnapDistance:
		next, err := step(n.Position, n.Target, n.Velocity)
		if errors.Is(err, errors.ErrCodeDegenerateMotion) {
			// No defined direction: treat as arrived without moving.
			n.InPosition = true
			break
		}
		n.Position = next
	case dist <= SnapDistance:
		n.Position = n.Target
		n.InPosition = true
	default:
		// NaN distance.
		n.InPosition = true
	}

	if n.Velocity.X < MaxVelocity {
		n.Velocity = r2.Add(n.Velocity, r2.Vec{X: VelocityStep, Y: VelocityStep})
	}
}

// step returns pos moved by vel along the Manhattan-weighted direction to
// target. It fails with DEGENERATE_MOTION when the direction is undefined.
func step(pos, target, vel r2.Vec) (r2.Vec, error) {
	d := r2.Sub(target, pos)
	manhattan := math.Abs(d.X) + math.Abs(d.Y)
	if manhattan == 0 || math.IsNaN(manhattan) || math.IsInf(manhattan, 0) {
		return pos, errors.New(errors.ErrCodeDegenerateMotion, "no direction from %v to %v", pos, target)
	}

	next := r2.Vec{
		X: pos.X + vel.X*d.X/manhattan,
		Y: pos.Y + vel.Y*d.Y/manhattan,
	}
	if !finite(next) {
		return pos, errors.New(errors.ErrCodeDegenerateMotion, "non-finite step from %v to %v", pos, target)
	}
	return next, nil
}

func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}
