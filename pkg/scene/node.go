package scene

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Node is one animated vertex of a scene.
//
// Children and Parents hold ids into the owning [Scene]'s arena. A node never
// holds pointers to other nodes.
type Node struct {
	ID       int
	Name     string
	Category string
	Content  string
	IsBoss   bool

	Position r2.Vec // current position, moved by Follow or by dragging
	Target   r2.Vec // position the node eases toward
	Velocity r2.Vec // per-axis step size; only ever grows

	Radius     float64
	Attraction float64
	Rejection  float64

	Children []int
	Parents  []int

	Dragging   bool
	Hovered    bool
	InPosition bool
}

// newNode returns a node at start with the initial velocity.
func newNode(id int, start, target r2.Vec) Node {
	return Node{
		ID:       id,
		Position: start,
		Target:   target,
		Velocity: r2.Vec{X: InitialVelocity, Y: InitialVelocity},
	}
}

// Resize recomputes the radius from the base node size and the number of
// child links: base * (10 + children) / 10.
func (n *Node) Resize(base float64) {
	n.Radius = base * float64(10+len(n.Children)) / 10
}

// ApplyForces recomputes the attraction and rejection strengths from the
// current gravity and rejection controls. A non-positive gravity leaves the
// previous values in place.
func (n *Node) ApplyForces(gravity, rejection float64) {
	if gravity <= 0 {
		return
	}
	n.Attraction = 800 / gravity
	n.Rejection = rejection / 100 * n.Attraction
}

// ShowLabel reports whether the node's name is drawn.
func (n *Node) ShowLabel() bool {
	return n.Hovered || n.Dragging || n.IsBoss
}

// Contains reports whether p lies inside the node's circle (boundary included).
func (n *Node) Contains(p r2.Vec) bool {
	d := r2.Sub(p, n.Position)
	return r2.Dot(d, d) <= n.Radius*n.Radius
}

// SetTarget moves the node's target. The node is no longer in position.
func (n *Node) SetTarget(p r2.Vec) {
	n.Target = p
	n.InPosition = false
}

// BeginDrag hands position control to the caller until EndDrag.
func (n *Node) BeginDrag() {
	n.Dragging = true
	n.InPosition = false
}

// DragTo moves a dragged node directly. It is a no-op when the node is not
// being dragged.
func (n *Node) DragTo(p r2.Vec) {
	if n.Dragging {
		n.Position = p
	}
}

// EndDrag returns the node to Follow, which eases it back to its target.
func (n *Node) EndDrag() {
	n.Dragging = false
}
