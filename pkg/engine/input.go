package engine

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/fadegraph/pkg/errors"
)

// Hover updates hover flags for pointer position p and reports whether any
// node is under the pointer.
func (e *Engine) Hover(p r2.Vec) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	hovered := e.scene.Hover(p)
	e.state.GeneralHovered = hovered
	return hovered
}

// Leave clears hover state, for example when the pointer leaves the canvas.
func (e *Engine) Leave() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scene.ClearHover()
	e.state.GeneralHovered = false
}

// BeginDrag starts dragging the topmost node under p. It returns the node id,
// or -1 and false when p hits nothing. Any previous drag ends first.
func (e *Engine) BeginDrag(p r2.Vec) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.endDrag()
	id := e.scene.HitTest(p)
	if id < 0 {
		return -1, false
	}
	e.scene.Node(id).BeginDrag()
	return id, true
}

// DragTo moves the dragged node, if any, to p.
func (e *Engine) DragTo(p r2.Vec) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if id := e.scene.Dragged(); id >= 0 {
		e.scene.Node(id).DragTo(p)
	}
}

// EndDrag releases the dragged node. It eases back to its target once the
// fade reaches its peak again.
func (e *Engine) EndDrag() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.endDrag()
}

func (e *Engine) endDrag() {
	if id := e.scene.Dragged(); id >= 0 {
		e.scene.Node(id).EndDrag()
	}
}

// SetTarget moves a node's target. Unknown ids fail with NOT_FOUND.
func (e *Engine) SetTarget(id int, p r2.Vec) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := e.scene.Node(id)
	if n == nil {
		return errors.New(errors.ErrCodeNotFound, "node %d", id)
	}
	n.SetTarget(p)
	return nil
}
