package scene

import "gonum.org/v1/gonum/spatial/r2"

// HitTest returns the id of the topmost node containing p, or -1.
// Nodes are drawn in id order, so the highest matching id wins.
func (s *Scene) HitTest(p r2.Vec) int {
	for i := len(s.nodes) - 1; i >= 0; i-- {
		if s.nodes[i].Contains(p) {
			return i
		}
	}
	return -1
}

// Hover updates every node's Hovered flag for pointer position p and reports
// whether any node is hovered.
func (s *Scene) Hover(p r2.Vec) bool {
	hovered := false
	for i := range s.nodes {
		n := &s.nodes[i]
		n.Hovered = n.Contains(p)
		hovered = hovered || n.Hovered
	}
	return hovered
}

// ClearHover resets every Hovered flag.
func (s *Scene) ClearHover() {
	for i := range s.nodes {
		s.nodes[i].Hovered = false
	}
}

// Dragged returns the id of the node being dragged, or -1.
func (s *Scene) Dragged() int {
	for i := range s.nodes {
		if s.nodes[i].Dragging {
			return i
		}
	}
	return -1
}

// Neighbors returns the child and parent ids of node id, children first.
func (s *Scene) Neighbors(id int) []int {
	n := s.Node(id)
	if n == nil {
		return nil
	}
	out := make([]int, 0, len(n.Children)+len(n.Parents))
	out = append(out, n.Children...)
	return append(out, n.Parents...)
}
