package scene

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/fadegraph/pkg/errors"
	"github.com/matzehuels/fadegraph/pkg/graph"
)

// PlacementRadius is the start circle radius as a fraction of viewport width.
const PlacementRadius = 0.45

// Viewport is the drawing area nodes are placed in.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the middle of the viewport.
func (v Viewport) Center() r2.Vec {
	return r2.Vec{X: v.Width / 2, Y: v.Height / 2}
}

// Scene is a built graph: the node arena, the name lookup and the derived
// connectivity matrix. The zero value is an empty scene.
type Scene struct {
	nodes  []Node
	lookup map[string]int
	matrix [][]int
}

// Build creates a scene from definitions.
//
// Node i of the definition list starts at
// (w/2 + 0.45w*sin(2πi/n), h/2 + 0.45w*cos(2πi/n)) and targets its
// (x_pos, y_pos). The node is stored in the arena slot given by its id.
// Every failure carries code GRAPH_BUILD.
func Build(defs []graph.Definition, vp Viewport, baseSize float64) (*Scene, error) {
	n := len(defs)
	s := &Scene{
		nodes:  make([]Node, n),
		lookup: make(map[string]int, n),
	}

	seen := make([]bool, n)
	for _, d := range defs {
		if d.ID < 0 || d.ID >= n {
			return nil, errors.New(errors.ErrCodeGraphBuild, "node %q has id %d outside [0,%d)", d.Name, d.ID, n)
		}
		if seen[d.ID] {
			return nil, errors.New(errors.ErrCodeGraphBuild, "duplicate node id %d", d.ID)
		}
		seen[d.ID] = true

		if err := errors.ValidateNodeName(d.Name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeGraphBuild, err, "node %d", d.ID)
		}
		if _, dup := s.lookup[d.Name]; dup {
			return nil, errors.New(errors.ErrCodeGraphBuild, "duplicate node name %q", d.Name)
		}
		s.lookup[d.Name] = d.ID
	}

	center := vp.Center()
	for i, d := range defs {
		angle := 2 * math.Pi * float64(i) / float64(n)
		start := r2.Add(center, r2.Scale(PlacementRadius*vp.Width, r2.Vec{X: math.Sin(angle), Y: math.Cos(angle)}))

		node := newNode(d.ID, start, r2.Vec{X: d.XPos, Y: d.YPos})
		node.Name = d.Name
		node.Category = d.Category
		node.Content = d.Content
		node.IsBoss = bool(d.IsBoss)

		var err error
		if node.Children, err = s.resolve(d.Name, "child", d.Children); err != nil {
			return nil, err
		}
		if node.Parents, err = s.resolve(d.Name, "parent", d.Parents); err != nil {
			return nil, err
		}
		node.Resize(baseSize)
		s.nodes[d.ID] = node
	}

	s.matrix = make([][]int, n)
	for i := range s.nodes {
		s.matrix[i] = s.nodes[i].Children
	}
	return s, nil
}

func (s *Scene) resolve(owner, kind string, names []string) ([]int, error) {
	ids := make([]int, 0, len(names))
	for _, name := range names {
		id, ok := s.lookup[name]
		if !ok {
			return nil, errors.New(errors.ErrCodeGraphBuild, "node %q references unknown %s %q", owner, kind, name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Len returns the number of nodes.
func (s *Scene) Len() int { return len(s.nodes) }

// Node returns the node with the given id, or nil if the id is out of range.
// The pointer stays valid for the lifetime of the scene.
func (s *Scene) Node(id int) *Node {
	if id < 0 || id >= len(s.nodes) {
		return nil
	}
	return &s.nodes[id]
}

// Lookup returns the id of the named node.
func (s *Scene) Lookup(name string) (int, bool) {
	id, ok := s.lookup[name]
	return id, ok
}

// ConnectivityMatrix returns, for each node in id order, a copy of its child
// ids.
func (s *Scene) ConnectivityMatrix() [][]int {
	out := make([][]int, len(s.matrix))
	for i, row := range s.matrix {
		out[i] = slices.Clone(row)
		if out[i] == nil {
			out[i] = []int{}
		}
	}
	return out
}

// Line is one edge segment from a node to one of its children.
type Line struct {
	X1, Y1, X2, Y2 float64
}

// Lines enumerates every edge of the connectivity matrix at the current node
// positions.
func (s *Scene) Lines() []Line {
	var lines []Line
	for i, row := range s.matrix {
		from := s.nodes[i].Position
		for _, j := range row {
			to := s.nodes[j].Position
			lines = append(lines, Line{X1: from.X, Y1: from.Y, X2: to.X, Y2: to.Y})
		}
	}
	return lines
}

// EdgeCount returns the number of edges in the connectivity matrix.
func (s *Scene) EdgeCount() int {
	n := 0
	for _, row := range s.matrix {
		n += len(row)
	}
	return n
}

// AllInPosition reports whether every node is in position. An empty scene is
// trivially in position.
func (s *Scene) AllInPosition() bool {
	for i := range s.nodes {
		if !s.nodes[i].InPosition {
			return false
		}
	}
	return true
}

// Snapshot returns a deep copy of the nodes in id order.
func (s *Scene) Snapshot() []Node {
	out := make([]Node, len(s.nodes))
	for i, n := range s.nodes {
		n.Children = slices.Clone(n.Children)
		n.Parents = slices.Clone(n.Parents)
		out[i] = n
	}
	return out
}
