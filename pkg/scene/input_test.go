package scene

import (
	"reflect"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func placedScene(t *testing.T) *Scene {
	t.Helper()
	s, err := Build(threeNodes(), testViewport, 10)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i := 0; i < s.Len(); i++ {
		n := s.Node(i)
		n.Position = n.Target
	}
	return s
}

func TestContains(t *testing.T) {
	n := Node{Position: r2.Vec{X: 10, Y: 10}, Radius: 5}
	tests := []struct {
		p    r2.Vec
		want bool
	}{
		{r2.Vec{X: 10, Y: 10}, true},
		{r2.Vec{X: 15, Y: 10}, true},
		{r2.Vec{X: 13, Y: 14}, true},
		{r2.Vec{X: 14, Y: 14}, false},
		{r2.Vec{X: 0, Y: 0}, false},
	}
	for _, tt := range tests {
		if got := n.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestHover(t *testing.T) {
	s := placedScene(t)

	if !s.Hover(r2.Vec{X: 201, Y: 101}) {
		t.Fatal("pointer over B should hover")
	}
	if !s.Node(1).Hovered || s.Node(0).Hovered || s.Node(2).Hovered {
		t.Errorf("only B should be hovered")
	}

	if s.Hover(r2.Vec{X: 0, Y: 0}) {
		t.Error("empty space should not hover")
	}
	if s.Node(1).Hovered {
		t.Error("hover flag should clear when the pointer leaves")
	}

	s.Hover(r2.Vec{X: 400, Y: 300})
	s.ClearHover()
	if s.Node(0).Hovered {
		t.Error("ClearHover left a flag set")
	}
}

func TestHitTest(t *testing.T) {
	s := placedScene(t)
	if got := s.HitTest(r2.Vec{X: 600, Y: 100}); got != 2 {
		t.Errorf("HitTest over C = %d, want 2", got)
	}
	if got := s.HitTest(r2.Vec{X: -50, Y: -50}); got != -1 {
		t.Errorf("HitTest over nothing = %d, want -1", got)
	}

	// Overlapping nodes: the one drawn last wins.
	s.Node(2).Position = s.Node(1).Position
	if got := s.HitTest(s.Node(1).Position); got != 2 {
		t.Errorf("HitTest overlap = %d, want 2", got)
	}
}

func TestDraggedAndNeighbors(t *testing.T) {
	s := placedScene(t)
	if s.Dragged() != -1 {
		t.Fatal("nothing should be dragged")
	}
	s.Node(2).BeginDrag()
	if s.Dragged() != 2 {
		t.Errorf("Dragged() = %d, want 2", s.Dragged())
	}

	if got := s.Neighbors(0); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("Neighbors(0) = %v", got)
	}
	if got := s.Neighbors(1); !reflect.DeepEqual(got, []int{0}) {
		t.Errorf("Neighbors(1) = %v", got)
	}
	if s.Neighbors(9) != nil {
		t.Error("Neighbors of unknown id should be nil")
	}
}

func TestShowLabel(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want bool
	}{
		{"plain", Node{}, false},
		{"boss", Node{IsBoss: true}, true},
		{"hovered", Node{Hovered: true}, true},
		{"dragging", Node{Dragging: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.ShowLabel(); got != tt.want {
				t.Errorf("ShowLabel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPalette(t *testing.T) {
	p := DefaultPalette()
	if got := p.Color("Java"); got != "#ff0000" {
		t.Errorf("Java = %s", got)
	}
	if got := p.Color("Cobol"); got != FallbackColor {
		t.Errorf("unknown category = %s, want %s", got, FallbackColor)
	}

	merged, err := p.Merge(map[string]string{"Go": "#00ADD8", "Java": "#123456"})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.Color("Go") != "#00add8" || merged.Color("Java") != "#123456" {
		t.Errorf("merged = %v", merged)
	}
	if p.Color("Java") != "#ff0000" {
		t.Error("Merge mutated the receiver")
	}

	if _, err := p.Merge(map[string]string{"Go": "teal"}); err == nil {
		t.Error("Merge should reject non-hex colours")
	}
}
