package engine

import (
	"context"
	"errors"
	"math"
	"os"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"

	fgerrors "github.com/matzehuels/fadegraph/pkg/errors"
	"github.com/matzehuels/fadegraph/pkg/fade"
	"github.com/matzehuels/fadegraph/pkg/graph"
	"github.com/matzehuels/fadegraph/pkg/scene"
)

// recorder counts draw calls per tick.
type recorder struct {
	clears    int
	edgeCalls []edgeCall
	sprites   []Sprite
	ended     []FrameStats
}

type edgeCall struct {
	lines []Line
	color Color
}

func (r *recorder) Clear() { r.clears++ }
func (r *recorder) DrawEdges(lines []Line, c Color) {
	r.edgeCalls = append(r.edgeCalls, edgeCall{lines: lines, color: c})
}
func (r *recorder) DrawNode(s Sprite)         { r.sprites = append(r.sprites, s) }
func (r *recorder) EndFrame(stats FrameStats) { r.ended = append(r.ended, stats) }
func (r *recorder) reset()                    { *r = recorder{} }

func quietLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{Level: log.FatalLevel})
}

func testDefs() []graph.Definition {
	return []graph.Definition{
		{ID: 0, Name: "Go", Category: "Python", IsBoss: true, XPos: 400, YPos: 300, Children: []string{"Docker", "SQL"}},
		{ID: 1, Name: "Docker", Category: "Docker", XPos: 200, YPos: 200, Parents: []string{"Go"}},
		{ID: 2, Name: "SQL", Category: "Nope", XPos: 600, YPos: 200, Parents: []string{"Go"}},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(Options{
		Viewport: scene.Viewport{Width: 800, Height: 600},
		Logger:   quietLogger(),
	})
	if err := e.SetDefinitions(testDefs()); err != nil {
		t.Fatalf("SetDefinitions: %v", err)
	}
	return e
}

func TestTickGatedUntilLoaded(t *testing.T) {
	e := New(Options{Logger: quietLogger()})
	var r recorder
	stats := e.Tick(&r)
	if stats.Ran {
		t.Error("tick ran before load")
	}
	if r.clears != 0 || len(r.edgeCalls) != 0 || len(r.sprites) != 0 || len(r.ended) != 0 {
		t.Errorf("renderer used before load: %+v", r)
	}
	if e.State().Intensity != fade.Low {
		t.Errorf("intensity moved before load: %d", e.State().Intensity)
	}
}

func TestTickDrawsFrame(t *testing.T) {
	e := newTestEngine(t)
	var r recorder
	stats := e.Tick(&r)

	if !stats.Ran || stats.Frame != 1 || stats.Nodes != 3 || stats.Edges != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	if r.clears != 1 {
		t.Errorf("clears = %d, want 1 during the starting animation", r.clears)
	}
	if len(r.edgeCalls) != 1 || len(r.edgeCalls[0].lines) != 2 {
		t.Fatalf("edge calls = %+v", r.edgeCalls)
	}
	if want := Grey(75.0 / 255); r.edgeCalls[0].color != want {
		t.Errorf("edge colour = %+v, want %+v", r.edgeCalls[0].color, want)
	}
	if len(r.sprites) != 3 {
		t.Fatalf("drew %d nodes, want 3", len(r.sprites))
	}

	root := r.sprites[0]
	if root.Fill != "#0000ff" || root.Label != "Go" || root.Radius != 12 {
		t.Errorf("root sprite = %+v", root)
	}
	if r.sprites[1].Label != "" {
		t.Error("non-boss node should have no label")
	}
	if r.sprites[2].Fill != scene.FallbackColor {
		t.Errorf("unknown category fill = %s", r.sprites[2].Fill)
	}
	if len(r.ended) != 1 || r.ended[0] != stats {
		t.Errorf("EndFrame = %+v", r.ended)
	}
}

func TestNodesMoveOnlyAtPeak(t *testing.T) {
	e := newTestEngine(t)
	start, _ := e.Node(0)

	var r recorder
	// 65 -> 205 takes 14 ticks; nodes stay put.
	for i := 0; i < 14; i++ {
		if stats := e.Tick(&r); stats.Moved {
			t.Fatalf("tick %d moved nodes at intensity %d", i, stats.Intensity)
		}
	}
	if n, _ := e.Node(0); n.Position != start.Position {
		t.Fatal("node moved before the fade peaked")
	}

	stats := e.Tick(&r)
	if !stats.Moved || stats.Intensity != fade.High {
		t.Fatalf("stats at peak = %+v", stats)
	}
	if n, _ := e.Node(0); n.Position == start.Position {
		t.Error("node did not move at peak")
	}
}

func TestFullAnimationCycle(t *testing.T) {
	e := newTestEngine(t)
	var r recorder

	var phases []fade.Phase
	for i := 0; i < 5000 && !e.State().StartingAnimationDone; i++ {
		stats := e.Tick(&r)
		if stats.Intensity < fade.Low || stats.Intensity > fade.High {
			t.Fatalf("intensity out of bounds: %d", stats.Intensity)
		}
		if len(phases) == 0 || phases[len(phases)-1] != stats.Phase {
			phases = append(phases, stats.Phase)
		}
	}
	if !e.State().StartingAnimationDone {
		t.Fatal("starting animation never finished")
	}

	want := []fade.Phase{fade.FadingIn, fade.Holding, fade.FadingOut, fade.Settled}
	if !reflect.DeepEqual(phases, want) {
		t.Errorf("phases = %v, want %v", phases, want)
	}

	snap := e.Snapshot()
	for _, n := range snap.Nodes {
		if !n.InPosition || n.Position != n.Target {
			t.Errorf("node %d not at target: %v vs %v", n.ID, n.Position, n.Target)
		}
	}

	// Settled and not hovered: no more clearing.
	r.reset()
	e.Tick(&r)
	if r.clears != 0 {
		t.Error("settled frame cleared the canvas")
	}

	// Hovering forces a clear.
	e.Hover(r2.Vec{X: 400, Y: 300})
	r.reset()
	e.Tick(&r)
	if r.clears != 1 {
		t.Error("hovered frame did not clear")
	}
}

func TestRetargetRestartsFade(t *testing.T) {
	e := newTestEngine(t)
	var r recorder
	for i := 0; i < 5000 && !e.State().StartingAnimationDone; i++ {
		e.Tick(&r)
	}

	if err := e.SetTarget(1, r2.Vec{X: 100, Y: 500}); err != nil {
		t.Fatalf("SetTarget: %v", err)
	}
	stats := e.Tick(&r)
	if stats.Phase != fade.FadingIn {
		t.Errorf("phase after retarget = %v, want fading-in", stats.Phase)
	}
	for i := 0; i < 5000 && !e.State().StartingAnimationDone; i++ {
		e.Tick(&r)
	}
	if n, _ := e.Node(1); n.Position != (r2.Vec{X: 100, Y: 500}) {
		t.Errorf("node 1 at %v, want new target", n.Position)
	}

	if err := e.SetTarget(9, r2.Vec{}); !fgerrors.Is(err, fgerrors.ErrCodeNotFound) {
		t.Errorf("SetTarget unknown id error = %v", err)
	}
}

func TestHoverHighlight(t *testing.T) {
	e := newTestEngine(t)
	snap := e.Snapshot()
	root := snap.Nodes[0].Position

	if !e.Hover(root) {
		t.Fatal("pointer on root should hover")
	}
	if !e.State().GeneralHovered {
		t.Error("GeneralHovered not set")
	}

	var r recorder
	e.Tick(&r)
	if len(r.edgeCalls) != 2 {
		t.Fatalf("edge calls = %d, want grey edges plus highlight lines", len(r.edgeCalls))
	}
	hl := r.edgeCalls[1]
	if hl.color != White || len(hl.lines) != 2 {
		t.Errorf("highlight lines = %+v", hl)
	}

	var highlighted []int
	for _, s := range r.sprites {
		if s.Highlight {
			if s.Fill != scene.HighlightColor {
				t.Errorf("highlight fill = %s", s.Fill)
			}
			highlighted = append(highlighted, s.ID)
		}
	}
	if !reflect.DeepEqual(highlighted, []int{0, 1, 2}) {
		t.Errorf("highlighted = %v, want [0 1 2]", highlighted)
	}

	e.Leave()
	if e.State().GeneralHovered {
		t.Error("Leave kept GeneralHovered")
	}
}

func TestDrag(t *testing.T) {
	e := newTestEngine(t)
	var r recorder
	for i := 0; i < 5000 && !e.State().StartingAnimationDone; i++ {
		e.Tick(&r)
	}

	if _, ok := e.BeginDrag(r2.Vec{X: -100, Y: -100}); ok {
		t.Fatal("drag on empty space should fail")
	}
	id, ok := e.BeginDrag(r2.Vec{X: 200, Y: 200})
	if !ok || id != 1 {
		t.Fatalf("BeginDrag = %d, %v", id, ok)
	}
	e.DragTo(r2.Vec{X: 50, Y: 60})

	r.reset()
	for i := 0; i < 30; i++ {
		e.Tick(&r)
	}
	n, _ := e.Node(1)
	if n.Position != (r2.Vec{X: 50, Y: 60}) {
		t.Errorf("dragged node at %v, want (50, 60)", n.Position)
	}
	if !n.Dragging || n.InPosition {
		t.Errorf("dragged node flags = dragging %v in position %v", n.Dragging, n.InPosition)
	}
	if e.State().StartingAnimationDone {
		t.Error("drag should restart the animation")
	}
	if last := r.sprites[len(r.sprites)-2]; last.ID != 1 || last.Label != "Docker" {
		t.Errorf("dragged sprite = %+v, want label shown", last)
	}

	e.EndDrag()
	for i := 0; i < 5000 && !e.State().StartingAnimationDone; i++ {
		e.Tick(&r)
	}
	if n, _ := e.Node(1); n.Position != n.Target {
		t.Errorf("released node at %v, want back at %v", n.Position, n.Target)
	}
}

func TestFailedRebuildKeepsScene(t *testing.T) {
	e := newTestEngine(t)
	var r recorder
	for i := 0; i < 20; i++ {
		e.Tick(&r)
	}
	before := e.Snapshot()

	bad := testDefs()
	bad[1].Children = []string{"Missing"}
	err := e.SetDefinitions(bad)
	if !fgerrors.Is(err, fgerrors.ErrCodeGraphBuild) {
		t.Fatalf("error = %v, want GRAPH_BUILD", err)
	}

	after := e.Snapshot()
	if !reflect.DeepEqual(before, after) {
		t.Error("failed build changed the engine state")
	}
}

func TestRebuildReplacesScene(t *testing.T) {
	e := newTestEngine(t)
	var r recorder
	for i := 0; i < 40; i++ {
		e.Tick(&r)
	}
	if moved := e.Snapshot(); moved.Nodes[1].Position == moved.Nodes[1].Target {
		t.Fatal("setup: node already at target")
	}

	next := []graph.Definition{
		{ID: 0, Name: "Rust", Category: "Rust", XPos: 100, YPos: 100, Parents: []string{"Go"}},
		{ID: 1, Name: "Go", Category: "Go", XPos: 300, YPos: 100, Children: []string{"Rust", "CSS"}, Parents: []string{"CSS"}},
		{ID: 2, Name: "CSS", Category: "CSS", XPos: 500, YPos: 100, Children: []string{"Go"}, Parents: []string{"Go"}},
		{ID: 3, Name: "Lonely", Category: "Nope", XPos: 700, YPos: 100},
	}
	if err := e.SetDefinitions(next); err != nil {
		t.Fatalf("SetDefinitions: %v", err)
	}

	snap := e.Snapshot()
	wantMatrix := [][]int{{}, {0, 2}, {1}, {}}
	if !reflect.DeepEqual(snap.Matrix, wantMatrix) {
		t.Errorf("matrix = %v, want %v", snap.Matrix, wantMatrix)
	}
	if snap.State != fade.New().Loaded() {
		t.Errorf("state = %+v, want %+v", snap.State, fade.New().Loaded())
	}

	vp := e.Viewport()
	for i, n := range snap.Nodes {
		angle := 2 * math.Pi * float64(i) / float64(len(next))
		want := r2.Vec{
			X: vp.Width/2 + scene.PlacementRadius*vp.Width*math.Sin(angle),
			Y: vp.Height/2 + scene.PlacementRadius*vp.Width*math.Cos(angle),
		}
		if d := r2.Norm(r2.Sub(n.Position, want)); d > 1e-9 {
			t.Errorf("node %d starts at %v, want %v", i, n.Position, want)
		}
		if n.InPosition || n.Hovered || n.Dragging {
			t.Errorf("node %d carried state over: %+v", i, n)
		}
	}

	r.reset()
	e.Tick(&r)
	if len(r.edgeCalls) == 0 || len(r.edgeCalls[0].lines) != 3 {
		t.Errorf("first frame after rebuild drew %+v, want 3 edges", r.edgeCalls)
	}
}

type failingSource struct{}

func (failingSource) Load(context.Context) ([]graph.Definition, error) {
	return nil, fgerrors.New(fgerrors.ErrCodeLoad, "boom")
}
func (failingSource) String() string { return "failing" }

func TestLoad(t *testing.T) {
	e := New(Options{Logger: quietLogger()})

	err := e.Load(context.Background(), failingSource{})
	if !fgerrors.Is(err, fgerrors.ErrCodeLoad) {
		t.Fatalf("error = %v, want LOAD", err)
	}
	if e.State().AllLoaded {
		t.Fatal("failed load enabled the engine")
	}
	if stats := e.Tick(Discard); stats.Ran {
		t.Error("tick ran after failed load")
	}

	if err := e.Load(context.Background(), graph.StaticSource(testDefs())); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !e.State().AllLoaded {
		t.Error("engine not loaded")
	}
	if stats := e.Tick(Discard); !stats.Ran {
		t.Error("tick skipped after load")
	}
}

func TestControlsReadEveryTick(t *testing.T) {
	ctrl := &mutableControls{size: 10, gravity: 40, rejection: 50}
	e := New(Options{Controls: ctrl, Logger: quietLogger()})
	if err := e.SetDefinitions(testDefs()); err != nil {
		t.Fatal(err)
	}

	var r recorder
	e.Tick(&r)
	if r.sprites[1].Radius != 10 {
		t.Fatalf("radius = %v", r.sprites[1].Radius)
	}

	ctrl.set(20)
	r.reset()
	e.Tick(&r)
	if r.sprites[1].Radius != 20 || r.sprites[0].Radius != 24 {
		t.Errorf("radii after resize = %v, %v", r.sprites[1].Radius, r.sprites[0].Radius)
	}
	n, _ := e.Node(0)
	if n.Attraction != 20 || n.Rejection != 10 {
		t.Errorf("forces = %v/%v, want 20/10", n.Attraction, n.Rejection)
	}
}

type mutableControls struct {
	mu                       sync.Mutex
	size, gravity, rejection float64
}

func (c *mutableControls) set(size float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.size = size
}
func (c *mutableControls) Gravity() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gravity
}
func (c *mutableControls) Rejection() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rejection
}
func (c *mutableControls) NodeSize() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

func TestRun(t *testing.T) {
	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())

	ticks := 0
	sched := SchedulerFunc(func(ctx context.Context) error {
		if ticks == 25 {
			cancel()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		ticks++
		return nil
	})
	if err := e.Run(ctx, Discard, sched); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := e.Snapshot().Frame; got != 25 {
		t.Errorf("frames = %d, want 25", got)
	}

	boom := errors.New("boom")
	err := e.Run(context.Background(), Discard, SchedulerFunc(func(context.Context) error { return boom }))
	if !errors.Is(err, boom) {
		t.Errorf("Run error = %v, want scheduler error", err)
	}
}

func TestTickerStops(t *testing.T) {
	tk := NewTicker(1000)
	defer tk.Stop()
	if err := tk.Next(context.Background()); err != nil {
		t.Fatalf("Next: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	slow := NewTicker(1)
	defer slow.Stop()
	if err := slow.Next(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Next error = %v, want deadline exceeded", err)
	}
}

func TestConcurrentInput(t *testing.T) {
	e := newTestEngine(t)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			e.Tick(Discard)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			e.Hover(r2.Vec{X: float64(i), Y: float64(i)})
			e.BeginDrag(r2.Vec{X: 200, Y: 200})
			e.DragTo(r2.Vec{X: float64(i), Y: 10})
			e.EndDrag()
		}
	}()
	wg.Wait()
	if s := e.State(); s.Intensity < fade.Low || s.Intensity > fade.High {
		t.Errorf("intensity = %d", s.Intensity)
	}
}

func TestColorHex(t *testing.T) {
	if got := White.Hex(); got != "#ffffff" {
		t.Errorf("White.Hex() = %s", got)
	}
	if got := Grey(0).Hex(); got != "#000000" {
		t.Errorf("Grey(0).Hex() = %s", got)
	}
}
