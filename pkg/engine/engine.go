package engine

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fadegraph/pkg/fade"
	"github.com/matzehuels/fadegraph/pkg/graph"
	"github.com/matzehuels/fadegraph/pkg/observability"
	"github.com/matzehuels/fadegraph/pkg/scene"
)

// Options configures an Engine.
type Options struct {
	Viewport scene.Viewport
	Controls Controls      // nil: DefaultControls
	Palette  scene.Palette // nil: scene.DefaultPalette
	Logger   *log.Logger   // nil: log.Default()
}

// DefaultViewport is used when Options.Viewport is empty.
var DefaultViewport = scene.Viewport{Width: 1280, Height: 800}

// Engine animates one scene. All methods are safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	viewport scene.Viewport
	controls Controls
	palette  scene.Palette
	logger   *log.Logger

	scene *scene.Scene
	state fade.State
	phase fade.Phase
	frame uint64
}

// New creates an engine with no graph. Ticks are skipped until Load or
// SetDefinitions succeeds.
func New(opts Options) *Engine {
	if opts.Viewport.Width <= 0 || opts.Viewport.Height <= 0 {
		opts.Viewport = DefaultViewport
	}
	if opts.Controls == nil {
		opts.Controls = DefaultControls()
	}
	if opts.Palette == nil {
		opts.Palette = scene.DefaultPalette()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Engine{
		viewport: opts.Viewport,
		controls: opts.Controls,
		palette:  opts.Palette,
		logger:   opts.Logger,
		scene:    &scene.Scene{},
		state:    fade.New(),
		phase:    fade.Loading,
	}
}

// Load fetches definitions from src and installs them. On failure the error
// carries code LOAD or GRAPH_BUILD and the engine is unchanged.
func (e *Engine) Load(ctx context.Context, src graph.Source) error {
	hooks := observability.Engine()
	hooks.OnLoadStart(ctx, src.String())
	start := time.Now()

	defs, err := src.Load(ctx)
	if err == nil {
		err = e.SetDefinitions(defs)
	}
	hooks.OnLoadComplete(ctx, src.String(), len(defs), time.Since(start), err)
	if err != nil {
		e.logger.Error("graph load failed", "source", src, "error", err)
		return err
	}
	e.logger.Info("graph loaded", "source", src, "nodes", len(defs), "duration", time.Since(start))
	return nil
}

// SetDefinitions builds a scene from defs and swaps it in. The fade state
// restarts from the beginning and the engine is marked loaded. A failed build
// returns a GRAPH_BUILD error and leaves the current scene in place.
func (e *Engine) SetDefinitions(defs []graph.Definition) error {
	s, err := scene.Build(defs, e.viewport, e.controls.NodeSize())
	if err != nil {
		observability.Engine().OnBuild(len(defs), 0, err)
		return err
	}
	observability.Engine().OnBuild(s.Len(), s.EdgeCount(), nil)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.scene = s
	e.state = fade.New().Loaded()
	e.setPhase(e.state.Phase())
	return nil
}

// State returns a copy of the fade state.
func (e *Engine) State() fade.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Snapshot is a consistent copy of the engine's state between ticks.
type Snapshot struct {
	Frame  uint64
	Phase  fade.Phase
	State  fade.State
	Nodes  []scene.Node
	Matrix [][]int
}

// Snapshot copies the current nodes and fade state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Frame:  e.frame,
		Phase:  e.phase,
		State:  e.state,
		Nodes:  e.scene.Snapshot(),
		Matrix: e.scene.ConnectivityMatrix(),
	}
}

// Node returns a copy of the node with the given id.
func (e *Engine) Node(id int) (scene.Node, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := e.scene.Node(id)
	if n == nil {
		return scene.Node{}, false
	}
	return *n, true
}

// Viewport returns the viewport nodes are placed in.
func (e *Engine) Viewport() scene.Viewport { return e.viewport }

// Palette returns the category colours used for node fills.
func (e *Engine) Palette() scene.Palette { return e.palette }

// setPhase records a phase change. Callers hold e.mu.
func (e *Engine) setPhase(p fade.Phase) {
	if p == e.phase {
		return
	}
	observability.Engine().OnPhaseChange(e.phase.String(), p.String(), e.frame)
	e.logger.Debug("phase change", "from", e.phase, "to", p, "frame", e.frame)
	e.phase = p
}
