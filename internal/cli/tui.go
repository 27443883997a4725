package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/fadegraph/pkg/config"
	"github.com/matzehuels/fadegraph/pkg/engine"
	"github.com/matzehuels/fadegraph/pkg/graph"
	"github.com/matzehuels/fadegraph/pkg/render"
)

// Control adjustments per key press.
const (
	gravityStep   = 5
	rejectionStep = 5
	sizeStep      = 1
)

// statusRows is the number of terminal rows below the canvas.
const statusRows = 2

// =============================================================================
// Messages
// =============================================================================

type frameMsg time.Time

type loadedMsg struct {
	nodes int
	err   error
}

// =============================================================================
// AnimationModel - Interactive graph animation
// =============================================================================

// AnimationModel is the bubbletea model behind "fadegraph run". Every frame
// message ticks the engine onto a terminal canvas; mouse events hover and
// drag nodes; keys adjust the live controls.
type AnimationModel struct {
	Engine   *engine.Engine
	Controls *config.Controls
	Source   graph.Source
	Canvas   *render.Terminal
	Interval time.Duration

	ctx      context.Context
	stats    engine.FrameStats
	paused   bool
	dragging int
	status   string
}

// NewAnimationModel creates the model. src may be nil when the engine was
// loaded beforehand.
func NewAnimationModel(ctx context.Context, e *engine.Engine, controls *config.Controls, src graph.Source, fps int) AnimationModel {
	if fps <= 0 {
		fps = engine.DefaultFPS
	}
	return AnimationModel{
		Engine:   e,
		Controls: controls,
		Source:   src,
		Canvas:   render.NewTerminal(80, 24-statusRows, e.Viewport()),
		Interval: time.Second / time.Duration(fps),
		ctx:      ctx,
		dragging: -1,
		status:   "loading",
	}
}

func (m AnimationModel) Init() tea.Cmd {
	if m.Source == nil {
		return m.nextFrame()
	}
	return tea.Batch(m.nextFrame(), m.load())
}

func (m AnimationModel) nextFrame() tea.Cmd {
	return tea.Tick(m.Interval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m AnimationModel) load() tea.Cmd {
	e, src, ctx := m.Engine, m.Source, m.ctx
	return func() tea.Msg {
		if err := e.Load(ctx, src); err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{nodes: len(e.Snapshot().Nodes)}
	}
}

func (m AnimationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		if !m.paused {
			m.stats = m.Engine.Tick(m.Canvas)
		}
		return m, m.nextFrame()

	case loadedMsg:
		if msg.err != nil {
			m.status = "load failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("%d nodes", msg.nodes)
		}

	case tea.WindowSizeMsg:
		m.Canvas.Resize(msg.Width, max(msg.Height-statusRows, 1))

	case tea.MouseMsg:
		m = m.handleMouse(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "g":
			m.adjust(-gravityStep, 0, 0)
		case "G":
			m.adjust(gravityStep, 0, 0)
		case "r":
			m.adjust(0, -rejectionStep, 0)
		case "R":
			m.adjust(0, rejectionStep, 0)
		case "-":
			m.adjust(0, 0, -sizeStep)
		case "+", "=":
			m.adjust(0, 0, sizeStep)
		case "L":
			if m.Source != nil {
				m.status = "reloading"
				return m, m.load()
			}
		}
	}
	return m, nil
}

func (m AnimationModel) handleMouse(msg tea.MouseMsg) AnimationModel {
	p := m.Canvas.ToViewport(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m
		}
		if id, ok := m.Engine.BeginDrag(p); ok {
			m.dragging = id
		}
	case tea.MouseActionMotion:
		if m.dragging >= 0 {
			m.Engine.DragTo(p)
		} else {
			m.Engine.Hover(p)
		}
	case tea.MouseActionRelease:
		if m.dragging >= 0 {
			m.Engine.EndDrag()
			m.dragging = -1
		}
	}
	return m
}

func (m AnimationModel) adjust(g, r, s float64) {
	if m.Controls != nil {
		m.Controls.Adjust(g, r, s)
	}
}

func (m AnimationModel) View() string {
	var b strings.Builder
	b.WriteString(m.Canvas.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("drag: move  g/G gravity  r/R rejection  -/+ size  space pause  L reload  q quit"))
	return b.String()
}

func (m AnimationModel) statusLine() string {
	parts := []string{
		StyleTitle.Render(m.stats.Phase.String()),
		StyleDim.Render("intensity ") + StyleNumber.Render(fmt.Sprint(m.stats.Intensity)),
		StyleDim.Render("frame ") + StyleNumber.Render(fmt.Sprint(m.stats.Frame)),
	}
	if m.Controls != nil {
		v := m.Controls.Values()
		parts = append(parts, StyleDim.Render(fmt.Sprintf("g=%.0f r=%.0f size=%.0f", v.Gravity, v.Rejection, v.NodeSize)))
	}
	if m.paused {
		parts = append(parts, StyleWarning.Render("paused"))
	}
	if m.dragging >= 0 {
		parts = append(parts, StyleValue.Render(fmt.Sprintf("dragging #%d", m.dragging)))
	}
	parts = append(parts, StyleDim.Render(m.status))
	return strings.Join(parts, StyleDim.Render(" · "))
}
