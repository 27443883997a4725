package serve

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/fadegraph/pkg/buildinfo"
	"github.com/matzehuels/fadegraph/pkg/errors"
	"github.com/matzehuels/fadegraph/pkg/scene"
)

// GraphResponse is the body of GET /graph.
type GraphResponse struct {
	Frame     uint64         `json:"frame"`
	Phase     string         `json:"phase"`
	Intensity int            `json:"intensity"`
	Loaded    bool           `json:"loaded"`
	Viewport  scene.Viewport `json:"viewport"`
	Nodes     []NodeResponse `json:"nodes"`
	Matrix    [][]int        `json:"matrix"`
}

// NodeResponse describes one node.
type NodeResponse struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Color      string  `json:"color"`
	IsBoss     bool    `json:"is_boss"`
	Content    string  `json:"content,omitempty"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	TargetX    float64 `json:"target_x"`
	TargetY    float64 `json:"target_y"`
	Radius     float64 `json:"radius"`
	InPosition bool    `json:"in_position"`
	Children   []int   `json:"children"`
	Parents    []int   `json:"parents"`
}

type pointRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) nodeResponse(n scene.Node) NodeResponse {
	children, parents := n.Children, n.Parents
	if children == nil {
		children = []int{}
	}
	if parents == nil {
		parents = []int{}
	}
	return NodeResponse{
		ID:         n.ID,
		Name:       n.Name,
		Category:   n.Category,
		Color:      s.engine.Palette().Color(n.Category),
		IsBoss:     n.IsBoss,
		Content:    n.Content,
		X:          n.Position.X,
		Y:          n.Position.Y,
		TargetX:    n.Target.X,
		TargetY:    n.Target.Y,
		Radius:     n.Radius,
		InPosition: n.InPosition,
		Children:   children,
		Parents:    parents,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Short()})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot()
	resp := GraphResponse{
		Frame:     snap.Frame,
		Phase:     snap.Phase.String(),
		Intensity: snap.State.Intensity,
		Loaded:    snap.State.AllLoaded,
		Viewport:  s.engine.Viewport(),
		Nodes:     make([]NodeResponse, len(snap.Nodes)),
		Matrix:    snap.Matrix,
	}
	for i, n := range snap.Nodes {
		resp.Nodes[i] = s.nodeResponse(n)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.recorder.Last())
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	id, err := nodeID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	n, ok := s.engine.Node(id)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeNotFound, "node %d", id))
		return
	}
	writeJSON(w, http.StatusOK, s.nodeResponse(n))
}

func (s *Server) handleSetTarget(w http.ResponseWriter, r *http.Request) {
	id, err := nodeID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req pointRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode target"))
		return
	}
	if req.X == nil || req.Y == nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "target needs x and y"))
		return
	}
	if err := s.engine.SetTarget(id, r2.Vec{X: *req.X, Y: *req.Y}); err != nil {
		writeError(w, err)
		return
	}
	n, _ := s.engine.Node(id)
	writeJSON(w, http.StatusOK, s.nodeResponse(n))
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.source == nil {
		writeError(w, errors.New(errors.ErrCodeUnsupported, "no graph source configured"))
		return
	}
	if err := s.engine.Load(r.Context(), s.source); err != nil {
		writeError(w, err)
		return
	}
	s.handleGraph(w, r)
}

func nodeID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid node id %q", raw)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(errors.GetCode(err)), errorResponse{
		Code:    errors.GetCode(err),
		Message: errors.UserMessage(err),
	})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeGraphBuild:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeLoad, errors.ErrCodeNetwork, errors.ErrCodeTimeout:
		return http.StatusBadGateway
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
