package serve

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/fadegraph/pkg/engine"
	"github.com/matzehuels/fadegraph/pkg/errors"
	"github.com/matzehuels/fadegraph/pkg/graph"
	"github.com/matzehuels/fadegraph/pkg/scene"
)

func testDefs() []graph.Definition {
	return []graph.Definition{
		{ID: 0, Name: "Java", Category: "Java", IsBoss: true, XPos: 400, YPos: 300, Content: "JVM things", Children: []string{"SpringBoot"}},
		{ID: 1, Name: "SpringBoot", Category: "SpringBoot", XPos: 600, YPos: 300, Parents: []string{"Java"}},
	}
}

func newTestServer(t *testing.T, src graph.Source) (*Server, *engine.Engine, *httptest.Server) {
	t.Helper()
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: log.FatalLevel})
	e := engine.New(engine.Options{Viewport: scene.Viewport{Width: 800, Height: 600}, Logger: logger})
	if err := e.SetDefinitions(testDefs()); err != nil {
		t.Fatalf("SetDefinitions: %v", err)
	}
	s := New(e, Options{Source: src, Logger: logger})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, e, ts
}

func doJSON(t *testing.T, method, url, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func TestGraphEndpoint(t *testing.T) {
	_, _, ts := newTestServer(t, nil)

	var g GraphResponse
	if code := doJSON(t, http.MethodGet, ts.URL+"/graph", "", &g); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if !g.Loaded || g.Phase != "fading-in" || g.Intensity != 65 {
		t.Errorf("graph header = %+v", g)
	}
	if g.Viewport.Width != 800 || len(g.Nodes) != 2 {
		t.Fatalf("graph = %+v", g)
	}
	if g.Nodes[0].Color != "#ff0000" || g.Nodes[0].Children[0] != 1 || len(g.Nodes[1].Children) != 0 {
		t.Errorf("nodes = %+v", g.Nodes)
	}
	if len(g.Matrix) != 2 || len(g.Matrix[0]) != 1 {
		t.Errorf("matrix = %v", g.Matrix)
	}
}

func TestNodeEndpoints(t *testing.T) {
	_, e, ts := newTestServer(t, nil)

	var n NodeResponse
	if code := doJSON(t, http.MethodGet, ts.URL+"/nodes/0", "", &n); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if n.Name != "Java" || n.Content != "JVM things" || !n.IsBoss {
		t.Errorf("node = %+v", n)
	}

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   errors.Code
	}{
		{"unknown node", http.MethodGet, "/nodes/7", "", http.StatusNotFound, errors.ErrCodeNotFound},
		{"bad id", http.MethodGet, "/nodes/abc", "", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad body", http.MethodPut, "/nodes/0/target", "{", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"missing y", http.MethodPut, "/nodes/0/target", `{"x": 1}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"target unknown node", http.MethodPut, "/nodes/7/target", `{"x": 1, "y": 2}`, http.StatusNotFound, errors.ErrCodeNotFound},
		{"reload without source", http.MethodPost, "/reload", "", http.StatusNotImplemented, errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var er errorResponse
			if code := doJSON(t, tt.method, ts.URL+tt.path, tt.body, &er); code != tt.wantStatus {
				t.Errorf("status = %d, want %d", code, tt.wantStatus)
			}
			if er.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", er.Code, tt.wantCode)
			}
		})
	}

	if code := doJSON(t, http.MethodPut, ts.URL+"/nodes/1/target", `{"x": 10, "y": 20}`, &n); code != http.StatusOK {
		t.Fatalf("set target status = %d", code)
	}
	if n.TargetX != 10 || n.TargetY != 20 || n.InPosition {
		t.Errorf("node after retarget = %+v", n)
	}
	if got, _ := e.Node(1); got.Target.X != 10 {
		t.Error("engine not updated")
	}
}

func TestReload(t *testing.T) {
	defs := testDefs()
	defs = append(defs, graph.Definition{ID: 2, Name: "Kafka", Category: "Apache Kafka", Parents: []string{"Java"}})
	_, _, ts := newTestServer(t, graph.StaticSource(defs))

	var g GraphResponse
	if code := doJSON(t, http.MethodPost, ts.URL+"/reload", "", &g); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(g.Nodes) != 3 {
		t.Errorf("reloaded %d nodes, want 3", len(g.Nodes))
	}
}

func TestHealthz(t *testing.T) {
	_, _, ts := newTestServer(t, nil)
	var body map[string]string
	if code := doJSON(t, http.MethodGet, ts.URL+"/healthz", "", &body); code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("healthz = %d %v", code, body)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) ServerMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg ServerMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestWebSocket(t *testing.T) {
	s, e, ts := newTestServer(t, nil)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := readMessage(t, conn)
	if hello.Type != MsgHello || hello.Viewport == nil || hello.Viewport.Width != 800 {
		t.Fatalf("hello = %+v", hello)
	}
	if _, err := uuid.Parse(hello.Session); err != nil {
		t.Errorf("session id %q is not a uuid: %v", hello.Session, err)
	}

	// Pointer over node 0's start position.
	start := e.Snapshot().Nodes[0].Position
	if err := conn.WriteJSON(ClientMessage{Type: MsgHover, X: start.X, Y: start.Y}); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for !e.State().GeneralHovered {
		if time.Now().After(deadline) {
			t.Fatal("hover event not applied")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if s.Sessions() != 1 {
		t.Errorf("Sessions() = %d, want 1", s.Sessions())
	}

	e.Tick(s.recorder)
	msg := readMessage(t, conn)
	if msg.Type != MsgFrame || msg.Frame == nil {
		t.Fatalf("message = %+v", msg)
	}
	if msg.Frame.Seq != 1 || !msg.Frame.Cleared || len(msg.Frame.Nodes) != 2+2 {
		t.Errorf("frame = seq %d cleared %v nodes %d", msg.Frame.Seq, msg.Frame.Cleared, len(msg.Frame.Nodes))
	}

	var frame map[string]any
	if code := doJSON(t, http.MethodGet, ts.URL+"/frame", "", &frame); code != http.StatusOK || frame["seq"] != float64(1) {
		t.Errorf("GET /frame = %d %v", code, frame["seq"])
	}
}

func TestListenAndServeStops(t *testing.T) {
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: log.FatalLevel})
	s := New(engine.New(engine.Options{Logger: logger}), Options{Logger: logger})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0", engine.NewTicker(100)) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
