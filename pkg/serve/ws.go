package serve

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/fadegraph/pkg/render"
	"github.com/matzehuels/fadegraph/pkg/scene"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = pongWait * 9 / 10
	sendBuffer   = 64
	maxMessage   = 4096
)

// Message types exchanged over /ws.
const (
	MsgHello     = "hello"
	MsgFrame     = "frame"
	MsgHover     = "hover"
	MsgLeave     = "leave"
	MsgDragStart = "drag_start"
	MsgDragMove  = "drag_move"
	MsgDragEnd   = "drag_end"
)

// ServerMessage is sent to viewers.
type ServerMessage struct {
	Type     string          `json:"type"`
	Session  string          `json:"session,omitempty"`
	Viewport *scene.Viewport `json:"viewport,omitempty"`
	Frame    *render.Frame   `json:"frame,omitempty"`
}

// ClientMessage is a pointer event from a viewer.
type ClientMessage struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type session struct {
	id        string
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (ss *session) close() {
	ss.closeOnce.Do(func() {
		close(ss.done)
		ss.conn.Close()
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	ss := &session{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	vp := s.engine.Viewport()
	hello, _ := json.Marshal(ServerMessage{Type: MsgHello, Session: ss.id, Viewport: &vp})
	ss.send <- hello

	s.addSession(ss)
	s.logger.Info("viewer connected", "session", ss.id, "remote", r.RemoteAddr)

	go s.writeLoop(ss)
	s.readLoop(ss)
}

func (s *Server) readLoop(ss *session) {
	defer func() {
		s.removeSession(ss)
		ss.close()
		s.logger.Info("viewer disconnected", "session", ss.id)
	}()

	ss.conn.SetReadLimit(maxMessage)
	_ = ss.conn.SetReadDeadline(time.Now().Add(pongWait))
	ss.conn.SetPongHandler(func(string) error {
		return ss.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg ClientMessage
		if err := ss.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read failed", "session", ss.id, "error", err)
			}
			return
		}
		s.handleInput(ss, msg)
	}
}

func (s *Server) handleInput(ss *session, msg ClientMessage) {
	p := r2.Vec{X: msg.X, Y: msg.Y}
	switch msg.Type {
	case MsgHover:
		s.engine.Hover(p)
	case MsgLeave:
		s.engine.Leave()
	case MsgDragStart:
		if id, ok := s.engine.BeginDrag(p); ok {
			s.logger.Debug("drag started", "session", ss.id, "node", id)
		}
	case MsgDragMove:
		s.engine.DragTo(p)
	case MsgDragEnd:
		s.engine.EndDrag()
	default:
		s.logger.Debug("ignoring message", "session", ss.id, "type", msg.Type)
	}
}

func (s *Server) writeLoop(ss *session) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-ss.send:
			_ = ss.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ss.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				ss.close()
				return
			}
		case <-ticker.C:
			_ = ss.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ss.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				ss.close()
				return
			}
		case <-ss.done:
			return
		}
	}
}

// broadcast queues a frame for every viewer. It runs inside the engine tick,
// so slow viewers drop frames instead of blocking.
func (s *Server) broadcast(f render.Frame) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.sessions) == 0 {
		return
	}
	data, err := json.Marshal(ServerMessage{Type: MsgFrame, Frame: &f})
	if err != nil {
		s.logger.Error("encode frame", "error", err)
		return
	}
	for _, ss := range s.sessions {
		select {
		case ss.send <- data:
		default:
		}
	}
}

func (s *Server) addSession(ss *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[ss.id] = ss
}

func (s *Server) removeSession(ss *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, ss.id)
}

func (s *Server) closeSessions() {
	s.mu.Lock()
	sessions := make([]*session, 0, len(s.sessions))
	for _, ss := range s.sessions {
		sessions = append(sessions, ss)
	}
	s.mu.Unlock()
	for _, ss := range sessions {
		_ = ss.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		ss.close()
	}
}
