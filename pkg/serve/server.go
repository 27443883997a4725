package serve

import (
	"context"
	stderrors "errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/fadegraph/pkg/engine"
	"github.com/matzehuels/fadegraph/pkg/graph"
	"github.com/matzehuels/fadegraph/pkg/render"
)

// Options configures a Server.
type Options struct {
	// Source is reloaded by POST /reload. Nil disables the route.
	Source graph.Source
	Logger *log.Logger
	// AllowedOrigins restricts websocket upgrades. Empty allows any origin.
	AllowedOrigins []string
}

// Server serves one engine to any number of viewers.
type Server struct {
	engine   *engine.Engine
	source   graph.Source
	logger   *log.Logger
	recorder *render.Recorder
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[string]*session
}

// New creates a server for e.
func New(e *engine.Engine, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	s := &Server{
		engine:   e,
		source:   opts.Source,
		logger:   opts.Logger,
		sessions: make(map[string]*session),
	}
	s.recorder = render.NewRecorder(s.broadcast)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(opts.AllowedOrigins),
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/graph", s.handleGraph)
	r.Get("/frame", s.handleFrame)
	r.Get("/nodes/{id}", s.handleNode)
	r.Put("/nodes/{id}/target", s.handleSetTarget)
	r.Post("/reload", s.handleReload)
	r.Get("/ws", s.handleWebSocket)
	return r
}

// Animate drives the engine until ctx is done, broadcasting every frame to
// connected viewers.
func (s *Server) Animate(ctx context.Context, sched engine.Scheduler) error {
	return s.engine.Run(ctx, s.recorder, sched)
}

// ListenAndServe serves on addr and animates with sched until ctx is done,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, sched engine.Scheduler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 2)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
	go func() { errc <- s.Animate(ctx, sched) }()

	s.logger.Info("serving", "addr", addr)

	var err error
	select {
	case <-ctx.Done():
	case err = <-errc:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.closeSessions()
	if serr := srv.Shutdown(shutdownCtx); serr != nil && err == nil {
		err = serr
	}
	return err
}

// Sessions returns the number of connected viewers.
func (s *Server) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		return set[r.Header.Get("Origin")]
	}
}
