package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/leefowlercu/compage/engine"
	"github.com/leefowlercu/compage/internal/report"
)

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	Port int
	Bind string
}

// Server is the introspection HTTP server. It exposes liveness, readiness,
// the component and instance tables, per-instance kill, host shutdown and
// Prometheus metrics.
// It is safe for concurrent use.
type Server struct {
	mu             sync.RWMutex
	rt             *engine.Runtime
	health         func() HealthStatus
	config         ServerConfig
	server         *http.Server
	addr           net.Addr
	closed         bool
	router         *chi.Mux
	metricsHandler http.Handler
	// killAll interrupts the host process; the signal teardown does the rest.
	killAll func() error
}

// NewServer creates a server for rt. health reports the aggregate status
// served on /readyz.
func NewServer(rt *engine.Runtime, health func() HealthStatus, config ServerConfig) *Server {
	s := &Server{
		rt:      rt,
		health:  health,
		config:  config,
		killAll: rt.KillAll,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Get("/components", s.handleComponents)
	r.Get("/report", s.handleReport)
	r.Post("/shutdown", s.handleShutdown)
	r.Route("/instances", func(r chi.Router) {
		r.Get("/", s.handleInstances)
		r.Get("/{sid}", s.handleInstance)
		r.Post("/{sid}/kill", s.handleKill)
	})

	if s.metricsHandler != nil {
		r.Handle("/metrics", s.metricsHandler)
	}
	return r
}

// SetMetricsHandler mounts handler on /metrics.
func (s *Server) SetMetricsHandler(handler http.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metricsHandler = handler
	s.router = s.routes()
}

// Handler returns the HTTP handler for testing purposes.
func (s *Server) Handler() http.Handler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.router
}

// Addr returns the listening address once Start has bound it, or nil.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// ShutdownResponse is the response format for POST /shutdown.
type ShutdownResponse struct {
	Status string `json:"status"`
	RunID  string `json:"run_id"`
}

// LivezResponse is the response format for /healthz endpoint.
type LivezResponse struct {
	Status string `json:"status"`
}

// handleHealthz is the liveness probe; it answers as long as the process serves.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LivezResponse{Status: "alive"})
}

// handleReadyz answers 200 while running, degraded included, and 503 otherwise.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	status := s.health()
	code := http.StatusOK
	if !status.Ready {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

func (s *Server) handleComponents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, report.Components(s.rt.Registry()))
}

func (s *Server) handleInstances(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, report.Build(s.rt).Instances)
}

func (s *Server) handleInstance(w http.ResponseWriter, r *http.Request) {
	inst, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report.Instance(inst))
}

// handleKill cancels and joins one launched instance.
func (s *Server) handleKill(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")

	err := s.rt.KillBySID(r.Context(), sid)
	switch {
	case err == nil:
	case errors.Is(err, engine.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, engine.ErrNotLaunched), errors.Is(err, engine.ErrNotEnabled):
		writeJSONError(w, http.StatusConflict, err.Error())
		return
	default:
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	inst, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report.Instance(inst))
}

// handleShutdown interrupts the host. The response is sent before the
// teardown finishes.
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if err := s.killAll(); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, ShutdownResponse{Status: "stopping", RunID: s.rt.RunID()})
}

// handleReport renders the full report in the format named by ?format=,
// JSON by default.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("format")
	if name == "" {
		name = "json"
	}
	f, err := report.ForName(name)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := f.Format(report.Build(s.rt))
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", f.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*engine.Instance, bool) {
	sid := chi.URLParam(r, "sid")
	if inst := s.rt.Instances().FindBySID(sid); inst != nil {
		return inst, true
	}
	writeJSONError(w, http.StatusNotFound, fmt.Sprintf("instance %q; %v", sid, engine.ErrNotFound))
	return nil, false
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// Start binds the listener and serves until Shutdown. After Shutdown it
// returns immediately.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Bind, strconv.Itoa(s.config.Port))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s; %w", addr, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = ln.Close()
		return nil
	}
	s.addr = ln.Addr()
	s.server = &http.Server{
		Handler: s.router,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	server := s.server
	s.mu.Unlock()

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error; %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	server := s.server
	s.mu.Unlock()

	if server == nil {
		return nil
	}

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown http server; %w", err)
	}

	return nil
}
