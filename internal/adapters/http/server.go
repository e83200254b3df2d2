// Package http exposes a read-only introspection surface for a running
// engine: global state, per-node report, both injector maps, and
// optionally Prometheus metrics.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fabianoP/spine-engine/pkg/domain"
)

// Engine is the introspection surface the handler reads. The root
// spine.Engine satisfies it.
type Engine interface {
	State() domain.EngineState
	Report() domain.Report
	Graph() (forward, backward map[string][]string)
	Items() map[string]string
}

// Option configures the handler.
type Option func(*Server)

// WithMetrics mounts /metrics for the given gatherer.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// Server holds the handler dependencies.
type Server struct {
	engine   Engine
	gatherer prometheus.Gatherer
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{engine: engine}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/state", s.handleState)
	r.Get("/report", s.handleReport)
	r.Get("/graph", s.handleGraph)
	r.Get("/items", s.handleItems)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]domain.EngineState{"state": s.engine.State()})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.engine.Report())
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	forward, backward := s.engine.Graph()
	writeJSON(w, map[string]map[string][]string{
		"forward":  forward,
		"backward": backward,
	})
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.engine.Items())
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}
