package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/slotfill/pkg/adapters/memory"
	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/enrich"
	"github.com/aretw0/slotfill/pkg/extract"
	"github.com/aretw0/slotfill/pkg/observability"
	"github.com/aretw0/slotfill/pkg/ports"
	"github.com/aretw0/slotfill/pkg/runner"
	"github.com/aretw0/slotfill/pkg/session"
)

// Transport labels turn metrics recorded by this adapter.
const Transport = "http"

// Server exposes slotfill sessions over a JSON API.
type Server struct {
	engine    ports.Engine
	templates ports.TemplateLoader
	sessions  *session.Manager
	streams   *StreamManager
	logger    *slog.Logger
	metrics   *observability.Metrics

	dispatcher *enrich.Dispatcher
	composite  *extract.Composite

	maxInputSize int
	version      string
}

// Option configures a Server.
type Option func(*Server)

// WithSessions sets the session manager. The default keeps sessions in memory.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.sessions = m
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics records turn durations and enrichment outcomes, and mounts /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithEnrichment enables background enrichment of address fields. Responses are recomposed
// with c.
func WithEnrichment(d *enrich.Dispatcher, c *extract.Composite) Option {
	return func(s *Server) {
		s.dispatcher = d
		s.composite = c
	}
}

// WithMaxInputSize overrides the SLOTFILL_MAX_INPUT_SIZE limit for utterances.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.maxInputSize = n
	}
}

// WithVersion sets the build version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// NewServer creates a server for engine, resolving session templates through templates.
func NewServer(engine ports.Engine, templates ports.TemplateLoader, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		templates: templates,
		version:   "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.sessions == nil {
		s.sessions = session.NewManager(memory.NewStore(), session.WithLogger(s.logger))
	}
	s.streams = NewStreamManager(s.logger)
	return s
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.Engine, templates ports.TemplateLoader, opts ...Option) http.Handler {
	return NewServer(engine, templates, opts...).Handler()
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Post("/validate", s.validate)
	r.Get("/events", s.subscribeTemplates)

	r.Route("/templates", func(r chi.Router) {
		r.Get("/", s.listTemplates)
		r.Get("/{id}", s.getTemplate)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.listSessions)
		r.Post("/", s.startSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Post("/turns", s.advance)
			r.Get("/events", s.subscribeSession)
		})
	})

	return enableCORS(r)
}

// Wait blocks until in-flight background enrichment has finished.
func (s *Server) Wait() {
	if s.dispatcher != nil {
		s.dispatcher.Wait()
	}
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusOf maps engine and store errors to HTTP status codes.
func statusOf(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrTemplateNotFound):
		return http.StatusNotFound
	case errors.Is(err, runner.ErrInputTooLarge), errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, runner.ErrInvalidUTF8):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Streams exposes the SSE fan-out.
func (s *Server) Streams() *StreamManager {
	return s.streams
}
