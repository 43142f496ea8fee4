// Package httpapi exposes the engine over HTTP: turn submission, trace
// inspection, session management, health, and metrics.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	concierge "github.com/campushq/concierge"
	"github.com/campushq/concierge/internal/logging"
	"github.com/campushq/concierge/pkg/domain"
	"github.com/campushq/concierge/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine defines the core surface the HTTP layer needs. Satisfied by
// *concierge.Engine.
type Engine interface {
	SubmitTurn(ctx context.Context, sessionID, userMessage string) (concierge.Reply, error)
	Trace(traceID string) ([]domain.TraceEvent, bool)
	Sessions() *session.Manager
}

// Server handles the HTTP surface.
type Server struct {
	engine Engine
	logger *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for the engine. Metrics are served
// from the given gatherer; pass prometheus.DefaultGatherer when using the
// default registry.
func NewHandler(engine Engine, gatherer prometheus.Gatherer, opts ...Option) http.Handler {
	s := &Server{
		engine: engine,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Post("/turns", s.handleSubmitTurn)
	r.Get("/traces/{traceID}", s.handleGetTrace)
	r.Get("/sessions/{sessionID}/history", s.handleGetHistory)
	r.Delete("/sessions/{sessionID}", s.handleDeleteSession)

	return r
}

type turnRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func (s *Server) handleSubmitTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SessionID == "" || req.Message == "" {
		s.writeError(w, http.StatusBadRequest, "session_id and message are required")
		return
	}

	reply, err := s.engine.SubmitTurn(r.Context(), req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, domain.ErrSessionBusy) {
			s.writeError(w, http.StatusConflict, "a turn is already in flight for this session")
			return
		}
		s.logger.Error("turn failed", "session_id", req.SessionID, "err", err)
		s.writeError(w, http.StatusInternalServerError, "turn could not be processed")
		return
	}

	s.writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleGetTrace(w http.ResponseWriter, r *http.Request) {
	traceID := chi.URLParam(r, "traceID")

	events, ok := s.engine.Trace(traceID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "trace not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"trace_id": traceID,
		"events":   events,
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	history, err := s.engine.Sessions().History(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			s.writeError(w, http.StatusNotFound, "session not found")
			return
		}
		s.logger.Error("history lookup failed", "session_id", sessionID, "err", err)
		s.writeError(w, http.StatusInternalServerError, "history could not be loaded")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"history":    history,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := s.engine.Sessions().Delete(r.Context(), sessionID); err != nil {
		s.logger.Error("session delete failed", "session_id", sessionID, "err", err)
		s.writeError(w, http.StatusInternalServerError, "session could not be deleted")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("response encoding failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
