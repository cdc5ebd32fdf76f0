package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/content-relay/internal/config"
	"github.com/JakeFAU/content-relay/internal/metrics"
	"github.com/JakeFAU/content-relay/internal/relay"
)

// maxRequestBody caps the inbound JSON document.
const maxRequestBody = 1 << 20

// Processor runs one extraction and forwarding cycle.
type Processor interface {
	Process(ctx context.Context, rawURL string) (relay.Result, error)
}

// Server wires HTTP handlers to the relay service.
type Server struct {
	router    chi.Router
	processor Processor
	cfg       config.Config
	logger    *zap.Logger
}

type extractRequest struct {
	URL any `json:"url"`
}

// NewServer constructs a Server with middleware and routes.
func NewServer(processor Processor, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		processor: processor,
		cfg:       cfg,
		logger:    logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)
	r.Use(timeoutMiddleware(cfg.RequestTimeout()))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/extract", s.extract)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	if s.processor == nil {
		s.writeError(w, http.StatusServiceUnavailable, "processor not configured")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		s.rejectRequest(w, r, "invalid JSON", err)
		return
	}
	rawURL, ok := req.URL.(string)
	if !ok || rawURL == "" {
		s.rejectRequest(w, r, "URL is required and must be a string", nil)
		return
	}

	result, err := s.processor.Process(r.Context(), rawURL)
	if err != nil {
		var invalid *relay.InvalidInputError
		if errors.As(err, &invalid) {
			s.rejectRequest(w, r, invalid.Error(), err)
			return
		}
		s.logger.Error("extraction failed",
			zap.String("url", rawURL),
			zap.String("kind", relay.ErrorKind(err)),
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.Error(err),
		)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":     err.Error(),
			"sourceUrl": rawURL,
		})
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// rejectRequest logs a client error at warn level and answers 400.
func (s *Server) rejectRequest(w http.ResponseWriter, r *http.Request, msg string, cause error) {
	fields := []zap.Field{
		zap.String("reason", msg),
		zap.String("request_id", requestIDFrom(r.Context())),
	}
	if cause != nil {
		fields = append(fields, zap.Error(cause))
	}
	s.logger.Warn("extract request rejected", fields...)
	s.writeError(w, http.StatusBadRequest, msg)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
