// Package chi is the HTTP surface of the service: the /ask endpoints stream
// answers as Server-Sent Events, plus health and metrics.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Ruchi2117/Doc-Chat-bot/internal/domain"
	healthuc "github.com/Ruchi2117/Doc-Chat-bot/internal/usecase/health"
)

// AnswerStreamer produces the answer stream for a question.
type AnswerStreamer interface {
	Stream(ctx context.Context, question string, k int, useCache bool) (<-chan domain.Unit, error)
}

// Server serves the question-answering API.
type Server struct {
	answers AnswerStreamer
	health  *healthuc.Service
	logger  *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(answers AnswerStreamer, health *healthuc.Service, logger *zap.Logger) *Server {
	return &Server{
		answers: answers,
		health:  health,
		logger:  logger,
	}
}

// Routes registers all endpoints on a router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/ask", s.AskGet)
	r.Post("/ask", s.AskPost)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type askRequest struct {
	Question string `json:"question"`
	K        int    `json:"k,omitempty"`
	UseCache *bool  `json:"use_cache,omitempty"`
}

// AskGet handles GET /ask with question, k and use_cache query parameters.
func (s *Server) AskGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := askRequest{Question: q.Get("question")}
	if v := q.Get("k"); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil || k <= 0 {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "`k` must be a positive integer")
			return
		}
		req.K = k
	}
	if v := q.Get("use_cache"); v != "" {
		useCache, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "`use_cache` must be a boolean")
			return
		}
		req.UseCache = &useCache
	}

	s.ask(w, r, req)
}

// AskPost handles POST /ask with a JSON body.
func (s *Server) AskPost(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	s.ask(w, r, req)
}

func (s *Server) ask(w http.ResponseWriter, r *http.Request, req askRequest) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "`question` field is required")
		return
	}

	useCache := true
	if req.UseCache != nil {
		useCache = *req.UseCache
	}

	units, err := s.answers.Stream(r.Context(), question, req.K, useCache)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.logger.Error("Response writer does not support streaming")
		writeError(w, http.StatusInternalServerError, codeInternalError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for unit := range units {
		if unit.Err != nil {
			s.logger.Warn("Answer stream failed", zap.Error(unit.Err))
			writeSSE(w, flusher, errorFrame{Error: safeDomainMessage(unit.Err)})
			break
		}
		writeSSE(w, flusher, unitFrame{
			Chunk:    unit.Chunk,
			Metadata: unit.Metadata,
			Scores:   unit.Scores,
		})
	}

	writeSSEDone(w, flusher)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

type errorCode string

const (
	codeBadRequest        errorCode = "bad_request"
	codeValidationFailed  errorCode = "validation_failed"
	codeGenerationFailed  errorCode = "generation_failed"
	codeEmbeddingProvider errorCode = "embedding_provider_error"
	codeIndexUnavailable  errorCode = "index_unavailable"
	codeInternalError     errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyQuestion,
		domain.ErrEmbeddingProviderError,
		domain.ErrGenerationFailed,
		domain.ErrIndexUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)

	switch {
	case errors.Is(err, domain.ErrEmptyQuestion):
		writeError(w, http.StatusBadRequest, codeValidationFailed, msg)
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		writeError(w, http.StatusBadGateway, codeEmbeddingProvider, msg)
	case errors.Is(err, domain.ErrGenerationFailed):
		writeError(w, http.StatusBadGateway, codeGenerationFailed, msg)
	case errors.Is(err, domain.ErrIndexUnavailable):
		writeError(w, http.StatusServiceUnavailable, codeIndexUnavailable, msg)
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
