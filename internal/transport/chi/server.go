// Package chi exposes the HTTP surface of insightd.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/steamdash/insightd/internal/domain"
	"github.com/steamdash/insightd/internal/logger"
	healthuc "github.com/steamdash/insightd/internal/usecase/health"
	insightuc "github.com/steamdash/insightd/internal/usecase/insight"
)

// Server holds the HTTP handlers.
type Server struct {
	insights *insightuc.Service
	health   *healthuc.Service
	logger   *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(insights *insightuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	return &Server{
		insights: insights,
		health:   health,
		logger:   logger,
	}
}

// Routes mounts all handlers on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/pipelines", s.ListPipelines)
	r.Get("/dynamic-pipeline", s.RunPipeline)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// insightResponse is the success body for GET /dynamic-pipeline.
type insightResponse struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Data        []domain.Record `json:"data"`
	AISummary   string          `json:"ai_summary"`
}

// errorResponse is the uniform failure body: every error, regardless of
// stage, comes back as {"error": string}.
type errorResponse struct {
	Error string `json:"error"`
}

// ListPipelines handles GET /pipelines.
func (s *Server) ListPipelines(w http.ResponseWriter, r *http.Request) {
	names, err := s.insights.ListPipelines(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

// RunPipeline handles GET /dynamic-pipeline.
func (s *Server) RunPipeline(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "Missing pipeline name")
		return
	}

	ins, err := s.insights.Run(r.Context(), name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, insightResponse{
		Title:       ins.Title,
		Description: ins.Description,
		Data:        ins.Data,
		AISummary:   ins.Summary,
	})
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

// respondError logs the failure server-side and maps it onto the wire error
// contract. Cause text is embedded in the body on purpose: the single dashboard
// client uses it for diagnostics, and the full error is logged here regardless.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No pipeline named “%s”", notFound.Name))
		return
	}

	var query *domain.DataQueryError
	if errors.As(err, &query) {
		log.Error("Mongo error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "MongoDB error: "+query.Err.Error())
		return
	}

	var summarization *domain.SummarizationError
	if errors.As(err, &summarization) {
		log.Error("Gemini error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Gemini error: "+summarization.Err.Error())
		return
	}

	log.Error("unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
