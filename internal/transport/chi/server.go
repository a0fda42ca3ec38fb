package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/symptodex/internal/domain"
	"github.com/kailas-cloud/symptodex/internal/domain/condition/urgency"
	"github.com/kailas-cloud/symptodex/internal/domain/diagnosis/request"
	logpkg "github.com/kailas-cloud/symptodex/internal/logger"
	diagnosisuc "github.com/kailas-cloud/symptodex/internal/usecase/diagnosis"
	healthuc "github.com/kailas-cloud/symptodex/internal/usecase/health"
)

const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the diagnosis HTTP API.
type Server struct {
	diagnosis     *diagnosisuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(diagnosis *diagnosisuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		diagnosis: diagnosis,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeConditionNotFound),
		sentinelHandler(domain.ErrInvalidCatalog, http.StatusBadRequest, ErrorCodeInvalidCatalog),
		sentinelHandler(domain.ErrModelNotReady, http.StatusServiceUnavailable, ErrorCodeModelNotReady),
		sentinelHandler(domain.ErrExtractionUnavailable,
			http.StatusNotImplemented, ErrorCodeExtractionUnavailable),
		sentinelHandler(domain.ErrExtractionFailed, http.StatusBadGateway, ErrorCodeExtractionFailed),
	}
	return s
}

// Routes registers the API on r.
func (s *Server) Routes(r gochi.Router) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api/v1", func(r gochi.Router) {
		r.Post("/diagnoses", s.Diagnose)
		r.Get("/conditions", s.ListConditions)
		r.Get("/conditions/{id}", s.GetCondition)
		r.Get("/model", s.GetModel)
		r.Post("/model/rebuild", s.RebuildModel)
	})
}

// Diagnose handles POST /api/v1/diagnoses.
func (s *Server) Diagnose(w http.ResponseWriter, r *http.Request) {
	var body DiagnoseRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid JSON body")
		return
	}

	req, err := request.New(body.Symptoms, derefString(body.Description), body.Age, derefString(body.Gender))
	if err != nil {
		s.handleDomainError(w, r, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err))
		return
	}

	assessment, err := s.diagnosis.Diagnose(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, assessmentToResponse(assessment))
}

// ListConditions handles GET /api/v1/conditions.
func (s *Server) ListConditions(w http.ResponseWriter, r *http.Request) {
	var (
		urg        *string
		specialist *string
		cursor     *string
		limit      *int
	)
	query := r.URL.Query()
	for name, dest := range map[string]any{
		"urgency":    &urg,
		"specialist": &specialist,
		"cursor":     &cursor,
		"limit":      &limit,
	} {
		if err := runtime.BindQueryParameter("form", true, false, name, query, dest); err != nil {
			writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, fmt.Sprintf("invalid parameter %q", name))
			return
		}
	}
	if limit != nil && *limit <= 0 {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "limit must be positive")
		return
	}

	filter := diagnosisuc.ConditionFilter{
		Urgency:    urgency.Urgency(derefString(urg)),
		Specialist: derefString(specialist),
	}
	pageSize := 0
	if limit != nil {
		pageSize = *limit
	}

	items, total, next, err := s.diagnosis.Conditions(filter, derefString(cursor), pageSize)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := ConditionListResponse{
		Items: make([]ConditionResponse, len(items)),
		Total: total,
	}
	for i, c := range items {
		resp.Items[i] = conditionToResponse(c)
	}
	if next != "" {
		resp.HasMore = true
		resp.NextCursor = &next
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetCondition handles GET /api/v1/conditions/{id}.
func (s *Server) GetCondition(w http.ResponseWriter, r *http.Request) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", gochi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid parameter \"id\"")
		return
	}

	c, err := s.diagnosis.Condition(id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conditionToResponse(c))
}

// GetModel handles GET /api/v1/model.
func (s *Server) GetModel(w http.ResponseWriter, r *http.Request) {
	info, err := s.diagnosis.Model()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, modelToResponse(info))
}

// RebuildModel handles POST /api/v1/model/rebuild.
func (s *Server) RebuildModel(w http.ResponseWriter, r *http.Request) {
	info, err := s.diagnosis.Reload(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, modelToResponse(info))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message. Validation errors keep their detail,
// everything else is reduced to the sentinel text.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidRequest) || errors.Is(err, domain.ErrInvalidCatalog) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrModelNotReady,
		domain.ErrExtractionUnavailable,
		domain.ErrExtractionFailed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
