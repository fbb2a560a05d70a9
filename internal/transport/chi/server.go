// Package chi exposes map sessions and queries over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bioscout/internal/domain"
	"github.com/kailas-cloud/bioscout/internal/domain/filter"
	healthuc "github.com/kailas-cloud/bioscout/internal/usecase/health"
	queryuc "github.com/kailas-cloud/bioscout/internal/usecase/query"
	"github.com/kailas-cloud/bioscout/internal/usecase/resolve"
)

// Filter resolution modes accepted by GET /filters.
const (
	FilterModeCommand  = "command"
	FilterModeKeywords = "keywords"
)

// maxQueryBytes caps the request body of a query submission.
const maxQueryBytes = 16 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements ServerInterface.
type Server struct {
	queries       *queryuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(queries *queryuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		queries: queries,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, ErrorResponseCodeSessionNotFound),
		sentinelHandler(domain.ErrMarkerNotFound, http.StatusNotFound, ErrorResponseCodeMarkerNotFound),
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidFilter, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrObservationsUnavailable,
			http.StatusBadGateway, ErrorResponseCodeObservationsUnavailable),
		sentinelHandler(domain.ErrQueryUnavailable, http.StatusBadGateway, ErrorResponseCodeQueryUnavailable),
	}
	return s
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.queries.Sessions().Create()
	writeJSON(w, http.StatusCreated, SessionCreatedResponse{ID: sess.ID()})
}

// GetSession handles GET /sessions/{session}.
func (s *Server) GetSession(w http.ResponseWriter, _ *http.Request, session string) {
	sess, err := s.queries.Sessions().Get(session)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(sess.View()))
}

// DeleteSession handles DELETE /sessions/{session}.
func (s *Server) DeleteSession(w http.ResponseWriter, _ *http.Request, session string) {
	if err := s.queries.Sessions().Delete(session); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubmitQuery handles POST /sessions/{session}/queries.
func (s *Server) SubmitQuery(w http.ResponseWriter, r *http.Request, session string) {
	var req QueryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	out, err := s.queries.Submit(r.Context(), session, req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcomeToResponse(out))
}

// LearnMore handles POST /sessions/{session}/markers/{marker}/learn-more.
func (s *Server) LearnMore(w http.ResponseWriter, r *http.Request, session, marker string) {
	out, err := s.queries.LearnMore(r.Context(), session, marker)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcomeToResponse(out))
}

// ResolveFilter handles GET /filters.
func (s *Server) ResolveFilter(w http.ResponseWriter, _ *http.Request, params ResolveFilterParams) {
	mode := FilterModeCommand
	if params.Mode != nil && *params.Mode != "" {
		mode = *params.Mode
	}
	if strings.TrimSpace(params.Q) == "" {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "q is required")
		return
	}

	var (
		f  filter.Descriptor
		ok bool
	)
	switch mode {
	case FilterModeCommand:
		f, ok = resolve.Resolve(params.Q)
	case FilterModeKeywords:
		f, ok = resolve.Extract(params.Q)
	default:
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed,
			"mode must be "+FilterModeCommand+" or "+FilterModeKeywords)
		return
	}

	writeJSON(w, http.StatusOK, FilterResponse{Query: params.Q, Mode: mode, Matched: ok, Filter: f})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
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

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrSessionNotFound,
		domain.ErrMarkerNotFound,
		domain.ErrEmptyQuery,
		domain.ErrInvalidFilter,
		domain.ErrObservationsUnavailable,
		domain.ErrQueryUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
