package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"hirescope/internal/errors"
	"hirescope/internal/feedback"
	"hirescope/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// healthHandler reports liveness, degraded while any AI circuit breaker is open.
func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "hirescope",
		"version": s.version,
	}
	status := http.StatusOK

	if s.ai != nil {
		stats := s.ai.Stats()
		response["circuit_breakers"] = stats
		if !breakersHealthy(stats) {
			response["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, response)
}

func breakersHealthy(stats map[string]any) bool {
	for _, v := range stats {
		op, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if healthy, ok := op["overall_healthy"].(bool); ok && !healthy {
			return false
		}
	}
	return true
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, _ *http.Request) {
	rl := s.cfg.Server.RateLimit
	response := map[string]any{
		"service": "hirescope",
		"version": s.version,
		"server": map[string]any{
			"max_upload_size_bytes": s.cfg.App.MaxUploadSize,
			"max_file_size_bytes":   s.cfg.App.MaxFileSize,
			"auth_enabled":          len(s.apiKeys) > 0,
		},
		"rate_limit_config": map[string]any{
			"enabled":          rl.Enabled,
			"requests_per_min": rl.RequestsPerMin,
			"burst_capacity":   rl.BurstCapacity,
			"by_ip":            rl.ByIP,
			"by_api_key":       rl.ByAPIKey,
		},
	}

	if s.limiter != nil {
		response["rate_limiting"] = s.limiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}
	if s.ai != nil {
		response["ai"] = s.ai.Stats()
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) templatesHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.interview.Templates())
}

func (s *Server) saveInterviewerFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	s.saveFeedback(w, r, "save_interviewer_feedback", s.interview.SaveInterviewerFeedback)
}

func (s *Server) saveCandidateFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	s.saveFeedback(w, r, "save_candidate_feedback", s.interview.SaveCandidateFeedback)
}

// saveFeedback stores the raw JSON body. A store failure still answers with
// the service's failure body, under the error's status.
func (s *Server) saveFeedback(w http.ResponseWriter, r *http.Request, op string,
	save func(context.Context, json.RawMessage) (types.FeedbackSaved, error)) {
	ctx, span := s.startSpan(r, op)
	defer span.End()

	var payload json.RawMessage
	if err := parseJSONRequest(r, &payload); err != nil {
		s.writeError(w, span, err)
		return
	}

	saved, err := save(ctx, payload)
	if err != nil {
		if saved.Message == "" {
			s.writeError(w, span, err)
			return
		}
		span.RecordError(err)
		writeJSON(w, statusOf(err), saved)
		return
	}

	span.SetAttributes(attribute.String("feedback.id", saved.FeedbackID))
	writeJSON(w, http.StatusOK, saved)
}

// listFeedbackHandler serves GET /feedback?kind=&limit=.
func (s *Server) listFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "list_feedback")
	defer span.End()

	query := r.URL.Query()
	var kind feedback.Kind
	if raw := query.Get("kind"); raw != "" {
		k, err := feedback.ParseKind(raw)
		if err != nil {
			s.writeError(w, span, err)
			return
		}
		kind = k
	}

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, span, errors.NewValidationError(errors.CodeInvalidRequest,
				"limit must be a non-negative integer", err))
			return
		}
		limit = n
	}

	records, err := s.interview.ListFeedback(ctx, kind, limit)
	if err != nil {
		s.writeError(w, span, err)
		return
	}
	if records == nil {
		records = []feedback.Record{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"count":    len(records),
		"feedback": records,
	})
}

// startSpan opens the per-endpoint span under the otelhttp server span.
func (s *Server) startSpan(r *http.Request, op string) (context.Context, trace.Span) {
	ctx, span := s.om.Tracer("hirescope.api").Start(r.Context(), "api."+op)
	span.SetAttributes(attribute.String("operation", op))
	return ctx, span
}

// writeError renders err with its AppError status. Anything else is a 500.
func (s *Server) writeError(w http.ResponseWriter, span trace.Span, err error) {
	span.RecordError(err)

	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.NewInternalError(errors.CodeInternal, "internal server error", err)
	}
	span.SetAttributes(
		attribute.String("error.type", string(appErr.Kind)),
		attribute.String("error.code", appErr.Code),
	)

	status := appErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		s.logger.LogError(err, "Request failed")
	} else {
		s.logger.Debug("Request rejected", "code", appErr.Code, "message", appErr.Message)
	}
	writeErrorResponse(w, appErr.Code, appErr.Message, status)
}

func statusOf(err error) int {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// parseJSONRequest decodes a JSON body into v. Failures are validation
// errors, or FILE_TOO_LARGE when the size limit was hit.
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return errors.NewValidationError(errors.CodeInvalidFormat,
			"Content-Type must be application/json", nil)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return bodyReadError(err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.NewValidationError(errors.CodeInvalidFormat, "invalid JSON: "+err.Error(), err)
	}
	return nil
}

func bodyReadError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if stderrors.As(err, &maxBytesErr) {
		return errors.NewValidationError(errors.CodeFileTooLarge,
			"request body exceeds "+strconv.FormatInt(maxBytesErr.Limit, 10)+" bytes", err)
	}
	return errors.NewValidationError(errors.CodeInvalidRequest, "failed to read request body", err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{Error: error, Message: message})
}
