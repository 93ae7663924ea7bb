package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yourusername/sharpeye/internal/models"
)

// retryAfterSeconds is sent with every 503
const retryAfterSeconds = "5"

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error     string              `json:"error"`
	Message   string              `json:"message"`
	Code      int                 `json:"code"`
	Fields    []models.FieldError `json:"fields,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
}

// StatusFor maps an engine error to an HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrDataUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrModelUnavailable),
		errors.Is(err, models.ErrFeatureStoreNotReady),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Warn("Failed to encode response")
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	body := errorBody(err, w.Header().Get(requestIDHeader))
	if body.Code == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", retryAfterSeconds)
	}
	if body.Code == http.StatusInternalServerError {
		s.logger.WithError(err).WithField("path", r.URL.Path).Error("Unhandled engine error")
	}
	s.respondJSON(w, body.Code, body)
}

// errorBody builds the client-facing error. Internal details stay in the logs.
func errorBody(err error, requestID string) *ErrorResponse {
	status := StatusFor(err)
	body := &ErrorResponse{
		Error:     http.StatusText(status),
		Message:   err.Error(),
		Code:      status,
		RequestID: requestID,
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		body.Fields = verr.Fields
	}
	if status == http.StatusInternalServerError {
		body.Message = "internal error"
	}
	return body
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, field, reason string) {
	s.respondError(w, r, models.NewValidationError(field, reason))
}
