package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy surfaced by the prediction engine
var (
	ErrDataUnavailable        = errors.New("insufficient historical data")
	ErrModelUnavailable       = errors.New("point estimator unavailable")
	ErrValidation             = errors.New("invalid prediction request")
	ErrSimulationPrecondition = errors.New("simulation precondition violated")
	ErrFeatureStoreNotReady   = errors.New("feature snapshot not loaded")
)

// FieldError describes a single rejected request field
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError carries every field rejected before computation began
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Reason))
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

// Unwrap lets errors.Is match ErrValidation
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError builds a ValidationError for a single field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Reason: reason}}}
}

// PreconditionError is returned when the sampler is called with inputs no
// correct caller can produce.
type PreconditionError struct {
	Parameter string
	Value     float64
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s=%v", ErrSimulationPrecondition.Error(), e.Parameter, e.Value)
}

// Unwrap lets errors.Is match ErrSimulationPrecondition
func (e *PreconditionError) Unwrap() error {
	return ErrSimulationPrecondition
}

// IsRetryable reports whether the caller may retry the request later.
// Validation and data errors can never succeed on retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrModelUnavailable) ||
		errors.Is(err, ErrFeatureStoreNotReady) ||
		errors.Is(err, context.DeadlineExceeded)
}

// ErrorKind maps an engine error onto a stable label for logs and metrics
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrDataUnavailable):
		return "data_unavailable"
	case errors.Is(err, ErrModelUnavailable):
		return "model_unavailable"
	case errors.Is(err, ErrFeatureStoreNotReady):
		return "feature_store_not_ready"
	case errors.Is(err, ErrSimulationPrecondition):
		return "simulation_precondition"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "internal"
	}
}
