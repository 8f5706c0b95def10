package shared

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound indicates the requested quotation, schedule, insurer or rule does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates a boundary violation rejected before any state changed.
	ErrValidation = errors.New("validation failed")
	// ErrScheduleConflict indicates more than one SLA schedule covers the same insurer and date.
	ErrScheduleConflict = errors.New("sla schedule conflict")
	// ErrPersistence indicates the store could not apply a write; in-memory state is unsaved.
	ErrPersistence = errors.New("persistence failure")
	// ErrInvalidStatus indicates an operation is not allowed in the quotation's current status.
	ErrInvalidStatus = errors.New("invalid status transition")
)

// ValidationError carries per-field messages and matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// UserSafeMessage returns a message that can be shown to the estimator without leaking internals.
func UserSafeMessage(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, ErrNotFound):
		return "The requested record was not found."
	case errors.Is(err, ErrScheduleConflict):
		return "More than one SLA rate schedule applies; fix the insurer's effective dates."
	case errors.Is(err, ErrInvalidStatus):
		return "The quotation cannot be changed in its current status."
	case errors.Is(err, ErrPersistence):
		return "The quotation could not be saved. Your changes are still open; please retry."
	default:
		return "An unexpected error occurred."
	}
}
