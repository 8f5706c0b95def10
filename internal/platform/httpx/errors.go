// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/odyssey-erp/bodyshop/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	var verr *shared.ValidationError
	switch {
	case errors.As(err, &verr):
		JSON(w, http.StatusBadRequest, ProblemDetail{
			Title:  "Validation Failed",
			Status: http.StatusBadRequest,
			Detail: verr.Error(),
			Fields: verr.Fields,
		})
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrScheduleConflict):
		Problem(w, http.StatusConflict, "Schedule Conflict", err.Error())
	case errors.Is(err, shared.ErrInvalidStatus):
		Problem(w, http.StatusConflict, "Invalid Status", err.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		Problem(w, http.StatusConflict, "Duplicate Request", err.Error())
	case errors.Is(err, shared.ErrPersistence):
		Problem(w, http.StatusServiceUnavailable, "Save Failed", shared.UserSafeMessage(err))
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// IsServerError reports whether err maps to a 5xx response.
func IsServerError(err error) bool {
	var verr *shared.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, shared.ErrValidation),
		errors.Is(err, shared.ErrNotFound),
		errors.Is(err, shared.ErrScheduleConflict),
		errors.Is(err, shared.ErrInvalidStatus),
		errors.Is(err, shared.ErrIdempotencyConflict):
		return false
	}
	return true
}
