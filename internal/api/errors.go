package api

import (
	"errors"
	"net/http"

	"github.com/docsift/docsift-api/internal/domain"
	"github.com/docsift/docsift-api/internal/service"
	"github.com/docsift/docsift-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients. Transient infrastructure failures map to 503 so
// callers know a retry with backoff is appropriate, unlike a 404 which will
// never succeed.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, store.ErrTaskNotFound):
		return http.StatusNotFound

	// Validation errors
	case errors.Is(err, service.ErrInvalidModel),
		errors.Is(err, service.ErrInvalidDocument),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, store.ErrStatusConflict),
		errors.Is(err, store.ErrTaskExists):
		return http.StatusConflict

	// Transient infrastructure errors
	case errors.Is(err, service.ErrUnavailable):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, service.ErrInvalidModel):
		return "Invalid extraction model"

	case errors.Is(err, service.ErrInvalidDocument):
		return "Invalid or empty document"

	case errors.Is(err, store.ErrStatusConflict):
		return "Task already advanced past the requested state"

	case errors.Is(err, store.ErrTaskExists):
		return "Task already exists"

	case errors.Is(err, service.ErrUnavailable):
		return "Service temporarily unavailable, retry later"

	default:
		return "An unexpected error occurred"
	}
}
