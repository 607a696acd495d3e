package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docsift/docsift-api/internal/service"
	"github.com/docsift/docsift-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"task not found", service.ErrTaskNotFound, http.StatusNotFound},
		{"store not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"invalid model", service.ErrInvalidModel, http.StatusBadRequest},
		{"invalid document", service.ErrInvalidDocument, http.StatusBadRequest},
		{"status conflict", store.ErrStatusConflict, http.StatusConflict},
		{"task exists", store.ErrTaskExists, http.StatusConflict},
		{"unavailable", service.ErrUnavailable, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{
			"wrapped unavailable",
			fmt.Errorf("create failed: %w", service.ErrUnavailable),
			http.StatusServiceUnavailable,
		},
		{
			"service error wrapper",
			&service.TaskServiceError{
				Operation: "get_task",
				Message:   "failed",
				Err:       service.ErrTaskNotFound,
			},
			http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	// Internal detail must never leak into the client-facing message.
	leaky := fmt.Errorf("%w: dial tcp 10.0.0.5:5432 refused", service.ErrUnavailable)
	msg := GetSafeErrorMessage(leaky)
	assert.NotContains(t, msg, "10.0.0.5")
	assert.Equal(t, "Service temporarily unavailable, retry later", msg)

	assert.Equal(t, "Task not found", GetSafeErrorMessage(service.ErrTaskNotFound))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(errors.New("boom")))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
}
