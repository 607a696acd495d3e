package service

import (
	"errors"
	"fmt"

	"github.com/docsift/docsift-api/internal/domain"
	"github.com/docsift/docsift-api/internal/store"
)

// Sentinel errors for TaskService. Together with the wrapper below they form
// the service's error taxonomy: validation, not-found, transient
// infrastructure, and conflict.
var (
	// ErrTaskNotFound indicates that the task does not exist or is not
	// visible to the requesting owner. Callers should not retry.
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidModel indicates an unrecognized extraction model. Always
	// client-attributable; rejected before touching any store.
	ErrInvalidModel = domain.ErrInvalidModel

	// ErrInvalidDocument indicates a missing or empty document payload.
	ErrInvalidDocument = errors.New("invalid document payload")

	// ErrUnavailable indicates a transient infrastructure failure in the
	// object store, the task repository, or the work queue. Safe for the
	// caller to retry with backoff; when returned from CreateTask before a
	// row was created, no state was left behind.
	ErrUnavailable = errors.New("service temporarily unavailable")

	// ErrStatusConflict indicates a conditional status update lost against
	// a more advanced state. Consumers treat it as "already handled".
	ErrStatusConflict = store.ErrStatusConflict
)

// TaskServiceError wraps errors from the task service with context.
type TaskServiceError struct {
	// Operation is the operation that failed (e.g., "create_task", "get_task")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// newTaskServiceError wraps an underlying failure, first normalizing store
// sentinels into service sentinels so callers match on one taxonomy.
func newTaskServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, store.ErrTaskNotFound) {
		return ErrTaskNotFound
	}

	if errors.Is(err, store.ErrUnavailable) {
		return &TaskServiceError{
			Operation: operation,
			Message:   message,
			Err:       fmt.Errorf("%w: %v", ErrUnavailable, err),
		}
	}

	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
