package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/docsift/docsift-api/internal/domain"
)

// StatusExtra carries the terminal-state payload of a conditional status
// update. OutputLocation is set on the transition to succeeded, ErrorMessage
// on the transition to failed; both are empty otherwise.
type StatusExtra struct {
	OutputLocation string
	ErrorMessage   string
}

// TaskStore defines the interface for task record persistence. It is the
// single source of truth for task status: the service writes rows once at
// creation, and the external extraction worker advances status through
// UpdateStatus's compare-and-set contract.
type TaskStore interface {
	// Insert saves a new task record. The row becomes visible to readers at
	// this point, so callers must only insert tasks whose input blob is
	// already durable. Returns ErrTaskExists if a row with the same id
	// already exists.
	Insert(ctx context.Context, task *domain.Task) error

	// GetForOwner retrieves a task by id, scoped to the owner that created
	// it. Returns ErrTaskNotFound when no row matches both the id and the
	// owner; a foreign owner is indistinguishable from a missing task.
	GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)

	// UpdateStatus conditionally advances a task's status: the write applies
	// only if the row's current status equals expected. Returns
	// ErrTaskNotFound if no row with the id exists, and ErrStatusConflict if
	// the row exists in a different status (a redelivered or racing update
	// lost against a more advanced state). extra carries the terminal
	// payload when next is succeeded or failed.
	UpdateStatus(
		ctx context.Context,
		id uuid.UUID,
		expected, next domain.TaskStatus,
		extra StatusExtra,
	) error

	// FindStuck retrieves up to limit tasks that have sat in the given
	// status for longer than olderThan, oldest first. Feeds the operational
	// re-enqueue sweep for rows whose queue message was lost.
	FindStuck(
		ctx context.Context,
		status domain.TaskStatus,
		olderThan time.Duration,
		limit int,
	) ([]*domain.Task, error)
}
