package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of an extraction task.
type TaskStatus string

// Task status values. A task moves starting -> processing -> succeeded/failed
// and never leaves a terminal state.
const (
	TaskStatusStarting   TaskStatus = "starting"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusSucceeded  TaskStatus = "succeeded"
	TaskStatusFailed     TaskStatus = "failed"
)

// Model selects which extraction variant a task runs.
type Model string

// Supported extraction models.
const (
	ModelFast        Model = "fast"
	ModelHighQuality Model = "high_quality"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID        = errors.New("task ID cannot be empty")
	ErrEmptyTaskOwnerID   = errors.New("task owner ID cannot be empty")
	ErrEmptyInputLocation = errors.New("task input location cannot be empty")
	ErrInvalidTaskStatus  = errors.New("invalid task status")
	ErrInvalidModel       = errors.New("invalid extraction model")
	ErrOutputWithoutSuccess = errors.New(
		"output location is only valid on a succeeded task",
	)
	ErrErrorWithoutFailure = errors.New("error message is only valid on a failed task")
)

// Task is one extraction job and its externally visible record. The ID is the
// correlation key across the object store, the tasks table, and the work
// queue. Status is mutated only through the store's conditional update once
// the record is visible.
type Task struct {
	ID             uuid.UUID  `json:"id"`
	OwnerID        uuid.UUID  `json:"owner_id"`
	Model          Model      `json:"model"`
	Status         TaskStatus `json:"status"`
	InputLocation  string     `json:"input_location"`
	OutputLocation string     `json:"output_location,omitempty"`
	ErrorMessage   string     `json:"error,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

// NewTask creates a new Task for the given owner and model. It generates a
// fresh UUID, derives the input object key from it, sets the status to
// starting, and stamps the creation time. A non-zero expiration sets
// ExpiresAt relative to now; zero means the task never expires.
// Returns an error if validation fails.
func NewTask(ownerID uuid.UUID, model Model, expiration time.Duration) (*Task, error) {
	id := uuid.New()

	task := &Task{
		ID:            id,
		OwnerID:       ownerID,
		Model:         model,
		Status:        TaskStatusStarting,
		InputLocation: InputLocation(id),
		CreatedAt:     time.Now().UTC(),
	}

	if expiration > 0 {
		expiresAt := task.CreatedAt.Add(expiration)
		task.ExpiresAt = &expiresAt
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// InputLocation returns the object-store key for a task's uploaded document.
func InputLocation(id uuid.UUID) string {
	return "input/" + id.String()
}

// OutputLocation returns the object-store key for a task's extraction result.
func OutputLocation(id uuid.UUID) string {
	return "output/" + id.String()
}

// Validate checks if the Task has consistent data, including the mutual
// exclusion of output location and error message and their status
// implications. Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.OwnerID == uuid.Nil {
		return ErrEmptyTaskOwnerID
	}

	if !t.Model.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidModel, t.Model)
	}

	if !isValidTaskStatus(t.Status) {
		return fmt.Errorf("%w: %q", ErrInvalidTaskStatus, t.Status)
	}

	if t.InputLocation == "" {
		return ErrEmptyInputLocation
	}

	if t.OutputLocation != "" && t.Status != TaskStatusSucceeded {
		return ErrOutputWithoutSuccess
	}

	if t.ErrorMessage != "" && t.Status != TaskStatusFailed {
		return ErrErrorWithoutFailure
	}

	return nil
}

// IsTerminal reports whether the status admits no further transitions.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusSucceeded || s == TaskStatusFailed
}

// CanTransitionTo reports whether next is a legal successor of s. Transitions
// are monotonic: starting -> processing -> succeeded/failed.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	switch s {
	case TaskStatusStarting:
		return next == TaskStatusProcessing
	case TaskStatusProcessing:
		return next == TaskStatusSucceeded || next == TaskStatusFailed
	default:
		return false
	}
}

// IsValid reports whether m is a recognized extraction model.
func (m Model) IsValid() bool {
	return m == ModelFast || m == ModelHighQuality
}

// ParseModel normalizes a caller-supplied model name. It accepts the wire
// spellings "Fast" and "HighQuality" as well as the canonical lowercase
// forms. Returns ErrInvalidModel for anything else.
func ParseModel(s string) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fast":
		return ModelFast, nil
	case "high_quality", "highquality":
		return ModelHighQuality, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidModel, s)
	}
}

// isValidTaskStatus checks if the given status is a valid TaskStatus.
func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusStarting, TaskStatusProcessing, TaskStatusSucceeded, TaskStatusFailed:
		return true
	default:
		return false
	}
}
