package api

import (
	"time"

	"github.com/docsift/docsift-api/internal/domain"
)

// TaskResponse is the externally visible snapshot of a task. Output location
// and error are populated only in the terminal state that implies them.
type TaskResponse struct {
	TaskID         string     `json:"task_id"`
	Status         string     `json:"status"`
	Model          string     `json:"model"`
	InputLocation  string     `json:"input_location"`
	OutputLocation string     `json:"output_location,omitempty"`
	Error          string     `json:"error,omitempty"`
	Message        string     `json:"message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

// statusMessages gives callers a human-readable hint per status.
var statusMessages = map[domain.TaskStatus]string{
	domain.TaskStatusStarting:   "Task is queued for extraction",
	domain.TaskStatusProcessing: "Extraction is in progress",
	domain.TaskStatusSucceeded:  "Extraction completed",
	domain.TaskStatusFailed:     "Extraction failed",
}

// taskToResponse converts a domain.Task to a TaskResponse.
func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		TaskID:         task.ID.String(),
		Status:         string(task.Status),
		Model:          string(task.Model),
		InputLocation:  task.InputLocation,
		OutputLocation: task.OutputLocation,
		Error:          task.ErrorMessage,
		Message:        statusMessages[task.Status],
		CreatedAt:      task.CreatedAt,
		ExpiresAt:      task.ExpiresAt,
	}
}
