// Package mocks provides hand-written test doubles for service interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/docsift/docsift-api/internal/domain"
	"github.com/docsift/docsift-api/internal/service"
)

// MockTaskService implements service.TaskService for testing
type MockTaskService struct {
	// Custom behavior functions
	CreateTaskFn func(ctx context.Context, ownerID uuid.UUID, model domain.Model, doc service.Document) (uuid.UUID, error)
	GetTaskFn    func(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)

	// Default return values
	TaskID       uuid.UUID
	Task         *domain.Task
	DefaultError error
}

// CreateTask implements the TaskService.CreateTask method
func (m *MockTaskService) CreateTask(
	ctx context.Context,
	ownerID uuid.UUID,
	model domain.Model,
	doc service.Document,
) (uuid.UUID, error) {
	if m.CreateTaskFn != nil {
		return m.CreateTaskFn(ctx, ownerID, model, doc)
	}
	return m.TaskID, m.DefaultError
}

// GetTask implements the TaskService.GetTask method
func (m *MockTaskService) GetTask(
	ctx context.Context,
	ownerID, id uuid.UUID,
) (*domain.Task, error) {
	if m.GetTaskFn != nil {
		return m.GetTaskFn(ctx, ownerID, id)
	}
	return m.Task, m.DefaultError
}
