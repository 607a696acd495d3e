package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/docsift/docsift-api/internal/domain"
	"github.com/docsift/docsift-api/internal/store"
)

// ObjectStore is the blob storage the task service depends on. Implemented
// by platform/objectstore; faked in tests.
type ObjectStore interface {
	// Put durably stores an object. It must not return until the write is
	// durable; the service's visibility ordering depends on it.
	Put(ctx context.Context, key string, r io.Reader, size int64) error

	// Get opens a stored object. The caller closes the returned reader.
	Get(ctx context.Context, key string) (io.ReadCloser, int64, error)

	// Delete removes a stored object. Missing keys are a no-op.
	Delete(ctx context.Context, key string) error
}

// WorkQueue notifies extraction workers that a task is ready. Delivery is
// at-least-once; duplicates are the consumer's concern.
type WorkQueue interface {
	Enqueue(ctx context.Context, taskID uuid.UUID) error
}

// Document is a finite, fully received upload with a known size. The caller
// owns the reader and releases it after CreateTask returns.
type Document struct {
	Reader io.Reader
	Size   int64
}

// TaskService orchestrates task creation and status reads. It is stateless;
// all cross-request state lives in the task store and the object store, so
// its methods are safe to invoke concurrently.
type TaskService interface {
	// CreateTask makes a new task durably discoverable for both status
	// polling and extraction, or fails leaving no partially visible task.
	// The owner must be authenticated and the model validated by the caller
	// boundary before this point.
	CreateTask(
		ctx context.Context,
		ownerID uuid.UUID,
		model domain.Model,
		doc Document,
	) (uuid.UUID, error)

	// GetTask returns the task's current observable state without side
	// effects. Returns ErrTaskNotFound for missing or foreign-owned ids.
	GetTask(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)
}

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	tasks      store.TaskStore
	objects    ObjectStore
	queue      WorkQueue
	expiration time.Duration
	ioTimeout  time.Duration
	logger     *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	tasks store.TaskStore,
	objects ObjectStore,
	queue WorkQueue,
	expiration time.Duration,
	ioTimeout time.Duration,
	logger *slog.Logger,
) (TaskService, error) {
	if tasks == nil {
		return nil, &TaskServiceError{
			Operation: "create_service",
			Message:   "task store cannot be nil",
		}
	}
	if objects == nil {
		return nil, &TaskServiceError{
			Operation: "create_service",
			Message:   "object store cannot be nil",
		}
	}
	if queue == nil {
		return nil, &TaskServiceError{
			Operation: "create_service",
			Message:   "work queue cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:      tasks,
		objects:    objects,
		queue:      queue,
		expiration: expiration,
		ioTimeout:  ioTimeout,
		logger:     logger.With("component", "task_service"),
	}, nil
}

// CreateTask performs the ordered side-effect sequence that makes a task
// durable: store the input blob, insert the row, enqueue the work message.
// The order is load-bearing. The blob must be durable before the row exists,
// because a row referencing a missing blob is unrecoverable by readers and
// workers. The row must exist before the enqueue, so a worker that dequeues
// always finds a readable row. There is no compensation between steps: a
// failed insert leaves only an orphan blob for the expiration sweep, and a
// failed enqueue leaves a visible starting row for the stuck-task sweeper to
// re-enqueue.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	ownerID uuid.UUID,
	model domain.Model,
	doc Document,
) (uuid.UUID, error) {
	if doc.Reader == nil || doc.Size <= 0 {
		return uuid.Nil, fmt.Errorf("%w: empty document", ErrInvalidDocument)
	}

	task, err := domain.NewTask(ownerID, model, s.expiration)
	if err != nil {
		s.logger.Warn("failed to construct task",
			"error", err,
			"owner_id", ownerID)
		return uuid.Nil, newTaskServiceError("create_task", "invalid task parameters", err)
	}

	// Step 1: durable blob write, keyed by the task id.
	putCtx, cancel := s.withIOTimeout(ctx)
	err = s.objects.Put(putCtx, task.InputLocation, doc.Reader, doc.Size)
	cancel()
	if err != nil {
		s.logger.Error("failed to store input document",
			"error", err,
			"task_id", task.ID,
			"owner_id", ownerID)
		// Nothing is visible yet; the caller can safely retry as a brand
		// new request.
		return uuid.Nil, &TaskServiceError{
			Operation: "create_task",
			Message:   "failed to store input document",
			Err:       fmt.Errorf("%w: %v", ErrUnavailable, err),
		}
	}

	// Step 2: insert the row. This is the visibility gate: from here the
	// task exists for GetTask.
	insertCtx, cancel := s.withIOTimeout(ctx)
	err = s.tasks.Insert(insertCtx, task)
	cancel()
	if err != nil {
		s.logger.Error("failed to insert task row, input blob left for expiration",
			"error", err,
			"task_id", task.ID,
			"input_location", task.InputLocation)
		return uuid.Nil, newTaskServiceError("create_task", "failed to persist task", err)
	}

	// Step 3: hand the task to the workers. A failure here is the one
	// accepted partial-failure hazard: the row is visible but unqueued, and
	// the sweeper re-enqueues it after the grace period.
	enqueueCtx, cancel := s.withIOTimeout(ctx)
	err = s.queue.Enqueue(enqueueCtx, task.ID)
	cancel()
	if err != nil {
		s.logger.Error("task row exists but enqueue failed, awaiting sweep",
			"error", err,
			"task_id", task.ID)
		return uuid.Nil, &TaskServiceError{
			Operation: "create_task",
			Message:   "task was recorded but could not be queued",
			Err:       fmt.Errorf("%w: %v", ErrUnavailable, err),
		}
	}

	s.logger.Info("task created",
		"task_id", task.ID,
		"owner_id", ownerID,
		"model", task.Model)

	return task.ID, nil
}

// GetTask retrieves the current state of a task for its owner.
func (s *taskServiceImpl) GetTask(
	ctx context.Context,
	ownerID, id uuid.UUID,
) (*domain.Task, error) {
	getCtx, cancel := s.withIOTimeout(ctx)
	defer cancel()

	task, err := s.tasks.GetForOwner(getCtx, id, ownerID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		s.logger.Error("failed to retrieve task",
			"error", err,
			"task_id", id)
		return nil, newTaskServiceError("get_task", "failed to retrieve task", err)
	}

	return task, nil
}

// withIOTimeout bounds a single store round-trip so no operation can hang
// the caller past the configured limit.
func (s *taskServiceImpl) withIOTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.ioTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.ioTimeout)
}
