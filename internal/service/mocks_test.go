package service

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docsift/docsift-api/internal/domain"
	"github.com/docsift/docsift-api/internal/store"
)

// callRecorder tracks the order of side effects across the fakes so tests
// can assert blob-before-row-before-enqueue ordering.
type callRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *callRecorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
}

func (r *callRecorder) order() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// fakeTaskStore is an in-memory store.TaskStore with per-method overrides.
type fakeTaskStore struct {
	mu       sync.Mutex
	tasks    map[uuid.UUID]*domain.Task
	recorder *callRecorder

	insertFn    func(ctx context.Context, task *domain.Task) error
	getFn       func(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)
	findStuckFn func(ctx context.Context, status domain.TaskStatus, olderThan time.Duration, limit int) ([]*domain.Task, error)
	updateFn    func(ctx context.Context, id uuid.UUID, expected, next domain.TaskStatus, extra store.StatusExtra) error
}

func newFakeTaskStore(recorder *callRecorder) *fakeTaskStore {
	return &fakeTaskStore{
		tasks:    make(map[uuid.UUID]*domain.Task),
		recorder: recorder,
	}
}

func (s *fakeTaskStore) Insert(ctx context.Context, task *domain.Task) error {
	if s.recorder != nil {
		s.recorder.record("insert")
	}
	if s.insertFn != nil {
		return s.insertFn(ctx, task)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tasks[task.ID]; exists {
		return store.ErrTaskExists
	}
	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

func (s *fakeTaskStore) GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id, ownerID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (s *fakeTaskStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	expected, next domain.TaskStatus,
	extra store.StatusExtra,
) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, id, expected, next, extra)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return store.ErrTaskNotFound
	}
	if task.Status != expected {
		return store.ErrStatusConflict
	}
	task.Status = next
	task.OutputLocation = extra.OutputLocation
	task.ErrorMessage = extra.ErrorMessage
	return nil
}

func (s *fakeTaskStore) FindStuck(
	ctx context.Context,
	status domain.TaskStatus,
	olderThan time.Duration,
	limit int,
) ([]*domain.Task, error) {
	if s.findStuckFn != nil {
		return s.findStuckFn(ctx, status, olderThan, limit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	var stuck []*domain.Task
	for _, task := range s.tasks {
		if task.Status == status && task.CreatedAt.Before(cutoff) {
			copied := *task
			stuck = append(stuck, &copied)
			if len(stuck) == limit {
				break
			}
		}
	}
	return stuck, nil
}

// fakeObjectStore is an in-memory ObjectStore recording stored blobs.
type fakeObjectStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	recorder *callRecorder

	putFn func(ctx context.Context, key string, r io.Reader, size int64) error
}

func newFakeObjectStore(recorder *callRecorder) *fakeObjectStore {
	return &fakeObjectStore{
		objects:  make(map[string][]byte),
		recorder: recorder,
	}
}

func (s *fakeObjectStore) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	if s.recorder != nil {
		s.recorder.record("put")
	}
	if s.putFn != nil {
		return s.putFn(ctx, key, r, size)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *fakeObjectStore) Get(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, 0, io.EOF
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func (s *fakeObjectStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *fakeObjectStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

// fakeWorkQueue records enqueued task ids.
type fakeWorkQueue struct {
	mu       sync.Mutex
	enqueued []uuid.UUID
	recorder *callRecorder

	enqueueFn func(ctx context.Context, taskID uuid.UUID) error
}

func newFakeWorkQueue(recorder *callRecorder) *fakeWorkQueue {
	return &fakeWorkQueue{recorder: recorder}
}

func (q *fakeWorkQueue) Enqueue(ctx context.Context, taskID uuid.UUID) error {
	if q.recorder != nil {
		q.recorder.record("enqueue")
	}
	if q.enqueueFn != nil {
		return q.enqueueFn(ctx, taskID)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueued = append(q.enqueued, taskID)
	return nil
}

func (q *fakeWorkQueue) all() []uuid.UUID {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]uuid.UUID(nil), q.enqueued...)
}
