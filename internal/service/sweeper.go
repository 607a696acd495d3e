package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/docsift/docsift-api/internal/domain"
	"github.com/docsift/docsift-api/internal/store"
)

// SweeperConfig holds configuration for the stuck-task sweeper.
type SweeperConfig struct {
	// Interval is how often a sweep pass runs.
	Interval time.Duration

	// Grace is how long a task may sit in starting before its queue message
	// is presumed lost. It must comfortably exceed normal queue pickup
	// latency so healthy tasks are not re-enqueued.
	Grace time.Duration

	// Batch caps how many tasks one pass re-enqueues.
	Batch int
}

// Sweeper is the reconciliation process for the one accepted partial-failure
// gap in task creation: a row inserted whose enqueue was lost. It
// periodically re-enqueues tasks stuck in starting past the grace period.
// Re-enqueueing a task whose original message is merely slow is harmless:
// queue delivery is at-least-once and workers ignore tasks that have already
// advanced.
type Sweeper struct {
	tasks  store.TaskStore
	queue  WorkQueue
	config SweeperConfig
	logger *slog.Logger

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewSweeper creates a Sweeper. If logger is nil, a default logger is used.
func NewSweeper(
	tasks store.TaskStore,
	queue WorkQueue,
	config SweeperConfig,
	logger *slog.Logger,
) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Sweeper{
		tasks:      tasks,
		queue:      queue,
		config:     config,
		logger:     logger.With("component", "task_sweeper"),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start launches the periodic sweep loop.
func (s *Sweeper) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.config.Interval)
		defer ticker.Stop()

		s.logger.Info("stuck task sweeper started",
			"interval", s.config.Interval,
			"grace", s.config.Grace)

		for {
			select {
			case <-s.ctx.Done():
				s.logger.Info("stuck task sweeper stopped")
				return
			case <-ticker.C:
				s.sweepOnce(s.ctx)
			}
		}
	}()
}

// Stop terminates the sweep loop and waits for an in-flight pass to finish.
func (s *Sweeper) Stop() {
	s.cancelFunc()
	s.wg.Wait()
}

// sweepOnce runs a single reconciliation pass: find tasks stuck in starting
// past the grace period and re-enqueue them. Individual enqueue failures are
// logged and skipped; the next pass picks the task up again.
func (s *Sweeper) sweepOnce(ctx context.Context) {
	stuck, err := s.tasks.FindStuck(
		ctx, domain.TaskStatusStarting, s.config.Grace, s.config.Batch,
	)
	if err != nil {
		s.logger.Error("failed to scan for stuck tasks", "error", err)
		return
	}

	if len(stuck) == 0 {
		return
	}

	s.logger.Warn("re-enqueueing stuck tasks", "count", len(stuck))

	requeued := 0
	for _, task := range stuck {
		if err := s.queue.Enqueue(ctx, task.ID); err != nil {
			s.logger.Error("failed to re-enqueue stuck task",
				"error", err,
				"task_id", task.ID)
			continue
		}
		requeued++
	}

	s.logger.Info("sweep pass completed",
		"stuck", len(stuck),
		"requeued", requeued)
}
