// Package queue carries "task ready for extraction" messages from the API to
// the worker processes over NATS JetStream. Delivery is at-least-once;
// consumers must tolerate duplicates by re-checking task status before
// acting.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/docsift/docsift-api/internal/config"
	"github.com/docsift/docsift-api/internal/platform/logger"
)

// ErrUnavailable marks transient queue failures, safe to retry with backoff.
var ErrUnavailable = errors.New("work queue unavailable")

// WorkMessage is the wire format of one queued unit of work. The task id is
// the only payload the worker needs; everything else it reads from the task
// row and the object store.
type WorkMessage struct {
	TaskID     uuid.UUID `json:"task_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NatsQueue publishes work messages to a JetStream subject.
type NatsQueue struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	subject string
	logger  *slog.Logger
}

// New connects to NATS, ensures the configured stream exists, and returns a
// queue that publishes to the configured subject. If log is nil, a default
// logger is used.
func New(cfg config.QueueConfig, log *slog.Logger) (*NatsQueue, error) {
	if log == nil {
		log = slog.Default()
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name("docsift-api"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", ErrUnavailable, err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:      cfg.Stream,
		Subjects:  []string{cfg.Subject},
		Retention: nats.WorkQueuePolicy,
		Storage:   nats.FileStorage,
	})
	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		conn.Close()
		return nil, fmt.Errorf("%w: ensure stream %s: %v", ErrUnavailable, cfg.Stream, err)
	}

	return &NatsQueue{
		conn:    conn,
		js:      js,
		subject: cfg.Subject,
		logger:  log.With(slog.String("component", "work_queue")),
	}, nil
}

// Enqueue durably publishes a work message for the given task id. It must be
// called only after the task row is visible, so a worker that dequeues the
// message always finds a readable row.
func (q *NatsQueue) Enqueue(ctx context.Context, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, q.logger)

	msg := WorkMessage{
		TaskID:     taskID,
		EnqueuedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal work message: %w", err)
	}

	// MsgId deduplicates re-publishes of the same task within the stream's
	// dedup window; consumers still must handle redelivery.
	_, err = q.js.Publish(q.subject, data,
		nats.Context(ctx),
		nats.MsgId(taskID.String()),
	)
	if err != nil {
		log.Error("failed to publish work message",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return fmt.Errorf("%w: publish: %v", ErrUnavailable, err)
	}

	log.Debug("work message published",
		slog.String("task_id", taskID.String()),
		slog.String("subject", q.subject))
	return nil
}

// Close drains the underlying connection, flushing pending publishes.
func (q *NatsQueue) Close() error {
	if err := q.conn.Drain(); err != nil {
		return fmt.Errorf("drain nats connection: %w", err)
	}
	return nil
}
