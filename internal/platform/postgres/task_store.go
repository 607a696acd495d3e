package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/docsift/docsift-api/internal/domain"
	"github.com/docsift/docsift-api/internal/platform/logger"
	"github.com/docsift/docsift-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Insert implements store.TaskStore.Insert.
// It saves a new task row, making the task visible to readers. Returns
// store.ErrTaskExists if a row with the same id already exists.
func (s *PostgresTaskStore) Insert(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during insert",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, owner_id, model, status, input_location,
			output_location, error_message, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.OwnerID,
		task.Model,
		task.Status,
		task.InputLocation,
		task.OutputLocation,
		task.ErrorMessage,
		task.CreatedAt,
		task.ExpiresAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate task id during insert",
				slog.String("task_id", task.ID.String()))
			return fmt.Errorf("%w: id %s", store.ErrTaskExists, task.ID)
		}

		log.Error("failed to insert task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("owner_id", task.OwnerID.String()))
		return MapError(err)
	}

	log.Info("task inserted",
		slog.String("task_id", task.ID.String()),
		slog.String("owner_id", task.OwnerID.String()),
		slog.String("model", string(task.Model)))
	return nil
}

// GetForOwner implements store.TaskStore.GetForOwner.
// It retrieves a task by id scoped to its owner. A task owned by someone
// else is reported as store.ErrTaskNotFound, never returned.
func (s *PostgresTaskStore) GetForOwner(
	ctx context.Context,
	id, ownerID uuid.UUID,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, owner_id, model, status, input_location,
			output_location, error_message, created_at, expires_at
		FROM tasks
		WHERE id = $1 AND owner_id = $2
	`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found",
				slog.String("task_id", id.String()),
				slog.String("owner_id", ownerID.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	return task, nil
}

// UpdateStatus implements store.TaskStore.UpdateStatus.
// The update is conditional on the row's current status matching expected,
// so a delayed duplicate (e.g., a redelivered queue message) cannot regress
// a more advanced state. When zero rows match, a follow-up read
// distinguishes a missing task (store.ErrTaskNotFound) from a lost race
// (store.ErrStatusConflict).
func (s *PostgresTaskStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	expected, next domain.TaskStatus,
	extra store.StatusExtra,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !expected.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTaskStatus, expected, next)
	}

	query := `
		UPDATE tasks
		SET status = $3,
			output_location = NULLIF($4, ''),
			error_message = NULLIF($5, '')
		WHERE id = $1 AND status = $2
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		id,
		expected,
		next,
		extra.OutputLocation,
		extra.ErrorMessage,
	)
	if err != nil {
		log.Error("failed to update task status",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()),
			slog.String("next_status", string(next)))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		var current string
		err := s.db.QueryRowContext(
			ctx, `SELECT status FROM tasks WHERE id = $1`, id,
		).Scan(&current)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				log.Debug("task not found for status update",
					slog.String("task_id", id.String()))
				return store.ErrTaskNotFound
			}
			return MapError(err)
		}

		log.Debug("conditional status update lost",
			slog.String("task_id", id.String()),
			slog.String("expected", string(expected)),
			slog.String("current", current))
		return fmt.Errorf(
			"%w: expected %s, row is %s", store.ErrStatusConflict, expected, current,
		)
	}

	log.Info("task status updated",
		slog.String("task_id", id.String()),
		slog.String("from", string(expected)),
		slog.String("to", string(next)))
	return nil
}

// FindStuck implements store.TaskStore.FindStuck.
// It retrieves up to limit tasks that have sat in the given status for
// longer than olderThan, oldest first.
func (s *PostgresTaskStore) FindStuck(
	ctx context.Context,
	status domain.TaskStatus,
	olderThan time.Duration,
	limit int,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 100
	}

	cutoff := time.Now().UTC().Add(-olderThan)

	query := `
		SELECT id, owner_id, model, status, input_location,
			output_location, error_message, created_at, expires_at
		FROM tasks
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at ASC
		LIMIT $3
	`

	rows, err := s.db.QueryContext(ctx, query, status, cutoff, limit)
	if err != nil {
		log.Error("failed to query stuck tasks",
			slog.String("error", err.Error()),
			slog.String("status", string(status)))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	if tasks == nil {
		tasks = []*domain.Task{}
	}

	log.Debug("found stuck tasks",
		slog.String("status", string(status)),
		slog.Int("count", len(tasks)))
	return tasks, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads one tasks row into a domain.Task, translating the nullable
// columns into their empty-value forms.
func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task       domain.Task
		model      string
		status     string
		outputLoc  sql.NullString
		errMessage sql.NullString
		expiresAt  sql.NullTime
	)

	err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&model,
		&status,
		&task.InputLocation,
		&outputLoc,
		&errMessage,
		&task.CreatedAt,
		&expiresAt,
	)
	if err != nil {
		return nil, err
	}

	task.Model = domain.Model(model)
	task.Status = domain.TaskStatus(status)
	task.OutputLocation = outputLoc.String
	task.ErrorMessage = errMessage.String
	if expiresAt.Valid {
		t := expiresAt.Time
		task.ExpiresAt = &t
	}

	return &task, nil
}
