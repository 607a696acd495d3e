package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/docsift/docsift-api/internal/config"
	"github.com/docsift/docsift-api/internal/platform/objectstore"
	"github.com/docsift/docsift-api/internal/platform/postgres"
	"github.com/docsift/docsift-api/internal/platform/queue"
	"github.com/docsift/docsift-api/internal/service"
	"github.com/docsift/docsift-api/internal/service/auth"
	"github.com/docsift/docsift-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	taskStore store.TaskStore

	// Platform clients owning external connections
	objects *objectstore.MinioStore
	workQ   *queue.NatsQueue

	// Service interfaces
	authenticator *auth.Authenticator
	taskService   service.TaskService

	// Background reconciliation
	sweeper *service.Sweeper
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.authenticator, err = auth.New(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize authenticator: %w", err)
	}
	logger.Info("authenticator initialized",
		"api_keys", len(cfg.Auth.APIKeys),
		"jwt_enabled", cfg.Auth.JWTSecret != "")

	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	app.objects, err = objectstore.New(ctx, cfg.ObjectStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object store: %w", err)
	}
	logger.Info("object store initialized", "bucket", cfg.ObjectStore.Bucket)

	app.workQ, err = queue.New(cfg.Queue, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize work queue: %w", err)
	}
	logger.Info("work queue initialized",
		"stream", cfg.Queue.Stream,
		"subject", cfg.Queue.Subject)

	app.taskService, err = service.NewTaskService(
		app.taskStore,
		app.objects,
		app.workQ,
		cfg.Task.Expiration,
		cfg.Server.IOTimeout,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	app.sweeper = service.NewSweeper(app.taskStore, app.workQ, service.SweeperConfig{
		Interval: cfg.Task.SweepInterval,
		Grace:    cfg.Task.SweepGrace,
		Batch:    cfg.Task.SweepBatch,
	}, logger)

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the background sweeper and the HTTP server, handling lifecycle
// and cleanup. It returns an error if the server fails to start or
// encounters problems.
func (app *application) Run(ctx context.Context) error {
	app.sweeper.Start()

	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.sweeper != nil {
		app.sweeper.Stop()
	}

	if app.workQ != nil {
		if err := app.workQ.Close(); err != nil {
			app.logger.Error("error closing work queue connection", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
