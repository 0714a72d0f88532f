package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lexiquest/review-api/internal/config"
	"github.com/lexiquest/review-api/internal/domain/srs"
	"github.com/lexiquest/review-api/internal/events"
	"github.com/lexiquest/review-api/internal/service/auth"
	"github.com/lexiquest/review-api/internal/service/review_session"
	"github.com/lexiquest/review-api/internal/session"
	"github.com/lexiquest/review-api/internal/task"
)

// application holds the shared dependencies of the server and owns their
// shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	stores *stores

	jwtService auth.JWTService
	srsService srs.Service
	sessions   *review_session.Service

	eventEmitter *events.InMemoryEventEmitter
	rewards      *events.AsyncHandler

	taskQueue   *task.TaskQueue
	workerPool  *task.WorkerPool
	stopSweeper func()
}

// newApplication wires the services on top of an open storage backend and
// starts the background workers and the session sweeper.
func newApplication(cfg *config.Config, logger *slog.Logger, st *stores) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		stores: st,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.srsService = srs.NewDefaultService()

	// Graded states are written behind the session by the worker pool.
	app.taskQueue = task.NewTaskQueue(cfg.Task.QueueSize, logger)
	app.workerPool = task.NewWorkerPool(app.taskQueue, task.WorkerPoolConfig{
		WorkerCount: cfg.Task.WorkerCount,
	}, logger)
	app.workerPool.SetErrorHandler(task.LogPersistenceFailures(logger))
	app.workerPool.Start()

	dispatcher := task.NewDispatcher(app.taskQueue, st.schedules, cfg.Task.PersistTimeout(), logger)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	var rewardsHandler events.EventHandler = events.NewLogHandler(logger)
	if cfg.Rewards.WebhookURL != "" {
		rewardsHandler = events.NewWebhookHandler(cfg.Rewards.WebhookURL, cfg.Rewards.Timeout(), logger,
			events.TypeSessionCompleted)
		logger.Info("session summaries will be posted to rewards webhook")
	}
	app.rewards = events.NewAsyncHandler(rewardsHandler, logger)
	app.eventEmitter.RegisterHandler(app.rewards)

	policy := session.RequeueNone
	if cfg.Review.RequeueAgain {
		policy = session.RequeueAgain
	}
	controller := session.NewController(dispatcher, logger,
		session.WithSummarySink(events.NewSessionSink(app.eventEmitter)),
		session.WithRequeuePolicy(policy),
	)

	app.sessions = review_session.NewReviewSessionService(st.schedules, controller, app.srsService,
		review_session.Config{
			DefaultLimit: cfg.Review.DefaultLimit,
			SessionTTL:   cfg.Review.SessionTTL(),
		}, logger)

	app.stopSweeper, err = app.sessions.StartSweeper(cfg.Review.SweepInterval())
	if err != nil {
		_ = app.cleanup(context.Background())
		return nil, fmt.Errorf("failed to start session sweeper: %w", err)
	}

	logger.Info("application initialized",
		slog.Int("worker_count", cfg.Task.WorkerCount),
		slog.Bool("requeue_again", cfg.Review.RequeueAgain))
	return app, nil
}

// Run serves HTTP until ctx is cancelled or the server fails, then shuts
// everything down.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops background work in dependency order: no new sweeps, no new
// writes, drain queued writes, finish summary deliveries, then close the
// database. It is safe on a partially initialized application.
func (app *application) cleanup(ctx context.Context) error {
	var errs []error

	if app.stopSweeper != nil {
		app.stopSweeper()
	}

	if app.taskQueue != nil {
		app.taskQueue.Close()
	}
	if app.workerPool != nil {
		if err := app.workerPool.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("worker pool shutdown: %w", err))
		}
	}

	if app.rewards != nil {
		app.rewards.Wait()
	}

	app.stores.Close(app.logger)

	app.logger.Info("application shutdown completed")
	return errors.Join(errs...)
}
