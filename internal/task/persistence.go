package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lexiquest/review-api/internal/domain"
	"github.com/lexiquest/review-api/internal/redact"
)

// DefaultPersistTimeout bounds a single schedule state write when none is configured.
const DefaultPersistTimeout = 5 * time.Second

// ScheduleStateWriter is the write side of the schedule store.
// Writes carry the complete state, so they may land in any order.
type ScheduleStateWriter interface {
	Upsert(ctx context.Context, state domain.ScheduleState) error
}

// PersistenceError reports a failed asynchronous schedule state write.
// It is logged and never retried.
type PersistenceError struct {
	UserID uuid.UUID
	ItemID uuid.UUID
	Err    error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist schedule state for user %s item %s: %v", e.UserID, e.ItemID, e.Err)
}

// Unwrap returns the underlying error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// PersistScheduleStateTask writes one graded schedule state to the store.
type PersistScheduleStateTask struct {
	id      uuid.UUID
	state   domain.ScheduleState
	writer  ScheduleStateWriter
	timeout time.Duration

	mu     sync.Mutex
	status TaskStatus
}

// NewPersistScheduleStateTask creates a pending task for state.
func NewPersistScheduleStateTask(
	state domain.ScheduleState,
	writer ScheduleStateWriter,
	timeout time.Duration,
) (*PersistScheduleStateTask, error) {
	if writer == nil {
		return nil, errors.New("schedule state writer cannot be nil")
	}
	if err := state.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schedule state: %w", err)
	}
	if timeout <= 0 {
		timeout = DefaultPersistTimeout
	}

	return &PersistScheduleStateTask{
		id:      uuid.New(),
		state:   state,
		writer:  writer,
		timeout: timeout,
		status:  TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *PersistScheduleStateTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *PersistScheduleStateTask) Type() string {
	return TaskTypePersistScheduleState
}

// Payload returns the schedule state as JSON
func (t *PersistScheduleStateTask) Payload() []byte {
	payload, err := json.Marshal(t.state)
	if err != nil {
		return nil
	}
	return payload
}

// State returns the schedule state this task writes.
func (t *PersistScheduleStateTask) State() domain.ScheduleState {
	return t.state
}

// Status returns the current task status
func (t *PersistScheduleStateTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *PersistScheduleStateTask) setStatus(status TaskStatus) {
	t.mu.Lock()
	t.status = status
	t.mu.Unlock()
}

// Execute upserts the state. Failures are returned as *PersistenceError.
func (t *PersistScheduleStateTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if err := t.writer.Upsert(ctx, t.state); err != nil {
		t.setStatus(TaskStatusFailed)
		return &PersistenceError{UserID: t.state.UserID, ItemID: t.state.ItemID, Err: err}
	}

	t.setStatus(TaskStatusCompleted)
	return nil
}

// Dispatcher turns graded schedule states into queued persistence tasks.
type Dispatcher struct {
	queue   TaskQueueWriter
	writer  ScheduleStateWriter
	timeout time.Duration
	logger  *slog.Logger
}

// NewDispatcher creates a Dispatcher. It panics if queue or writer is nil.
func NewDispatcher(
	queue TaskQueueWriter,
	writer ScheduleStateWriter,
	timeout time.Duration,
	logger *slog.Logger,
) *Dispatcher {
	if queue == nil {
		panic("task queue cannot be nil")
	}
	if writer == nil {
		panic("schedule state writer cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		queue:   queue,
		writer:  writer,
		timeout: timeout,
		logger:  logger.With(slog.String("component", "persistence_dispatcher")),
	}
}

// Dispatch enqueues a write of state and returns without waiting for it.
// An error means the write was never queued; it is a *PersistenceError.
func (d *Dispatcher) Dispatch(ctx context.Context, state domain.ScheduleState) error {
	t, err := NewPersistScheduleStateTask(state, d.writer, d.timeout)
	if err != nil {
		return &PersistenceError{UserID: state.UserID, ItemID: state.ItemID, Err: err}
	}

	if err := d.queue.Enqueue(t); err != nil {
		return &PersistenceError{UserID: state.UserID, ItemID: state.ItemID, Err: err}
	}

	return nil
}

// LogPersistenceFailures returns a worker pool error handler that logs
// failed writes with their user and item.
func LogPersistenceFailures(logger *slog.Logger) func(task Task, err error) {
	return func(task Task, err error) {
		var perr *PersistenceError
		if errors.As(err, &perr) {
			logger.Warn("schedule state write failed, store will reconcile on next read",
				slog.String("task_id", task.ID().String()),
				slog.String("user_id", perr.UserID.String()),
				slog.String("item_id", perr.ItemID.String()),
				slog.String("error", redact.Error(perr.Err)))
			return
		}

		logger.Error("background task failed",
			slog.String("task_id", task.ID().String()),
			slog.String("task_type", task.Type()),
			slog.String("error", redact.Error(err)))
	}
}
