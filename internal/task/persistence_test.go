package task

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lexiquest/review-api/internal/domain"
	"github.com/lexiquest/review-api/internal/platform/logger"
)

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) Upsert(ctx context.Context, state domain.ScheduleState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func gradedState(t *testing.T) domain.ScheduleState {
	t.Helper()
	now := time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC)
	state, err := domain.NewScheduleState(uuid.New(), uuid.New(), now)
	require.NoError(t, err)
	state.Repetitions = 1
	state.IntervalDays = 5
	state.LastReviewed = now
	state.NextReview = now.AddDate(0, 0, 5)
	state.ReviewCount = 1
	return state
}

func TestNewPersistScheduleStateTask(t *testing.T) {
	state := gradedState(t)

	task, err := NewPersistScheduleStateTask(state, &mockWriter{}, 0)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, task.ID())
	assert.Equal(t, TaskTypePersistScheduleState, task.Type())
	assert.Equal(t, TaskStatusPending, task.Status())
	assert.Equal(t, DefaultPersistTimeout, task.timeout)
	assert.Equal(t, state, task.State())

	var decoded domain.ScheduleState
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, state.ItemID, decoded.ItemID)
	assert.Equal(t, state.IntervalDays, decoded.IntervalDays)
}

func TestNewPersistScheduleStateTask_Invalid(t *testing.T) {
	state := gradedState(t)

	_, err := NewPersistScheduleStateTask(state, nil, time.Second)
	assert.Error(t, err)

	state.Ease = 1.0
	_, err = NewPersistScheduleStateTask(state, &mockWriter{}, time.Second)
	assert.ErrorIs(t, err, domain.ErrInvalidEase)
}

func TestPersistScheduleStateTask_Execute(t *testing.T) {
	state := gradedState(t)

	t.Run("success", func(t *testing.T) {
		writer := &mockWriter{}
		writer.On("Upsert", mock.Anything, state).Return(nil).Once()

		task, err := NewPersistScheduleStateTask(state, writer, time.Second)
		require.NoError(t, err)

		require.NoError(t, task.Execute(context.Background()))
		assert.Equal(t, TaskStatusCompleted, task.Status())
		writer.AssertExpectations(t)
	})

	t.Run("store failure", func(t *testing.T) {
		storeErr := errors.New("connection reset")
		writer := &mockWriter{}
		writer.On("Upsert", mock.Anything, state).Return(storeErr).Once()

		task, err := NewPersistScheduleStateTask(state, writer, time.Second)
		require.NoError(t, err)

		err = task.Execute(context.Background())
		require.Error(t, err)

		var perr *PersistenceError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, state.UserID, perr.UserID)
		assert.Equal(t, state.ItemID, perr.ItemID)
		assert.ErrorIs(t, err, storeErr)
		assert.Equal(t, TaskStatusFailed, task.Status())
		writer.AssertExpectations(t)
	})

	t.Run("write is bounded by timeout", func(t *testing.T) {
		writer := &mockWriter{}
		writer.On("Upsert", mock.Anything, state).
			Run(func(args mock.Arguments) {
				ctx := args.Get(0).(context.Context)
				<-ctx.Done()
			}).
			Return(context.DeadlineExceeded).Once()

		task, err := NewPersistScheduleStateTask(state, writer, 20*time.Millisecond)
		require.NoError(t, err)

		err = task.Execute(context.Background())
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestDispatcher_Dispatch(t *testing.T) {
	log := setupTestLogger()
	state := gradedState(t)

	t.Run("queues a task", func(t *testing.T) {
		queue := NewTaskQueue(1, log)
		dispatcher := NewDispatcher(queue, &mockWriter{}, time.Second, log)

		require.NoError(t, dispatcher.Dispatch(context.Background(), state))
		require.Equal(t, 1, queue.Len())

		queued := <-queue.GetChannel()
		persist, ok := queued.(*PersistScheduleStateTask)
		require.True(t, ok)
		assert.Equal(t, state, persist.State())
	})

	t.Run("full queue", func(t *testing.T) {
		queue := NewTaskQueue(0, log)
		dispatcher := NewDispatcher(queue, &mockWriter{}, time.Second, log)

		err := dispatcher.Dispatch(context.Background(), state)
		var perr *PersistenceError
		require.True(t, errors.As(err, &perr))
		assert.ErrorIs(t, err, ErrQueueFull)
		assert.Equal(t, state.ItemID, perr.ItemID)
	})

	t.Run("invalid state", func(t *testing.T) {
		queue := NewTaskQueue(1, log)
		dispatcher := NewDispatcher(queue, &mockWriter{}, time.Second, log)

		bad := state
		bad.IntervalDays = -1
		err := dispatcher.Dispatch(context.Background(), bad)
		assert.ErrorIs(t, err, domain.ErrInvalidInterval)
		assert.Equal(t, 0, queue.Len())
	})

	t.Run("nil dependencies panic", func(t *testing.T) {
		assert.Panics(t, func() { NewDispatcher(nil, &mockWriter{}, time.Second, log) })
		assert.Panics(t, func() { NewDispatcher(NewTaskQueue(1, log), nil, time.Second, log) })
	})
}

func TestDispatcher_EndToEnd(t *testing.T) {
	log := setupTestLogger()
	state := gradedState(t)

	writer := &mockWriter{}
	written := make(chan domain.ScheduleState, 1)
	writer.On("Upsert", mock.Anything, state).
		Run(func(args mock.Arguments) { written <- args.Get(1).(domain.ScheduleState) }).
		Return(nil).Once()

	queue := NewTaskQueue(4, log)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 1}, log)
	pool.Start()
	defer pool.Stop()

	require.NoError(t, NewDispatcher(queue, writer, time.Second, log).Dispatch(context.Background(), state))

	select {
	case got := <-written:
		assert.Equal(t, state, got)
	case <-time.After(time.Second):
		t.Fatal("state was not written")
	}
}

func TestLogPersistenceFailures(t *testing.T) {
	log, buf := logger.GetTestLogger(t)
	handler := LogPersistenceFailures(log)
	state := gradedState(t)

	task, err := NewPersistScheduleStateTask(state, &mockWriter{}, time.Second)
	require.NoError(t, err)

	handler(task, &PersistenceError{
		UserID: state.UserID,
		ItemID: state.ItemID,
		Err:    errors.New("dial postgres://app:pw@db:5432/app refused"),
	})

	logger.AssertLogField(t, buf, "item_id", state.ItemID.String())
	logger.AssertLogField(t, buf, "level", "WARN")
	assert.NotContains(t, buf.String(), "app:pw")

	buf.Reset()
	handler(newMockTask(), errors.New("boom"))
	logger.AssertLogField(t, buf, "level", "ERROR")
}

func TestPersistenceError(t *testing.T) {
	inner := errors.New("disk full")
	err := &PersistenceError{UserID: uuid.New(), ItemID: uuid.New(), Err: inner}

	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, err.Error(), err.ItemID.String())
	assert.ErrorIs(t, err, inner)
}
