package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexiquest/review-api/internal/platform/logger"
	"github.com/lexiquest/review-api/internal/redact"
)

// mockTaskQueue implements TaskQueueReader for testing
type mockTaskQueue struct {
	ch chan Task
}

func newMockTaskQueue() *mockTaskQueue {
	return &mockTaskQueue{
		ch: make(chan Task, 10),
	}
}

func (m *mockTaskQueue) GetChannel() <-chan Task {
	return m.ch
}

func TestNewWorkerPool(t *testing.T) {
	logger := setupTestLogger()
	taskQueue := newMockTaskQueue()

	pool := NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 5}, logger)

	assert.NotNil(t, pool)
	assert.Equal(t, 5, pool.workerCount)
	assert.Equal(t, taskQueue, pool.taskQueue)
	assert.NotNil(t, pool.ctx)
	assert.NotNil(t, pool.cancel)
	assert.Nil(t, pool.errorHandler)

	pool = NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 0}, logger)
	assert.Equal(t, 1, pool.workerCount)

	pool = NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: -5}, logger)
	assert.Equal(t, 1, pool.workerCount)
}

func TestSetErrorHandler(t *testing.T) {
	pool := NewWorkerPool(newMockTaskQueue(), DefaultWorkerPoolConfig(), setupTestLogger())

	assert.Nil(t, pool.errorHandler)
	pool.SetErrorHandler(func(task Task, err error) {})
	assert.NotNil(t, pool.errorHandler)
}

func TestWorkerPool_Start_Stop(t *testing.T) {
	pool := NewWorkerPool(newMockTaskQueue(), WorkerPoolConfig{WorkerCount: 2}, setupTestLogger())

	pool.Start()
	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		pool.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestWorkerPool_ProcessTask_Success(t *testing.T) {
	taskQueue := newMockTaskQueue()
	completed := make(chan struct{})

	task := newMockTask()
	task.execFn = func(ctx context.Context) error {
		completed <- struct{}{}
		return nil
	}

	pool := NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())
	pool.Start()
	defer pool.Stop()

	taskQueue.ch <- task

	select {
	case <-completed:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Timed out waiting for task to complete")
	}
}

func TestWorkerPool_ProcessTask_Error(t *testing.T) {
	taskQueue := newMockTaskQueue()
	errorHandled := make(chan error, 1)

	expectedErr := errors.New("test error")
	task := newMockTask()
	task.execFn = func(ctx context.Context) error {
		return expectedErr
	}

	pool := NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())
	pool.SetErrorHandler(func(task Task, err error) {
		errorHandled <- err
	})
	pool.Start()
	defer pool.Stop()

	taskQueue.ch <- task

	select {
	case err := <-errorHandled:
		assert.Equal(t, expectedErr, err)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Timed out waiting for error handler")
	}
}

func TestWorkerPool_ProcessTask_Panic(t *testing.T) {
	taskQueue := newMockTaskQueue()
	errorHandled := make(chan error, 1)

	task := newMockTask()
	task.execFn = func(ctx context.Context) error {
		panic("test panic")
	}

	pool := NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())
	pool.SetErrorHandler(func(task Task, err error) {
		errorHandled <- err
	})
	pool.Start()
	defer pool.Stop()

	taskQueue.ch <- task

	select {
	case err := <-errorHandled:
		assert.Contains(t, err.Error(), "panic")
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Timed out waiting for error handler after panic")
	}
}

func TestWorkerPool_ShutdownDrainsQueue(t *testing.T) {
	logger := setupTestLogger()
	queue := NewTaskQueue(20, logger)

	var executed atomic.Int32
	for i := 0; i < 20; i++ {
		task := newMockTask()
		task.execFn = func(ctx context.Context) error {
			executed.Add(1)
			return nil
		}
		require.NoError(t, queue.Enqueue(task))
	}

	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 3}, logger)
	pool.Start()
	queue.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, pool.Shutdown(ctx))
	assert.Equal(t, int32(20), executed.Load())
}

func TestWorkerPool_ShutdownTimeoutCancelsTasks(t *testing.T) {
	logger := setupTestLogger()
	queue := NewTaskQueue(1, logger)

	cancelled := make(chan struct{})
	started := make(chan struct{})
	task := newMockTask()
	task.execFn = func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	}
	require.NoError(t, queue.Enqueue(task))

	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 1}, logger)
	pool.Start()
	<-started
	queue.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := pool.Shutdown(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("in-flight task was not cancelled")
	}
}

func TestWorkerPool_FailureLogging(t *testing.T) {
	failWith := errors.New("dial postgres://app:hunter2@db:5432 refused")

	run := func(t *testing.T, handler func(Task, error)) string {
		t.Helper()
		log, logBuf := logger.GetTestLogger(t)

		queue := NewTaskQueue(1, log)
		task := newMockTask()
		task.execFn = func(ctx context.Context) error { return failWith }
		require.NoError(t, queue.Enqueue(task))

		pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 1}, log)
		if handler != nil {
			pool.SetErrorHandler(handler)
		}
		pool.Start()
		queue.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		require.NoError(t, pool.Shutdown(ctx))

		return logBuf.String()
	}

	t.Run("handler owns the failure", func(t *testing.T) {
		var handled atomic.Int32
		out := run(t, func(task Task, err error) {
			handled.Add(1)
			assert.ErrorIs(t, err, failWith)
		})

		assert.Equal(t, int32(1), handled.Load())
		assert.NotContains(t, out, "task execution failed")
		assert.NotContains(t, out, "hunter2")
	})

	t.Run("logged redacted without handler", func(t *testing.T) {
		out := run(t, nil)

		assert.Contains(t, out, "task execution failed")
		assert.Contains(t, out, redact.RedactedCredentialPlaceholder)
		assert.NotContains(t, out, "hunter2")
	})
}
