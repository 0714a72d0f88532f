package task

import (
	"context"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle position of a background task.
type TaskStatus string

// Task statuses, in lifecycle order. Failed is terminal like Completed.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// TaskTypePersistScheduleState identifies PersistScheduleStateTask.
const TaskTypePersistScheduleState = "persist_schedule_state"

// Task is a unit of work run by the WorkerPool.
type Task interface {
	ID() uuid.UUID
	Type() string
	// Payload is the task's data encoded for logs and inspection.
	Payload() []byte
	Status() TaskStatus
	Execute(ctx context.Context) error
}

// TaskQueueReader is the consumer side of a queue.
type TaskQueueReader interface {
	GetChannel() <-chan Task
}

// TaskQueueWriter is the producer side of a queue.
type TaskQueueWriter interface {
	// Enqueue fails when the queue is full or closed; it never blocks.
	Enqueue(task Task) error
	Close()
}
