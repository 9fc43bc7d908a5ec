package queue

import (
	"context"
	"errors"
	"time"
)

// ErrEmpty is returned by Dequeue when no task arrived within the timeout.
var ErrEmpty = errors.New("queue empty")

// ErrFull is returned by a bounded queue that dropped the payload.
var ErrFull = errors.New("queue full")

// Task is one serialized payload taken from the queue. Raw must be passed
// back to Ack unchanged.
type Task struct {
	Payload []byte
	Raw     string
}

// TaskQueue delivers payloads at least once to background workers.
type TaskQueue interface {
	Enqueue(ctx context.Context, payload []byte) error
	// Dequeue blocks up to timeout and returns ErrEmpty when nothing arrived.
	Dequeue(ctx context.Context, timeout time.Duration) (*Task, error)
	// Ack marks a dequeued task as done.
	Ack(ctx context.Context, task *Task) error
	// Recover requeues tasks that were dequeued but never acked.
	Recover(ctx context.Context) (int, error)
	Len(ctx context.Context) (int64, error)
}
