package queue

import (
	"context"
	"fmt"
	"time"

	"face-attendance/pkg/logger"
)

// MemoryQueue is a process-local queue. Tasks are lost on restart, so Recover
// is a no-op.
type MemoryQueue struct {
	ch chan []byte
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 256
	}
	return &MemoryQueue{ch: make(chan []byte, size)}
}

var _ TaskQueue = (*MemoryQueue)(nil)

// Enqueue never waits. A full buffer drops the payload and returns ErrFull.
func (q *MemoryQueue) Enqueue(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	select {
	case q.ch <- payload:
		return nil
	default:
		logger.QueueError("drop", "Memory queue full, dropping task", ErrFull, map[string]interface{}{"capacity": cap(q.ch)})
		return ErrFull
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Task, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case payload := <-q.ch:
		return &Task{Payload: payload, Raw: string(payload)}, nil
	case <-timer.C:
		return nil, ErrEmpty
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryQueue) Ack(ctx context.Context, task *Task) error {
	return nil
}

func (q *MemoryQueue) Recover(ctx context.Context) (int, error) {
	return 0, nil
}

func (q *MemoryQueue) Len(ctx context.Context) (int64, error) {
	return int64(len(q.ch)), nil
}
