package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"face-attendance/pkg/logger"
)

// RedisQueue keeps pending tasks in a list and moves each dequeued task to a
// processing list until it is acked.
type RedisQueue struct {
	client        *redis.Client
	pendingKey    string
	processingKey string
}

func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{
		client:        client,
		pendingKey:    key,
		processingKey: key + ":processing",
	}
}

var _ TaskQueue = (*RedisQueue)(nil)

func (q *RedisQueue) Enqueue(ctx context.Context, payload []byte) error {
	if err := q.client.LPush(ctx, q.pendingKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Task, error) {
	raw, err := q.client.BLMove(ctx, q.pendingKey, q.processingKey, "RIGHT", "LEFT", timeout).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("failed to dequeue task: %w", err)
	}
	return &Task{Payload: []byte(raw), Raw: raw}, nil
}

func (q *RedisQueue) Ack(ctx context.Context, task *Task) error {
	if err := q.client.LRem(ctx, q.processingKey, 1, task.Raw).Err(); err != nil {
		return fmt.Errorf("failed to ack task: %w", err)
	}
	return nil
}

// Recover moves every processing task back to the dequeue end of the pending
// list, oldest delivered first, ahead of anything still pending. Call it once
// before workers start. The processing list is shared, so only a single
// instance may recover; another instance's in-flight tasks would be
// redelivered.
func (q *RedisQueue) Recover(ctx context.Context) (int, error) {
	moved := 0
	for {
		err := q.client.LMove(ctx, q.processingKey, q.pendingKey, "LEFT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return moved, fmt.Errorf("failed to recover tasks: %w", err)
		}
		moved++
	}

	if moved > 0 {
		logger.Queue("recovered", "Requeued unacknowledged tasks", map[string]interface{}{"count": moved, "key": q.pendingKey})
	}
	return moved, nil
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.pendingKey).Result()
}
