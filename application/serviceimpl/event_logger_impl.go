package serviceimpl

import (
	"context"
	"encoding/json"
	"time"

	"face-attendance/domain/services"
	"face-attendance/infrastructure/queue"
	"face-attendance/pkg/logger"
)

type EventLoggerImpl struct {
	queue   queue.TaskQueue
	timeout time.Duration
}

func NewEventLogger(q queue.TaskQueue, timeout time.Duration) services.EventLogger {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &EventLoggerImpl{queue: q, timeout: timeout}
}

// Submit enqueues the event detached from the request, so a client that
// disconnects does not cancel a capture already accepted.
func (l *EventLoggerImpl) Submit(ctx context.Context, event *services.CaptureEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.EventError("marshal", "Failed to encode capture event", err, map[string]interface{}{"event_id": event.EventID.String()})
		return
	}

	enqueueCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
	defer cancel()

	if err := l.queue.Enqueue(enqueueCtx, payload); err != nil {
		logger.EventError("enqueue", "Failed to queue capture event", err, map[string]interface{}{
			"event_id": event.EventID.String(),
			"unit_id":  event.UnitID,
		})
		return
	}

	logger.Event("queued", "Capture event queued", map[string]interface{}{
		"event_id": event.EventID.String(),
		"known":    event.Known(),
		"filename": event.Filename,
	})
}
