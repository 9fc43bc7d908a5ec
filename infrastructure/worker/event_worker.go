package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"face-attendance/domain/models"
	"face-attendance/domain/repositories"
	"face-attendance/domain/services"
	"face-attendance/infrastructure/queue"
	"face-attendance/infrastructure/storage"
	"face-attendance/infrastructure/websocket"
	"face-attendance/pkg/logger"
)

// Broadcaster pushes messages to websocket rooms.
type Broadcaster interface {
	BroadcastToRoom(room string, msg websocket.Message) int
}

// EventWorker persists queued capture events
type EventWorker struct {
	queue       queue.TaskQueue
	storage     storage.ImageStorage
	eventRepo   repositories.PersonEventRepository
	broadcaster Broadcaster

	// Worker control
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
	mu        sync.Mutex

	// Configuration
	concurrency    int
	pollTimeout    time.Duration
	maxRetries     int
	baseRetryDelay time.Duration

	processed atomic.Int64
	failed    atomic.Int64
}

type EventWorkerConfig struct {
	Concurrency    int
	PollTimeout    time.Duration
	MaxRetries     int
	BaseRetryDelay time.Duration
}

// NewEventWorker creates a new capture event worker. broadcaster may be nil.
func NewEventWorker(
	q queue.TaskQueue,
	store storage.ImageStorage,
	eventRepo repositories.PersonEventRepository,
	broadcaster Broadcaster,
	cfg EventWorkerConfig,
) *EventWorker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 2
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = time.Second
	}
	if cfg.BaseRetryDelay <= 0 {
		cfg.BaseRetryDelay = 500 * time.Millisecond
	}
	return &EventWorker{
		queue:          q,
		storage:        store,
		eventRepo:      eventRepo,
		broadcaster:    broadcaster,
		concurrency:    cfg.Concurrency,
		pollTimeout:    cfg.PollTimeout,
		maxRetries:     cfg.MaxRetries,
		baseRetryDelay: cfg.BaseRetryDelay,
	}
}

// Start starts the event worker
func (w *EventWorker) Start() {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = true
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.mu.Unlock()

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.run(i)
	}

	logger.Event("worker_started", "Event worker started", map[string]interface{}{"concurrency": w.concurrency})
}

// Stop stops the worker after in-flight events finish
func (w *EventWorker) Stop() {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = false
	w.mu.Unlock()

	w.cancel()
	w.wg.Wait()
	logger.Event("worker_stopped", "Event worker stopped", map[string]interface{}{
		"processed": w.processed.Load(),
		"failed":    w.failed.Load(),
	})
}

// IsRunning returns whether the worker is running
func (w *EventWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isRunning
}

// Stats returns processed and failed counts since start.
func (w *EventWorker) Stats() (processed, failed int64) {
	return w.processed.Load(), w.failed.Load()
}

func (w *EventWorker) run(id int) {
	defer w.wg.Done()

	for {
		if w.ctx.Err() != nil {
			return
		}

		task, err := w.queue.Dequeue(w.ctx, w.pollTimeout)
		if err != nil {
			if errors.Is(err, queue.ErrEmpty) || w.ctx.Err() != nil {
				continue
			}
			logger.QueueError("dequeue", "Failed to dequeue event", err, map[string]interface{}{"worker": id})
			w.sleep(w.baseRetryDelay)
			continue
		}

		w.handle(task)
	}
}

// handle processes a task and always acks it so a bad payload cannot loop.
func (w *EventWorker) handle(task *queue.Task) {
	// In-flight work finishes even when Stop is called
	ctx := context.WithoutCancel(w.ctx)

	if err := w.processWithRetry(ctx, task.Payload); err != nil {
		w.failed.Add(1)
		logger.EventError("process_failed", "Capture event dropped", err, nil)
	} else {
		w.processed.Add(1)
	}

	if err := w.queue.Ack(ctx, task); err != nil {
		logger.QueueError("ack", "Failed to ack event", err, nil)
	}
}

func (w *EventWorker) processWithRetry(ctx context.Context, payload []byte) error {
	var event services.CaptureEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to decode capture event: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if attempt > 0 {
			w.sleep(w.baseRetryDelay * time.Duration(1<<uint(attempt-1)))
		}

		lastErr = w.Process(ctx, &event)
		if lastErr == nil || errors.Is(lastErr, storage.ErrInvalidImage) {
			return lastErr
		}
	}
	return lastErr
}

// Process writes the capture image, records a person event for camera
// captures and notifies subscribers of the unit.
func (w *EventWorker) Process(ctx context.Context, event *services.CaptureEvent) error {
	path, err := w.storage.SaveBase64(event.Image, event.Directory, event.Filename)
	if err != nil {
		return fmt.Errorf("failed to save capture image: %w", err)
	}

	if event.DeviceID != nil && w.eventRepo != nil {
		row := &models.PersonEvent{
			EventID:    event.EventID,
			PersonID:   event.PersonID,
			DeviceID:   *event.DeviceID,
			AccessTime: event.CapturedAt,
			Image:      path,
			Score:      event.Score,
			Quality:    event.Quality,
		}
		if len(event.Feature) > 0 {
			v := models.NewVector(event.Feature)
			row.Feature = &v
		}
		if err := w.eventRepo.Create(ctx, row); err != nil {
			return fmt.Errorf("failed to record person event: %w", err)
		}
	}

	if w.broadcaster != nil {
		w.broadcaster.BroadcastToRoom(fmt.Sprintf("unit:%d", event.UnitID), websocket.Message{
			Type: "capture",
			Data: captureNotice{
				EventID:    event.EventID.String(),
				DeviceID:   event.DeviceID,
				PersonCode: event.PersonCode,
				Score:      event.Score,
				Known:      event.Known(),
				Image:      path,
				CapturedAt: event.CapturedAt,
			},
		})
	}

	logger.Event("saved", "Capture event saved", map[string]interface{}{
		"event_id": event.EventID.String(),
		"path":     path,
		"known":    event.Known(),
	})
	return nil
}

type captureNotice struct {
	EventID    string    `json:"event_id"`
	DeviceID   *int      `json:"device_id,omitempty"`
	PersonCode string    `json:"person_code,omitempty"`
	Score      *float64  `json:"score,omitempty"`
	Known      bool      `json:"known"`
	Image      string    `json:"image"`
	CapturedAt time.Time `json:"captured_at"`
}

func (w *EventWorker) sleep(d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-w.ctx.Done():
	}
}
