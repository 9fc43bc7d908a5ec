package worker

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"face-attendance/domain/models"
	"face-attendance/domain/services"
	"face-attendance/infrastructure/queue"
	"face-attendance/infrastructure/storage"
	"face-attendance/infrastructure/websocket"
)

type fakeEventRepo struct {
	mu     sync.Mutex
	events []models.PersonEvent
	fail   int // number of calls to fail before succeeding
}

func (f *fakeEventRepo) Create(ctx context.Context, event *models.PersonEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail > 0 {
		f.fail--
		return errors.New("connection reset")
	}
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeEventRepo) ListByDevice(ctx context.Context, deviceID int, since time.Time, limit int) ([]models.PersonEvent, error) {
	return nil, nil
}

func (f *fakeEventRepo) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeEventRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type fakeBroadcaster struct {
	mu    sync.Mutex
	rooms []string
}

func (f *fakeBroadcaster) BroadcastToRoom(room string, msg websocket.Message) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms = append(f.rooms, room)
	return 1
}

func captureEvent(t *testing.T, dir string, device *int) []byte {
	t.Helper()
	personID := uuid.New()
	score := 0.92
	payload, err := json.Marshal(services.CaptureEvent{
		EventID:    uuid.New(),
		UnitID:     3,
		DeviceID:   device,
		PersonID:   &personID,
		PersonCode: "A1",
		Score:      &score,
		Quality:    0.8,
		Feature:    []float64{0.1, 0.2},
		Image:      "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("jpeg")),
		Directory:  dir,
		Filename:   "101500_A1.jpg",
		CapturedAt: time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
	return payload
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestEventWorkerProcessesCameraCapture(t *testing.T) {
	q := queue.NewMemoryQueue(8)
	repo := &fakeEventRepo{}
	hub := &fakeBroadcaster{}
	dir := filepath.Join(t.TempDir(), "20240305")

	w := NewEventWorker(q, storage.NewLocalStorage(), repo, hub, EventWorkerConfig{
		Concurrency: 2,
		PollTimeout: 20 * time.Millisecond,
	})
	w.Start()
	defer w.Stop()

	device := 7
	if err := q.Enqueue(context.Background(), captureEvent(t, dir, &device)); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool { p, _ := w.Stats(); return p == 1 })

	if data, err := os.ReadFile(filepath.Join(dir, "101500_A1.jpg")); err != nil || string(data) != "jpeg" {
		t.Errorf("image = %q, %v", data, err)
	}
	if repo.count() != 1 {
		t.Fatalf("person events = %d, want 1", repo.count())
	}
	if ev := repo.events[0]; ev.DeviceID != 7 || ev.PersonID == nil || ev.Feature == nil {
		t.Errorf("person event = %+v", ev)
	}
	if len(hub.rooms) != 1 || hub.rooms[0] != "unit:3" {
		t.Errorf("broadcast rooms = %v", hub.rooms)
	}
}

func TestEventWorkerSkipsPersonEventWithoutDevice(t *testing.T) {
	repo := &fakeEventRepo{}
	w := NewEventWorker(queue.NewMemoryQueue(1), storage.NewLocalStorage(), repo, nil, EventWorkerConfig{})

	var event services.CaptureEvent
	if err := json.Unmarshal(captureEvent(t, t.TempDir(), nil), &event); err != nil {
		t.Fatal(err)
	}
	if err := w.Process(context.Background(), &event); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if repo.count() != 0 {
		t.Errorf("person events = %d, want 0", repo.count())
	}
}

func TestEventWorkerRetriesTransientFailures(t *testing.T) {
	q := queue.NewMemoryQueue(1)
	repo := &fakeEventRepo{fail: 2}
	w := NewEventWorker(q, storage.NewLocalStorage(), repo, nil, EventWorkerConfig{
		Concurrency:    1,
		PollTimeout:    20 * time.Millisecond,
		MaxRetries:     3,
		BaseRetryDelay: time.Millisecond,
	})
	w.Start()
	defer w.Stop()

	device := 7
	q.Enqueue(context.Background(), captureEvent(t, t.TempDir(), &device))

	waitFor(t, func() bool { p, _ := w.Stats(); return p == 1 })
	if repo.count() != 1 {
		t.Errorf("person events = %d, want 1", repo.count())
	}
}

func TestEventWorkerDropsBadPayload(t *testing.T) {
	q := queue.NewMemoryQueue(2)
	w := NewEventWorker(q, storage.NewLocalStorage(), &fakeEventRepo{}, nil, EventWorkerConfig{
		Concurrency: 1,
		PollTimeout: 20 * time.Millisecond,
		MaxRetries:  3,
	})
	w.Start()
	defer w.Stop()

	q.Enqueue(context.Background(), []byte("{not json"))
	badImage, _ := json.Marshal(services.CaptureEvent{EventID: uuid.New(), Image: "%%%", Directory: t.TempDir(), Filename: "x.jpg"})
	q.Enqueue(context.Background(), badImage)

	waitFor(t, func() bool { _, f := w.Stats(); return f == 2 })
}

func TestEventWorkerStartStop(t *testing.T) {
	w := NewEventWorker(queue.NewMemoryQueue(1), storage.NewLocalStorage(), nil, nil, EventWorkerConfig{PollTimeout: 10 * time.Millisecond})
	w.Start()
	w.Start()
	if !w.IsRunning() {
		t.Fatal("worker should be running")
	}
	w.Stop()
	if w.IsRunning() {
		t.Fatal("worker should be stopped")
	}
}
