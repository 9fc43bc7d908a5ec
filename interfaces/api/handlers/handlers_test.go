package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"face-attendance/domain/dto"
	"face-attendance/domain/services"
	"face-attendance/pkg/logger"
)

type stubSearchService struct {
	outcome *services.SearchOutcome
	err     error
	got     services.SearchRequest
	calls   int
}

func (s *stubSearchService) Search(ctx context.Context, req services.SearchRequest) (*services.SearchOutcome, error) {
	s.calls++
	s.got = req
	return s.outcome, s.err
}

type stubDetector struct{ err error }

func (d stubDetector) Detect(ctx context.Context, image string) (*services.DetectionResult, error) {
	return nil, d.err
}

func (d stubDetector) Health(ctx context.Context) error { return d.err }

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "handler-logs")
	if err == nil {
		logger.Init(dir, false)
		defer os.RemoveAll(dir)
	}
	m.Run()
}

func newSearchApp(svc services.FaceSearchService) *fiber.App {
	h := NewFaceSearchHandler(svc)
	app := fiber.New()
	app.Post("/search-face", h.SearchFace)
	app.Post("/search-face-camera", h.SearchFaceCamera)
	return app
}

func post(t *testing.T, app *fiber.App, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	return resp.StatusCode, out
}

func TestSearchFaceSuccess(t *testing.T) {
	id := uuid.New()
	match := services.SearchResult{PersonID: id, Name: "Ann", Code: "A1", DepartmentID: 3, Similarity: 0.9}
	svc := &stubSearchService{outcome: &services.SearchOutcome{
		RequestTime: 0.25,
		Results:     []services.SearchResult{match},
		Nearest:     &match,
		Detection:   services.DetectionResult{Feature: []float64{0.1}, Quality: 0.8, FaceRectangle: []int{1, 2, 3, 4}},
	}}
	app := newSearchApp(svc)

	status, body := post(t, app, "/search-face", `{"base64_image":"abc","unit_id":2,"department_id":3,"num_result":5}`)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, body %v", status, body)
	}

	if svc.got.Scope.UnitID != 2 || svc.got.Scope.DepartmentID == nil || *svc.got.Scope.DepartmentID != 3 {
		t.Errorf("scope = %+v", svc.got.Scope)
	}
	if svc.got.NumResult != 5 || svc.got.Threshold != dto.DefaultThreshold || svc.got.Quality != dto.DefaultQuality {
		t.Errorf("request = %+v", svc.got)
	}
	if svc.got.DeviceID != nil {
		t.Error("plain search must not carry a device")
	}

	results, ok := body["results"].([]interface{})
	if !ok || len(results) != 1 {
		t.Fatalf("results = %v", body["results"])
	}
	data := body["data"].([]interface{})
	if _, has := data[0].(map[string]interface{})["feature"]; has {
		t.Error("feature must not be echoed back")
	}
	nearest := body["nearest_result"].(map[string]interface{})
	if nearest["person_id"] != id.String() {
		t.Errorf("nearest = %v", nearest)
	}
}

func TestSearchFaceCameraPassesDevice(t *testing.T) {
	svc := &stubSearchService{outcome: &services.SearchOutcome{}}
	app := newSearchApp(svc)

	status, body := post(t, app, "/search-face-camera", `{"base64_image":"abc","unit_id":2,"device_id":11}`)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, body %v", status, body)
	}
	if svc.got.DeviceID == nil || *svc.got.DeviceID != 11 {
		t.Errorf("device = %v", svc.got.DeviceID)
	}
	if results, ok := body["results"].([]interface{}); !ok || len(results) != 0 {
		t.Errorf("results = %v, want empty list", body["results"])
	}
	if body["nearest_result"] != nil {
		t.Errorf("nearest_result = %v, want null", body["nearest_result"])
	}
}

func TestSearchFaceCameraWithoutDevice(t *testing.T) {
	svc := &stubSearchService{outcome: &services.SearchOutcome{}}
	app := newSearchApp(svc)

	status, body := post(t, app, "/search-face-camera", `{"base64_image":"abc","unit_id":1}`)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, body %v", status, body)
	}
	if svc.calls != 1 {
		t.Errorf("service calls = %d, want 1", svc.calls)
	}
	if svc.got.DeviceID != nil {
		t.Errorf("device = %d, want none", *svc.got.DeviceID)
	}
	if svc.got.Scope.UnitID != 1 {
		t.Errorf("scope = %+v", svc.got.Scope)
	}
}

func TestSearchFaceValidation(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{"malformed json", "/search-face", `{`},
		{"missing image", "/search-face", `{"unit_id":1}`},
		{"missing unit", "/search-face", `{"base64_image":"abc"}`},
		{"threshold out of range", "/search-face", `{"base64_image":"abc","unit_id":1,"threshold":1.5}`},
		{"num_result zero", "/search-face", `{"base64_image":"abc","unit_id":1,"num_result":0}`},
		{"camera device zero", "/search-face-camera", `{"base64_image":"abc","unit_id":1,"device_id":0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubSearchService{}
			status, body := post(t, newSearchApp(svc), tt.path, tt.body)
			if status != fiber.StatusBadRequest {
				t.Errorf("status = %d, want 400", status)
			}
			if body["success"] != false {
				t.Errorf("body = %v", body)
			}
			if svc.calls != 0 {
				t.Error("service should not be called")
			}
		})
	}
}

func TestSearchFaceErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid scope", fmt.Errorf("unit 9: %w", services.ErrInvalidScope), fiber.StatusBadRequest},
		{"department", services.ErrDepartmentNotInScope, fiber.StatusBadRequest},
		{"no face", services.ErrNoFaceDetected, fiber.StatusBadRequest},
		{"low quality", &services.LowQualityError{Quality: 0.1, Minimum: 0.3}, fiber.StatusBadRequest},
		{"detector down", fmt.Errorf("%w: timeout", services.ErrDetectionUnavailable), fiber.StatusServiceUnavailable},
		{"other", errors.New("db exploded"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newSearchApp(&stubSearchService{err: tt.err})
			status, body := post(t, app, "/search-face", `{"base64_image":"abc","unit_id":1}`)
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if body["error"] == nil || body["error"] == "" {
				t.Errorf("body = %v", body)
			}
		})
	}
}

type stubWorker struct{ running bool }

func (w stubWorker) IsRunning() bool                  { return w.running }
func (w stubWorker) Stats() (processed, failed int64) { return 4, 1 }

func TestDetailedHealth(t *testing.T) {
	tests := []struct {
		name       string
		detector   services.FaceDetector
		worker     WorkerStats
		wantStatus int
	}{
		// No database configured is a critical failure
		{"no database", stubDetector{}, stubWorker{running: true}, fiber.StatusServiceUnavailable},
		{"detector down", stubDetector{err: errors.New("down")}, stubWorker{running: true}, fiber.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(nil, nil, tt.detector, nil, tt.worker)
			app := fiber.New()
			app.Get("/health/detailed", h.DetailedHealth)

			resp, err := app.Test(httptest.NewRequest("GET", "/health/detailed", nil), -1)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			var out DetailedHealthResponse
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				t.Fatal(err)
			}
			if out.Status != "unhealthy" {
				t.Errorf("status = %q", out.Status)
			}
			if out.Metrics == nil || !out.Metrics.WorkerRunning || out.Metrics.EventsProcessed != 4 {
				t.Errorf("metrics = %+v", out.Metrics)
			}
			if out.Components["redis"].Status != "unavailable" {
				t.Errorf("redis = %+v", out.Components["redis"])
			}
		})
	}
}

func TestHealth(t *testing.T) {
	h := NewHealthHandler(nil, nil, nil, nil, nil)
	app := fiber.New()
	app.Get("/health", h.Health)
	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestLogHandlerReadsEntries(t *testing.T) {
	logger.Face("search", "ranked candidates", map[string]interface{}{"unit_id": 1})

	h := NewLogHandler()
	app := fiber.New()
	app.Get("/logs", h.GetLogs)
	app.Get("/logs/stats", h.GetLogStats)

	resp, err := app.Test(httptest.NewRequest("GET", "/logs?category=face&search=ranked", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Success bool `json:"success"`
		Data    struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if !out.Success || out.Data.Count < 1 {
		t.Errorf("logs response = %+v", out)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/logs/stats", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("stats status = %d", resp.StatusCode)
	}
}
