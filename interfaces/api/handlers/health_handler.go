package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"face-attendance/domain/services"
	"face-attendance/infrastructure/queue"
	"face-attendance/infrastructure/redis"
)

// WorkerStats is the part of the event worker the health check reads.
type WorkerStats interface {
	IsRunning() bool
	Stats() (processed, failed int64)
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db          *gorm.DB
	redisClient *redis.RedisClient
	detector    services.FaceDetector
	taskQueue   queue.TaskQueue
	worker      WorkerStats
}

func NewHealthHandler(
	db *gorm.DB,
	redisClient *redis.RedisClient,
	detector services.FaceDetector,
	taskQueue queue.TaskQueue,
	worker WorkerStats,
) *HealthHandler {
	return &HealthHandler{
		db:          db,
		redisClient: redisClient,
		detector:    detector,
		taskQueue:   taskQueue,
		worker:      worker,
	}
}

// ComponentHealth represents health status of a component
type ComponentHealth struct {
	Status  string `json:"status"` // "ok", "error", "unavailable"
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// DetailedHealthResponse represents detailed health check response
type DetailedHealthResponse struct {
	Status     string                     `json:"status"` // "healthy", "degraded", "unhealthy"
	Timestamp  time.Time                  `json:"timestamp"`
	Components map[string]ComponentHealth `json:"components"`
	Metrics    *HealthMetrics             `json:"metrics,omitempty"`
}

type HealthMetrics struct {
	QueueDepth      int64 `json:"queue_depth"`
	WorkerRunning   bool  `json:"worker_running"`
	EventsProcessed int64 `json:"events_processed"`
	EventsFailed    int64 `json:"events_failed"`
}

// Health is the liveness probe
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now(),
	})
}

// DetailedHealth godoc
// @Summary Get detailed system health
// @Tags Health
// @Produce json
// @Success 200 {object} DetailedHealthResponse
// @Router /health/detailed [get]
func (h *HealthHandler) DetailedHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 10*time.Second)
	defer cancel()

	response := DetailedHealthResponse{
		Timestamp:  time.Now(),
		Components: make(map[string]ComponentHealth),
	}

	allHealthy := true
	hasCriticalFailure := false

	dbHealth := h.checkDatabase(ctx)
	response.Components["database"] = dbHealth
	if dbHealth.Status != "ok" {
		hasCriticalFailure = true
	}

	redisHealth := h.checkRedis(ctx)
	response.Components["redis"] = redisHealth
	if redisHealth.Status == "error" {
		allHealthy = false
	}

	// Search cannot work without the detector
	faceHealth := h.checkFaceAPI(ctx)
	response.Components["face_api"] = faceHealth
	if faceHealth.Status == "error" {
		hasCriticalFailure = true
	}

	metrics := h.getMetrics(ctx)
	response.Metrics = metrics
	if metrics.QueueDepth < 0 || (h.worker != nil && !metrics.WorkerRunning) {
		allHealthy = false
	}

	switch {
	case hasCriticalFailure:
		response.Status = "unhealthy"
	case !allHealthy:
		response.Status = "degraded"
	default:
		response.Status = "healthy"
	}

	statusCode := fiber.StatusOK
	if response.Status == "unhealthy" {
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(response)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) ComponentHealth {
	start := time.Now()

	if h.db == nil {
		return ComponentHealth{Status: "error", Message: "Database not configured"}
	}

	sqlDB, err := h.db.DB()
	if err != nil {
		return ComponentHealth{Status: "error", Message: "Failed to get database connection: " + err.Error()}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return ComponentHealth{Status: "error", Message: "Database ping failed: " + err.Error()}
	}

	return ComponentHealth{Status: "ok", Message: "Connected", Latency: time.Since(start).String()}
}

func (h *HealthHandler) checkRedis(ctx context.Context) ComponentHealth {
	start := time.Now()

	if h.redisClient == nil {
		return ComponentHealth{Status: "unavailable", Message: "Redis not configured"}
	}

	if err := h.redisClient.Ping(ctx); err != nil {
		return ComponentHealth{Status: "error", Message: "Redis ping failed: " + err.Error()}
	}

	return ComponentHealth{Status: "ok", Message: "Connected", Latency: time.Since(start).String()}
}

func (h *HealthHandler) checkFaceAPI(ctx context.Context) ComponentHealth {
	start := time.Now()

	if h.detector == nil {
		return ComponentHealth{Status: "unavailable", Message: "Face API not configured"}
	}

	if err := h.detector.Health(ctx); err != nil {
		return ComponentHealth{Status: "error", Message: "Face API health check failed: " + err.Error()}
	}

	return ComponentHealth{Status: "ok", Message: "Reachable", Latency: time.Since(start).String()}
}

func (h *HealthHandler) getMetrics(ctx context.Context) *HealthMetrics {
	metrics := &HealthMetrics{}

	if h.taskQueue != nil {
		depth, err := h.taskQueue.Len(ctx)
		if err != nil {
			depth = -1
		}
		metrics.QueueDepth = depth
	}

	if h.worker != nil {
		metrics.WorkerRunning = h.worker.IsRunning()
		metrics.EventsProcessed, metrics.EventsFailed = h.worker.Stats()
	}

	return metrics
}
