package handlers

import (
	"gorm.io/gorm"

	"face-attendance/domain/services"
	"face-attendance/infrastructure/queue"
	"face-attendance/infrastructure/redis"
)

// Services contains all the services needed for handlers
type Services struct {
	FaceSearchService services.FaceSearchService
	FaceDetector      services.FaceDetector
}

// Infrastructure is what the health handler probes
type Infrastructure struct {
	DB          *gorm.DB
	RedisClient *redis.RedisClient
	TaskQueue   queue.TaskQueue
	Worker      WorkerStats
}

// Handlers contains all HTTP handlers
type Handlers struct {
	FaceSearchHandler *FaceSearchHandler
	HealthHandler     *HealthHandler
	LogHandler        *LogHandler

	// Short accessors for routes
	FaceSearch *FaceSearchHandler
	Health     *HealthHandler
	Log        *LogHandler
}

func NewHandlers(services *Services, infra *Infrastructure) *Handlers {
	faceSearchHandler := NewFaceSearchHandler(services.FaceSearchService)
	logHandler := NewLogHandler()

	var healthHandler *HealthHandler
	if infra != nil {
		healthHandler = NewHealthHandler(infra.DB, infra.RedisClient, services.FaceDetector, infra.TaskQueue, infra.Worker)
	} else {
		healthHandler = NewHealthHandler(nil, nil, services.FaceDetector, nil, nil)
	}

	return &Handlers{
		FaceSearchHandler: faceSearchHandler,
		HealthHandler:     healthHandler,
		LogHandler:        logHandler,

		FaceSearch: faceSearchHandler,
		Health:     healthHandler,
		Log:        logHandler,
	}
}
