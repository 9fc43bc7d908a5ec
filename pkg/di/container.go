package di

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"face-attendance/application/serviceimpl"
	"face-attendance/domain/repositories"
	"face-attendance/domain/services"
	"face-attendance/infrastructure/faceapi"
	"face-attendance/infrastructure/postgres"
	"face-attendance/infrastructure/queue"
	"face-attendance/infrastructure/redis"
	"face-attendance/infrastructure/storage"
	"face-attendance/infrastructure/websocket"
	"face-attendance/infrastructure/worker"
	"face-attendance/interfaces/api/handlers"
	"face-attendance/pkg/config"
	"face-attendance/pkg/logger"
	"face-attendance/pkg/scheduler"
)

const (
	retentionJobID    = "event-retention"
	retentionJobCron  = "30 2 * * *"
	submitTimeout     = 2 * time.Second
	eventPollInterval = 5 * time.Second
)

type Container struct {
	// Configuration
	Config *config.Config

	// Infrastructure
	DB           *gorm.DB
	RedisClient  *redis.RedisClient
	TaskQueue    queue.TaskQueue
	ImageStorage storage.ImageStorage
	JobScheduler scheduler.JobScheduler
	WSManager    *websocket.Manager

	// Repositories
	UnitRepository        repositories.UnitRepository
	DepartmentRepository  repositories.DepartmentRepository
	PersonRepository      repositories.PersonRepository
	CameraRepository      repositories.CameraRepository
	PersonEventRepository repositories.PersonEventRepository

	// Services
	EventLogger       services.EventLogger
	FaceSearchService services.FaceSearchService

	// Workers
	EventWorker *worker.EventWorker

	// Clients
	FaceClient *faceapi.FaceClient
}

func NewContainer() *Container {
	return &Container{}
}

// Initialize wires everything the API server needs and starts the background
// worker and scheduler.
func (c *Container) Initialize() error {
	if err := c.InitializeMaintenance(); err != nil {
		return err
	}

	if err := c.initServices(); err != nil {
		return err
	}

	if err := c.initWorkers(); err != nil {
		return err
	}

	if err := c.initScheduler(); err != nil {
		return err
	}

	return nil
}

// InitializeMaintenance wires storage and repositories only. Used by facectl.
func (c *Container) InitializeMaintenance() error {
	if err := c.initConfig(); err != nil {
		return err
	}

	if err := c.initInfrastructure(); err != nil {
		return err
	}

	if err := c.initQueue(); err != nil {
		return err
	}

	return c.initRepositories()
}

func (c *Container) initConfig() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	c.Config = cfg
	logger.Startup("config_loaded", "Configuration loaded", map[string]interface{}{
		"queue_backend": cfg.Queue.Backend,
		"face_api":      cfg.FaceAPI.BaseURL,
	})
	return nil
}

func (c *Container) initInfrastructure() error {
	dbConfig := postgres.DatabaseConfig{
		Host:     c.Config.Database.Host,
		Port:     c.Config.Database.Port,
		User:     c.Config.Database.User,
		Password: c.Config.Database.Password,
		DBName:   c.Config.Database.DBName,
		SSLMode:  c.Config.Database.SSLMode,
	}

	db, err := postgres.NewDatabase(dbConfig)
	if err != nil {
		return err
	}
	c.DB = db
	logger.Startup("db_connected", "Database connected", nil)

	if err := postgres.Migrate(db); err != nil {
		return err
	}
	logger.Startup("db_migrated", "Database migrated", nil)

	redisConfig := redis.RedisConfig{
		Host:     c.Config.Redis.Host,
		Port:     c.Config.Redis.Port,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	}
	c.RedisClient = redis.NewRedisClient(redisConfig)

	if err := c.RedisClient.Ping(context.Background()); err != nil {
		logger.StartupWarn("redis_connection_failed", "Redis connection failed", map[string]interface{}{"error": err.Error()})
	} else {
		logger.Startup("redis_connected", "Redis connected", nil)
	}

	c.ImageStorage = storage.NewLocalStorage()
	c.WSManager = websocket.NewManager()

	return nil
}

// initQueue picks the capture queue backend. A redis backend that cannot be
// reached falls back to the in-process queue.
func (c *Container) initQueue() error {
	backend := c.Config.Queue.Backend

	if backend == "redis" {
		if err := c.RedisClient.Ping(context.Background()); err != nil {
			logger.StartupWarn("queue_fallback", "Redis unavailable, using in-memory capture queue", map[string]interface{}{"error": err.Error()})
			backend = "memory"
		}
	}

	switch backend {
	case "redis":
		c.TaskQueue = queue.NewRedisQueue(c.RedisClient.Client(), c.Config.Queue.Key)
	case "memory":
		c.TaskQueue = queue.NewMemoryQueue(c.Config.Queue.Buffer)
	default:
		return fmt.Errorf("unknown queue backend %q", backend)
	}

	logger.Startup("queue_initialized", "Capture queue initialized", map[string]interface{}{"backend": backend})
	return nil
}

func (c *Container) initRepositories() error {
	c.UnitRepository = postgres.NewUnitRepository(c.DB)
	c.DepartmentRepository = postgres.NewDepartmentRepository(c.DB)
	c.PersonRepository = postgres.NewPersonRepository(c.DB)
	c.CameraRepository = postgres.NewCameraRepository(c.DB)
	c.PersonEventRepository = postgres.NewPersonEventRepository(c.DB)
	logger.Startup("repositories_initialized", "Repositories initialized", nil)
	return nil
}

func (c *Container) initServices() error {
	if !c.Config.FaceAPI.Enabled {
		return fmt.Errorf("face API is disabled, face search cannot start")
	}

	c.FaceClient = faceapi.NewFaceClient(faceapi.Config{
		BaseURL:   c.Config.FaceAPI.BaseURL,
		DetectURI: c.Config.FaceAPI.DetectURI,
		HealthURI: c.Config.FaceAPI.HealthURI,
		Timeout:   c.Config.FaceAPI.Timeout,
	})

	if err := c.FaceClient.Health(context.Background()); err != nil {
		logger.StartupWarn("face_api_unhealthy", "Face API health check failed", map[string]interface{}{"error": err.Error()})
	}

	c.EventLogger = serviceimpl.NewEventLogger(c.TaskQueue, submitTimeout)
	c.FaceSearchService = serviceimpl.NewFaceSearchService(
		c.UnitRepository,
		c.DepartmentRepository,
		c.PersonRepository,
		c.CameraRepository,
		c.FaceClient,
		c.EventLogger,
		serviceimpl.FaceSearchConfig{
			MaskThresholdSub: c.Config.FaceAPI.MaskThresholdSub,
			EventRoot:        c.Config.Storage.EventRoot(),
			Now:              c.Config.App.Now,
		},
	)

	logger.Startup("services_initialized", "Services initialized", nil)
	return nil
}

func (c *Container) initWorkers() error {
	// Requeue captures left in flight by a previous process
	if n, err := c.TaskQueue.Recover(context.Background()); err != nil {
		logger.StartupWarn("queue_recover_failed", "Failed to recover in-flight captures", map[string]interface{}{"error": err.Error()})
	} else if n > 0 {
		logger.Startup("queue_recovered", "Recovered in-flight captures", map[string]interface{}{"count": n})
	}

	c.EventWorker = worker.NewEventWorker(
		c.TaskQueue,
		c.ImageStorage,
		c.PersonEventRepository,
		c.WSManager,
		worker.EventWorkerConfig{
			Concurrency: c.Config.Queue.Workers,
			PollTimeout: eventPollInterval,
		},
	)
	c.EventWorker.Start()

	return nil
}

func (c *Container) initScheduler() error {
	c.JobScheduler = scheduler.NewJobScheduler(time.UTC)

	if c.Config.Storage.RetentionDays <= 0 {
		logger.Startup("retention_disabled", "Event retention disabled", nil)
		return nil
	}

	err := c.JobScheduler.AddJob(retentionJobID, retentionJobCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		dirs, rows, err := c.PurgeEvents(ctx, c.Config.Storage.RetentionDays)
		if err != nil {
			logger.SchedulerError("retention_job_error", "Event retention job failed", err, nil)
			return
		}
		logger.Scheduler("retention_job_done", "Event retention job completed", map[string]interface{}{
			"directories": dirs,
			"rows":        rows,
		})
	})
	if err != nil {
		logger.StartupWarn("retention_schedule_failed", "Failed to schedule event retention job", map[string]interface{}{"error": err.Error()})
		return nil
	}

	c.JobScheduler.Start()
	logger.Startup("scheduler_started", "Job scheduler started", map[string]interface{}{
		"job":  retentionJobID,
		"cron": retentionJobCron,
		"days": c.Config.Storage.RetentionDays,
	})
	return nil
}

// PurgeEvents removes capture images and person event rows older than days.
func (c *Container) PurgeEvents(ctx context.Context, days int) (int, int64, error) {
	if days <= 0 {
		return 0, 0, fmt.Errorf("retention days must be positive, got %d", days)
	}

	now := c.Config.App.Now()
	dirs, err := c.ImageStorage.PurgeOlderThan(c.Config.Storage.EventRoot(), days, now)
	if err != nil {
		return dirs, 0, fmt.Errorf("failed to purge event images: %w", err)
	}

	rows, err := c.PersonEventRepository.DeleteOlderThan(ctx, now.AddDate(0, 0, -days))
	if err != nil {
		return dirs, 0, fmt.Errorf("failed to purge person events: %w", err)
	}

	return dirs, rows, nil
}

// RecoverEvents requeues captures that were taken by a worker but never acked.
func (c *Container) RecoverEvents(ctx context.Context) (int, error) {
	return c.TaskQueue.Recover(ctx)
}

func (c *Container) Cleanup() error {
	logger.Startup("cleanup_started", "Starting cleanup...", nil)

	if c.EventWorker != nil && c.EventWorker.IsRunning() {
		c.EventWorker.Stop()
	}

	if c.JobScheduler != nil {
		if c.JobScheduler.IsRunning() {
			c.JobScheduler.Stop()
			logger.Startup("scheduler_stopped", "Job scheduler stopped", nil)
		} else {
			logger.Startup("scheduler_already_stopped", "Job scheduler was already stopped", nil)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			logger.StartupWarn("redis_close_failed", "Failed to close Redis connection", map[string]interface{}{"error": err.Error()})
		} else {
			logger.Startup("redis_closed", "Redis connection closed", nil)
		}
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.StartupWarn("db_close_failed", "Failed to close database connection", map[string]interface{}{"error": err.Error()})
			} else {
				logger.Startup("db_closed", "Database connection closed", nil)
			}
		}
	}

	logger.Startup("cleanup_completed", "Cleanup completed", nil)
	return nil
}

func (c *Container) GetConfig() *config.Config {
	return c.Config
}

func (c *Container) GetHandlerServices() *handlers.Services {
	svc := &handlers.Services{
		FaceSearchService: c.FaceSearchService,
	}
	// Avoid a typed nil inside the interface when the client was never built
	if c.FaceClient != nil {
		svc.FaceDetector = c.FaceClient
	}
	return svc
}

func (c *Container) GetHandlerInfrastructure() *handlers.Infrastructure {
	infra := &handlers.Infrastructure{
		DB:          c.DB,
		RedisClient: c.RedisClient,
		TaskQueue:   c.TaskQueue,
	}
	if c.EventWorker != nil {
		infra.Worker = c.EventWorker
	}
	return infra
}
