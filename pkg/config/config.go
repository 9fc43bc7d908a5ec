package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Admin      AdminConfig
	FaceAPI    FaceAPIConfig
	Storage    StorageConfig
	Queue      QueueConfig
	RateLimit  RateLimitConfig
	Privileges PrivilegeConfig
}

type AppConfig struct {
	Name string
	Port string
	Env  string
	// GMTOffset is the number of hours added to UTC when naming event images
	GMTOffset int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type AdminConfig struct {
	Token     string // Plain admin token (falls back to JWT secret if empty)
	TokenHash string // bcrypt hash of the admin token, preferred over Token when set
}

type FaceAPIConfig struct {
	BaseURL          string        // Base URL of the face detection service
	DetectURI        string        // Path of the detect endpoint
	HealthURI        string        // Path of the health endpoint
	Timeout          time.Duration // Bound on a single detect call
	MaskThresholdSub float64       // Subtracted from the search threshold when a mask is detected
	Enabled          bool
}

type StorageConfig struct {
	Root          string
	PersonPath    string
	EventPath     string
	RetentionDays int // Dated event directories older than this are purged (0 disables)
}

type QueueConfig struct {
	Backend string // "redis" or "memory"
	Key     string // Redis list holding pending capture events
	Workers int
	Buffer  int // Channel size for the memory backend
}

type RateLimitConfig struct {
	Enabled       bool
	MaxRequests   int
	WindowSeconds int
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists (optional for production)
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	timeout, err := time.ParseDuration(getEnv("FACE_API_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid FACE_API_TIMEOUT: %w", err)
	}

	maskSub, err := strconv.ParseFloat(getEnv("MASK_THRESHOLD_SUB", "0.05"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MASK_THRESHOLD_SUB: %w", err)
	}

	config := &Config{
		App: AppConfig{
			Name:      getEnv("APP_NAME", "Face Attendance API"),
			Port:      getEnv("APP_PORT", "8000"),
			Env:       getEnv("APP_ENV", "development"),
			GMTOffset: getEnvInt("GMT_TIMEZONE", 7),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			DBName:   getEnv("POSTGRES_DB", "face_attendance"),
			SSLMode:  getEnv("POSTGRES_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key"),
		},
		Admin: AdminConfig{
			Token:     getEnv("ADMIN_TOKEN", ""),
			TokenHash: getEnv("ADMIN_TOKEN_HASH", ""),
		},
		FaceAPI: FaceAPIConfig{
			BaseURL:          getEnv("AI_SERVICE_BASE_URL", "http://localhost:62070"),
			DetectURI:        getEnv("DETECT_FACE_URI", "/api/v1/analyze/detect"),
			HealthURI:        getEnv("FACE_API_HEALTH_URI", "/health"),
			Timeout:          timeout,
			MaskThresholdSub: maskSub,
			Enabled:          getEnv("FACE_API_ENABLED", "true") == "true",
		},
		Storage: StorageConfig{
			Root:          getEnv("STORAGE_PATH", "storage"),
			PersonPath:    getEnv("PERSON_PATH", "persons"),
			EventPath:     getEnv("EVENT_PATH", "events"),
			RetentionDays: getEnvInt("EVENT_RETENTION_DAYS", 90),
		},
		Queue: QueueConfig{
			Backend: getEnv("QUEUE_BACKEND", "redis"),
			Key:     getEnv("QUEUE_KEY", "face_attendance:capture_events"),
			Workers: getEnvInt("QUEUE_WORKERS", 2),
			Buffer:  getEnvInt("QUEUE_BUFFER", 256),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getEnv("RATE_LIMIT_ENABLED", "true") == "true",
			MaxRequests:   getEnvInt("RATE_LIMIT_MAX", 120),
			WindowSeconds: getEnvInt("RATE_LIMIT_WINDOW", 60),
		},
	}

	privileges, err := LoadPrivileges(getEnv("PRIVILEGES_FILE", "resources/configs/privileges.yaml"))
	if err != nil {
		return nil, err
	}
	config.Privileges = *privileges

	return config, nil
}

// EventRoot is the directory under which dated capture folders are created.
func (s StorageConfig) EventRoot() string {
	return s.Root + "/" + s.EventPath
}

// PersonRoot is the directory holding registered portraits.
func (s StorageConfig) PersonRoot() string {
	return s.Root + "/" + s.PersonPath
}

// Now returns the wall clock shifted by the configured GMT offset.
func (a AppConfig) Now() time.Time {
	return time.Now().UTC().Add(time.Duration(a.GMTOffset) * time.Hour)
}

// ResourcePrivilege names the privileges required to view or manage a resource.
type ResourcePrivilege struct {
	View   string `yaml:"view"`
	Manage string `yaml:"manage"`
	Search string `yaml:"search,omitempty"`
}

// PrivilegeConfig maps resources to privilege names. Loaded once at startup.
type PrivilegeConfig struct {
	User      ResourcePrivilege `yaml:"user"`
	Role      ResourcePrivilege `yaml:"role"`
	Unit      ResourcePrivilege `yaml:"unit"`
	Privilege ResourcePrivilege `yaml:"privilege"`
	Person    ResourcePrivilege `yaml:"person"`
}

// DefaultPrivileges is used when no privileges file is present.
func DefaultPrivileges() PrivilegeConfig {
	return PrivilegeConfig{
		User:      ResourcePrivilege{View: "ViewUser", Manage: "ManageUser"},
		Role:      ResourcePrivilege{View: "ViewRole", Manage: "ManageRole"},
		Unit:      ResourcePrivilege{View: "ViewUnit", Manage: "ManageUnit"},
		Privilege: ResourcePrivilege{View: "ViewPrivilege", Manage: "ManagePrivilege"},
		Person:    ResourcePrivilege{View: "ViewPerson", Manage: "ManagePerson", Search: "SearchFace"},
	}
}

// LoadPrivileges reads the YAML privilege map. A missing file yields the defaults.
func LoadPrivileges(path string) (*PrivilegeConfig, error) {
	cfg := DefaultPrivileges()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read privileges file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse privileges file: %w", err)
	}

	return &cfg, nil
}

// Get resolves a "resource.action" key, e.g. "person.search" -> "SearchFace".
// Unknown keys resolve to themselves.
func (p PrivilegeConfig) Get(key string) string {
	name, action, ok := strings.Cut(key, ".")
	if !ok {
		return key
	}

	var resource ResourcePrivilege
	switch name {
	case "user":
		resource = p.User
	case "role":
		resource = p.Role
	case "unit":
		resource = p.Unit
	case "privilege":
		resource = p.Privilege
	case "person":
		resource = p.Person
	default:
		return key
	}

	var value string
	switch action {
	case "view":
		value = resource.View
	case "manage":
		value = resource.Manage
	case "search":
		value = resource.Search
	}
	if value == "" {
		return key
	}
	return value
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
