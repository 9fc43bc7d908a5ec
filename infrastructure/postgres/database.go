package postgres

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"face-attendance/domain/models"
	"face-attendance/domain/repositories"
)

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	LogLevel gormlogger.LogLevel
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode)
}

func NewDatabase(config DatabaseConfig) (*gorm.DB, error) {
	level := config.LogLevel
	if level == 0 {
		level = gormlogger.Warn
	}

	db, err := gorm.Open(postgres.Open(config.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Enable pgvector extension for face embeddings
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("failed to enable pgvector extension: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Unit{},
		&models.Department{},
		&models.Area{},
		&models.Camera{},
		&models.Person{},
		&models.PersonEvent{},
	); err != nil {
		return fmt.Errorf("failed to run auto migrations: %w", err)
	}

	// Partial index backing the candidate query
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_persons_searchable
		ON persons (department_id) WHERE deleted_at IS NULL AND feature IS NOT NULL`).Error; err != nil {
		return fmt.Errorf("failed to create searchable index: %w", err)
	}

	return nil
}

// translate maps gorm's not-found error onto the domain sentinel.
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repositories.ErrNotFound
	}
	return err
}
