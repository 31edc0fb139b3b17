package database

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/s/coursehub/internal/config"
)

const retryDelay = 2 * time.Second

// Connect opens Postgres, retrying while the container wakes up.
func Connect(cfg config.DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var db *gorm.DB
	var err error

	// Попытки подключения (Docker-база иногда «просыпается» пару секунд)
	for i := 0; i < attempts; i++ {
		db, err = gorm.Open(postgres.Open(cfg.URL), Options())
		if err == nil {
			logger.Info("database connected")
			return db, nil
		}

		logger.Warn("database connection attempt failed", "attempt", i+1, "error", err)
		if i+1 < attempts {
			time.Sleep(retryDelay)
		}
	}

	return nil, fmt.Errorf("connect database after %d attempts: %w", attempts, err)
}

// Options is the gorm configuration shared by every dialect. Driver
// uniqueness errors are translated to gorm.ErrDuplicatedKey.
func Options() *gorm.Config {
	return &gorm.Config{TranslateError: true}
}
