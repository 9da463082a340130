package database

import (
	"fmt"
	"time"

	"github.com/s/investorAcademy/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the postgres database, retrying while the container wakes up.
func Connect(dsn string, attempts int, log *logger.Logger) (*gorm.DB, error) {
	if attempts < 1 {
		attempts = 1
	}

	var db *gorm.DB
	var err error

	for i := 0; i < attempts; i++ {
		db, err = gorm.Open(postgres.Open(dsn), GormConfig())
		if err == nil {
			log.Info("database connected", "attempt", i+1)
			return db, nil
		}

		log.Warn("database connection attempt failed", "attempt", i+1, "error", err)
		if i < attempts-1 {
			time.Sleep(2 * time.Second)
		}
	}

	return nil, fmt.Errorf("database: could not connect after %d attempts: %w", attempts, err)
}

// GormConfig is shared by every dialect so that driver errors are translated
// into gorm.ErrDuplicatedKey and friends.
func GormConfig() *gorm.Config {
	return &gorm.Config{TranslateError: true}
}
