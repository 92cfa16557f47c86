package database

import (
	"fmt"

	"github.com/sangkips/brewline-api/internal/config"
	"github.com/sangkips/brewline-api/internal/domain/entity"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool, log logrus.FieldLogger) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.WithField("host", cfg.Host).Info("Successfully connected to PostgreSQL database")
	return db, nil
}

// Models lists every entity owned by the service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		// Catalog
		&entity.Product{},
		&entity.Addon{},
		&entity.Material{},
		&entity.Recipe{},

		// Orders and settlement
		&entity.Order{},
		&entity.OrderItem{},
		&entity.OrderItemAddon{},
		&entity.Payment{},
		&entity.MaterialUsage{},

		// System entities
		&entity.IdempotencyKey{},
	}
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB, log logrus.FieldLogger) error {
	log.Info("Running database migrations...")

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations completed successfully")
	return nil
}
