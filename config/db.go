package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"cropwise/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB is a global variable to hold the database connection
var DB *gorm.DB

// Connect opens the relational store. Postgres URLs and key/value DSNs go to
// the postgres driver, anything else is treated as a SQLite path.
func Connect(dsn string) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: newGormLogger(log.New(os.Stdout, "\r\n", log.LstdFlags))}

	var dialector gorm.Dialector
	if isPostgres(dsn) {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if !isPostgres(dsn) {
		// one connection: SQLite has a single writer and every :memory:
		// connection is its own database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)

		// SQLite ships with foreign keys off
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}
	return db, nil
}

// newGormLogger reports slow queries and failures. A missing row is an
// ordinary answer here (an absent soil snapshot, an unknown email), so
// gorm.ErrRecordNotFound is not logged.
func newGormLogger(w gormlogger.Writer) gormlogger.Interface {
	return gormlogger.New(w, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// Migrate runs the database migrations
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.RevokedToken{},
		&models.Profile{},
		&models.CropPrediction{},
		&models.Recommendation{},
		&models.IotDevice{},
		&models.DeviceData{},
		&models.SoilCondition{},
	)
}
