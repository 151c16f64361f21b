package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pathakanu/memobot/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePath = "reminders.db"

// New creates a GORM database connection and migrates the schema.
// When databaseURL is provided PostgreSQL is used, otherwise SQLite is used.
func New(databaseURL string, l *log.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if databaseURL != "" {
		dialector = postgres.Open(databaseURL)
	} else {
		dialector = sqlite.Open(sqlitePath + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	}

	db, err := Open(dialector, l)
	if err != nil {
		return nil, err
	}

	logBackend(db, l)
	return db, nil
}

// Open connects through dialector and runs migrations.
func Open(dialector gorm.Dialector, l *log.Logger) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         newQueryLogger(l),
		TranslateError: true,
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the users and reminders tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Reminder{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func newQueryLogger(l *log.Logger) logger.Interface {
	if l == nil {
		l = log.Default()
	}
	base := logger.New(l, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
	// The poller runs this query every cycle; keep it out of the logs.
	return newFilteringLogger(base, dueReminderQueryMarker)
}

func logBackend(db *gorm.DB, l *log.Logger) {
	if l == nil {
		l = log.Default()
	}
	dialector := db.Dialector.Name()
	switch strings.ToLower(dialector) {
	case "postgres":
		l.Printf("database: connected to PostgreSQL")
	case "sqlite":
		l.Printf("database: using SQLite %s", sqlitePath)
	default:
		l.Printf("database: connected via %s", dialector)
	}
}
