package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agustogpt/chatstore/pkg/db/models"
)

type DB struct {
	DB *gorm.DB
}

// New connects to a postgres database.
func New(dsn string, logLevel logger.LogLevel) (*DB, error) {
	return open(postgres.Open(dsn), logLevel)
}

// NewSQLite opens (creating if needed) a sqlite database file. Intended for local development
// and tests.
func NewSQLite(path string, logLevel logger.LogLevel) (*DB, error) {
	return open(sqlite.Open(path), logLevel)
}

func open(dialector gorm.Dialector, logLevel logger.LogLevel) (*DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	return &DB{
		DB: db,
	}, nil
}

// UpdateSchema creates or updates the chat index table. It is safe to call on every startup.
func (d *DB) UpdateSchema(table string) error {
	log.WithField("table", table).Info("updating chat index schema")
	if err := d.DB.Table(table).AutoMigrate(&models.ChatIndex{}); err != nil {
		return fmt.Errorf("error migrating table %s: %w", table, err)
	}
	return nil
}

func ParseGormLogLevel(logLevel string) (logger.LogLevel, error) {
	switch logLevel {
	case "info":
		return logger.Info, nil
	case "warn":
		return logger.Warn, nil
	case "error":
		return logger.Error, nil
	case "silent":
		return logger.Silent, nil
	default:
		return logger.Info, fmt.Errorf("unknown gorm LogLevel: %s", logLevel)
	}
}
