package flags

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"gorm.io/gorm/logger"

	"github.com/agustogpt/chatstore/pkg/db"
)

// Gorm Log Level Custom Flag Type
type logLevel logger.LogLevel

const (
	LogLevelInfo   = "info"
	LogLevelWarn   = "warn"
	LogLevelError  = "error"
	LogLevelSilent = "silent"
)

func (l *logLevel) String() string {
	switch *l {
	case logLevel(logger.Info):
		return LogLevelInfo
	case logLevel(logger.Warn):
		return LogLevelWarn
	case logLevel(logger.Error):
		return LogLevelError
	case logLevel(logger.Silent):
		return LogLevelSilent
	}

	return LogLevelInfo
}

func (l *logLevel) Set(v string) error {
	switch v {
	case LogLevelInfo:
		*l = logLevel(logger.Info)
	case LogLevelWarn:
		*l = logLevel(logger.Warn)
	case LogLevelError:
		*l = logLevel(logger.Error)
	case LogLevelSilent:
		*l = logLevel(logger.Silent)
	default:
		return fmt.Errorf("unknown gorm log level: %s", v)
	}

	return nil
}

func (l *logLevel) Type() string {
	return "logLevel"
}

// PostgresFlags contains the set of flags needed to connect to a postgres database.
type PostgresFlags struct {
	LogLevel logLevel
	DSN      string
}

func NewPostgresDatabaseFlags() *PostgresFlags {
	return &PostgresFlags{
		LogLevel: logLevel(logger.Warn),
		DSN:      os.Getenv("CHATSTORE_DATABASE_DSN"),
	}
}

func (f *PostgresFlags) BindFlags(fs *pflag.FlagSet) {
	fs.Var(&f.LogLevel, "db-log-level", "GORM database log level")
	fs.StringVar(&f.DSN, "database-dsn", f.DSN, "Database DSN for connecting to Postgres")
}

func (f *PostgresFlags) GetDBClient() (*db.DB, error) {
	if f.DSN == "" {
		return nil, fmt.Errorf("no database DSN configured")
	}
	dbc, err := db.New(f.DSN, logger.LogLevel(f.LogLevel))
	if err != nil {
		log.WithError(err).Error("could not connect to db")
		return nil, err
	}

	return dbc, nil
}

// SQLiteFlags configures the local file backed record store.
type SQLiteFlags struct {
	Path string
}

func NewSQLiteFlags() *SQLiteFlags {
	return &SQLiteFlags{Path: "chatstore.db"}
}

func (f *SQLiteFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.Path, "sqlite-path", f.Path, "SQLite database file for the chat index")
}

func (f *SQLiteFlags) GetDBClient(level logLevel) (*db.DB, error) {
	dbc, err := db.NewSQLite(f.Path, logger.LogLevel(level))
	if err != nil {
		log.WithError(err).WithField("path", f.Path).Error("could not open sqlite database")
		return nil, err
	}
	return dbc, nil
}
