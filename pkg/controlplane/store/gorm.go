package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/marmos91/tagkeep/pkg/controlplane/models"
)

// sqlitePragmas enables WAL for concurrent readers and waits up to 5s on a
// locked database.
const sqlitePragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

// GORMStore implements Store on SQLite or PostgreSQL.
type GORMStore struct {
	db     *gorm.DB
	config *Config
}

// New opens the catalog database described by config and migrates the schema.
// A nil config means a default SQLite file.
func New(config *Config) (*GORMStore, error) {
	if config == nil {
		config = &Config{}
	}
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	dialector, err := openDialector(config)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", config.Type, err)
	}

	s := &GORMStore{db: db, config: config}
	if err := s.tunePool(); err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to run database migration: %w", err)
	}
	return s, nil
}

func openDialector(config *Config) (gorm.Dialector, error) {
	switch config.Type {
	case DatabaseTypeSQLite:
		path := config.SQLite.Path
		if path != memoryPath {
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		return sqlite.Open(path + sqlitePragmas), nil
	case DatabaseTypePostgres:
		return postgres.Open(config.Postgres.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}
}

func (s *GORMStore) tunePool() error {
	db, err := s.sqlDB()
	if err != nil {
		return err
	}
	switch {
	case s.config.Type == DatabaseTypePostgres:
		db.SetMaxOpenConns(s.config.Postgres.MaxOpenConns)
		db.SetMaxIdleConns(s.config.Postgres.MaxIdleConns)
	case s.config.SQLite.Path == memoryPath:
		// Each :memory: connection is its own empty database.
		db.SetMaxOpenConns(1)
	}
	return nil
}

// DB exposes the gorm handle for tests and ad hoc queries.
func (s *GORMStore) DB() *gorm.DB {
	return s.db
}

// isUniqueConstraintError matches translated errors and the raw driver
// messages of both backends.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

// convertNotFoundError maps gorm.ErrRecordNotFound to notFoundErr.
func convertNotFoundError(err error, notFoundErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundErr
	}
	return err
}
