package store

import (
	"context"
	"database/sql"
	"fmt"
)

// sqlDB unwraps the pooled connection behind gorm.
func (s *GORMStore) sqlDB() (*sql.DB, error) {
	db, err := s.db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap %s connection: %w", s.config.Type, err)
	}
	return db, nil
}

// Healthcheck pings the catalog database.
func (s *GORMStore) Healthcheck(ctx context.Context) error {
	db, err := s.sqlDB()
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s catalog: %w", s.config.Type, err)
	}
	return nil
}

// Close closes the connection pool. The store is unusable afterwards.
func (s *GORMStore) Close() error {
	db, err := s.sqlDB()
	if err != nil {
		return err
	}
	return db.Close()
}

var _ Store = (*GORMStore)(nil)
