package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lexiquest/review-api/internal/config"
	"github.com/lexiquest/review-api/internal/platform/postgres"
	"github.com/lexiquest/review-api/internal/platform/sqlite"
	"github.com/lexiquest/review-api/internal/store"
)

// Values of database.driver.
const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
)

// stores is the storage backend selected by database.driver.
type stores struct {
	schedules  store.ScheduleStore
	vocabulary store.VocabularyStore
	db         *sql.DB
}

// openStores connects to the configured backend. The SQLite schema is
// created on open; PostgreSQL expects `migrate up` to have run.
func openStores(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*stores, error) {
	switch cfg.Driver {
	case driverPostgres:
		db, err := postgres.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("database connection established", slog.String("driver", cfg.Driver))
		return &stores{
			schedules:  postgres.NewPostgresScheduleStore(db, logger),
			vocabulary: postgres.NewPostgresVocabularyStore(db, logger),
			db:         db,
		}, nil

	case driverSQLite:
		db, err := sqlite.Open(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		logger.Info("database opened",
			slog.String("driver", cfg.Driver),
			slog.String("path", cfg.URL))
		return &stores{
			schedules:  sqlite.NewScheduleStore(db, logger),
			vocabulary: sqlite.NewVocabularyStore(db, logger),
			db:         db.DB,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Close closes the underlying connection pool.
func (s *stores) Close(logger *slog.Logger) {
	if s == nil || s.db == nil {
		return
	}
	if err := s.db.Close(); err != nil {
		logger.Error("error closing database connection", slog.String("error", err.Error()))
	}
}
