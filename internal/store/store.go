// Package store persists converted facilities to SQLite or Postgres.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geomap-cli/internal/config"
	"github.com/sells-group/geomap-cli/internal/model"
)

// LoadRun records one batch of facilities loaded from a source file.
type LoadRun struct {
	ID       string     `json:"id"`
	Kind     model.Kind `json:"kind"`
	Source   string     `json:"source"`
	Rows     int        `json:"rows"`
	LoadedAt time.Time  `json:"loaded_at"`
}

// Store defines the persistence interface for converted facilities.
type Store interface {
	// StartLoad registers a new load run for source.
	StartLoad(ctx context.Context, kind model.Kind, source string) (*LoadRun, error)
	// UpsertFacilities writes facilities keyed by (kind, id); an existing row
	// is overwritten. It returns the number of distinct keys written and
	// records that count on run in the same transaction.
	UpsertFacilities(ctx context.Context, run *LoadRun, facilities []model.Facility) (int, error)
	// CountFacilities counts stored facilities of kind, or all when kind is empty.
	CountFacilities(ctx context.Context, kind model.Kind) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// New opens the store selected by cfg.Driver and runs migrations.
func New(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case "", "sqlite":
		s, err = NewSQLite(cfg.DatabaseURL)
	case "postgres":
		s, err = NewPostgres(ctx, cfg.DatabaseURL, &PoolConfig{MaxConns: cfg.MaxConns, MinConns: cfg.MinConns})
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Migrate(ctx); err != nil {
		s.Close() //nolint:errcheck
		return nil, err
	}
	return s, nil
}

// Load records a run for source and upserts facilities under it.
func Load(ctx context.Context, s Store, kind model.Kind, source string, facilities []model.Facility) (*LoadRun, error) {
	run, err := s.StartLoad(ctx, kind, source)
	if err != nil {
		return nil, err
	}
	n, err := s.UpsertFacilities(ctx, run, facilities)
	if err != nil {
		return nil, err
	}
	run.Rows = n
	return run, nil
}
