package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/geomap-cli/internal/model"
)

// Pool is the subset of *pgxpool.Pool used by PostgresStore.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// facilityColumns is the column order used when copying into the staging table.
var facilityColumns = []string{"kind", "id", "name", "lat", "lon", "detail", "cell", "updated_at"}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS facilities (
	kind       TEXT NOT NULL,
	id         TEXT NOT NULL,
	name       TEXT NOT NULL,
	lat        DOUBLE PRECISION NOT NULL,
	lon        DOUBLE PRECISION NOT NULL,
	detail     TEXT NOT NULL DEFAULT '',
	cell       TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (kind, id)
);

CREATE TABLE IF NOT EXISTS load_runs (
	id        UUID PRIMARY KEY,
	kind      TEXT NOT NULL,
	source    TEXT NOT NULL,
	row_count INTEGER NOT NULL DEFAULT 0,
	loaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_facilities_cell ON facilities(kind, cell);
CREATE INDEX IF NOT EXISTS idx_load_runs_kind ON load_runs(kind);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) StartLoad(ctx context.Context, kind model.Kind, source string) (*LoadRun, error) {
	id := uuid.New().String()
	now := clock.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO load_runs (id, kind, source, row_count, loaded_at) VALUES ($1, $2, $3, 0, $4)`,
		id, string(kind), source, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert load run for %s", source)
	}

	return &LoadRun{ID: id, Kind: kind, Source: source, LoadedAt: now}, nil
}

// UpsertFacilities copies facilities into a transaction-scoped staging table
// and merges them with INSERT ... ON CONFLICT.
func (s *PostgresStore) UpsertFacilities(ctx context.Context, run *LoadRun, facilities []model.Facility) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: upsert: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`CREATE TEMP TABLE _tmp_upsert_facilities (LIKE facilities INCLUDING DEFAULTS) ON COMMIT DROP`,
	); err != nil {
		return 0, eris.Wrap(err, "postgres: upsert: create temp table")
	}

	rows := facilityRows(facilities, clock.Now().UTC())
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"_tmp_upsert_facilities"}, facilityColumns, pgx.CopyFromRows(rows)); err != nil {
		return 0, eris.Wrap(err, "postgres: upsert: COPY into temp table")
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO facilities (kind, id, name, lat, lon, detail, cell, updated_at)
SELECT kind, id, name, lat, lon, detail, cell, updated_at FROM _tmp_upsert_facilities
ON CONFLICT (kind, id) DO UPDATE SET
	name = EXCLUDED.name,
	lat = EXCLUDED.lat,
	lon = EXCLUDED.lon,
	detail = EXCLUDED.detail,
	cell = EXCLUDED.cell,
	updated_at = EXCLUDED.updated_at`,
	); err != nil {
		return 0, eris.Wrap(err, "postgres: upsert: INSERT ON CONFLICT")
	}

	tag, err := tx.Exec(ctx, `UPDATE load_runs SET row_count = $1 WHERE id = $2`, len(rows), run.ID)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: update load run %s", run.ID)
	}
	if tag.RowsAffected() == 0 {
		return 0, eris.Errorf("load run not found: %s", run.ID)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "postgres: upsert: commit tx")
	}
	run.Rows = len(rows)
	return len(rows), nil
}

func (s *PostgresStore) CountFacilities(ctx context.Context, kind model.Kind) (int, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM facilities WHERE ($1 = '' OR kind = $1)`,
		string(kind),
	).Scan(&n)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: count facilities")
	}
	return int(n), nil
}

// facilityRows converts facilities to COPY rows. A repeated (kind, id) keeps
// its last value, since one INSERT ... ON CONFLICT cannot touch a row twice.
func facilityRows(facilities []model.Facility, now time.Time) [][]any {
	type key struct {
		kind model.Kind
		id   string
	}
	pos := make(map[key]int, len(facilities))
	rows := make([][]any, 0, len(facilities))
	for _, f := range facilities {
		row := []any{string(f.Kind), f.ID, f.Name, f.Lat, f.Lon, f.Detail, f.Cell(), now}
		k := key{f.Kind, f.ID}
		if i, ok := pos[k]; ok {
			rows[i] = row
			continue
		}
		pos[k] = len(rows)
		rows = append(rows, row)
	}
	return rows
}
