package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/geomap-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS facilities (
	kind       TEXT NOT NULL,
	id         TEXT NOT NULL,
	name       TEXT NOT NULL,
	lat        REAL NOT NULL,
	lon        REAL NOT NULL,
	detail     TEXT NOT NULL DEFAULT '',
	cell       TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (kind, id)
);

CREATE TABLE IF NOT EXISTS load_runs (
	id        TEXT PRIMARY KEY,
	kind      TEXT NOT NULL,
	source    TEXT NOT NULL,
	row_count INTEGER NOT NULL DEFAULT 0,
	loaded_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_facilities_cell ON facilities(kind, cell);
CREATE INDEX IF NOT EXISTS idx_load_runs_kind ON load_runs(kind);
`

const sqliteUpsertFacility = `
INSERT INTO facilities (kind, id, name, lat, lon, detail, cell, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(kind, id) DO UPDATE SET
	name = excluded.name,
	lat = excluded.lat,
	lon = excluded.lon,
	detail = excluded.detail,
	cell = excluded.cell,
	updated_at = excluded.updated_at`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) StartLoad(ctx context.Context, kind model.Kind, source string) (*LoadRun, error) {
	id := uuid.New().String()
	now := clock.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO load_runs (id, kind, source, row_count, loaded_at) VALUES (?, ?, ?, 0, ?)`,
		id, string(kind), source, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert load run for %s", source)
	}

	return &LoadRun{ID: id, Kind: kind, Source: source, LoadedAt: now}, nil
}

func (s *SQLiteStore) UpsertFacilities(ctx context.Context, run *LoadRun, facilities []model.Facility) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, sqliteUpsertFacility)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close()

	rows := facilityRows(facilities, clock.Now().UTC())
	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert %s %s", row[0], row[1])
		}
	}

	res, err := tx.ExecContext(ctx, `UPDATE load_runs SET row_count = ? WHERE id = ?`, len(rows), run.ID)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: update load run %s", run.ID)
	}
	if err := checkRowsAffected(res, "load run", run.ID); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert")
	}
	run.Rows = len(rows)
	return len(rows), nil
}

func (s *SQLiteStore) CountFacilities(ctx context.Context, kind model.Kind) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM facilities WHERE (? = '' OR kind = ?)`,
		string(kind), string(kind),
	).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count facilities")
}

// GetLoad returns a previously recorded load run.
func (s *SQLiteStore) GetLoad(ctx context.Context, id string) (*LoadRun, error) {
	var r LoadRun
	var kind string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, kind, source, row_count, loaded_at FROM load_runs WHERE id = ?`, id,
	).Scan(&r.ID, &kind, &r.Source, &r.Rows, &r.LoadedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("load run not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get load run")
	}
	r.Kind = model.Kind(kind)
	return &r, nil
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}
