package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geomap-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS facilities`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_StartLoad(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO load_runs`).
		WithArgs(pgxmock.AnyArg(), "medical", "gp.json", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.StartLoad(context.Background(), model.KindMedical, "gp.json")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.KindMedical, run.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_StartLoad_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO load_runs`).WillReturnError(errors.New("connection refused"))

	_, err := s.StartLoad(context.Background(), model.KindMedical, "gp.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: insert load run")
}

func TestPostgresStore_UpsertFacilities(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	run := &LoadRun{ID: "run-1", Kind: model.KindSchool}

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_facilities"}, facilityColumns).WillReturnResult(2)
	mock.ExpectExec("INSERT INTO facilities").WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectExec("UPDATE load_runs SET row_count").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	n, err := s.UpsertFacilities(context.Background(), run, schools())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, run.Rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertFacilities_BeginError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	_, err := s.UpsertFacilities(context.Background(), &LoadRun{ID: "run-1"}, schools())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
}

func TestPostgresStore_UpsertFacilities_UnknownRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_facilities"}, facilityColumns).WillReturnResult(2)
	mock.ExpectExec("INSERT INTO facilities").WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectExec("UPDATE load_runs SET row_count").WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	_, err := s.UpsertFacilities(context.Background(), &LoadRun{ID: "nope"}, schools())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load run not found: nope")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CountFacilities(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM facilities`).
		WithArgs("sport").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(7)))

	n, err := s.CountFacilities(context.Background(), model.KindSport)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Close(t *testing.T) {
	called := false
	s := &PostgresStore{closeFn: func() { called = true }}
	require.NoError(t, s.Close())
	assert.True(t, called)
}

func TestFacilityRows_LastValueKeepsFirstPosition(t *testing.T) {
	rows := facilityRows([]model.Facility{
		{Kind: model.KindSchool, ID: "1", Name: "a"},
		{Kind: model.KindSport, ID: "1", Name: "b"},
		{Kind: model.KindSchool, ID: "1", Name: "c"},
	}, time.Time{})

	require.Len(t, rows, 2)
	assert.Equal(t, "c", rows[0][2])
	assert.Equal(t, "b", rows[1][2])
}

func TestFacilityRows_StampsTime(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	rows := facilityRows(schools(), fixed)

	require.Len(t, rows, 2)
	f := schools()[0]
	assert.Equal(t, []any{"school", "101", "Langwarrin Primary School", -38.182662, 145.156875, "Primary", f.Cell(), fixed}, rows[0])
	assert.Len(t, rows[0], len(facilityColumns))
}
