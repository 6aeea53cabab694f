package data

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func testRepoConfig() RepoConfig {
	return RepoConfig{TimeProvider: NewFixedTimeProvider(testNow)}
}

func jobRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "type", "payload", "status", "created_at", "started_at", "finished_at", "error",
	})
}
