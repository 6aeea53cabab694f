package pgxutil

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithSQLTx_Commits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE jobs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = WithSQLTx(context.Background(), db, SQLTxConfig{Fn: func(tx *sql.Tx) error {
		_, execErr := tx.ExecContext(context.Background(), "UPDATE jobs SET status = 'done'")
		return execErr
	}})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithSQLTx_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()

	err = WithSQLTx(context.Background(), db, SQLTxConfig{Fn: func(*sql.Tx) error { return boom }})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithSQLTx_BeginFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("no conn"))

	err = WithSQLTx(context.Background(), db, SQLTxConfig{Fn: func(*sql.Tx) error { return nil }})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
}

func TestWithSQLTx_RequiresFn(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	require.Error(t, WithSQLTx(context.Background(), db, SQLTxConfig{}))
}

func TestRowsAffected(t *testing.T) {
	n, err := RowsAffected(sqlmock.NewResult(0, 3))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	_, err = RowsAffected(sqlmock.NewErrorResult(errors.New("unsupported")))
	require.Error(t, err)
}
