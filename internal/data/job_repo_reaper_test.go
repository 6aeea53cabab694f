package data

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/competitions-api/internal/core"
	"github.com/target/competitions-api/internal/domain/model"
)

const advisoryLockQuery = "SELECT pg_try_advisory_xact_lock($1, $2)"

func TestJobRepo_DeleteOldJobs(t *testing.T) {
	t.Run("deletes a batch", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewJobRepo(db, testRepoConfig())

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(advisoryLockQuery)).
			WithArgs(advisoryLockReaperMajor, advisoryLockReaperDelete).
			WillReturnRows(sqlmock.NewRows([]string{"locked"}).AddRow(true))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM jobs")).
			WithArgs("done", testNow.Add(-24*time.Hour), 100).
			WillReturnResult(sqlmock.NewResult(0, 7))
		mock.ExpectCommit()

		n, err := repo.DeleteOldJobs(context.Background(), core.DeleteOldJobsParams{
			Status: model.JobStatusDone, OlderThan: 24 * time.Hour, BatchSize: 100,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(7), n)
	})

	t.Run("skips when another reaper holds the lock", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewJobRepo(db, testRepoConfig())

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(advisoryLockQuery)).
			WillReturnRows(sqlmock.NewRows([]string{"locked"}).AddRow(false))
		mock.ExpectCommit()

		n, err := repo.DeleteOldJobs(context.Background(), core.DeleteOldJobsParams{
			Status: model.JobStatusFailed, OlderThan: time.Hour, BatchSize: 10,
		})
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("refuses non-terminal status", func(t *testing.T) {
		db, _ := newMockDB(t)
		repo := NewJobRepo(db, testRepoConfig())

		_, err := repo.DeleteOldJobs(context.Background(), core.DeleteOldJobsParams{
			Status: model.JobStatusProcessing, OlderThan: time.Hour, BatchSize: 10,
		})
		require.Error(t, err)
	})
}

func TestJobRepo_FailStaleProcessingJobs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepo(db, testRepoConfig())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(advisoryLockQuery)).
		WithArgs(advisoryLockReaperMajor, advisoryLockReaperFailStale).
		WillReturnRows(sqlmock.NewRows([]string{"locked"}).AddRow(true))
	mock.ExpectExec(regexp.QuoteMeta("SET status = 'failed'")).
		WithArgs(testNow, "processing timed out", testNow.Add(-30*time.Minute), 50).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	n, err := repo.FailStaleProcessingJobs(context.Background(), core.FailStaleJobsParams{
		OlderThan: 30 * time.Minute, BatchSize: 50, Message: "processing timed out",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
