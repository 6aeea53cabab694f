package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/target/competitions-api/internal/core"
	"github.com/target/competitions-api/internal/data/pgxutil"
)

// Advisory lock namespace for reaper operations (pg_try_advisory_xact_lock(major, minor)).
const (
	advisoryLockReaperMajor     = 2000
	advisoryLockReaperDelete    = 1
	advisoryLockReaperFailStale = 2
)

const deleteOldJobsSQL = `
  DELETE FROM jobs
  WHERE id IN (
    SELECT id FROM jobs
    WHERE status = $1
      AND finished_at < $2
    ORDER BY finished_at
    LIMIT $3
  )`

const failStaleProcessingSQL = `
  UPDATE jobs
  SET status = 'failed',
      finished_at = $1,
      error = $2
  WHERE id IN (
    SELECT id FROM jobs
    WHERE status = 'processing'
      AND started_at < $3
    ORDER BY started_at
    LIMIT $4
    FOR UPDATE SKIP LOCKED
  )
  AND status = 'processing'`

// DeleteOldJobs deletes terminal jobs of params.Status whose finished_at is older than params.OlderThan.
// At most params.BatchSize rows are removed per call. Concurrent reapers skip the call instead of blocking.
func (r *JobRepo) DeleteOldJobs(ctx context.Context, params core.DeleteOldJobsParams) (int64, error) {
	if !params.Status.IsTerminal() {
		return 0, fmt.Errorf("refusing to delete jobs in non-terminal status %q", params.Status)
	}
	cutoff := r.timeProvider.Now().Add(-params.OlderThan).UTC()

	return r.withReaperLock(ctx, advisoryLockReaperDelete, func(tx *sql.Tx) (sql.Result, error) {
		return tx.ExecContext(ctx, deleteOldJobsSQL, string(params.Status), cutoff, params.BatchSize)
	})
}

// FailStaleProcessingJobs finalizes processing jobs started before params.OlderThan as failed.
// They are never returned to pending.
func (r *JobRepo) FailStaleProcessingJobs(ctx context.Context, params core.FailStaleJobsParams) (int64, error) {
	now := r.timeProvider.Now().UTC()
	cutoff := now.Add(-params.OlderThan)

	return r.withReaperLock(ctx, advisoryLockReaperFailStale, func(tx *sql.Tx) (sql.Result, error) {
		return tx.ExecContext(ctx, failStaleProcessingSQL, now, params.Message, cutoff, params.BatchSize)
	})
}

func (r *JobRepo) withReaperLock(
	ctx context.Context,
	minor int,
	exec func(*sql.Tx) (sql.Result, error),
) (int64, error) {
	var rowsAffected int64
	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			var locked bool
			if err := tx.QueryRowContext(ctx, "SELECT pg_try_advisory_xact_lock($1, $2)",
				advisoryLockReaperMajor, minor).Scan(&locked); err != nil {
				return fmt.Errorf("acquire advisory lock: %w", err)
			}
			if !locked {
				r.logger.DebugContext(ctx, "reaper lock held elsewhere", "minor", minor)
				return nil
			}

			res, err := exec(tx)
			if err != nil {
				return fmt.Errorf("reaper statement: %w", err)
			}
			rowsAffected, err = pgxutil.RowsAffected(res)
			return err
		},
	})
	if err != nil {
		return 0, err
	}
	return rowsAffected, nil
}
