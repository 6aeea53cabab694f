package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/target/competitions-api/internal/data/pgxutil"
	"github.com/target/competitions-api/internal/domain/model"
	apperrors "github.com/target/competitions-api/internal/errors"
)

const insertJobSQL = `
  INSERT INTO jobs (id, type, payload, status, created_at)
  VALUES ($1, $2, $3, 'pending', $4)
  RETURNING ` + jobColumns

// claimNextSQL moves the oldest pending row to processing in one statement.
// SKIP LOCKED lets concurrent claimers pass over rows another transaction is taking.
const claimNextSQL = `
  UPDATE jobs
  SET status = 'processing',
      started_at = $1
  WHERE id = (
    SELECT id FROM jobs
    WHERE status = 'pending'
    ORDER BY created_at, id
    LIMIT 1
    FOR UPDATE SKIP LOCKED
  )
  AND status = 'pending'
  RETURNING ` + jobColumns

const finalizeJobSQL = `
  UPDATE jobs
  SET status = $2,
      finished_at = $3,
      error = $4
  WHERE id = $1 AND status = 'processing'`

const requeueJobSQL = `
  UPDATE jobs
  SET status = 'pending',
      started_at = NULL,
      finished_at = NULL,
      error = NULL
  WHERE id = $1 AND status = 'failed'`

// Create inserts a pending job.
func (r *JobRepo) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	return r.insertJob(ctx, r.DB, req)
}

// CreateInTx inserts a pending job within an existing SQL transaction.
func (r *JobRepo) CreateInTx(ctx context.Context, sqlTx *sql.Tx, req *model.CreateJobRequest) (*model.Job, error) {
	if sqlTx == nil {
		return nil, errors.New("transaction is required")
	}
	return r.insertJob(ctx, sqlTx, req)
}

func (r *JobRepo) insertJob(ctx context.Context, q pgxutil.Querier, req *model.CreateJobRequest) (*model.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	payload, err := json.Marshal(req.NormalizedPayload())
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	row := q.QueryRowContext(ctx, insertJobSQL,
		uuid.NewString(),
		string(req.Type),
		payload,
		r.timeProvider.Now().UTC(),
	)
	job, err := scanJobFromRow(row)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", apperrors.MapDBError(err))
	}
	return job, nil
}

// GetByID returns a job by id, or model.ErrJobNotFound.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	job, err := scanJobFromRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", apperrors.MapDBError(err))
	}
	return job, nil
}

// ClaimNext atomically moves the oldest pending job to processing.
func (r *JobRepo) ClaimNext(ctx context.Context) (*model.Job, error) {
	row := r.DB.QueryRowContext(ctx, claimNextSQL, r.timeProvider.Now().UTC())
	job, err := scanJobFromRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNoJobsAvailable
	}
	if err != nil {
		return nil, fmt.Errorf("claim job: %w", apperrors.MapDBError(err))
	}
	return job, nil
}

// Finalize moves a processing job to done or failed.
func (r *JobRepo) Finalize(ctx context.Context, params model.FinalizeJobParams) (bool, error) {
	if err := params.Validate(); err != nil {
		return false, apperrors.Validation(err.Error())
	}

	res, err := r.DB.ExecContext(ctx, finalizeJobSQL,
		params.ID,
		string(params.Status),
		r.timeProvider.Now().UTC(),
		params.ErrorValue(),
	)
	if err != nil {
		return false, fmt.Errorf("finalize job: %w", apperrors.MapDBError(err))
	}
	n, err := pgxutil.RowsAffected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Requeue resets a failed job to pending so the worker picks it up again.
func (r *JobRepo) Requeue(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, requeueJobSQL, id)
	if err != nil {
		return false, fmt.Errorf("requeue job: %w", apperrors.MapDBError(err))
	}
	n, err := pgxutil.RowsAffected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

type jobRowData struct {
	payload               []byte
	startedAt, finishedAt sql.NullTime
	errMsg                sql.NullString
}

func (d *jobRowData) scanInto(scanner rowScanner, job *model.Job) error {
	return scanner.Scan(
		&job.ID,
		&job.Type,
		&d.payload,
		&job.Status,
		&job.CreatedAt,
		&d.startedAt,
		&d.finishedAt,
		&d.errMsg,
	)
}

func (d *jobRowData) apply(job *model.Job) error {
	job.Payload = map[string]string{}
	if len(d.payload) > 0 {
		if err := json.Unmarshal(d.payload, &job.Payload); err != nil {
			return fmt.Errorf("decode payload of job %s: %w", job.ID, err)
		}
	}
	job.CreatedAt = job.CreatedAt.UTC()
	job.StartedAt = cloneNullableTime(d.startedAt)
	job.FinishedAt = cloneNullableTime(d.finishedAt)
	job.Error = cloneNullableString(d.errMsg)
	return nil
}

func scanJobFromRow(scanner rowScanner) (*model.Job, error) {
	job := &model.Job{}
	var data jobRowData
	if err := data.scanInto(scanner, job); err != nil {
		return nil, err
	}
	if err := data.apply(job); err != nil {
		return nil, err
	}
	return job, nil
}

func collectJobs(rows *sql.Rows) ([]*model.Job, error) {
	defer rows.Close()

	var jobs []*model.Job
	for rows.Next() {
		job, err := scanJobFromRow(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

func cloneNullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func cloneNullableTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
