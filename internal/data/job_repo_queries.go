package data

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/target/competitions-api/internal/domain/model"
	apperrors "github.com/target/competitions-api/internal/errors"
)

const (
	defaultListLimit = 50
	maxListLimit     = 1000
)

func clampLimit(limit int) uint64 {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return uint64(limit)
	}
}

func clampOffset(offset int) uint64 {
	if offset < 0 {
		return 0
	}
	return uint64(offset)
}

func applyJobFilter(q sq.SelectBuilder, f *model.JobFilter) sq.SelectBuilder {
	if f == nil {
		return q
	}
	if f.Type != nil {
		q = q.Where(sq.Eq{"type": string(*f.Type)})
	}
	if f.Status != nil {
		q = q.Where(sq.Eq{"status": string(*f.Status)})
	}
	if f.PayloadKey != "" {
		q = q.Where(sq.Expr("payload->>? = ?", f.PayloadKey, f.PayloadValue))
	}
	return q
}

// List returns jobs matching opts, newest first.
func (r *JobRepo) List(ctx context.Context, opts *model.JobListOptions) ([]*model.Job, error) {
	if opts == nil {
		opts = &model.JobListOptions{}
	}

	q := applyJobFilter(psql.Select(jobColumnList...).From("jobs"), &opts.JobFilter).
		OrderBy("created_at DESC", "id DESC").
		Limit(clampLimit(opts.Limit)).
		Offset(clampOffset(opts.Offset))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list jobs query: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", apperrors.MapDBError(err))
	}
	jobs, err := collectJobs(rows)
	if err != nil {
		return nil, fmt.Errorf("scan jobs: %w", err)
	}
	return jobs, nil
}

// Count returns the number of jobs matching filter.
func (r *JobRepo) Count(ctx context.Context, filter *model.JobFilter) (int, error) {
	query, args, err := applyJobFilter(psql.Select("COUNT(*)").From("jobs"), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count jobs query: %w", err)
	}

	var n int
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count jobs: %w", apperrors.MapDBError(err))
	}
	return n, nil
}

// ExistsForDedup reports whether a job of key.Type with payload->>key.PayloadKey = key.Value exists, in any status.
func (r *JobRepo) ExistsForDedup(ctx context.Context, key model.DedupKey) (bool, error) {
	if err := key.Validate(); err != nil {
		return false, apperrors.Validation(err.Error())
	}

	query, args, err := psql.Select("1").From("jobs").
		Where(sq.Eq{"type": string(key.Type)}).
		Where(sq.Expr("payload->>? = ?", key.PayloadKey, key.Value)).
		Limit(1).
		Prefix("SELECT EXISTS(").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build dedup query: %w", err)
	}

	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("dedup lookup: %w", apperrors.MapDBError(err))
	}
	return exists, nil
}

// Stats returns job counts per status.
func (r *JobRepo) Stats(ctx context.Context) (*model.JobStats, error) {
	query, args, err := psql.Select("status", "COUNT(*)").From("jobs").GroupBy("status").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stats query: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", apperrors.MapDBError(err))
	}
	defer rows.Close()

	stats := &model.JobStats{}
	for rows.Next() {
		var (
			status model.JobStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan job stats: %w", err)
		}
		switch status {
		case model.JobStatusPending:
			stats.Pending = n
		case model.JobStatusProcessing:
			stats.Processing = n
		case model.JobStatusDone:
			stats.Done = n
		case model.JobStatusFailed:
			stats.Failed = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job stats: %w", err)
	}
	return stats, nil
}
