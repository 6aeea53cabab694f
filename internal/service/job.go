package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/competitions-api/internal/core"
	"github.com/target/competitions-api/internal/domain/model"
	"github.com/target/competitions-api/internal/observability/metrics"
)

// JobServiceOptions groups dependencies for JobService.
type JobServiceOptions struct {
	Repo    core.JobRepository // Required: job repository
	Logger  *slog.Logger       // Optional: structured logger
	Metrics *metrics.Recorder  // Optional: Prometheus recorder
}

// JobService owns every job state transition other than the dispatcher's choice of outcome.
type JobService struct {
	repo    core.JobRepository
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// NewJobService constructs a new JobService.
func NewJobService(opts JobServiceOptions) (*JobService, error) {
	if opts.Repo == nil {
		return nil, errors.New("JobRepository is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &JobService{
		repo:    opts.Repo,
		logger:  logger.With("component", "job_service"),
		metrics: opts.Metrics,
	}, nil
}

// MustNewJobService constructs a new JobService and panics on error.
// Use this when you're certain the options are valid (e.g., in main.go).
func MustNewJobService(opts JobServiceOptions) *JobService {
	svc, err := NewJobService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create JobService: %v", err))
	}
	return svc
}

// Create enqueues a pending job.
func (s *JobService) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	job, err := s.repo.Create(ctx, req)
	if err != nil {
		s.emit(req.Type, metrics.TransitionEnqueue, err)
		return nil, fmt.Errorf("create job: %w", err)
	}
	s.emit(job.Type, metrics.TransitionEnqueue, nil)

	s.logger.DebugContext(ctx, "job created", "id", job.ID, "type", job.Type)
	return job, nil
}

// GetByID returns a job or model.ErrJobNotFound.
func (s *JobService) GetByID(ctx context.Context, id string) (*model.Job, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns jobs matching opts, newest first.
func (s *JobService) List(ctx context.Context, opts *model.JobListOptions) ([]*model.Job, error) {
	jobs, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// Count returns the number of jobs matching filter.
func (s *JobService) Count(ctx context.Context, filter *model.JobFilter) (int, error) {
	return s.repo.Count(ctx, filter)
}

// Stats returns per-status job counts.
func (s *JobService) Stats(ctx context.Context) (*model.JobStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	return stats, nil
}

// ExistsForDedup reports whether a job of key.Type already references key.Value, in any status.
func (s *JobService) ExistsForDedup(ctx context.Context, key model.DedupKey) (bool, error) {
	return s.repo.ExistsForDedup(ctx, key)
}

// ClaimNext claims the oldest pending job. It returns model.ErrNoJobsAvailable when the queue is empty.
func (s *JobService) ClaimNext(ctx context.Context) (*model.Job, error) {
	job, err := s.repo.ClaimNext(ctx)
	if err != nil {
		if !errors.Is(err, model.ErrNoJobsAvailable) {
			s.emit("", metrics.TransitionClaim, err)
		}
		return nil, err
	}
	s.emit(job.Type, metrics.TransitionClaim, nil)
	return job, nil
}

// Complete marks a processing job done. It returns false when the job was no longer processing.
func (s *JobService) Complete(ctx context.Context, id string) (bool, error) {
	return s.repo.Finalize(ctx, model.FinalizeJobParams{ID: id, Status: model.JobStatusDone})
}

// Fail marks a processing job failed with msg. It returns false when the job was no longer processing.
func (s *JobService) Fail(ctx context.Context, id, msg string) (bool, error) {
	return s.repo.Finalize(ctx, model.FinalizeJobParams{ID: id, Status: model.JobStatusFailed, Error: msg})
}

// Requeue resets a failed job to pending. This is the only path that revives a failed job.
func (s *JobService) Requeue(ctx context.Context, id string) error {
	ok, err := s.repo.Requeue(ctx, id)
	if err != nil {
		return fmt.Errorf("requeue job: %w", err)
	}
	if ok {
		s.logger.InfoContext(ctx, "job requeued", "id", id)
		return nil
	}

	// Distinguish a missing job from one in the wrong state.
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("job %s is %s: %w", id, job.Status, ErrJobNotRequeueable)
}

func (s *JobService) emit(jobType model.JobType, transition string, err error) {
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.EmitJobLifecycle(s.metrics, metrics.JobMetric{
		JobType:    metricJobType(jobType),
		Transition: transition,
		Result:     result,
		Err:        err,
	})
}
