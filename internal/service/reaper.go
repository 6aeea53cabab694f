package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/competitions-api/config"
	"github.com/target/competitions-api/internal/core"
	"github.com/target/competitions-api/internal/domain/model"
	"github.com/target/competitions-api/internal/observability/metrics"
)

// Reaper step names, used as the metric "step" label.
const (
	ReaperStepDeleteDone     = "delete_done"
	ReaperStepDeleteFailed   = "delete_failed"
	ReaperStepTimeoutStuck   = "timeout_processing"
	processingTimeoutMessage = "processing timed out"
)

// ReaperServiceOptions groups dependencies for ReaperService.
type ReaperServiceOptions struct {
	Repo    core.ReaperRepository // Required
	Config  config.ReaperConfig
	Logger  *slog.Logger
	Metrics *metrics.Recorder
}

// ReaperService removes terminal jobs past retention and optionally times out stuck ones.
type ReaperService struct {
	repo    core.ReaperRepository
	config  config.ReaperConfig
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// ReaperResult counts rows touched by one cleanup pass.
type ReaperResult struct {
	DeletedDone   int64
	DeletedFailed int64
	TimedOut      int64
}

// Total returns the number of rows touched.
func (r ReaperResult) Total() int64 {
	return r.DeletedDone + r.DeletedFailed + r.TimedOut
}

// NewReaperService constructs a new ReaperService.
func NewReaperService(opts ReaperServiceOptions) (*ReaperService, error) {
	if opts.Repo == nil {
		return nil, errors.New("ReaperRepository is required")
	}
	cfg := opts.Config
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1000
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ReaperService{
		repo:    opts.Repo,
		config:  cfg,
		logger:  logger.With("component", "reaper_service"),
		metrics: opts.Metrics,
	}, nil
}

// MustNewReaperService is NewReaperService for main; it panics on error.
func MustNewReaperService(opts ReaperServiceOptions) *ReaperService {
	svc, err := NewReaperService(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create ReaperService: %v", err))
	}
	return svc
}

type reaperStep struct {
	name   string
	maxAge time.Duration
	run    func(ctx context.Context, maxAge time.Duration, batch int) (int64, error)
	out    *int64
}

// CleanupOnce runs every enabled step to exhaustion. Steps with a zero max age are skipped;
// a failing step does not stop the others and all failures are joined.
func (s *ReaperService) CleanupOnce(ctx context.Context) (ReaperResult, error) {
	var res ReaperResult
	steps := []reaperStep{
		{name: ReaperStepDeleteDone, maxAge: s.config.DoneMaxAge, run: s.deleteStatus(model.JobStatusDone), out: &res.DeletedDone},
		{name: ReaperStepDeleteFailed, maxAge: s.config.FailedMaxAge, run: s.deleteStatus(model.JobStatusFailed), out: &res.DeletedFailed},
		{name: ReaperStepTimeoutStuck, maxAge: s.config.ProcessingMaxAge, run: s.timeoutProcessing, out: &res.TimedOut},
	}

	var errs []error
	for _, step := range steps {
		if step.maxAge <= 0 {
			continue
		}
		n, err := s.drain(ctx, step)
		*step.out = n
		metrics.EmitReaperStep(s.metrics, step.name, n, err)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
			continue
		}
		if n > 0 {
			s.logger.InfoContext(ctx, "reaper step finished", "step", step.name, "count", n, "max_age", step.maxAge)
		}
	}
	return res, errors.Join(errs...)
}

// drain repeats a step until a batch touches no rows.
func (s *ReaperService) drain(ctx context.Context, step reaperStep) (int64, error) {
	var total int64
	for {
		n, err := step.run(ctx, step.maxAge, s.config.BatchSize)
		if err != nil {
			return total, err
		}
		total += n
		if n == 0 {
			return total, nil
		}
		if err := ctx.Err(); err != nil {
			return total, err
		}
	}
}

func (s *ReaperService) deleteStatus(status model.JobStatus) func(context.Context, time.Duration, int) (int64, error) {
	return func(ctx context.Context, maxAge time.Duration, batch int) (int64, error) {
		return s.repo.DeleteOldJobs(ctx, core.DeleteOldJobsParams{Status: status, OlderThan: maxAge, BatchSize: batch})
	}
}

func (s *ReaperService) timeoutProcessing(ctx context.Context, maxAge time.Duration, batch int) (int64, error) {
	return s.repo.FailStaleProcessingJobs(ctx, core.FailStaleJobsParams{
		OlderThan: maxAge,
		BatchSize: batch,
		Message:   processingTimeoutMessage,
	})
}

// Run cleans up once after a short random delay and then on every interval tick
// until ctx is cancelled. Cancellation returns nil.
func (s *ReaperService) Run(ctx context.Context) error {
	interval := s.config.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	s.logger.InfoContext(ctx, "starting reaper", "interval", interval)

	if !sleepCtx(ctx, jitter(interval/10)) {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := s.CleanupOnce(ctx); err != nil && !isContextCancellation(err) {
			s.logger.ErrorContext(ctx, "reaper cleanup failed", "error", err)
		}
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "reaper stopping", "reason", ctx.Err())
			return nil
		case <-ticker.C:
		}
	}
}

// jitter returns a random duration in [0, maxJitter), or 0 when crypto/rand is unavailable.
func jitter(maxJitter time.Duration) time.Duration {
	if maxJitter <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	n := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	return time.Duration(int64(n)) // #nosec G115 - bounded by maxJitter
}

// sleepCtx waits for d and reports false when ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func isContextCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
