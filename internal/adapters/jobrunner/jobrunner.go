// Package jobrunner drives the worker loop: claim, dispatch, repeat.
package jobrunner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/target/competitions-api/internal/domain/model"
	apperrors "github.com/target/competitions-api/internal/errors"
	"github.com/target/competitions-api/internal/service"
)

const (
	defaultBatchSize    = 10
	defaultPollInterval = 5 * time.Second
	defaultStoreRetries = 3
)

// RunnerOptions configures the job runner adapter.
type RunnerOptions struct {
	Jobs       *service.JobService    // Required
	Dispatcher *service.JobDispatcher // Required
	Logger     *slog.Logger

	BatchSize    int           // claims attempted per tick; defaults to 10
	PollInterval time.Duration // idle sleep after an empty tick; defaults to 5s
	Concurrency  int           // worker loops; defaults to 1
	StoreRetries int           // retries of a failing claim; negative disables retry

	// NewBackOff overrides the retry schedule; used by tests.
	NewBackOff func() backoff.BackOff
}

// Runner claims pending jobs and hands them to the dispatcher.
type Runner struct {
	jobs       *service.JobService
	dispatcher *service.JobDispatcher
	logger     *slog.Logger

	batchSize    int
	pollInterval time.Duration
	workers      int
	retries      int
	newBackOff   func() backoff.BackOff
}

// NewRunner constructs a Runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Jobs == nil {
		return nil, errors.New("JobService is required")
	}
	if opts.Dispatcher == nil {
		return nil, errors.New("JobDispatcher is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		jobs:         opts.Jobs,
		dispatcher:   opts.Dispatcher,
		logger:       logger.With("component", "jobrunner"),
		batchSize:    opts.BatchSize,
		pollInterval: opts.PollInterval,
		workers:      opts.Concurrency,
		retries:      opts.StoreRetries,
		newBackOff:   opts.NewBackOff,
	}
	if r.batchSize <= 0 {
		r.batchSize = defaultBatchSize
	}
	if r.pollInterval <= 0 {
		r.pollInterval = defaultPollInterval
	}
	if r.workers <= 0 {
		r.workers = 1
	}
	if r.retries < 0 {
		r.retries = 0
	}
	if r.newBackOff == nil {
		r.newBackOff = defaultBackOff
	}
	return r, nil
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 0
	return b
}

// Run starts the worker loops and blocks until ctx is cancelled or one loop fails.
// Cancellation returns nil; a store failure that outlived its retries is returned.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting job runner",
		"workers", r.workers,
		"batch_size", r.batchSize,
		"poll_interval", r.pollInterval,
	)

	g, gctx := errgroup.WithContext(ctx)
	for i := range r.workers {
		g.Go(func() error {
			return r.workerLoop(gctx, i)
		})
	}
	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	r.logger.InfoContext(ctx, "job runner stopped")
	return nil
}

func (r *Runner) workerLoop(ctx context.Context, worker int) error {
	for ctx.Err() == nil {
		n, err := r.Tick(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.logger.ErrorContext(ctx, "worker stopping on store failure", "worker", worker, "error", err)
			return err
		}
		if n == 0 && !r.sleep(ctx) {
			return nil
		}
	}
	return nil
}

func (r *Runner) sleep(ctx context.Context) bool {
	t := time.NewTimer(r.pollInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Tick claims and dispatches up to BatchSize jobs in sequence and returns how many ran.
// It stops early when the queue is empty or ctx is cancelled. Cancellation is only
// observed between claims.
func (r *Runner) Tick(ctx context.Context) (int, error) {
	processed := 0
	for processed < r.batchSize {
		if ctx.Err() != nil {
			return processed, nil
		}

		job, err := r.claim(ctx)
		switch {
		case errors.Is(err, model.ErrNoJobsAvailable):
			return processed, nil
		case err != nil:
			if ctx.Err() != nil {
				return processed, nil
			}
			return processed, fmt.Errorf("claim next job: %w", err)
		}

		// A claimed job runs to its terminal write even when shutdown starts mid-handler.
		if err := r.dispatcher.Dispatch(context.WithoutCancel(ctx), job); err != nil {
			return processed, err
		}
		processed++
	}
	return processed, nil
}

// claim retries transient store failures with exponential backoff. An empty queue,
// a cancelled context and non-transient errors are returned immediately.
func (r *Runner) claim(ctx context.Context) (*model.Job, error) {
	op := func() (*model.Job, error) {
		job, err := r.jobs.ClaimNext(ctx)
		if err == nil {
			return job, nil
		}
		if errors.Is(err, model.ErrNoJobsAvailable) || ctx.Err() != nil || !apperrors.IsTransient(err) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), uint64(r.retries)), ctx) // #nosec G115 - clamped >= 0
	return backoff.RetryNotifyWithData(op, b, func(err error, wait time.Duration) {
		r.logger.WarnContext(ctx, "claim failed, retrying", "error", err, "wait", wait)
	})
}
