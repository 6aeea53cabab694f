package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/competitions-api/internal/domain/model"
	"github.com/target/competitions-api/internal/observability/metrics"
)

// JobHandler performs the side effect of one job type. A returned error fails the job.
type JobHandler func(ctx context.Context, job *model.Job) error

// DispatcherOptions groups dependencies for JobDispatcher.
type DispatcherOptions struct {
	Jobs     *JobService                  // Required: used for the terminal write
	Handlers map[model.JobType]JobHandler // Optional: initial handler table
	Logger   *slog.Logger                 // Optional: structured logger
	Metrics  *metrics.Recorder            // Optional: Prometheus recorder
}

// JobDispatcher routes a claimed job to its handler and records the outcome.
type JobDispatcher struct {
	jobs     *JobService
	handlers map[model.JobType]JobHandler
	logger   *slog.Logger
	metrics  *metrics.Recorder
}

// NewJobDispatcher constructs a new JobDispatcher.
func NewJobDispatcher(opts DispatcherOptions) (*JobDispatcher, error) {
	if opts.Jobs == nil {
		return nil, errors.New("JobService is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	d := &JobDispatcher{
		jobs:     opts.Jobs,
		handlers: make(map[model.JobType]JobHandler, len(opts.Handlers)),
		logger:   logger.With("component", "job_dispatcher"),
		metrics:  opts.Metrics,
	}
	for t, h := range opts.Handlers {
		d.Register(t, h)
	}
	return d, nil
}

// Register installs h for jobType, replacing any previous handler. It is not safe to
// call concurrently with Dispatch.
func (d *JobDispatcher) Register(jobType model.JobType, h JobHandler) {
	if h == nil {
		delete(d.handlers, jobType)
		return
	}
	d.handlers[jobType] = h
}

// Types returns the registered job types.
func (d *JobDispatcher) Types() []model.JobType {
	out := make([]model.JobType, 0, len(d.handlers))
	for t := range d.handlers {
		out = append(out, t)
	}
	return out
}

// Dispatch runs the handler for job.Type and writes exactly one terminal status.
// Handler errors, panics and unknown types become a failed job. The returned error
// is non-nil only when the terminal write itself failed.
func (d *JobDispatcher) Dispatch(ctx context.Context, job *model.Job) error {
	start := time.Now()

	herr := d.run(ctx, job)

	// The terminal write must land even if the handler ran out its context.
	fctx := context.WithoutCancel(ctx)
	var (
		finalized bool
		err       error
	)
	if herr == nil {
		finalized, err = d.jobs.Complete(fctx, job.ID)
	} else {
		finalized, err = d.jobs.Fail(fctx, job.ID, failureMessage(herr))
	}

	transition := metrics.TransitionComplete
	if herr != nil {
		transition = metrics.TransitionFail
	}

	switch {
	case err != nil:
		d.logger.ErrorContext(ctx, "finalize job failed",
			"job_id", job.ID, "type", job.Type, "error", err, "handler_error", herr)
		d.emit(job, transition, metrics.ResultError, time.Since(start), err)
		return fmt.Errorf("finalize job %s: %w", job.ID, err)
	case !finalized:
		// Someone else (the reaper's timeout sweep) already moved the job out of processing.
		d.logger.WarnContext(ctx, "job was no longer processing at finalize", "job_id", job.ID, "type", job.Type)
		d.emit(job, transition, metrics.ResultNoop, time.Since(start), nil)
	case herr != nil:
		d.logger.WarnContext(ctx, "job failed", "job_id", job.ID, "type", job.Type, "error", herr)
		d.emit(job, transition, metrics.ResultError, time.Since(start), herr)
	default:
		d.logger.InfoContext(ctx, "job done", "job_id", job.ID, "type", job.Type, "duration", time.Since(start))
		d.emit(job, transition, metrics.ResultSuccess, time.Since(start), nil)
	}
	return nil
}

func (d *JobDispatcher) run(ctx context.Context, job *model.Job) (err error) {
	h, ok := d.handlers[job.Type]
	if !ok {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.ErrorContext(ctx, "job handler panicked", "job_id", job.ID, "type", job.Type, "panic", r)
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	if err := h(ctx, job); err != nil {
		return err
	}
	return nil
}

func failureMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "job handler failed"
}

// metricJobType keeps arbitrary producer-supplied types out of metric labels.
func metricJobType(t model.JobType) string {
	if t.Known() {
		return string(t)
	}
	return "other"
}

func (d *JobDispatcher) emit(job *model.Job, transition, result string, dur time.Duration, err error) {
	metrics.EmitJobLifecycle(d.metrics, metrics.JobMetric{
		JobType:    metricJobType(job.Type),
		Transition: transition,
		Result:     result,
		Duration:   dur,
		Err:        err,
	})
}
