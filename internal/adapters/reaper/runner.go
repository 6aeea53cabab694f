// Package reaper provides the adapter that runs job retention cleanup.
package reaper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/competitions-api/config"
	"github.com/target/competitions-api/internal/core"
	"github.com/target/competitions-api/internal/observability/metrics"
	"github.com/target/competitions-api/internal/service"
)

// Runner runs the reaper loop.
type Runner struct {
	reaper *service.ReaperService
	logger *slog.Logger
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Repo    core.ReaperRepository // Required: usually the job store
	Config  config.ReaperConfig
	Logger  *slog.Logger
	Metrics *metrics.Recorder
}

// NewRunner creates a new reaper runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Repo == nil {
		return nil, errors.New("reaper repository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	svc, err := service.NewReaperService(service.ReaperServiceOptions{
		Repo:    opts.Repo,
		Config:  opts.Config,
		Logger:  logger,
		Metrics: opts.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("wire reaper service: %w", err)
	}
	return &Runner{reaper: svc, logger: logger.With("component", "reaper_runner")}, nil
}

// Run starts the reaper loop and runs until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting reaper runner")
	return r.reaper.Run(ctx)
}

// Once runs a single cleanup pass.
func (r *Runner) Once(ctx context.Context) (service.ReaperResult, error) {
	return r.reaper.CleanupOnce(ctx)
}
