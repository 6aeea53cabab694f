package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/competitions-api/config"
	"github.com/target/competitions-api/internal/adapters/jobrunner"
	"github.com/target/competitions-api/internal/adapters/reaper"
	schedrunner "github.com/target/competitions-api/internal/adapters/scheduler"
)

// WorkerConfig contains configuration for the job worker.
type WorkerConfig struct {
	Services *ServiceContainer
	Config   config.WorkerConfig
	Logger   *slog.Logger
}

// RunWorker claims and dispatches jobs until ctx is cancelled.
func RunWorker(ctx context.Context, cfg WorkerConfig) error {
	runner, err := jobrunner.NewRunner(jobrunner.RunnerOptions{
		Jobs:         cfg.Services.Jobs,
		Dispatcher:   cfg.Services.Dispatcher,
		Logger:       cfg.Logger,
		BatchSize:    cfg.Config.BatchSize,
		PollInterval: cfg.Config.PollInterval(),
		Concurrency:  cfg.Config.Concurrency,
		StoreRetries: cfg.Config.StoreRetries,
	})
	if err != nil {
		return fmt.Errorf("create job runner: %w", err)
	}
	return runner.Run(ctx)
}

// ReminderScannerConfig contains configuration for the in-process reminder scan.
type ReminderScannerConfig struct {
	Services    *ServiceContainer
	RedisClient redis.UniversalClient
	Config      config.ReminderConfig
	Logger      *slog.Logger
}

// RunReminderScanner ticks the reminder scan. With Redis configured only one
// process scans per tick.
func RunReminderScanner(ctx context.Context, cfg ReminderScannerConfig) error {
	runner, err := schedrunner.NewRunner(schedrunner.RunnerOptions{
		Scheduler: cfg.Services.Reminders,
		Lock:      NewLockRepository(cfg.RedisClient),
		LockTTL:   cfg.Config.LockTTL,
		Interval:  cfg.Config.ScanInterval,
		Logger:    cfg.Logger,
	})
	if err != nil {
		return fmt.Errorf("create reminder runner: %w", err)
	}
	return runner.Run(ctx)
}

// ReaperConfig contains configuration for the reaper.
type ReaperConfig struct {
	Services *ServiceContainer
	Config   config.ReaperConfig
	Logger   *slog.Logger
}

// RunReaper starts the job retention loop.
func RunReaper(ctx context.Context, cfg ReaperConfig) error {
	runner, err := reaper.NewRunner(reaper.RunnerOptions{
		Repo:    cfg.Services.Stores.Reaper,
		Config:  cfg.Config,
		Logger:  cfg.Logger,
		Metrics: cfg.Services.Observability.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create reaper runner: %w", err)
	}
	return runner.Run(ctx)
}
