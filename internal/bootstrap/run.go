package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/target/competitions-api/config"
)

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    *ServiceContainer
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// backgroundService describes a startable component.
type backgroundService struct {
	mode  config.ServiceMode
	name  string
	start func(context.Context) error
}

func buildBackgroundServices(cfg *ServiceOrchestrationConfig, logger *slog.Logger) []backgroundService {
	app := cfg.Config
	return []backgroundService{
		{
			mode: config.ServiceModeHTTP,
			name: "http server",
			start: func(ctx context.Context) error {
				srv := NewHTTPServer(HTTPServerConfig{
					Config:      app.HTTP,
					Services:    cfg.Services,
					RedisClient: cfg.RedisClient,
					Logger:      logger,
				})
				return ServeHTTP(ctx, srv, logger)
			},
		},
		{
			mode: config.ServiceModeWorker,
			name: "job worker",
			start: func(ctx context.Context) error {
				return RunWorker(ctx, WorkerConfig{Services: cfg.Services, Config: app.Worker, Logger: logger})
			},
		},
		{
			mode: config.ServiceModeReminderScanner,
			name: "reminder scanner",
			start: func(ctx context.Context) error {
				return RunReminderScanner(ctx, ReminderScannerConfig{
					Services:    cfg.Services,
					RedisClient: cfg.RedisClient,
					Config:      app.Reminder,
					Logger:      logger,
				})
			},
		},
		{
			mode: config.ServiceModeReaper,
			name: "reaper",
			start: func(ctx context.Context) error {
				return RunReaper(ctx, ReaperConfig{Services: cfg.Services, Config: app.Reaper, Logger: logger})
			},
		},
	}
}

// enabledBackgroundServices filters the descriptors by the configured modes.
func enabledBackgroundServices(all []backgroundService, enabled map[config.ServiceMode]bool) []backgroundService {
	out := make([]backgroundService, 0, len(all))
	for _, svc := range all {
		if enabled[svc.mode] {
			out = append(out, svc)
		}
	}
	return out
}

// RunServicesWithShutdown starts all enabled services and blocks until SIGINT,
// SIGTERM, cancellation of ctx, or the first service failure. A failure stops
// the others.
func RunServicesWithShutdown(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil || cfg.Services == nil {
		return errors.New("service orchestration config requires config and services")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return runServices(ctx, enabledBackgroundServices(buildBackgroundServices(cfg, logger), enabled), logger)
}

func runServices(ctx context.Context, services []backgroundService, logger *slog.Logger) error {
	if len(services) == 0 {
		return errors.New("no services enabled")
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, svc := range services {
		g.Go(func() error {
			logger.InfoContext(gctx, "service started", "service", svc.name, "mode", svc.mode)
			if err := svc.start(gctx); err != nil {
				logger.ErrorContext(gctx, "service failed", "service", svc.name, "error", err)
				return fmt.Errorf("%s failed: %w", svc.name, err)
			}
			logger.InfoContext(gctx, "service stopped", "service", svc.name)
			return nil
		})
	}

	err := g.Wait()
	if ctx.Err() != nil {
		logger.Info("services shut down", "reason", context.Cause(ctx))
	}
	return err
}
