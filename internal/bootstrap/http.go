package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/competitions-api/config"
	"github.com/target/competitions-api/internal/data"
	httpx "github.com/target/competitions-api/internal/http"
)

const httpShutdownTimeout = 10 * time.Second

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config      config.HTTPConfig
	Services    *ServiceContainer
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewHTTPServer builds the API server without starting it.
func NewHTTPServer(cfg HTTPServerConfig) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	svcs := cfg.Services
	checks := map[string]httpx.Pinger{"store": httpx.PingFunc(svcs.Stores.Ping)}
	if cfg.RedisClient != nil {
		checks["redis"] = data.NewRedisLockRepo(cfg.RedisClient)
	}

	rs := httpx.RouterServices{
		Organizers:         svcs.Organizers,
		Events:             svcs.Events,
		Registrations:      svcs.Registrations,
		Jobs:               svcs.Jobs,
		Outbox:             svcs.Stores.Outbox,
		ReadinessChecks:    checks,
		Metrics:            svcs.Observability.Metrics,
		CORSAllowedOrigins: cfg.Config.CORSAllowedOrigins,
		Logger:             logger,
	}
	// Assigned only when set: a nil *prometheus.Registry would be a non-nil Gatherer.
	if svcs.Observability.Registry != nil {
		rs.Gatherer = svcs.Observability.Registry
	}

	addr := cfg.Config.Addr
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr:              addr,
		Handler:           httpx.NewRouter(rs),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// ServeHTTP runs srv until ctx is cancelled, then shuts it down gracefully.
func ServeHTTP(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), httpShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("HTTP server stopped")
	return nil
}
