package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/target/competitions-api/config"
	"github.com/target/competitions-api/internal/bootstrap"
	"github.com/target/competitions-api/internal/core"
)

var errPostgresOnly = errors.New("this command requires STORE_DRIVER=postgres")

// app holds what the commands share. Connections are opened lazily so that
// --help and argument errors never touch the database.
type app struct {
	cfg    *config.AppConfig
	logger *slog.Logger
	db     *sql.DB
	redis  redis.UniversalClient
	svcs   *bootstrap.ServiceContainer
	// lock guards scan-reminders; nil means connect Redis on first use.
	lock core.LockRepository

	loadConfig func() (config.AppConfig, error)
}

func newApp() *app {
	return &app{loadConfig: bootstrap.LoadConfig}
}

// setup loads configuration unless a test already provided it.
func (a *app) setup() error {
	if a.cfg == nil {
		cfg, err := a.loadConfig()
		if err != nil {
			return err
		}
		// Admin commands are short-lived; nothing scrapes them.
		cfg.Observability.MetricsEnabled = false
		a.cfg = &cfg
	}
	if a.logger == nil {
		// stdout is reserved for command output.
		a.logger = bootstrap.NewLogger(os.Stderr, a.cfg.Observability)
	}
	return nil
}

func (a *app) database(ctx context.Context) (*sql.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	if a.cfg.UsesMemoryStore() {
		return nil, errPostgresOnly
	}
	db, err := bootstrap.ConnectDB(ctx, bootstrap.DatabaseConfig{DBConfig: a.cfg.Postgres, Logger: a.logger})
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

func (a *app) services(ctx context.Context) (*bootstrap.ServiceContainer, error) {
	if a.svcs != nil {
		return a.svcs, nil
	}
	var db *sql.DB
	if !a.cfg.UsesMemoryStore() {
		var err error
		if db, err = a.database(ctx); err != nil {
			return nil, err
		}
	}
	stores, err := bootstrap.OpenStores(a.cfg, db, a.logger)
	if err != nil {
		return nil, err
	}
	svcs, err := bootstrap.NewServices(&bootstrap.ServiceDeps{Config: a.cfg, Stores: stores, Logger: a.logger})
	if err != nil {
		return nil, err
	}
	a.svcs = svcs
	return svcs, nil
}

// scanLock returns the reminder scan lock shared with the in-process scanner.
// Without Redis it is nil and scans run unguarded.
//
//nolint:ireturn // nil interface means "no lock"
func (a *app) scanLock(ctx context.Context) (core.LockRepository, error) {
	if a.lock != nil {
		return a.lock, nil
	}
	client, err := bootstrap.ConnectRedis(ctx, bootstrap.DatabaseConfig{RedisConfig: a.cfg.Redis, Logger: a.logger})
	if err != nil {
		return nil, err
	}
	a.redis = client
	a.lock = bootstrap.NewLockRepository(client)
	return a.lock, nil
}

func (a *app) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && a.logger != nil {
			a.logger.Error("close redis failed", "error", err)
		}
		a.redis = nil
	}
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil && a.logger != nil {
		a.logger.Error("close database failed", "error", err)
	}
	a.db = nil
}
