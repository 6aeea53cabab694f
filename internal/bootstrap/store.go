package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/target/competitions-api/config"
	"github.com/target/competitions-api/internal/core"
	"github.com/target/competitions-api/internal/data"
	"github.com/target/competitions-api/internal/data/memstore"
)

// Stores is the set of repositories backing the services, from either Postgres
// or the in-memory store.
type Stores struct {
	Jobs          core.JobRepository
	Reaper        core.ReaperRepository
	Organizers    core.OrganizerRepository
	Events        core.EventRepository
	Registrations core.RegistrationRepository
	Outbox        core.OutboxRepository

	// Ping reports store readiness.
	Ping func(ctx context.Context) error
}

// NewPostgresStores builds repositories over db. Registrations share the job
// repository so enrollment commits both rows in one transaction.
func NewPostgresStores(db *sql.DB, logger *slog.Logger) (*Stores, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	cfg := data.RepoConfig{Logger: logger}
	jobs := data.NewJobRepo(db, cfg)
	return &Stores{
		Jobs:          jobs,
		Reaper:        jobs,
		Organizers:    data.NewOrganizerRepo(db, cfg),
		Events:        data.NewEventRepo(db, cfg),
		Registrations: data.NewRegistrationRepo(db, jobs, cfg),
		Outbox:        data.NewOutboxRepo(db, cfg),
		Ping:          db.PingContext,
	}, nil
}

// NewMemoryStores builds repositories over a fresh in-process store.
func NewMemoryStores(clock data.TimeProvider) *Stores {
	if clock == nil {
		clock = &data.RealTimeProvider{}
	}
	store := memstore.New(clock)
	jobs := store.Jobs()
	return &Stores{
		Jobs:          jobs,
		Reaper:        jobs,
		Organizers:    store.Organizers(),
		Events:        store.Events(),
		Registrations: store.Registrations(),
		Outbox:        store.Outbox(),
		Ping:          store.Ping,
	}
}

// OpenStores picks the backend named by cfg.Store. db is ignored for the memory store.
func OpenStores(cfg *config.AppConfig, db *sql.DB, logger *slog.Logger) (*Stores, error) {
	if cfg.UsesMemoryStore() {
		if logger != nil {
			logger.Warn("using in-memory store; data is lost on exit")
		}
		return NewMemoryStores(nil), nil
	}
	return NewPostgresStores(db, logger)
}
