package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/target/competitions-api/config"
	"github.com/target/competitions-api/internal/core"
	"github.com/target/competitions-api/internal/data"
	"github.com/target/competitions-api/internal/observability/metrics"
	"github.com/target/competitions-api/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Organizers    *service.OrganizerService
	Events        *service.EventService
	Registrations *service.RegistrationService
	Jobs          *service.JobService
	Dispatcher    *service.JobDispatcher
	Reminders     *service.ReminderScanner

	Stores        *Stores
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	// Registry is nil when metrics are disabled.
	Registry *prometheus.Registry
	Metrics  *metrics.Recorder
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	Stores      *Stores
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// buildObservability creates the Prometheus registry and recorder.
func buildObservability(cfg config.ObservabilityConfig) (ObservabilityContainer, error) {
	if !cfg.MetricsEnabled {
		return ObservabilityContainer{}, nil
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec, err := metrics.NewRecorder(cfg.MetricsNamespace, reg)
	if err != nil {
		return ObservabilityContainer{}, fmt.Errorf("create metrics recorder: %w", err)
	}
	return ObservabilityContainer{Registry: reg, Metrics: rec}, nil
}

// NewServices wires every service over the given stores.
func NewServices(deps *ServiceDeps) (*ServiceContainer, error) {
	if deps == nil || deps.Config == nil || deps.Stores == nil {
		return nil, errors.New("service deps require config and stores")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	stores := deps.Stores

	obs, err := buildObservability(deps.Config.Observability)
	if err != nil {
		return nil, err
	}

	jobs, err := service.NewJobService(service.JobServiceOptions{
		Repo:    stores.Jobs,
		Logger:  logger,
		Metrics: obs.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("job service: %w", err)
	}

	organizers, err := service.NewOrganizerService(service.OrganizerServiceOptions{
		Repo:   stores.Organizers,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("organizer service: %w", err)
	}

	events, err := service.NewEventService(service.EventServiceOptions{
		Repos: service.EventServiceRepos{
			Events:        stores.Events,
			Organizers:    stores.Organizers,
			Registrations: stores.Registrations,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("event service: %w", err)
	}

	registrations, err := service.NewRegistrationService(service.RegistrationServiceOptions{
		Repos: service.RegistrationServiceRepos{
			Events:        stores.Events,
			Registrations: stores.Registrations,
		},
		Jobs:   jobs,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("registration service: %w", err)
	}

	dispatcher, err := newDispatcher(stores, jobs, obs.Metrics, logger)
	if err != nil {
		return nil, err
	}

	reminders, err := service.NewReminderScanner(service.ReminderScannerOptions{
		Repos: service.ReminderScannerRepos{
			Events:        stores.Events,
			Registrations: stores.Registrations,
			Jobs:          jobs,
		},
		Window:  deps.Config.Reminder.Window(),
		Logger:  logger,
		Metrics: obs.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("reminder scanner: %w", err)
	}

	return &ServiceContainer{
		Organizers:    organizers,
		Events:        events,
		Registrations: registrations,
		Jobs:          jobs,
		Dispatcher:    dispatcher,
		Reminders:     reminders,
		Stores:        stores,
		Observability: obs,
	}, nil
}

func newDispatcher(
	stores *Stores,
	jobs *service.JobService,
	rec *metrics.Recorder,
	logger *slog.Logger,
) (*service.JobDispatcher, error) {
	handlers, err := service.NewRegistrationJobs(service.RegistrationJobsOptions{
		Repos: service.RegistrationJobsRepos{
			Registrations: stores.Registrations,
			Events:        stores.Events,
			Outbox:        stores.Outbox,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("registration handlers: %w", err)
	}

	dispatcher, err := service.NewJobDispatcher(service.DispatcherOptions{
		Jobs:     jobs,
		Handlers: handlers.Handlers(),
		Logger:   logger,
		Metrics:  rec,
	})
	if err != nil {
		return nil, fmt.Errorf("job dispatcher: %w", err)
	}
	return dispatcher, nil
}

// NewLockRepository returns the Redis scan lock, or nil without Redis.
//
//nolint:ireturn // nil interface means "no lock"
func NewLockRepository(client redis.UniversalClient) core.LockRepository {
	if client == nil {
		return nil
	}
	return data.NewRedisLockRepo(client)
}
