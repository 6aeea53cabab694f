package config

import (
	"fmt"
	"strings"
)

// StoreDriver selects the storage backend.
type StoreDriver string

const (
	// StoreDriverPostgres stores everything in PostgreSQL.
	StoreDriverPostgres StoreDriver = "postgres"
	// StoreDriverMemory keeps everything in process memory. Data is lost on exit.
	StoreDriverMemory StoreDriver = "memory"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - database.go: store, Postgres and Redis configuration
//   - http.go: HTTP server configuration
//   - services.go: service modes, worker, reminder scanner and reaper configuration
//   - observability.go: logging and metrics
type AppConfig struct {
	// Store selects postgres (default) or memory.
	Store StoreDriver `env:"STORE_DRIVER" envDefault:"postgres"`

	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	HTTP HTTPConfig

	// Services is a comma-delimited list of enabled services.
	Services string `env:"SERVICES" envDefault:"http,worker"`

	Worker   WorkerConfig
	Reminder ReminderConfig
	Reaper   ReaperConfig

	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Store = StoreDriver(strings.ToLower(strings.TrimSpace(string(c.Store))))
	if c.Store != StoreDriverMemory {
		c.Store = StoreDriverPostgres
	}

	c.Postgres.Sanitize()
	c.HTTP.Sanitize()
	c.Worker.Sanitize()
	c.Reminder.Sanitize()
	c.Reaper.Sanitize()
	c.Observability.Sanitize()
}

// Validate reports configuration that cannot be clamped to a sensible default.
func (c *AppConfig) Validate() error {
	if _, err := c.GetEnabledServices(); err != nil {
		return err
	}
	if c.Store == StoreDriverPostgres && c.Postgres.Host == "" {
		return fmt.Errorf("DB_HOST is required when STORE_DRIVER=%s", StoreDriverPostgres)
	}
	return nil
}

// UsesMemoryStore reports whether STORE_DRIVER=memory.
func (c *AppConfig) UsesMemoryStore() bool {
	return c.Store == StoreDriverMemory
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

func (c *AppConfig) isEnabled(mode ServiceMode) bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[mode]
}

// IsHTTPServerEnabled returns true if the HTTP server service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool { return c.isEnabled(ServiceModeHTTP) }

// IsWorkerEnabled returns true if the job worker loop is enabled.
func (c *AppConfig) IsWorkerEnabled() bool { return c.isEnabled(ServiceModeWorker) }

// IsReminderScannerEnabled returns true if the in-process reminder scanner is enabled.
func (c *AppConfig) IsReminderScannerEnabled() bool { return c.isEnabled(ServiceModeReminderScanner) }

// IsReaperEnabled returns true if the reaper service is enabled.
func (c *AppConfig) IsReaperEnabled() bool { return c.isEnabled(ServiceModeReaper) }
