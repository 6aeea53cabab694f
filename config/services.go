package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP API.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeWorker runs the job worker loop.
	ServiceModeWorker ServiceMode = "worker"
	// ServiceModeReminderScanner runs the periodic reminder scan.
	ServiceModeReminderScanner ServiceMode = "reminder-scanner"
	// ServiceModeReaper runs job retention cleanup.
	ServiceModeReaper ServiceMode = "reaper"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{
		ServiceModeHTTP,
		ServiceModeWorker,
		ServiceModeReminderScanner,
		ServiceModeReaper,
	}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if strings.TrimSpace(servicesStr) == "" {
		return services, errors.New("at least one service must be specified")
	}

	for _, part := range strings.Split(servicesStr, ",") {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModeWorker, ServiceModeReminderScanner, ServiceModeReaper:
			services[mode] = true
		default:
			return nil, fmt.Errorf(
				"invalid service name: %q (valid options: http, worker, reminder-scanner, reaper)",
				serviceName,
			)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// WorkerConfig contains job worker configuration.
type WorkerConfig struct {
	// BatchSize is the maximum number of claims attempted per tick.
	BatchSize int `env:"WORKER_BATCH_SIZE" envDefault:"10"`

	// PollIntervalSeconds is how long an idle worker sleeps before the next tick.
	PollIntervalSeconds int `env:"WORKER_POLL_INTERVAL" envDefault:"5"`

	// Concurrency is the number of worker loops in this process.
	Concurrency int `env:"WORKER_CONCURRENCY" envDefault:"1"`

	// StoreRetries bounds retries of a failed claim before the worker gives up.
	StoreRetries int `env:"WORKER_STORE_RETRIES" envDefault:"3"`
}

// PollInterval returns PollIntervalSeconds as a duration.
func (w WorkerConfig) PollInterval() time.Duration {
	return time.Duration(w.PollIntervalSeconds) * time.Second
}

// Sanitize applies guardrails to worker configuration values.
func (w *WorkerConfig) Sanitize() {
	if w.BatchSize < 1 {
		w.BatchSize = 1
	}
	if w.PollIntervalSeconds < 1 {
		w.PollIntervalSeconds = 1
	}
	if w.Concurrency < 1 {
		w.Concurrency = 1
	}
	if w.StoreRetries < 0 {
		w.StoreRetries = 0
	}
}

// ReminderConfig contains reminder scanner configuration.
type ReminderConfig struct {
	// WindowHours is the lead time H: events starting in [now+H, now+H+1h) get reminders.
	WindowHours int `env:"REMINDER_WINDOW_HOURS" envDefault:"24"`

	// ScanInterval is the tick interval of the in-process scanner.
	ScanInterval time.Duration `env:"REMINDER_SCAN_INTERVAL" envDefault:"1m"`

	// LockTTL bounds how long a scan holds the Redis lock.
	LockTTL time.Duration `env:"REMINDER_LOCK_TTL" envDefault:"5m"`
}

// Window returns WindowHours as a duration.
func (r ReminderConfig) Window() time.Duration {
	return time.Duration(r.WindowHours) * time.Hour
}

// Sanitize applies guardrails to reminder configuration values.
func (r *ReminderConfig) Sanitize() {
	if r.WindowHours < 0 {
		r.WindowHours = 24
	}
	if r.ScanInterval < time.Second {
		r.ScanInterval = time.Minute
	}
	if r.LockTTL < time.Second {
		r.LockTTL = 5 * time.Minute
	}
}

// ReaperConfig contains job reaper service configuration.
type ReaperConfig struct {
	// Interval is the reaper tick interval.
	Interval time.Duration `env:"REAPER_INTERVAL" envDefault:"5m"`

	// DoneMaxAge is how long done jobs are kept. 0 keeps them forever.
	DoneMaxAge time.Duration `env:"REAPER_DONE_MAX_AGE" envDefault:"168h"` // 7 days

	// FailedMaxAge is how long failed jobs are kept. 0 keeps them forever.
	FailedMaxAge time.Duration `env:"REAPER_FAILED_MAX_AGE" envDefault:"720h"` // 30 days

	// ProcessingMaxAge fails processing jobs that started longer ago than this. 0 disables the sweep.
	ProcessingMaxAge time.Duration `env:"REAPER_PROCESSING_MAX_AGE" envDefault:"0"`

	// BatchSize is the maximum number of rows to process per statement.
	BatchSize int `env:"REAPER_BATCH_SIZE" envDefault:"1000"`
}

// Sanitize applies guardrails to reaper configuration values.
func (r *ReaperConfig) Sanitize() {
	if r.Interval < time.Minute {
		r.Interval = time.Minute
	}
	if r.DoneMaxAge < 0 {
		r.DoneMaxAge = 0
	} else if r.DoneMaxAge > 0 && r.DoneMaxAge < time.Hour {
		r.DoneMaxAge = time.Hour
	}
	if r.FailedMaxAge < 0 {
		r.FailedMaxAge = 0
	} else if r.FailedMaxAge > 0 && r.FailedMaxAge < time.Hour {
		r.FailedMaxAge = time.Hour
	}
	if r.ProcessingMaxAge < 0 {
		r.ProcessingMaxAge = 0
	} else if r.ProcessingMaxAge > 0 && r.ProcessingMaxAge < time.Minute {
		r.ProcessingMaxAge = time.Minute
	}
	if r.BatchSize < 1 {
		r.BatchSize = 1
	}
	if r.BatchSize > 10000 {
		r.BatchSize = 10000
	}
}
