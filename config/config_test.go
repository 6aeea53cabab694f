package config

import (
	"log/slog"
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestParseServices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    map[ServiceMode]bool
		expectError bool
	}{
		{
			name:     "single service - http",
			input:    "http",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true},
		},
		{
			name:     "single service - worker",
			input:    "worker",
			expected: map[ServiceMode]bool{ServiceModeWorker: true},
		},
		{
			name:  "all services with spaces",
			input: " http , worker , reminder-scanner , reaper ",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:            true,
				ServiceModeWorker:          true,
				ServiceModeReminderScanner: true,
				ServiceModeReaper:          true,
			},
		},
		{
			name:     "duplicate services",
			input:    "worker,worker",
			expected: map[ServiceMode]bool{ServiceModeWorker: true},
		},
		{name: "empty string", input: "", expectError: true},
		{name: "only spaces and commas", input: " , , ", expectError: true},
		{name: "invalid service name", input: "http,scheduler", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseServices(tt.input)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestAppConfig_ServiceToggles(t *testing.T) {
	cfg := AppConfig{Services: "worker,reaper"}
	if cfg.IsHTTPServerEnabled() {
		t.Errorf("http should be disabled")
	}
	if !cfg.IsWorkerEnabled() || !cfg.IsReaperEnabled() {
		t.Errorf("worker and reaper should be enabled")
	}
	if cfg.IsReminderScannerEnabled() {
		t.Errorf("reminder scanner should be disabled")
	}

	bad := AppConfig{Services: "bogus"}
	if bad.IsWorkerEnabled() {
		t.Errorf("invalid services must disable everything")
	}
}

func TestAppConfig_ParseDefaults(t *testing.T) {
	var cfg AppConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg.Sanitize()

	if cfg.Store != StoreDriverPostgres {
		t.Errorf("store = %q, want postgres", cfg.Store)
	}
	if cfg.Worker.BatchSize != 10 || cfg.Worker.PollInterval() != 5*time.Second {
		t.Errorf("worker defaults = %+v", cfg.Worker)
	}
	if cfg.Worker.StoreRetries != 3 || cfg.Worker.Concurrency != 1 {
		t.Errorf("worker retry/concurrency defaults = %+v", cfg.Worker)
	}
	if cfg.Reminder.Window() != 24*time.Hour || cfg.Reminder.ScanInterval != time.Minute {
		t.Errorf("reminder defaults = %+v", cfg.Reminder)
	}
	if cfg.Reaper.ProcessingMaxAge != 0 {
		t.Errorf("processing sweep must be disabled by default, got %v", cfg.Reaper.ProcessingMaxAge)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("http addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Redis.Enabled() {
		t.Errorf("redis must be disabled without REDIS_URI")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestAppConfig_ParseEnv(t *testing.T) {
	environment := map[string]string{
		"STORE_DRIVER":              "Memory",
		"DB_HOST":                   "db",
		"DB_AUTO_MIGRATE":           "true",
		"REDIS_URI":                 "redis:6379",
		"PORT":                      "9090",
		"HTTP_CORS_ALLOWED_ORIGINS": "https://a.example, ,https://b.example",
		"SERVICES":                  "http,reminder-scanner",
		"WORKER_BATCH_SIZE":         "0",
		"WORKER_POLL_INTERVAL":      "2",
		"REMINDER_WINDOW_HOURS":     "48",
		"REAPER_PROCESSING_MAX_AGE": "30m",
		"LOG_LEVEL":                 "WARNING",
	}

	var cfg AppConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg.Sanitize()

	if !cfg.UsesMemoryStore() {
		t.Errorf("expected memory store")
	}
	if !cfg.Postgres.AutoMigrate || cfg.Postgres.Host != "db" {
		t.Errorf("postgres = %+v", cfg.Postgres)
	}
	if !cfg.Redis.Enabled() {
		t.Errorf("expected redis enabled")
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("PORT override not applied: %q", cfg.HTTP.Addr)
	}
	if want := []string{"https://a.example", "https://b.example"}; !reflect.DeepEqual(cfg.HTTP.CORSAllowedOrigins, want) {
		t.Errorf("origins = %v, want %v", cfg.HTTP.CORSAllowedOrigins, want)
	}
	if cfg.Worker.BatchSize != 1 {
		t.Errorf("batch size should clamp to 1, got %d", cfg.Worker.BatchSize)
	}
	if cfg.Worker.PollInterval() != 2*time.Second {
		t.Errorf("poll interval = %v", cfg.Worker.PollInterval())
	}
	if cfg.Reminder.Window() != 48*time.Hour {
		t.Errorf("window = %v", cfg.Reminder.Window())
	}
	if cfg.Reaper.ProcessingMaxAge != 30*time.Minute {
		t.Errorf("processing max age = %v", cfg.Reaper.ProcessingMaxAge)
	}
	if cfg.Observability.SlogLevel() != slog.LevelWarn {
		t.Errorf("log level = %q", cfg.Observability.LogLevel)
	}
}

func TestReaperConfig_Sanitize(t *testing.T) {
	tests := []struct {
		name string
		in   ReaperConfig
		want ReaperConfig
	}{
		{
			name: "zero ages stay disabled",
			in:   ReaperConfig{Interval: time.Second, BatchSize: 0},
			want: ReaperConfig{Interval: time.Minute, BatchSize: 1},
		},
		{
			name: "small ages clamp up",
			in: ReaperConfig{
				Interval: 10 * time.Minute, DoneMaxAge: time.Minute, FailedMaxAge: time.Second,
				ProcessingMaxAge: time.Second, BatchSize: 50000,
			},
			want: ReaperConfig{
				Interval: 10 * time.Minute, DoneMaxAge: time.Hour, FailedMaxAge: time.Hour,
				ProcessingMaxAge: time.Minute, BatchSize: 10000,
			},
		},
		{
			name: "negative ages disable",
			in:   ReaperConfig{Interval: time.Hour, DoneMaxAge: -1, FailedMaxAge: -1, ProcessingMaxAge: -1, BatchSize: 10},
			want: ReaperConfig{Interval: time.Hour, BatchSize: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in
			got.Sanitize()
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestObservabilityConfig_Sanitize(t *testing.T) {
	c := ObservabilityConfig{LogLevel: "loud", MetricsNamespace: "bad-name"}
	c.Sanitize()
	if c.LogLevel != "info" {
		t.Errorf("log level = %q", c.LogLevel)
	}
	if c.MetricsNamespace != "competitions" {
		t.Errorf("namespace = %q", c.MetricsNamespace)
	}
}

func TestDBConfig_DSN(t *testing.T) {
	d := DBConfig{Host: "db", Port: 5433, User: "u", Password: "p@ss", Name: "comp", SSLMode: "require"}
	if got, want := d.DSN(), "postgres://u:p%40ss@db:5433/comp?sslmode=require"; got != want {
		t.Errorf("dsn = %q, want %q", got, want)
	}
}
