package config

import (
	"log/slog"
	"regexp"
	"strings"
)

const defaultMetricsNamespace = "competitions"

var metricsNamespacePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ObservabilityConfig controls logging and Prometheus metrics.
type ObservabilityConfig struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	MetricsEnabled   bool   `env:"METRICS_ENABLED"   envDefault:"true"`
	MetricsNamespace string `env:"METRICS_NAMESPACE" envDefault:"competitions"`
}

// Sanitize normalises the log level and metric namespace.
func (c *ObservabilityConfig) Sanitize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	case "warning":
		c.LogLevel = "warn"
	default:
		c.LogLevel = "info"
	}

	c.MetricsNamespace = strings.TrimSpace(c.MetricsNamespace)
	if !metricsNamespacePattern.MatchString(c.MetricsNamespace) {
		c.MetricsNamespace = defaultMetricsNamespace
	}
}

// SlogLevel maps LogLevel onto slog.
func (c *ObservabilityConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
