// Package metrics exposes the Prometheus collectors for the job queue, the
// reminder scanner, the reaper and the HTTP API.
package metrics

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder owns every collector. A nil *Recorder is valid and records nothing.
type Recorder struct {
	jobTransitions *prometheus.CounterVec
	jobDuration    *prometheus.HistogramVec

	scanRuns        *prometheus.CounterVec
	scanEnqueued    prometheus.Counter
	scanDeduped     prometheus.Counter
	scanDuration    prometheus.Histogram
	scanLastSuccess prometheus.Gauge

	reaperRows *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewRecorder builds the collectors under namespace and registers them with reg.
func NewRecorder(namespace string, reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		return nil, errors.New("metrics registerer is required")
	}

	r := &Recorder{
		jobTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_transitions_total",
			Help:      "Job lifecycle transitions by type and result.",
		}, []string{"job_type", "transition", "result", "error_class"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Time from claim to terminal status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job_type", "result"}),
		scanRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_scans_total",
			Help:      "Reminder scan invocations by result.",
		}, []string{"result", "error_class"}),
		scanEnqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_jobs_enqueued_total",
			Help:      "send_reminder jobs inserted by the scanner.",
		}),
		scanDeduped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_jobs_deduplicated_total",
			Help:      "Registrations skipped because a reminder job already exists.",
		}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reminder_scan_duration_seconds",
			Help:      "Duration of a reminder scan.",
			Buckets:   prometheus.DefBuckets,
		}),
		scanLastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reminder_scan_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful reminder scan.",
		}),
		reaperRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reaper_jobs_total",
			Help:      "Jobs removed or timed out by the reaper, by cleanup step and result.",
		}, []string{"step", "result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	for _, c := range r.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

func (r *Recorder) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		r.jobTransitions, r.jobDuration,
		r.scanRuns, r.scanEnqueued, r.scanDeduped, r.scanDuration, r.scanLastSuccess,
		r.reaperRows,
		r.httpRequests, r.httpDuration,
	}
}

// HTTPRequest records a served request. route is the matched mux pattern, not the raw path.
func (r *Recorder) HTTPRequest(method, route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
