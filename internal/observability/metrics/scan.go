package metrics

import (
	"time"

	obserrors "github.com/target/competitions-api/internal/observability/errors"
)

// ScanMetric summarises one reminder scan.
type ScanMetric struct {
	Enqueued int
	Deduped  int
	Duration time.Duration
	Err      error
	// At is the completion time recorded on success.
	At time.Time
}

// EmitReminderScan records the outcome of a reminder scan.
func EmitReminderScan(rec *Recorder, in ScanMetric) {
	if rec == nil {
		return
	}

	result, class := ResultSuccess, ""
	switch {
	case in.Err != nil:
		result, class = ResultError, obserrors.Classify(in.Err)
	case in.Enqueued == 0:
		result = ResultNoop
	}

	rec.scanRuns.WithLabelValues(result, class).Inc()
	rec.scanEnqueued.Add(float64(in.Enqueued))
	rec.scanDeduped.Add(float64(in.Deduped))
	if in.Duration > 0 {
		rec.scanDuration.Observe(in.Duration.Seconds())
	}
	if in.Err == nil && !in.At.IsZero() {
		rec.scanLastSuccess.Set(float64(in.At.Unix()))
	}
}

// EmitReaperStep records the rows touched by one reaper cleanup step; a failed step counts once.
func EmitReaperStep(rec *Recorder, step string, count int64, err error) {
	if rec == nil {
		return
	}
	if err != nil {
		rec.reaperRows.WithLabelValues(step, ResultError).Inc()
		return
	}
	if count > 0 {
		rec.reaperRows.WithLabelValues(step, ResultSuccess).Add(float64(count))
	}
}
