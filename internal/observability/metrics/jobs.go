package metrics

import (
	"time"

	obserrors "github.com/target/competitions-api/internal/observability/errors"
)

// Result constants for metric labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// Transition labels for job lifecycle metrics.
const (
	TransitionClaim    = "claim"
	TransitionComplete = "complete"
	TransitionFail     = "fail"
	TransitionEnqueue  = "enqueue"
)

// JobMetric captures details about a job lifecycle event for metric emission.
type JobMetric struct {
	JobType    string
	Transition string
	Result     string
	Duration   time.Duration
	Err        error
}

// EmitJobLifecycle records a job transition and, when known, the time spent processing.
func EmitJobLifecycle(rec *Recorder, in JobMetric) {
	if rec == nil {
		return
	}

	var class string
	if in.Err != nil && in.Result == ResultError {
		class = obserrors.Classify(in.Err)
	}

	rec.jobTransitions.WithLabelValues(in.JobType, in.Transition, in.Result, class).Inc()

	if in.Duration > 0 {
		rec.jobDuration.WithLabelValues(in.JobType, in.Result).Observe(in.Duration.Seconds())
	}
}
