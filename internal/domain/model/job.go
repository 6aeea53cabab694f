// Package model defines the core data types shared by the competitions job queue and its API.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// JobType is the open tag a job is routed on. Any non-empty value may be stored;
// only types with a registered handler complete successfully.
type JobType string

// JobStatus represents the lifecycle state of a job.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type JobStatus string

const (
	// JobTypePostRegistration confirms a registration and emits a confirmation email record.
	JobTypePostRegistration JobType = "post_registration"
	// JobTypeSendReminder emits a reminder record for an upcoming event.
	JobTypeSendReminder JobType = "send_reminder"

	// JobStatusPending indicates a job is waiting to be claimed.
	JobStatusPending JobStatus = "pending"
	// JobStatusProcessing indicates a worker holds the job.
	JobStatusProcessing JobStatus = "processing"
	// JobStatusDone indicates the handler finished successfully.
	JobStatusDone JobStatus = "done"
	// JobStatusFailed indicates the job ended with an error.
	JobStatusFailed JobStatus = "failed"
)

// Payload keys understood by the built-in handlers.
const (
	PayloadKeyRegistrationID = "registration_id"
	PayloadKeyEventID        = "event_id"
)

const maxJobTypeLength = 64

// ErrNoJobsAvailable is returned when no pending job can be claimed.
var ErrNoJobsAvailable = errors.New("no jobs available")

// Valid returns true for a non-empty type tag of reasonable length.
func (t JobType) Valid() bool {
	s := strings.TrimSpace(string(t))
	return s != "" && len(s) <= maxJobTypeLength
}

// Known reports whether the type has a built-in handler.
func (t JobType) Known() bool {
	return t == JobTypePostRegistration || t == JobTypeSendReminder
}

// Valid returns true if the JobStatus is one of the four lifecycle states.
func (s JobStatus) Valid() bool {
	return s == JobStatusPending || s == JobStatusProcessing || s == JobStatusDone ||
		s == JobStatusFailed
}

// IsTerminal reports whether no further transition is allowed from s.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusDone || s == JobStatusFailed
}

// UnmarshalText implements encoding.TextUnmarshaler so statuses can be parsed from flags and queries.
func (s *JobStatus) UnmarshalText(text []byte) error {
	v := JobStatus(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid JobStatus: %q", string(text))
	}
	*s = v
	return nil
}

// Job is a unit of deferred work.
type Job struct {
	ID         string            `json:"id"                    db:"id"`
	Type       JobType           `json:"type"                  db:"type"`
	Payload    map[string]string `json:"payload"               db:"payload"`
	Status     JobStatus         `json:"status"                db:"status"`
	CreatedAt  time.Time         `json:"created_at"            db:"created_at"`
	StartedAt  *time.Time        `json:"started_at,omitempty"  db:"started_at"`
	FinishedAt *time.Time        `json:"finished_at,omitempty" db:"finished_at"`
	Error      *string           `json:"error,omitempty"       db:"error"`
}

// PayloadValue returns the payload entry for key, or "" when absent.
func (j *Job) PayloadValue(key string) string {
	if j == nil || j.Payload == nil {
		return ""
	}
	return j.Payload[key]
}

// CreateJobRequest represents a request to enqueue a new job. New jobs are always pending.
type CreateJobRequest struct {
	Type    JobType           `json:"type"`
	Payload map[string]string `json:"payload"`
}

// Validate validates the CreateJobRequest fields.
func (r *CreateJobRequest) Validate() error {
	if r == nil {
		return errors.New("job request is required")
	}
	if !r.Type.Valid() {
		return errors.New("invalid job type")
	}
	return nil
}

// NormalizedPayload returns a non-nil copy of the payload.
func (r *CreateJobRequest) NormalizedPayload() map[string]string {
	out := make(map[string]string, len(r.Payload))
	for k, v := range r.Payload {
		out[k] = v
	}
	return out
}

// FinalizeJobParams moves a processing job into a terminal status.
type FinalizeJobParams struct {
	ID     string
	Status JobStatus
	// Error is recorded only when Status is failed.
	Error string
}

// Validate ensures the target status is terminal.
func (p FinalizeJobParams) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("job id is required")
	}
	if !p.Status.IsTerminal() {
		return fmt.Errorf("finalize status must be done or failed, got %q", p.Status)
	}
	return nil
}

// ErrorValue returns the error text to persist, or nil for successful jobs.
func (p FinalizeJobParams) ErrorValue() *string {
	if p.Status != JobStatusFailed {
		return nil
	}
	msg := p.Error
	return &msg
}

// JobStats represents job counts per status.
type JobStats struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Done       int `json:"done"`
	Failed     int `json:"failed"`
}

// Total returns the number of jobs across all statuses.
func (s JobStats) Total() int {
	return s.Pending + s.Processing + s.Done + s.Failed
}
