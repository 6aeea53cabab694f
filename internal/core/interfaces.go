// Package core declares the ports between the service layer and the storage adapters.
package core

import (
	"context"
	"database/sql"
	"time"

	"github.com/target/competitions-api/internal/domain/model"
)

// JobRepository is the job store. Every method is atomic with respect to concurrent callers.
type JobRepository interface {
	Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error)
	GetByID(ctx context.Context, id string) (*model.Job, error)
	// ClaimNext moves the oldest pending job to processing and returns it.
	// It returns model.ErrNoJobsAvailable when nothing is pending.
	ClaimNext(ctx context.Context) (*model.Job, error)
	// Finalize moves a processing job to done or failed. It returns false when
	// no processing job with that id exists.
	Finalize(ctx context.Context, params model.FinalizeJobParams) (bool, error)
	// ExistsForDedup reports whether any job (any status) matches the key.
	ExistsForDedup(ctx context.Context, key model.DedupKey) (bool, error)
	List(ctx context.Context, opts *model.JobListOptions) ([]*model.Job, error)
	Count(ctx context.Context, filter *model.JobFilter) (int, error)
	Stats(ctx context.Context) (*model.JobStats, error)
	// Requeue resets a failed job to pending. Operator use only.
	Requeue(ctx context.Context, id string) (bool, error)
}

// JobRepositoryTx defines optional transactional job creation support.
type JobRepositoryTx interface {
	CreateInTx(ctx context.Context, tx *sql.Tx, req *model.CreateJobRequest) (*model.Job, error)
}

// DeleteOldJobsParams groups parameters for deleting terminal jobs past retention.
type DeleteOldJobsParams struct {
	Status    model.JobStatus
	OlderThan time.Duration
	BatchSize int
}

// FailStaleJobsParams groups parameters for timing out stuck processing jobs.
type FailStaleJobsParams struct {
	OlderThan time.Duration
	BatchSize int
	Message   string
}

// ReaperRepository is implemented by job stores that support retention cleanup.
type ReaperRepository interface {
	// DeleteOldJobs removes up to BatchSize jobs in Status whose finished_at is older than OlderThan.
	DeleteOldJobs(ctx context.Context, params DeleteOldJobsParams) (int64, error)
	// FailStaleProcessingJobs marks up to BatchSize processing jobs started before OlderThan as failed.
	FailStaleProcessingJobs(ctx context.Context, params FailStaleJobsParams) (int64, error)
}

// OrganizerRepository defines organizer persistence.
type OrganizerRepository interface {
	Create(ctx context.Context, req *model.CreateOrganizerRequest) (*model.Organizer, error)
	GetByID(ctx context.Context, id string) (*model.Organizer, error)
	List(ctx context.Context, limit, offset int) ([]*model.Organizer, error)
}

// EventRepository defines event persistence.
type EventRepository interface {
	Create(ctx context.Context, req *model.CreateEventRequest) (*model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context, opts *model.EventListOptions) ([]*model.Event, error)
	// ListPublishedStartingBetween returns published events with from <= start_at < to.
	ListPublishedStartingBetween(ctx context.Context, from, to time.Time) ([]*model.Event, error)
}

// RegistrationRepository defines registration persistence.
type RegistrationRepository interface {
	Create(ctx context.Context, req *model.CreateRegistrationRequest) (*model.Registration, error)
	GetByID(ctx context.Context, id string) (*model.Registration, error)
	ListByEvent(ctx context.Context, eventID string) ([]*model.Registration, error)
	// ListActiveByEvent returns registrations whose status is not cancelled.
	ListActiveByEvent(ctx context.Context, eventID string) ([]*model.Registration, error)
	CountActiveByEvent(ctx context.Context, eventID string) (int, error)
	// Confirm sets status=confirmed, the confirmation code and updated_at.
	// It returns false when the registration does not exist.
	Confirm(ctx context.Context, params model.ConfirmRegistrationParams) (bool, error)
}

// EnrollParams describes a registration together with the follow-up job to queue for it.
type EnrollParams struct {
	Registration *model.CreateRegistrationRequest
	JobType      model.JobType
}

// RegistrationEnroller is implemented by stores that can create a registration and
// its follow-up job atomically, re-checking event capacity under a lock.
type RegistrationEnroller interface {
	Enroll(ctx context.Context, params EnrollParams) (*model.RegistrationWithJob, error)
}

// OutboxRepository is the append-only notification log.
type OutboxRepository interface {
	Append(ctx context.Context, req *model.AppendOutboxRequest) (*model.OutboxRecord, error)
	List(ctx context.Context, limit int) ([]*model.OutboxRecord, error)
}
