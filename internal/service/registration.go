package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/competitions-api/internal/core"
	"github.com/target/competitions-api/internal/domain/model"
	"github.com/target/competitions-api/internal/observability/metrics"
)

// RegistrationServiceOptions groups dependencies for RegistrationService.
type RegistrationServiceOptions struct {
	Repos  RegistrationServiceRepos
	Jobs   *JobService // Required: enqueues post_registration jobs
	Logger *slog.Logger
}

// RegistrationServiceRepos lists the stores RegistrationService uses.
type RegistrationServiceRepos struct {
	Events        core.EventRepository
	Registrations core.RegistrationRepository
}

// RegistrationService registers participants and queues their confirmation.
type RegistrationService struct {
	events        core.EventRepository
	registrations core.RegistrationRepository
	enroller      core.RegistrationEnroller
	jobs          *JobService
	logger        *slog.Logger
}

// NewRegistrationService constructs a new RegistrationService. When the registration
// store implements core.RegistrationEnroller, registration and job are written atomically.
func NewRegistrationService(opts RegistrationServiceOptions) (*RegistrationService, error) {
	switch {
	case opts.Repos.Events == nil:
		return nil, errors.New("EventRepository is required")
	case opts.Repos.Registrations == nil:
		return nil, errors.New("RegistrationRepository is required")
	case opts.Jobs == nil:
		return nil, errors.New("JobService is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enroller, _ := opts.Repos.Registrations.(core.RegistrationEnroller)
	return &RegistrationService{
		events:        opts.Repos.Events,
		registrations: opts.Repos.Registrations,
		enroller:      enroller,
		jobs:          opts.Jobs,
		logger:        logger.With("component", "registration_service"),
	}, nil
}

// Register creates a pending registration on an event and enqueues its post_registration job.
// It returns model.ErrEventNotFound or model.ErrEventAtCapacity when the event cannot take it.
func (s *RegistrationService) Register(
	ctx context.Context,
	req *model.CreateRegistrationRequest,
) (*model.RegistrationWithJob, error) {
	if _, err := s.events.GetByID(ctx, req.EventID); err != nil {
		return nil, err
	}

	var (
		out *model.RegistrationWithJob
		err error
	)
	if s.enroller != nil {
		out, err = s.enroller.Enroll(ctx, core.EnrollParams{
			Registration: req,
			JobType:      model.JobTypePostRegistration,
		})
		if err == nil {
			s.jobs.emit(out.Job.Type, metrics.TransitionEnqueue, nil)
		}
	} else {
		out, err = s.registerSequential(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "registration created",
		"registration_id", out.Registration.ID,
		"event_id", out.Registration.EventID,
		"job_id", out.Job.ID,
	)
	return out, nil
}

// registerSequential is used by stores without transactional enrollment. The capacity check
// and the two writes are not atomic: a crash between them leaves a registration without a job.
func (s *RegistrationService) registerSequential(
	ctx context.Context,
	req *model.CreateRegistrationRequest,
) (*model.RegistrationWithJob, error) {
	evt, err := s.events.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	active, err := s.registrations.CountActiveByEvent(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	if !evt.HasRoom(active) {
		return nil, model.ErrEventAtCapacity
	}

	reg, err := s.registrations.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create registration: %w", err)
	}

	job, err := s.jobs.Create(ctx, &model.CreateJobRequest{
		Type: model.JobTypePostRegistration,
		Payload: map[string]string{
			model.PayloadKeyRegistrationID: reg.ID,
			model.PayloadKeyEventID:        reg.EventID,
		},
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "registration stored without follow-up job",
			"registration_id", reg.ID, "error", err)
		return nil, err
	}
	return &model.RegistrationWithJob{Registration: reg, Job: job}, nil
}

// ListByEvent returns every registration of an existing event.
func (s *RegistrationService) ListByEvent(ctx context.Context, eventID string) ([]*model.Registration, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	regs, err := s.registrations.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}
