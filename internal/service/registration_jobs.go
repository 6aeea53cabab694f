package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/competitions-api/internal/core"
	"github.com/target/competitions-api/internal/domain/model"
)

// RegistrationJobsOptions groups dependencies for RegistrationJobs.
type RegistrationJobsOptions struct {
	Repos  RegistrationJobsRepos // Required
	Clock  Clock                 // Optional: defaults to the wall clock
	Logger *slog.Logger          // Optional: structured logger
}

// RegistrationJobsRepos lists the stores the registration handlers touch.
type RegistrationJobsRepos struct {
	Registrations core.RegistrationRepository
	Events        core.EventRepository
	Outbox        core.OutboxRepository
}

// RegistrationJobs implements the post_registration and send_reminder handlers.
// Each handler performs a point write and appends one outbox record.
type RegistrationJobs struct {
	registrations core.RegistrationRepository
	events        core.EventRepository
	outbox        core.OutboxRepository
	clock         Clock
	logger        *slog.Logger
}

// NewRegistrationJobs constructs a new RegistrationJobs.
func NewRegistrationJobs(opts RegistrationJobsOptions) (*RegistrationJobs, error) {
	switch {
	case opts.Repos.Registrations == nil:
		return nil, errors.New("RegistrationRepository is required")
	case opts.Repos.Events == nil:
		return nil, errors.New("EventRepository is required")
	case opts.Repos.Outbox == nil:
		return nil, errors.New("OutboxRepository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &RegistrationJobs{
		registrations: opts.Repos.Registrations,
		events:        opts.Repos.Events,
		outbox:        opts.Repos.Outbox,
		clock:         resolveClock(opts.Clock),
		logger:        logger.With("component", "registration_jobs"),
	}, nil
}

// Handlers returns the handler table for the dispatcher.
func (h *RegistrationJobs) Handlers() map[model.JobType]JobHandler {
	return map[model.JobType]JobHandler{
		model.JobTypePostRegistration: h.PostRegistration,
		model.JobTypeSendReminder:     h.SendReminder,
	}
}

type registrationPayload struct {
	registrationID string
	eventID        string
}

func parseRegistrationPayload(job *model.Job) (registrationPayload, error) {
	p := registrationPayload{
		registrationID: job.PayloadValue(model.PayloadKeyRegistrationID),
		eventID:        job.PayloadValue(model.PayloadKeyEventID),
	}
	if p.registrationID == "" || p.eventID == "" {
		return p, ErrInvalidJobPayload
	}
	return p, nil
}

// PostRegistration confirms the registration with a code derived from its id and
// queues the confirmation email.
func (h *RegistrationJobs) PostRegistration(ctx context.Context, job *model.Job) error {
	p, err := parseRegistrationPayload(job)
	if err != nil {
		return err
	}

	code := model.ConfirmationCode(p.registrationID)
	ok, err := h.registrations.Confirm(ctx, model.ConfirmRegistrationParams{
		ID:   p.registrationID,
		Code: code,
		At:   h.clock.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("confirm registration: %w", err)
	}
	if !ok {
		return model.ErrRegistrationNotFound
	}

	reg, err := h.registrations.GetByID(ctx, p.registrationID)
	if err != nil {
		return fmt.Errorf("reload registration: %w", err)
	}

	_, err = h.outbox.Append(ctx, &model.AppendOutboxRequest{
		Type:    model.OutboxTypeEmail,
		To:      reg.ParticipantEmail,
		Subject: "Registration confirmed",
		Body:    fmt.Sprintf("Your registration for event %s is confirmed. Code: %s", p.eventID, code),
	})
	if err != nil {
		return fmt.Errorf("append confirmation email: %w", err)
	}

	h.logger.DebugContext(ctx, "registration confirmed", "registration_id", p.registrationID, "code", code)
	return nil
}

// SendReminder queues a reminder for an upcoming event. Registrations cancelled
// after the job was queued are skipped without error.
func (h *RegistrationJobs) SendReminder(ctx context.Context, job *model.Job) error {
	p, err := parseRegistrationPayload(job)
	if err != nil {
		return err
	}

	reg, err := h.registrations.GetByID(ctx, p.registrationID)
	if err != nil {
		return fmt.Errorf("load registration: %w", err)
	}
	evt, err := h.events.GetByID(ctx, p.eventID)
	if err != nil {
		return fmt.Errorf("load event: %w", err)
	}

	if !reg.Active() {
		h.logger.InfoContext(ctx, "skipping reminder for cancelled registration", "registration_id", reg.ID)
		return nil
	}

	_, err = h.outbox.Append(ctx, &model.AppendOutboxRequest{
		Type:    model.OutboxTypeReminder,
		To:      reg.ParticipantEmail,
		Subject: fmt.Sprintf("Reminder: %s starts soon", evt.Title),
		Body:    reminderBody(evt, reg),
	})
	if err != nil {
		return fmt.Errorf("append reminder: %w", err)
	}
	return nil
}

func reminderBody(evt *model.Event, reg *model.Registration) string {
	start := "n/a"
	if evt.StartAt != nil {
		start = evt.StartAt.UTC().Format(time.RFC3339)
	}
	code := "n/a"
	if reg.ConfirmationCode != nil && *reg.ConfirmationCode != "" {
		code = *reg.ConfirmationCode
	}
	return fmt.Sprintf("Your event %s starts at %s. Code: %s", evt.Title, start, code)
}
