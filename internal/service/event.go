package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/target/competitions-api/internal/core"
	"github.com/target/competitions-api/internal/domain/model"
)

// EventServiceOptions groups dependencies for EventService.
type EventServiceOptions struct {
	Repos  EventServiceRepos
	Logger *slog.Logger
}

// EventServiceRepos lists the stores EventService reads and writes.
type EventServiceRepos struct {
	Events        core.EventRepository
	Organizers    core.OrganizerRepository
	Registrations core.RegistrationRepository
}

// EventService manages events.
type EventService struct {
	events        core.EventRepository
	organizers    core.OrganizerRepository
	registrations core.RegistrationRepository
	logger        *slog.Logger
}

// NewEventService constructs a new EventService.
func NewEventService(opts EventServiceOptions) (*EventService, error) {
	switch {
	case opts.Repos.Events == nil:
		return nil, errors.New("EventRepository is required")
	case opts.Repos.Organizers == nil:
		return nil, errors.New("OrganizerRepository is required")
	case opts.Repos.Registrations == nil:
		return nil, errors.New("RegistrationRepository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &EventService{
		events:        opts.Repos.Events,
		organizers:    opts.Repos.Organizers,
		registrations: opts.Repos.Registrations,
		logger:        logger.With("component", "event_service"),
	}, nil
}

// Create stores an event after checking that its organizer exists.
func (s *EventService) Create(ctx context.Context, req *model.CreateEventRequest) (*model.Event, error) {
	if _, err := s.organizers.GetByID(ctx, req.OrganizerID); err != nil {
		return nil, err
	}

	evt, err := s.events.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.logger.InfoContext(ctx, "event created", "id", evt.ID, "organizer_id", evt.OrganizerID)
	return evt, nil
}

// List returns events matching opts.
func (s *EventService) List(ctx context.Context, opts *model.EventListOptions) ([]*model.Event, error) {
	events, err := s.events.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// GetDetail returns the event with its count of non-cancelled registrations.
func (s *EventService) GetDetail(ctx context.Context, id string) (*model.EventDetail, error) {
	var (
		evt   *model.Event
		count int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		evt, err = s.events.GetByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = s.registrations.CountActiveByEvent(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &model.EventDetail{Event: *evt, Registrations: count}, nil
}
