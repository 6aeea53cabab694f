package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/target/competitions-api/internal/domain/model"
	apperrors "github.com/target/competitions-api/internal/errors"
)

// OrganizerStore implements core.OrganizerRepository.
type OrganizerStore struct {
	s *Store
}

// Create stores an organizer.
func (r *OrganizerStore) Create(_ context.Context, req *model.CreateOrganizerRequest) (*model.Organizer, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o := &model.Organizer{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Organization: cloneString(req.Organization),
		IsActive:     req.Active(),
		CreatedAt:    r.s.now(),
	}
	r.s.organizers[o.ID] = o
	cp := *o
	return &cp, nil
}

// GetByID returns an organizer or model.ErrOrganizerNotFound.
func (r *OrganizerStore) GetByID(_ context.Context, id string) (*model.Organizer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.organizers[id]
	if !ok {
		return nil, model.ErrOrganizerNotFound
	}
	cp := *o
	return &cp, nil
}

// List returns organizers oldest first.
func (r *OrganizerStore) List(_ context.Context, limit, offset int) ([]*model.Organizer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	all := make([]*model.Organizer, 0, len(r.s.organizers))
	for _, o := range r.s.organizers {
		cp := *o
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	return page(all, limit, offset), nil
}

// EventStore implements core.EventRepository.
type EventStore struct {
	s *Store
}

// Create stores an event. The organizer must exist.
func (r *EventStore) Create(_ context.Context, req *model.CreateEventRequest) (*model.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.organizers[req.OrganizerID]; !ok {
		return nil, apperrors.ForeignKey("Cannot complete operation because the referenced Organizer does not exist.")
	}

	e := &model.Event{
		ID:          uuid.NewString(),
		OrganizerID: req.OrganizerID,
		Title:       req.Title,
		Description: cloneString(req.Description),
		Location:    cloneString(req.Location),
		StartAt:     utcPtr(req.StartAt),
		EndAt:       utcPtr(req.EndAt),
		Capacity:    cloneInt(req.Capacity),
		IsPublished: req.IsPublished,
		CreatedAt:   r.s.now(),
	}
	r.s.events[e.ID] = e
	return cloneEvent(e), nil
}

// GetByID returns an event or model.ErrEventNotFound.
func (r *EventStore) GetByID(_ context.Context, id string) (*model.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.events[id]
	if !ok {
		return nil, model.ErrEventNotFound
	}
	return cloneEvent(e), nil
}

// List returns events ordered by start_at with unscheduled events last.
func (r *EventStore) List(_ context.Context, opts *model.EventListOptions) ([]*model.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*model.Event
	for _, e := range r.s.events {
		if opts.Matches(e) {
			out = append(out, cloneEvent(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return eventLess(out[i], out[j]) })

	limit, offset := 0, 0
	if opts != nil {
		limit, offset = opts.Limit, opts.Offset
	}
	return page(out, limit, offset), nil
}

// ListPublishedStartingBetween returns published events with from <= start_at < to.
func (r *EventStore) ListPublishedStartingBetween(_ context.Context, from, to time.Time) ([]*model.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*model.Event
	for _, e := range r.s.events {
		if !e.IsPublished || e.StartAt == nil {
			continue
		}
		if e.StartAt.Before(from) || !e.StartAt.Before(to) {
			continue
		}
		out = append(out, cloneEvent(e))
	}
	sort.Slice(out, func(i, j int) bool { return eventLess(out[i], out[j]) })
	return out, nil
}

func eventLess(a, b *model.Event) bool {
	switch {
	case a.StartAt == nil && b.StartAt != nil:
		return false
	case a.StartAt != nil && b.StartAt == nil:
		return true
	case a.StartAt != nil && !a.StartAt.Equal(*b.StartAt):
		return a.StartAt.Before(*b.StartAt)
	case !a.CreatedAt.Equal(b.CreatedAt):
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func cloneEvent(e *model.Event) *model.Event {
	cp := *e
	cp.Description = cloneString(e.Description)
	cp.Location = cloneString(e.Location)
	cp.StartAt = utcPtr(e.StartAt)
	cp.EndAt = utcPtr(e.EndAt)
	cp.Capacity = cloneInt(e.Capacity)
	return &cp
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
