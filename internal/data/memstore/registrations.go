package memstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/target/competitions-api/internal/core"
	"github.com/target/competitions-api/internal/domain/model"
	apperrors "github.com/target/competitions-api/internal/errors"
)

// RegistrationStore implements core.RegistrationRepository and core.RegistrationEnroller.
type RegistrationStore struct {
	s *Store
}

// Create stores a pending registration. The event must exist.
func (r *RegistrationStore) Create(_ context.Context, req *model.CreateRegistrationRequest) (*model.Registration, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.events[req.EventID]; !ok {
		return nil, apperrors.ForeignKey("Cannot complete operation because the referenced Event does not exist.")
	}
	return r.s.insertRegistrationLocked(req), nil
}

// Enroll re-checks capacity, stores the registration and queues its follow-up job under one lock.
func (r *RegistrationStore) Enroll(_ context.Context, params core.EnrollParams) (*model.RegistrationWithJob, error) {
	if params.Registration == nil {
		return nil, apperrors.Validation("registration is required")
	}
	if err := params.Registration.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	jobReq := &model.CreateJobRequest{Type: params.JobType}
	if err := jobReq.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	evt, ok := r.s.events[params.Registration.EventID]
	if !ok {
		return nil, model.ErrEventNotFound
	}
	if !evt.HasRoom(r.s.countActiveLocked(evt.ID)) {
		return nil, model.ErrEventAtCapacity
	}

	reg := r.s.insertRegistrationLocked(params.Registration)
	jobReq.Payload = map[string]string{
		model.PayloadKeyRegistrationID: reg.ID,
		model.PayloadKeyEventID:        reg.EventID,
	}
	job := r.s.insertJobLocked(jobReq)
	return &model.RegistrationWithJob{Registration: reg, Job: job}, nil
}

func (s *Store) insertRegistrationLocked(req *model.CreateRegistrationRequest) *model.Registration {
	now := s.now()
	reg := &model.Registration{
		ID:               uuid.NewString(),
		EventID:          req.EventID,
		ParticipantName:  req.ParticipantName,
		ParticipantEmail: req.ParticipantEmail,
		Status:           model.RegistrationStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	s.registrations[reg.ID] = &registrationEntry{seq: s.nextSeq(), reg: reg}
	return cloneRegistration(reg)
}

// GetByID returns a registration or model.ErrRegistrationNotFound.
func (r *RegistrationStore) GetByID(_ context.Context, id string) (*model.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.registrations[id]
	if !ok {
		return nil, model.ErrRegistrationNotFound
	}
	return cloneRegistration(e.reg), nil
}

// ListByEvent returns every registration of the event in creation order.
func (r *RegistrationStore) ListByEvent(_ context.Context, eventID string) ([]*model.Registration, error) {
	return r.list(eventID, false), nil
}

// ListActiveByEvent returns the event's registrations that are not cancelled.
func (r *RegistrationStore) ListActiveByEvent(_ context.Context, eventID string) ([]*model.Registration, error) {
	return r.list(eventID, true), nil
}

func (r *RegistrationStore) list(eventID string, activeOnly bool) []*model.Registration {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var entries []*registrationEntry
	for _, e := range r.s.registrations {
		if e.reg.EventID != eventID || (activeOnly && !e.reg.Active()) {
			continue
		}
		entries = append(entries, e)
	}
	sortBySeq(entries, func(e *registrationEntry) uint64 { return e.seq })

	out := make([]*model.Registration, 0, len(entries))
	for _, e := range entries {
		out = append(out, cloneRegistration(e.reg))
	}
	return out
}

// CountActiveByEvent counts the event's registrations that are not cancelled.
func (r *RegistrationStore) CountActiveByEvent(_ context.Context, eventID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.countActiveLocked(eventID), nil
}

func (s *Store) countActiveLocked(eventID string) int {
	n := 0
	for _, e := range s.registrations {
		if e.reg.EventID == eventID && e.reg.Active() {
			n++
		}
	}
	return n
}

// Confirm sets the confirmed status and code. It returns false when the registration is missing.
func (r *RegistrationStore) Confirm(_ context.Context, params model.ConfirmRegistrationParams) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.registrations[params.ID]
	if !ok {
		return false, nil
	}
	code := params.Code
	e.reg.Status = model.RegistrationStatusConfirmed
	e.reg.ConfirmationCode = &code
	e.reg.UpdatedAt = params.At.UTC()
	return true, nil
}

// Cancel marks a registration cancelled. Only used to set up fixtures; the API never cancels.
func (r *RegistrationStore) Cancel(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.registrations[id]
	if !ok {
		return false, nil
	}
	e.reg.Status = model.RegistrationStatusCancelled
	e.reg.UpdatedAt = r.s.now()
	return true, nil
}

func cloneRegistration(reg *model.Registration) *model.Registration {
	cp := *reg
	cp.ConfirmationCode = cloneString(reg.ConfirmationCode)
	return &cp
}
