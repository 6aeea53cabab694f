package memstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/target/competitions-api/internal/domain/model"
	apperrors "github.com/target/competitions-api/internal/errors"
)

// OutboxStore implements core.OutboxRepository.
type OutboxStore struct {
	s *Store
}

// Append adds a record. Records are never changed afterwards.
func (r *OutboxStore) Append(_ context.Context, req *model.AppendOutboxRequest) (*model.OutboxRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec := &model.OutboxRecord{
		ID:        uuid.NewString(),
		Type:      req.Type,
		To:        req.To,
		Subject:   req.Subject,
		Body:      req.Body,
		CreatedAt: r.s.now(),
	}
	r.s.outbox = append(r.s.outbox, rec)
	cp := *rec
	return &cp, nil
}

// List returns the most recent records first.
func (r *OutboxStore) List(_ context.Context, limit int) ([]*model.OutboxRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*model.OutboxRecord, 0, len(r.s.outbox))
	for i := len(r.s.outbox) - 1; i >= 0; i-- {
		cp := *r.s.outbox[i]
		out = append(out, &cp)
	}
	return page(out, limit, 0), nil
}
