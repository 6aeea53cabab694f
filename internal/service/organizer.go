package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/competitions-api/internal/core"
	"github.com/target/competitions-api/internal/domain/model"
)

// OrganizerServiceOptions groups dependencies for OrganizerService.
type OrganizerServiceOptions struct {
	Repo   core.OrganizerRepository // Required
	Logger *slog.Logger             // Optional
}

// OrganizerService manages organizers.
type OrganizerService struct {
	repo   core.OrganizerRepository
	logger *slog.Logger
}

// NewOrganizerService constructs a new OrganizerService.
func NewOrganizerService(opts OrganizerServiceOptions) (*OrganizerService, error) {
	if opts.Repo == nil {
		return nil, errors.New("OrganizerRepository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &OrganizerService{repo: opts.Repo, logger: logger.With("component", "organizer_service")}, nil
}

// Create stores a new organizer.
func (s *OrganizerService) Create(ctx context.Context, req *model.CreateOrganizerRequest) (*model.Organizer, error) {
	org, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create organizer: %w", err)
	}
	s.logger.InfoContext(ctx, "organizer created", "id", org.ID)
	return org, nil
}

// GetByID returns an organizer or model.ErrOrganizerNotFound.
func (s *OrganizerService) GetByID(ctx context.Context, id string) (*model.Organizer, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a page of organizers.
func (s *OrganizerService) List(ctx context.Context, limit, offset int) ([]*model.Organizer, error) {
	orgs, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list organizers: %w", err)
	}
	return orgs, nil
}
