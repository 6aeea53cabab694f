package httpx

import (
	"strings"
	"time"

	"github.com/target/competitions-api/internal/domain/model"
)

type createOrganizerBody struct {
	Name         string  `json:"name"                   validate:"required,max=200"`
	Email        string  `json:"email"                  validate:"required,email,max=320"`
	Organization *string `json:"organization,omitempty" validate:"omitempty,max=200"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

func (b *createOrganizerBody) toModel() *model.CreateOrganizerRequest {
	return &model.CreateOrganizerRequest{
		Name:         strings.TrimSpace(b.Name),
		Email:        strings.TrimSpace(b.Email),
		Organization: b.Organization,
		IsActive:     b.IsActive,
	}
}

type createEventBody struct {
	OrganizerID string     `json:"organizer_id"          validate:"required,uuid"`
	Title       string     `json:"title"                 validate:"required,max=200"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"    validate:"omitempty,max=200"`
	StartAt     *time.Time `json:"start_at,omitempty"`
	EndAt       *time.Time `json:"end_at,omitempty"`
	Capacity    *int       `json:"capacity,omitempty"    validate:"omitempty,min=1"`
	IsPublished bool       `json:"is_published"`
}

func (b *createEventBody) toModel() *model.CreateEventRequest {
	return &model.CreateEventRequest{
		OrganizerID: strings.ToLower(b.OrganizerID),
		Title:       strings.TrimSpace(b.Title),
		Description: b.Description,
		Location:    b.Location,
		StartAt:     b.StartAt,
		EndAt:       b.EndAt,
		Capacity:    b.Capacity,
		IsPublished: b.IsPublished,
	}
}

// createRegistrationBody takes the event id from the path.
type createRegistrationBody struct {
	ParticipantName  string `json:"participant_name"  validate:"required,max=200"`
	ParticipantEmail string `json:"participant_email" validate:"required,email,max=320"`
}

func (b *createRegistrationBody) toModel(eventID string) *model.CreateRegistrationRequest {
	return &model.CreateRegistrationRequest{
		EventID:          eventID,
		ParticipantName:  strings.TrimSpace(b.ParticipantName),
		ParticipantEmail: strings.TrimSpace(b.ParticipantEmail),
	}
}

// createJobBody has no status field: new jobs are always pending.
type createJobBody struct {
	Type    string            `json:"type"    validate:"required,max=64"`
	Payload map[string]string `json:"payload"`
}

func (b *createJobBody) toModel() *model.CreateJobRequest {
	return &model.CreateJobRequest{
		Type:    model.JobType(strings.TrimSpace(b.Type)),
		Payload: b.Payload,
	}
}
