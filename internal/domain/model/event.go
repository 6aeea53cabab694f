package model

import (
	"errors"
	"strings"
	"time"
)

// Event is a competition organised by an Organizer.
type Event struct {
	ID          string     `json:"id"                    db:"id"`
	OrganizerID string     `json:"organizer_id"          db:"organizer_id"`
	Title       string     `json:"title"                 db:"title"`
	Description *string    `json:"description,omitempty" db:"description"`
	Location    *string    `json:"location,omitempty"    db:"location"`
	StartAt     *time.Time `json:"start_at,omitempty"    db:"start_at"`
	EndAt       *time.Time `json:"end_at,omitempty"      db:"end_at"`
	Capacity    *int       `json:"capacity,omitempty"    db:"capacity"`
	IsPublished bool       `json:"is_published"          db:"is_published"`
	CreatedAt   time.Time  `json:"created_at"            db:"created_at"`
}

// HasRoom reports whether another registration fits given the current active count.
func (e *Event) HasRoom(active int) bool {
	if e.Capacity == nil {
		return true
	}
	return active < *e.Capacity
}

// EventDetail is an event together with its non-cancelled registration count.
type EventDetail struct {
	Event

	Registrations int `json:"registrations"`
}

// CreateEventRequest represents a request to create an event.
type CreateEventRequest struct {
	OrganizerID string     `json:"organizer_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	StartAt     *time.Time `json:"start_at,omitempty"`
	EndAt       *time.Time `json:"end_at,omitempty"`
	Capacity    *int       `json:"capacity,omitempty"`
	IsPublished bool       `json:"is_published"`
}

// Validate validates the CreateEventRequest fields.
func (r *CreateEventRequest) Validate() error {
	if strings.TrimSpace(r.OrganizerID) == "" {
		return errors.New("organizer_id is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required")
	}
	if r.Capacity != nil && *r.Capacity < 1 {
		return errors.New("capacity must be >= 1")
	}
	if r.StartAt != nil && r.EndAt != nil && r.EndAt.Before(*r.StartAt) {
		return errors.New("end_at must not be before start_at")
	}
	return nil
}
