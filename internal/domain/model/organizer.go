package model

import (
	"errors"
	"strings"
	"time"
)

// Organizer owns events.
type Organizer struct {
	ID           string    `json:"id"                     db:"id"`
	Name         string    `json:"name"                   db:"name"`
	Email        string    `json:"email"                  db:"email"`
	Organization *string   `json:"organization,omitempty" db:"organization"`
	IsActive     bool      `json:"is_active"              db:"is_active"`
	CreatedAt    time.Time `json:"created_at"             db:"created_at"`
}

// CreateOrganizerRequest represents a request to create an organizer.
type CreateOrganizerRequest struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Organization *string `json:"organization,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

// Validate validates the CreateOrganizerRequest fields.
func (r *CreateOrganizerRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if !strings.Contains(r.Email, "@") {
		return errors.New("valid email is required")
	}
	return nil
}

// Active returns the requested active flag, defaulting to true.
func (r *CreateOrganizerRequest) Active() bool {
	if r.IsActive == nil {
		return true
	}
	return *r.IsActive
}
