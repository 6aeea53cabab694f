package model

import (
	"errors"
	"strings"
	"time"
)

// RegistrationStatus represents the state of a participant's registration.
type RegistrationStatus string

const (
	// RegistrationStatusPending is the state right after sign-up.
	RegistrationStatusPending RegistrationStatus = "pending"
	// RegistrationStatusConfirmed is set by the post_registration job.
	RegistrationStatusConfirmed RegistrationStatus = "confirmed"
	// RegistrationStatusCancelled excludes the registration from capacity and reminders.
	RegistrationStatusCancelled RegistrationStatus = "cancelled"
)

const confirmationSuffixLength = 6

// Registration is a participant's sign-up for an event.
type Registration struct {
	ID               string             `json:"id"                          db:"id"`
	EventID          string             `json:"event_id"                    db:"event_id"`
	ParticipantName  string             `json:"participant_name"            db:"participant_name"`
	ParticipantEmail string             `json:"participant_email"           db:"participant_email"`
	Status           RegistrationStatus `json:"status"                      db:"status"`
	ConfirmationCode *string            `json:"confirmation_code,omitempty" db:"confirmation_code"`
	CreatedAt        time.Time          `json:"created_at"                  db:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"                  db:"updated_at"`
}

// Active reports whether the registration counts against capacity.
func (r *Registration) Active() bool {
	return r.Status != RegistrationStatusCancelled
}

// CreateRegistrationRequest represents a sign-up request for an event.
type CreateRegistrationRequest struct {
	EventID          string `json:"event_id"`
	ParticipantName  string `json:"participant_name"`
	ParticipantEmail string `json:"participant_email"`
}

// Validate validates the CreateRegistrationRequest fields.
func (r *CreateRegistrationRequest) Validate() error {
	if strings.TrimSpace(r.EventID) == "" {
		return errors.New("event_id is required")
	}
	if strings.TrimSpace(r.ParticipantName) == "" {
		return errors.New("participant_name is required")
	}
	if !strings.Contains(r.ParticipantEmail, "@") {
		return errors.New("valid participant_email is required")
	}
	return nil
}

// ConfirmRegistrationParams marks a registration confirmed with the given code.
type ConfirmRegistrationParams struct {
	ID   string
	Code string
	At   time.Time
}

// ConfirmationCode derives the deterministic confirmation code for a registration id:
// "CONF-" followed by the upper-cased last six characters (or the whole id when shorter).
func ConfirmationCode(registrationID string) string {
	suffix := []rune(registrationID)
	if len(suffix) > confirmationSuffixLength {
		suffix = suffix[len(suffix)-confirmationSuffixLength:]
	}
	return "CONF-" + strings.ToUpper(string(suffix))
}

// RegistrationWithJob is the result of enrolling a participant: the registration
// and the post_registration job queued for it.
type RegistrationWithJob struct {
	Registration *Registration
	Job          *Job
}
