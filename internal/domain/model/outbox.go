package model

import (
	"errors"
	"strings"
	"time"
)

// OutboxType tags the kind of notification an outbox record stands for.
type OutboxType string

const (
	// OutboxTypeEmail is written when a registration is confirmed.
	OutboxTypeEmail OutboxType = "email"
	// OutboxTypeReminder is written ahead of an event's start.
	OutboxTypeReminder OutboxType = "reminder"
)

// OutboxRecord is an append-only notification record. Records are never mutated.
type OutboxRecord struct {
	ID        string     `json:"id"         db:"id"`
	Type      OutboxType `json:"type"       db:"type"`
	To        string     `json:"to"         db:"recipient"`
	Subject   string     `json:"subject"    db:"subject"`
	Body      string     `json:"body"       db:"body"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// AppendOutboxRequest represents a new outbox record.
type AppendOutboxRequest struct {
	Type    OutboxType
	To      string
	Subject string
	Body    string
}

// Validate validates the AppendOutboxRequest fields.
func (r *AppendOutboxRequest) Validate() error {
	if strings.TrimSpace(string(r.Type)) == "" {
		return errors.New("outbox type is required")
	}
	if strings.TrimSpace(r.To) == "" {
		return errors.New("recipient is required")
	}
	return nil
}
