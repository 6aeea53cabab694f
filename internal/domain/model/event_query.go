package model

// EventListOptions groups parameters for listing events.
type EventListOptions struct {
	OrganizerID *string // Optional filter by organizer
	Published   *bool   // Optional filter by is_published
	Limit       int
	Offset      int
}

// Matches reports whether e satisfies the filter part of the options.
func (o *EventListOptions) Matches(e *Event) bool {
	if o == nil {
		return true
	}
	if o.OrganizerID != nil && e.OrganizerID != *o.OrganizerID {
		return false
	}
	if o.Published != nil && e.IsPublished != *o.Published {
		return false
	}
	return true
}
