package testutil

import (
	"time"

	"github.com/target/competitions-api/internal/domain/model"
)

// JobRequestBuilder builds CreateJobRequest values for tests.
type JobRequestBuilder struct {
	req *model.CreateJobRequest
}

// NewJobRequest starts a post_registration request with an empty payload.
func NewJobRequest() *JobRequestBuilder {
	return &JobRequestBuilder{
		req: &model.CreateJobRequest{
			Type:    model.JobTypePostRegistration,
			Payload: map[string]string{},
		},
	}
}

// WithType sets the job type.
func (b *JobRequestBuilder) WithType(jobType model.JobType) *JobRequestBuilder {
	b.req.Type = jobType
	return b
}

// WithPayload sets one payload entry.
func (b *JobRequestBuilder) WithPayload(key, value string) *JobRequestBuilder {
	b.req.Payload[key] = value
	return b
}

// ForRegistration fills the registration_id and event_id payload keys.
func (b *JobRequestBuilder) ForRegistration(registrationID, eventID string) *JobRequestBuilder {
	return b.WithPayload(model.PayloadKeyRegistrationID, registrationID).
		WithPayload(model.PayloadKeyEventID, eventID)
}

// Build returns the request.
func (b *JobRequestBuilder) Build() *model.CreateJobRequest {
	return b.req
}

// EventRequestBuilder builds CreateEventRequest values for tests.
type EventRequestBuilder struct {
	req *model.CreateEventRequest
}

// NewEventRequest starts a published event owned by organizerID.
func NewEventRequest(organizerID string) *EventRequestBuilder {
	return &EventRequestBuilder{
		req: &model.CreateEventRequest{
			OrganizerID: organizerID,
			Title:       "Spring Open",
			IsPublished: true,
		},
	}
}

// StartingAt sets start_at and an end two hours later.
func (b *EventRequestBuilder) StartingAt(start time.Time) *EventRequestBuilder {
	end := start.Add(2 * time.Hour)
	b.req.StartAt = &start
	b.req.EndAt = &end
	return b
}

// WithCapacity sets the capacity.
func (b *EventRequestBuilder) WithCapacity(capacity int) *EventRequestBuilder {
	b.req.Capacity = &capacity
	return b
}

// Unpublished clears is_published.
func (b *EventRequestBuilder) Unpublished() *EventRequestBuilder {
	b.req.IsPublished = false
	return b
}

// Build returns the request.
func (b *EventRequestBuilder) Build() *model.CreateEventRequest {
	return b.req
}

// OrganizerRequest returns a valid organizer request.
func OrganizerRequest(name string) *model.CreateOrganizerRequest {
	return &model.CreateOrganizerRequest{Name: name, Email: "organizer@example.com"}
}

// RegistrationRequest returns a valid registration request for eventID.
func RegistrationRequest(eventID, name string) *model.CreateRegistrationRequest {
	return &model.CreateRegistrationRequest{
		EventID:          eventID,
		ParticipantName:  name,
		ParticipantEmail: name + "@example.com",
	}
}
