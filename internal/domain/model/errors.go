package model

import apperrors "github.com/target/competitions-api/internal/errors"

// Lookup and business-rule failures shared by every store implementation.
var (
	ErrJobNotFound          = apperrors.NotFound("job not found")
	ErrOrganizerNotFound    = apperrors.NotFound("organizer not found")
	ErrEventNotFound        = apperrors.NotFound("event not found")
	ErrRegistrationNotFound = apperrors.NotFound("registration not found")
	ErrEventAtCapacity      = apperrors.Conflict("event at capacity")
)
