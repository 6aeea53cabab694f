package service

import apperrors "github.com/target/competitions-api/internal/errors"

// ErrJobNotRequeueable is returned when requeue targets a job that is not failed.
var ErrJobNotRequeueable = apperrors.Conflict("only failed jobs can be requeued")

// ErrInvalidJobPayload is returned by handlers whose payload lacks a required key.
var ErrInvalidJobPayload = apperrors.Validation("missing registration_id or event_id in payload")
