package model

import (
	"errors"
	"strings"
)

// JobFilter narrows job lookups. Zero-valued fields are ignored.
type JobFilter struct {
	Type   *JobType
	Status *JobStatus
	// PayloadKey and PayloadValue match payload->>PayloadKey = PayloadValue.
	PayloadKey   string
	PayloadValue string
}

// JobListOptions groups parameters for listing jobs.
type JobListOptions struct {
	JobFilter

	Limit  int
	Offset int
}

// DedupKey identifies an existing job of Type whose payload carries PayloadKey = Value.
type DedupKey struct {
	Type       JobType
	PayloadKey string
	Value      string
}

// Validate ensures every component of the key is set.
func (k DedupKey) Validate() error {
	if !k.Type.Valid() {
		return errors.New("invalid job type")
	}
	if strings.TrimSpace(k.PayloadKey) == "" {
		return errors.New("payload key is required")
	}
	return nil
}

// Matches reports whether job satisfies the filter.
func (f *JobFilter) Matches(job *Job) bool {
	if f == nil {
		return true
	}
	if f.Type != nil && job.Type != *f.Type {
		return false
	}
	if f.Status != nil && job.Status != *f.Status {
		return false
	}
	if f.PayloadKey != "" {
		v, ok := job.Payload[f.PayloadKey]
		if !ok || v != f.PayloadValue {
			return false
		}
	}
	return true
}
