// Package memstore is an in-memory implementation of every repository port in core.
// All repositories returned by one Store share a single mutex, so multi-table
// operations such as Enroll are atomic. Intended for tests and STORE_DRIVER=memory.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/target/competitions-api/internal/core"
	"github.com/target/competitions-api/internal/data"
	"github.com/target/competitions-api/internal/domain/model"
)

var (
	_ core.JobRepository          = (*JobStore)(nil)
	_ core.ReaperRepository       = (*JobStore)(nil)
	_ core.OrganizerRepository    = (*OrganizerStore)(nil)
	_ core.EventRepository        = (*EventStore)(nil)
	_ core.RegistrationRepository = (*RegistrationStore)(nil)
	_ core.RegistrationEnroller   = (*RegistrationStore)(nil)
	_ core.OutboxRepository       = (*OutboxStore)(nil)
)

// Store holds all tables.
type Store struct {
	mu    sync.Mutex
	clock data.TimeProvider
	seq   uint64

	jobs          map[string]*jobEntry
	organizers    map[string]*model.Organizer
	events        map[string]*model.Event
	registrations map[string]*registrationEntry
	outbox        []*model.OutboxRecord
}

// jobEntry keeps the insertion sequence next to the job so FIFO order is stable
// even when two jobs share a created_at.
type jobEntry struct {
	seq uint64
	job *model.Job
}

type registrationEntry struct {
	seq uint64
	reg *model.Registration
}

// New returns an empty Store. A nil clock uses the wall clock.
func New(clock data.TimeProvider) *Store {
	if clock == nil {
		clock = &data.RealTimeProvider{}
	}
	return &Store{
		clock:         clock,
		jobs:          make(map[string]*jobEntry),
		organizers:    make(map[string]*model.Organizer),
		events:        make(map[string]*model.Event),
		registrations: make(map[string]*registrationEntry),
	}
}

// Jobs returns the job repository.
func (s *Store) Jobs() *JobStore { return &JobStore{s: s} }

// Organizers returns the organizer repository.
func (s *Store) Organizers() *OrganizerStore { return &OrganizerStore{s: s} }

// Events returns the event repository.
func (s *Store) Events() *EventStore { return &EventStore{s: s} }

// Registrations returns the registration repository.
func (s *Store) Registrations() *RegistrationStore { return &RegistrationStore{s: s} }

// Outbox returns the outbox repository.
func (s *Store) Outbox() *OutboxStore { return &OutboxStore{s: s} }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// now and nextSeq must be called with mu held.
func (s *Store) now() time.Time { return s.clock.Now().UTC() }

func (s *Store) nextSeq() uint64 {
	s.seq++
	return s.seq
}

// Same bounds as the Postgres repositories.
const (
	defaultListLimit = 50
	maxListLimit     = 1000
)

func page[T any](items []T, limit, offset int) []T {
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}

func sortBySeq[T any](items []T, seq func(T) uint64) {
	sort.Slice(items, func(i, j int) bool { return seq(items[i]) < seq(items[j]) })
}
