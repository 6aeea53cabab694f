package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/target/competitions-api/internal/data"
	"github.com/target/competitions-api/internal/data/memstore"
	"github.com/target/competitions-api/internal/domain/model"
	"github.com/target/competitions-api/internal/observability/metrics"
	"github.com/target/competitions-api/internal/testutil"
)

var testNow = time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memstore.Store
	clock   *data.FixedTimeProvider
	metrics *metrics.Recorder
	jobs    *JobService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := data.NewFixedTimeProvider(testNow)
	store := memstore.New(clock)
	rec, err := metrics.NewRecorder("test", prometheus.NewRegistry())
	require.NoError(t, err)

	jobs, err := NewJobService(JobServiceOptions{Repo: store.Jobs(), Metrics: rec})
	require.NoError(t, err)
	return &fixture{store: store, clock: clock, metrics: rec, jobs: jobs}
}

func (f *fixture) organizer(t *testing.T) *model.Organizer {
	t.Helper()
	org, err := f.store.Organizers().Create(context.Background(), testutil.OrganizerRequest("Ada"))
	require.NoError(t, err)
	return org
}

// event seeds a published event starting at start. capacity <= 0 means unlimited.
func (f *fixture) event(t *testing.T, start time.Time, capacity int) *model.Event {
	t.Helper()
	b := testutil.NewEventRequest(f.organizer(t).ID).StartingAt(start)
	if capacity > 0 {
		b = b.WithCapacity(capacity)
	}
	evt, err := f.store.Events().Create(context.Background(), b.Build())
	require.NoError(t, err)
	return evt
}

func (f *fixture) registration(t *testing.T, evt *model.Event, name string) *model.Registration {
	t.Helper()
	reg, err := f.store.Registrations().Create(context.Background(), testutil.RegistrationRequest(evt.ID, name))
	require.NoError(t, err)
	return reg
}

func (f *fixture) dispatcher(t *testing.T) *JobDispatcher {
	t.Helper()
	handlers, err := NewRegistrationJobs(RegistrationJobsOptions{
		Repos: RegistrationJobsRepos{
			Registrations: f.store.Registrations(),
			Events:        f.store.Events(),
			Outbox:        f.store.Outbox(),
		},
		Clock: f.clock,
	})
	require.NoError(t, err)

	d, err := NewJobDispatcher(DispatcherOptions{Jobs: f.jobs, Handlers: handlers.Handlers(), Metrics: f.metrics})
	require.NoError(t, err)
	return d
}

// drain claims and dispatches until the queue is empty, returning the number of jobs run.
func (f *fixture) drain(t *testing.T, d *JobDispatcher) int {
	t.Helper()
	ctx := context.Background()
	n := 0
	for {
		job, err := f.jobs.ClaimNext(ctx)
		if err != nil {
			require.ErrorIs(t, err, model.ErrNoJobsAvailable)
			return n
		}
		require.NoError(t, d.Dispatch(ctx, job))
		n++
	}
}

func (f *fixture) outbox(t *testing.T) []*model.OutboxRecord {
	t.Helper()
	recs, err := f.store.Outbox().List(context.Background(), 100)
	require.NoError(t, err)
	return recs
}
