package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/competitions-api/internal/domain/model"
	"github.com/target/competitions-api/internal/mocks"
)

func newScanner(t *testing.T, f *fixture) *ReminderScanner {
	t.Helper()
	s, err := NewReminderScanner(ReminderScannerOptions{
		Repos: ReminderScannerRepos{
			Events:        f.store.Events(),
			Registrations: f.store.Registrations(),
			Jobs:          f.jobs,
		},
		Window:  24 * time.Hour,
		Metrics: f.metrics,
	})
	require.NoError(t, err)
	return s
}

func reminderJobs(t *testing.T, f *fixture) []*model.Job {
	t.Helper()
	typ := model.JobTypeSendReminder
	jobs, err := f.jobs.List(context.Background(), &model.JobListOptions{JobFilter: model.JobFilter{Type: &typ}})
	require.NoError(t, err)
	return jobs
}

func TestReminderScanner_WindowBounds(t *testing.T) {
	f := newFixture(t)
	s := newScanner(t, f)

	from, to := s.Window(testNow)
	assert.Equal(t, testNow.Add(24*time.Hour), from)
	assert.Equal(t, testNow.Add(25*time.Hour), to)

	inside := f.event(t, from, 0)
	edge := f.event(t, to.Add(-time.Nanosecond), 0)
	early := f.event(t, from.Add(-time.Nanosecond), 0)
	late := f.event(t, to, 0)
	for _, evt := range []*model.Event{inside, edge, early, late} {
		f.registration(t, evt, "p")
	}

	res, err := s.Scan(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Events)
	assert.Equal(t, 2, res.Enqueued)

	var eventIDs []string
	for _, j := range reminderJobs(t, f) {
		eventIDs = append(eventIDs, j.PayloadValue(model.PayloadKeyEventID))
	}
	assert.ElementsMatch(t, []string{inside.ID, edge.ID}, eventIDs)
}

func TestReminderScanner_SkipsUnpublishedAndCancelled(t *testing.T) {
	f := newFixture(t)
	s := newScanner(t, f)
	ctx := context.Background()
	start := testNow.Add(24*time.Hour + 30*time.Minute)

	draft, err := f.store.Events().Create(ctx, &model.CreateEventRequest{
		OrganizerID: f.organizer(t).ID, Title: "Draft", StartAt: &start,
	})
	require.NoError(t, err)
	f.registration(t, draft, "x")

	evt := f.event(t, start, 0)
	keep := f.registration(t, evt, "keep")
	gone := f.registration(t, evt, "gone")
	_, err = f.store.Registrations().Cancel(ctx, gone.ID)
	require.NoError(t, err)

	res, err := s.Scan(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Events)
	assert.Equal(t, 1, res.Enqueued)

	jobs := reminderJobs(t, f)
	require.Len(t, jobs, 1)
	assert.Equal(t, keep.ID, jobs[0].PayloadValue(model.PayloadKeyRegistrationID))
}

func TestReminderScanner_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	s := newScanner(t, f)
	ctx := context.Background()

	evt := f.event(t, testNow.Add(24*time.Hour+10*time.Minute), 0)
	for _, name := range []string{"a", "b", "c"} {
		f.registration(t, evt, name)
	}

	first, err := s.Scan(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Enqueued)

	// Ten minutes later the event is still inside the window.
	second, err := s.Scan(ctx, testNow.Add(5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, second.Enqueued)
	assert.Equal(t, 3, second.Deduped)
	assert.Len(t, reminderJobs(t, f), 3)

	n, err := s.Tick(ctx, testNow.Add(6*time.Minute))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReminderScanner_FailedReminderIsNotRetried(t *testing.T) {
	f := newFixture(t)
	s := newScanner(t, f)
	ctx := context.Background()

	evt := f.event(t, testNow.Add(24*time.Hour+10*time.Minute), 0)
	f.registration(t, evt, "a")

	_, err := s.Scan(ctx, testNow)
	require.NoError(t, err)
	job, err := f.jobs.ClaimNext(ctx)
	require.NoError(t, err)
	_, err = f.jobs.Fail(ctx, job.ID, "smtp down")
	require.NoError(t, err)

	res, err := s.Scan(ctx, testNow.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Enqueued)
	assert.Equal(t, 1, res.Deduped)
}

func TestReminderScanner_PropagatesStoreErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	events := mocks.NewMockEventRepository(ctrl)
	regs := mocks.NewMockRegistrationRepository(ctrl)
	f := newFixture(t)

	s, err := NewReminderScanner(ReminderScannerOptions{
		Repos: ReminderScannerRepos{Events: events, Registrations: regs, Jobs: f.jobs},
	})
	require.NoError(t, err)

	from, to := s.Window(testNow)
	boom := errors.New("timeout")
	events.EXPECT().ListPublishedStartingBetween(gomock.Any(), from, to).
		Return([]*model.Event{{ID: "e1"}}, nil)
	regs.EXPECT().ListActiveByEvent(gomock.Any(), "e1").Return(nil, boom)

	_, err = s.Scan(context.Background(), testNow)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "event e1")
}

func TestNewReminderScanner_Defaults(t *testing.T) {
	f := newFixture(t)
	s, err := NewReminderScanner(ReminderScannerOptions{
		Repos:  ReminderScannerRepos{Events: f.store.Events(), Registrations: f.store.Registrations(), Jobs: f.jobs},
		Window: -time.Hour,
	})
	require.NoError(t, err)
	from, _ := s.Window(testNow)
	assert.Equal(t, testNow.Add(DefaultReminderWindow), from)

	_, err = NewReminderScanner(ReminderScannerOptions{})
	assert.Error(t, err)
}
