package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/competitions-api/internal/domain/model"
	"github.com/target/competitions-api/internal/mocks"
	"github.com/target/competitions-api/internal/testutil"
)

func newRegistrationService(t *testing.T, f *fixture) *RegistrationService {
	t.Helper()
	svc, err := NewRegistrationService(RegistrationServiceOptions{
		Repos: RegistrationServiceRepos{Events: f.store.Events(), Registrations: f.store.Registrations()},
		Jobs:  f.jobs,
	})
	require.NoError(t, err)
	return svc
}

func TestRegistrationService_Register(t *testing.T) {
	f := newFixture(t)
	svc := newRegistrationService(t, f)
	ctx := context.Background()
	evt := f.event(t, testNow.Add(72*time.Hour), 0)

	out, err := svc.Register(ctx, testutil.RegistrationRequest(evt.ID, "ada"))
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationStatusPending, out.Registration.Status)
	assert.Nil(t, out.Registration.ConfirmationCode)

	assert.Equal(t, model.JobTypePostRegistration, out.Job.Type)
	assert.Equal(t, model.JobStatusPending, out.Job.Status)
	assert.Equal(t, out.Registration.ID, out.Job.PayloadValue(model.PayloadKeyRegistrationID))
	assert.Equal(t, evt.ID, out.Job.PayloadValue(model.PayloadKeyEventID))

	regs, err := svc.ListByEvent(ctx, evt.ID)
	require.NoError(t, err)
	require.Len(t, regs, 1)
}

func TestRegistrationService_UnknownEvent(t *testing.T) {
	f := newFixture(t)
	svc := newRegistrationService(t, f)

	_, err := svc.Register(context.Background(), testutil.RegistrationRequest("ghost", "ada"))
	assert.ErrorIs(t, err, model.ErrEventNotFound)

	_, err = svc.ListByEvent(context.Background(), "ghost")
	assert.ErrorIs(t, err, model.ErrEventNotFound)
}

func TestRegistrationService_Capacity(t *testing.T) {
	f := newFixture(t)
	svc := newRegistrationService(t, f)
	ctx := context.Background()
	evt := f.event(t, testNow.Add(72*time.Hour), 1)

	first, err := svc.Register(ctx, testutil.RegistrationRequest(evt.ID, "ada"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, testutil.RegistrationRequest(evt.ID, "bob"))
	require.ErrorIs(t, err, model.ErrEventAtCapacity)

	stats, err := f.jobs.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total(), "a rejected registration must not enqueue a job")

	// Cancelled registrations free their seat.
	_, err = f.store.Registrations().Cancel(ctx, first.Registration.ID)
	require.NoError(t, err)
	_, err = svc.Register(ctx, testutil.RegistrationRequest(evt.ID, "bob"))
	require.NoError(t, err)
}

func TestRegistrationService_ConcurrentRegistrationsNeverOverbook(t *testing.T) {
	f := newFixture(t)
	svc := newRegistrationService(t, f)
	ctx := context.Background()
	evt := f.event(t, testNow.Add(72*time.Hour), 5)

	var (
		wg       sync.WaitGroup
		accepted atomic.Int32
		rejected atomic.Int32
	)
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Register(ctx, testutil.RegistrationRequest(evt.ID, "p"+string(rune('a'+i))))
			switch {
			case err == nil:
				accepted.Add(1)
			case assert.ErrorIs(t, err, model.ErrEventAtCapacity):
				rejected.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 5, accepted.Load())
	assert.EqualValues(t, 15, rejected.Load())
	n, err := f.store.Registrations().CountActiveByEvent(ctx, evt.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestRegistrationService_SequentialPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	events := mocks.NewMockEventRepository(ctrl)
	regs := mocks.NewMockRegistrationRepository(ctrl)
	f := newFixture(t)

	svc, err := NewRegistrationService(RegistrationServiceOptions{
		Repos: RegistrationServiceRepos{Events: events, Registrations: regs},
		Jobs:  f.jobs,
	})
	require.NoError(t, err)
	require.Nil(t, svc.enroller)

	capacity := 2
	evt := &model.Event{ID: "e1", Title: "Cup", Capacity: &capacity}
	req := testutil.RegistrationRequest("e1", "ada")
	ctx := context.Background()

	t.Run("full event", func(t *testing.T) {
		events.EXPECT().GetByID(gomock.Any(), "e1").Return(evt, nil).Times(2)
		regs.EXPECT().CountActiveByEvent(gomock.Any(), "e1").Return(2, nil)

		_, err := svc.Register(ctx, req)
		assert.ErrorIs(t, err, model.ErrEventAtCapacity)
	})

	t.Run("room left", func(t *testing.T) {
		events.EXPECT().GetByID(gomock.Any(), "e1").Return(evt, nil).Times(2)
		regs.EXPECT().CountActiveByEvent(gomock.Any(), "e1").Return(1, nil)
		regs.EXPECT().Create(gomock.Any(), req).Return(&model.Registration{
			ID: "r1", EventID: "e1", Status: model.RegistrationStatusPending,
		}, nil)

		out, err := svc.Register(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "r1", out.Registration.ID)
		assert.Equal(t, "r1", out.Job.PayloadValue(model.PayloadKeyRegistrationID))
	})
}

func TestRegistrationService_EndToEnd(t *testing.T) {
	f := newFixture(t)
	svc := newRegistrationService(t, f)
	d := f.dispatcher(t)
	ctx := context.Background()
	evt := f.event(t, testNow.Add(72*time.Hour), 0)

	out, err := svc.Register(ctx, testutil.RegistrationRequest(evt.ID, "ada"))
	require.NoError(t, err)

	assert.Equal(t, 1, f.drain(t, d))

	reg, err := f.store.Registrations().GetByID(ctx, out.Registration.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationStatusConfirmed, reg.Status)

	job, err := f.jobs.GetByID(ctx, out.Job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusDone, job.Status)

	recs := f.outbox(t)
	require.Len(t, recs, 1)
	assert.Equal(t, "ada@example.com", recs[0].To)
}
