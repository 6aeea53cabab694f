package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/competitions-api/internal/domain/model"
	"github.com/target/competitions-api/internal/testutil"
)

func newRegistrationJobs(t *testing.T, f *fixture) *RegistrationJobs {
	t.Helper()
	h, err := NewRegistrationJobs(RegistrationJobsOptions{
		Repos: RegistrationJobsRepos{
			Registrations: f.store.Registrations(),
			Events:        f.store.Events(),
			Outbox:        f.store.Outbox(),
		},
		Clock: f.clock,
	})
	require.NoError(t, err)
	return h
}

func TestRegistrationJobs_PostRegistration(t *testing.T) {
	f := newFixture(t)
	h := newRegistrationJobs(t, f)
	ctx := context.Background()

	evt := f.event(t, testNow.Add(48*time.Hour), 0)
	reg := f.registration(t, evt, "ada")
	f.clock.AddTime(time.Minute)

	job := &model.Job{ID: "j1", Type: model.JobTypePostRegistration,
		Payload: testutil.NewJobRequest().ForRegistration(reg.ID, evt.ID).Build().Payload}
	require.NoError(t, h.PostRegistration(ctx, job))

	got, err := f.store.Registrations().GetByID(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationStatusConfirmed, got.Status)
	require.NotNil(t, got.ConfirmationCode)
	assert.Equal(t, model.ConfirmationCode(reg.ID), *got.ConfirmationCode)
	assert.Equal(t, testNow.Add(time.Minute), got.UpdatedAt)

	recs := f.outbox(t)
	require.Len(t, recs, 1)
	assert.Equal(t, model.OutboxTypeEmail, recs[0].Type)
	assert.Equal(t, "ada@example.com", recs[0].To)
	assert.Equal(t, "Registration confirmed", recs[0].Subject)
	assert.Equal(t,
		"Your registration for event "+evt.ID+" is confirmed. Code: "+*got.ConfirmationCode,
		recs[0].Body)
}

func TestRegistrationJobs_PayloadErrors(t *testing.T) {
	f := newFixture(t)
	h := newRegistrationJobs(t, f)
	ctx := context.Background()

	t.Run("missing keys", func(t *testing.T) {
		job := &model.Job{ID: "j", Type: model.JobTypePostRegistration, Payload: map[string]string{}}
		assert.ErrorIs(t, h.PostRegistration(ctx, job), ErrInvalidJobPayload)
		assert.ErrorIs(t, h.SendReminder(ctx, job), ErrInvalidJobPayload)
	})

	t.Run("unknown registration", func(t *testing.T) {
		job := &model.Job{ID: "j", Type: model.JobTypePostRegistration,
			Payload: testutil.NewJobRequest().ForRegistration("ghost", "evt").Build().Payload}
		assert.ErrorIs(t, h.PostRegistration(ctx, job), model.ErrRegistrationNotFound)
	})

	assert.Empty(t, f.outbox(t))
}

func TestRegistrationJobs_SendReminder(t *testing.T) {
	f := newFixture(t)
	h := newRegistrationJobs(t, f)
	ctx := context.Background()
	start := testNow.Add(24 * time.Hour)
	evt := f.event(t, start, 0)

	t.Run("pending registration without code", func(t *testing.T) {
		reg := f.registration(t, evt, "bea")
		job := &model.Job{Type: model.JobTypeSendReminder,
			Payload: testutil.NewJobRequest().ForRegistration(reg.ID, evt.ID).Build().Payload}
		require.NoError(t, h.SendReminder(ctx, job))

		recs := f.outbox(t)
		require.NotEmpty(t, recs)
		assert.Equal(t, model.OutboxTypeReminder, recs[0].Type)
		assert.Equal(t, "bea@example.com", recs[0].To)
		assert.Equal(t, "Reminder: Spring Open starts soon", recs[0].Subject)
		assert.Equal(t, "Your event Spring Open starts at "+start.Format(time.RFC3339)+". Code: n/a", recs[0].Body)
	})

	t.Run("cancelled registration is skipped", func(t *testing.T) {
		before := len(f.outbox(t))
		reg := f.registration(t, evt, "cal")
		_, err := f.store.Registrations().Cancel(ctx, reg.ID)
		require.NoError(t, err)

		job := &model.Job{Type: model.JobTypeSendReminder,
			Payload: testutil.NewJobRequest().ForRegistration(reg.ID, evt.ID).Build().Payload}
		require.NoError(t, h.SendReminder(ctx, job))
		assert.Len(t, f.outbox(t), before)
	})

	t.Run("missing event fails", func(t *testing.T) {
		reg := f.registration(t, evt, "dan")
		job := &model.Job{Type: model.JobTypeSendReminder,
			Payload: testutil.NewJobRequest().ForRegistration(reg.ID, "ghost").Build().Payload}
		assert.ErrorIs(t, h.SendReminder(ctx, job), model.ErrEventNotFound)
	})
}

func TestReminderBody_NoStart(t *testing.T) {
	code := "CONF-ABC123"
	body := reminderBody(&model.Event{Title: "Open"}, &model.Registration{ConfirmationCode: &code})
	assert.Equal(t, "Your event Open starts at n/a. Code: CONF-ABC123", body)
}

func TestNewRegistrationJobs_RequiresRepos(t *testing.T) {
	_, err := NewRegistrationJobs(RegistrationJobsOptions{})
	assert.Error(t, err)
}
