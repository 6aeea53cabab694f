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

func newEventService(t *testing.T, f *fixture) *EventService {
	t.Helper()
	svc, err := NewEventService(EventServiceOptions{Repos: EventServiceRepos{
		Events:        f.store.Events(),
		Organizers:    f.store.Organizers(),
		Registrations: f.store.Registrations(),
	}})
	require.NoError(t, err)
	return svc
}

func TestOrganizerService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc, err := NewOrganizerService(OrganizerServiceOptions{Repo: f.store.Organizers()})
	require.NoError(t, err)

	created, err := svc.Create(ctx, testutil.OrganizerRequest("Chess Club"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chess Club", got.Name)

	list, err := svc.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.GetByID(ctx, "ghost")
	assert.ErrorIs(t, err, model.ErrOrganizerNotFound)

	_, err = NewOrganizerService(OrganizerServiceOptions{})
	assert.Error(t, err)
}

func TestEventService_CreateRequiresOrganizer(t *testing.T) {
	f := newFixture(t)
	svc := newEventService(t, f)

	_, err := svc.Create(context.Background(), testutil.NewEventRequest("ghost").Build())
	assert.ErrorIs(t, err, model.ErrOrganizerNotFound)

	evt, err := svc.Create(context.Background(), testutil.NewEventRequest(f.organizer(t).ID).WithCapacity(10).Build())
	require.NoError(t, err)
	assert.Equal(t, 10, *evt.Capacity)
	assert.True(t, evt.IsPublished)
}

func TestEventService_GetDetailCountsActiveRegistrations(t *testing.T) {
	f := newFixture(t)
	svc := newEventService(t, f)
	ctx := context.Background()

	evt := f.event(t, testNow.Add(time.Hour), 0)
	f.registration(t, evt, "a")
	f.registration(t, evt, "b")
	c := f.registration(t, evt, "c")
	_, err := f.store.Registrations().Cancel(ctx, c.ID)
	require.NoError(t, err)

	detail, err := svc.GetDetail(ctx, evt.ID)
	require.NoError(t, err)
	assert.Equal(t, evt.ID, detail.ID)
	assert.Equal(t, 2, detail.Registrations)

	_, err = svc.GetDetail(ctx, "ghost")
	assert.ErrorIs(t, err, model.ErrEventNotFound)
}

func TestEventService_ListFilters(t *testing.T) {
	f := newFixture(t)
	svc := newEventService(t, f)
	ctx := context.Background()

	published := f.event(t, testNow.Add(time.Hour), 0)
	_, err := f.store.Events().Create(ctx, testutil.NewEventRequest(published.OrganizerID).Unpublished().Build())
	require.NoError(t, err)

	all, err := svc.List(ctx, &model.EventListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	only := true
	pub, err := svc.List(ctx, &model.EventListOptions{Published: &only})
	require.NoError(t, err)
	require.Len(t, pub, 1)
	assert.Equal(t, published.ID, pub[0].ID)

	byOrg, err := svc.List(ctx, &model.EventListOptions{OrganizerID: &published.OrganizerID})
	require.NoError(t, err)
	assert.Len(t, byOrg, 2)
}
