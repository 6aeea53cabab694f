package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/competitions-api/internal/domain/model"
	"github.com/target/competitions-api/internal/mocks"
	"github.com/target/competitions-api/internal/testutil"
)

func TestNewJobService_RequiresRepo(t *testing.T) {
	_, err := NewJobService(JobServiceOptions{})
	require.Error(t, err)
	assert.Panics(t, func() { MustNewJobService(JobServiceOptions{}) })
}

func TestJobService_ClaimNextEmptyQueue(t *testing.T) {
	f := newFixture(t)
	_, err := f.jobs.ClaimNext(context.Background())
	assert.ErrorIs(t, err, model.ErrNoJobsAvailable)
}

func TestJobService_CompleteOnlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	job, err := f.jobs.Create(ctx, testutil.NewJobRequest().Build())
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusPending, job.Status)

	claimed, err := f.jobs.ClaimNext(ctx)
	require.NoError(t, err)
	require.Equal(t, job.ID, claimed.ID)

	ok, err := f.jobs.Complete(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.jobs.Fail(ctx, job.ID, "late")
	require.NoError(t, err)
	assert.False(t, ok, "a done job must not be failed afterwards")

	got, err := f.jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusDone, got.Status)
	assert.Nil(t, got.Error)
}

func TestJobService_Requeue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	failed, err := f.jobs.Create(ctx, testutil.NewJobRequest().Build())
	require.NoError(t, err)
	_, err = f.jobs.ClaimNext(ctx)
	require.NoError(t, err)
	_, err = f.jobs.Fail(ctx, failed.ID, "boom")
	require.NoError(t, err)

	t.Run("failed job goes back to pending", func(t *testing.T) {
		require.NoError(t, f.jobs.Requeue(ctx, failed.ID))
		got, err := f.jobs.GetByID(ctx, failed.ID)
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusPending, got.Status)
		assert.Nil(t, got.Error)
		assert.Nil(t, got.FinishedAt)
	})

	t.Run("pending job is not requeueable", func(t *testing.T) {
		err := f.jobs.Requeue(ctx, failed.ID)
		assert.ErrorIs(t, err, ErrJobNotRequeueable)
	})

	t.Run("missing job", func(t *testing.T) {
		err := f.jobs.Requeue(ctx, "does-not-exist")
		assert.ErrorIs(t, err, model.ErrJobNotFound)
	})
}

func TestJobService_StatsAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for range 3 {
		_, err := f.jobs.Create(ctx, testutil.NewJobRequest().Build())
		require.NoError(t, err)
	}
	_, err := f.jobs.ClaimNext(ctx)
	require.NoError(t, err)

	stats, err := f.jobs.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 1, stats.Processing)
	assert.Equal(t, 3, stats.Total())

	pending := model.JobStatusPending
	jobs, err := f.jobs.List(ctx, &model.JobListOptions{JobFilter: model.JobFilter{Status: &pending}})
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	n, err := f.jobs.Count(ctx, &model.JobFilter{Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestJobService_CreateWrapsRepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockJobRepository(ctrl)
	boom := errors.New("db down")
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, boom)

	svc := MustNewJobService(JobServiceOptions{Repo: repo})
	_, err := svc.Create(context.Background(), testutil.NewJobRequest().Build())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "create job")
}
