package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/competitions-api/config"
	"github.com/target/competitions-api/internal/core"
	"github.com/target/competitions-api/internal/domain/model"
	"github.com/target/competitions-api/internal/mocks"
	"github.com/target/competitions-api/internal/testutil"
)

func TestReaperService_DrainsBatchesAndSkipsDisabledSteps(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockReaperRepository(ctrl)

	done := core.DeleteOldJobsParams{Status: model.JobStatusDone, OlderThan: 24 * time.Hour, BatchSize: 2}
	failed := core.DeleteOldJobsParams{Status: model.JobStatusFailed, OlderThan: 48 * time.Hour, BatchSize: 2}
	gomock.InOrder(
		repo.EXPECT().DeleteOldJobs(gomock.Any(), done).Return(int64(2), nil),
		repo.EXPECT().DeleteOldJobs(gomock.Any(), done).Return(int64(1), nil),
		repo.EXPECT().DeleteOldJobs(gomock.Any(), done).Return(int64(0), nil),
		repo.EXPECT().DeleteOldJobs(gomock.Any(), failed).Return(int64(0), nil),
	)
	// ProcessingMaxAge is 0: FailStaleProcessingJobs must not be called.

	svc, err := NewReaperService(ReaperServiceOptions{
		Repo: repo,
		Config: config.ReaperConfig{
			DoneMaxAge:   24 * time.Hour,
			FailedMaxAge: 48 * time.Hour,
			BatchSize:    2,
		},
	})
	require.NoError(t, err)

	res, err := svc.CleanupOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReaperResult{DeletedDone: 3}, res)
	assert.EqualValues(t, 3, res.Total())
}

func TestReaperService_StepFailureDoesNotStopOthers(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockReaperRepository(ctrl)
	boom := errors.New("lock timeout")

	repo.EXPECT().DeleteOldJobs(gomock.Any(), gomock.Any()).Return(int64(0), boom)
	repo.EXPECT().FailStaleProcessingJobs(gomock.Any(), core.FailStaleJobsParams{
		OlderThan: time.Hour, BatchSize: 1000, Message: "processing timed out",
	}).Return(int64(0), nil)

	svc := MustNewReaperService(ReaperServiceOptions{
		Repo:   repo,
		Config: config.ReaperConfig{DoneMaxAge: time.Hour, ProcessingMaxAge: time.Hour},
	})

	_, err := svc.CleanupOnce(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), ReaperStepDeleteDone)
}

func TestReaperService_AgainstMemoryStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	finish := func(status model.JobStatus) *model.Job {
		job := claimOne(t, f, testutil.NewJobRequest().Build())
		ok, err := f.store.Jobs().Finalize(ctx, model.FinalizeJobParams{ID: job.ID, Status: status, Error: "x"})
		require.NoError(t, err)
		require.True(t, ok)
		return job
	}
	oldDone := finish(model.JobStatusDone)
	oldFailed := finish(model.JobStatusFailed)
	stuck := claimOne(t, f, testutil.NewJobRequest().Build())

	f.clock.AddTime(3 * time.Hour)
	freshDone := finish(model.JobStatusDone)
	pending, err := f.jobs.Create(ctx, testutil.NewJobRequest().Build())
	require.NoError(t, err)

	svc := MustNewReaperService(ReaperServiceOptions{
		Repo: f.store.Jobs(),
		Config: config.ReaperConfig{
			DoneMaxAge:       time.Hour,
			FailedMaxAge:     time.Hour,
			ProcessingMaxAge: time.Hour,
			BatchSize:        1,
		},
		Metrics: f.metrics,
	})

	res, err := svc.CleanupOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReaperResult{DeletedDone: 1, DeletedFailed: 1, TimedOut: 1}, res)

	for _, id := range []string{oldDone.ID, oldFailed.ID} {
		_, err := f.jobs.GetByID(ctx, id)
		assert.ErrorIs(t, err, model.ErrJobNotFound)
	}
	for _, id := range []string{freshDone.ID, pending.ID} {
		_, err := f.jobs.GetByID(ctx, id)
		assert.NoError(t, err)
	}

	got, err := f.jobs.GetByID(ctx, stuck.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, got.Status)
	assert.Equal(t, "processing timed out", *got.Error)
}

func TestReaperService_RunStopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockReaperRepository(ctrl)
	repo.EXPECT().DeleteOldJobs(gomock.Any(), gomock.Any()).Return(int64(0), nil).AnyTimes()

	svc := MustNewReaperService(ReaperServiceOptions{
		Repo:   repo,
		Config: config.ReaperConfig{Interval: time.Hour, DoneMaxAge: time.Hour},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, svc.Run(ctx))
}

func TestJitterBounds(t *testing.T) {
	assert.Zero(t, jitter(0))
	for range 100 {
		d := jitter(time.Second)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.Less(t, d, time.Second)
	}
}

func TestNewReaperService_RequiresRepo(t *testing.T) {
	_, err := NewReaperService(ReaperServiceOptions{})
	assert.Error(t, err)
	assert.Panics(t, func() { MustNewReaperService(ReaperServiceOptions{}) })
}
