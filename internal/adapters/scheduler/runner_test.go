package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/competitions-api/internal/mocks"
)

var fixedNow = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func TestRunner_TickOnceHoldsLock(t *testing.T) {
	ctrl := gomock.NewController(t)
	sched := mocks.NewMockJobScheduler(ctrl)
	lock := mocks.NewMockLockRepository(ctrl)

	r, err := NewRunner(RunnerOptions{Scheduler: sched, Lock: lock, LockTTL: time.Minute, Now: clock})
	require.NoError(t, err)

	gomock.InOrder(
		lock.EXPECT().TryAcquire(gomock.Any(), DefaultLockKey, r.owner, time.Minute).Return(true, nil),
		sched.EXPECT().Tick(gomock.Any(), fixedNow).Return(4, nil),
		lock.EXPECT().Release(gomock.Any(), DefaultLockKey, r.owner).Return(nil),
	)

	n, err := r.TickOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestRunner_TickOnceSkipsWhenLockHeld(t *testing.T) {
	ctrl := gomock.NewController(t)
	sched := mocks.NewMockJobScheduler(ctrl)
	lock := mocks.NewMockLockRepository(ctrl)

	lock.EXPECT().TryAcquire(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
	sched.EXPECT().Tick(gomock.Any(), gomock.Any()).Times(0)

	r, err := NewRunner(RunnerOptions{Scheduler: sched, Lock: lock})
	require.NoError(t, err)

	n, err := r.TickOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunner_TickOnceReleasesOnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	sched := mocks.NewMockJobScheduler(ctrl)
	lock := mocks.NewMockLockRepository(ctrl)
	boom := errors.New("db down")

	lock.EXPECT().TryAcquire(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	sched.EXPECT().Tick(gomock.Any(), gomock.Any()).Return(0, boom)
	lock.EXPECT().Release(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	r, err := NewRunner(RunnerOptions{Scheduler: sched, Lock: lock})
	require.NoError(t, err)

	_, err = r.TickOnce(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRunner_LockErrorSkipsTick(t *testing.T) {
	ctrl := gomock.NewController(t)
	sched := mocks.NewMockJobScheduler(ctrl)
	lock := mocks.NewMockLockRepository(ctrl)
	boom := errors.New("redis unreachable")

	lock.EXPECT().TryAcquire(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, boom)

	r, err := NewRunner(RunnerOptions{Scheduler: sched, Lock: lock})
	require.NoError(t, err)

	_, err = r.TickOnce(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRunner_RunWithoutLockTicksUntilCancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	sched := mocks.NewMockJobScheduler(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	ticks := 0
	sched.EXPECT().Tick(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, time.Time) (int, error) {
		ticks++
		if ticks == 3 {
			cancel()
		}
		return 1, nil
	}).Times(3)

	r, err := NewRunner(RunnerOptions{Scheduler: sched, Interval: 5 * time.Millisecond})
	require.NoError(t, err)

	require.NoError(t, r.Run(ctx))
	assert.Equal(t, 3, ticks)
}

func TestNewRunner_RequiresScheduler(t *testing.T) {
	_, err := NewRunner(RunnerOptions{})
	assert.Error(t, err)
}

func TestRunner_Guard(t *testing.T) {
	ctrl := gomock.NewController(t)
	sched := mocks.NewMockJobScheduler(ctrl)
	lock := mocks.NewMockLockRepository(ctrl)

	r, err := NewRunner(RunnerOptions{Scheduler: sched, Lock: lock})
	require.NoError(t, err)

	calls := 0
	fn := func(context.Context) error {
		calls++
		return nil
	}

	lock.EXPECT().TryAcquire(gomock.Any(), DefaultLockKey, r.owner, 5*time.Minute).Return(false, nil)
	ran, err := r.Guard(context.Background(), fn)
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Zero(t, calls)

	gomock.InOrder(
		lock.EXPECT().TryAcquire(gomock.Any(), DefaultLockKey, r.owner, 5*time.Minute).Return(true, nil),
		lock.EXPECT().Release(gomock.Any(), DefaultLockKey, r.owner).Return(nil),
	)
	ran, err = r.Guard(context.Background(), fn)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 1, calls)
}
