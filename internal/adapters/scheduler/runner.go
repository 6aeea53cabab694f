// Package scheduler runs periodic job producers such as the reminder scanner.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/target/competitions-api/internal/core"
)

// DefaultLockKey guards the reminder scan across instances.
const DefaultLockKey = "competitions:reminder-scan"

// Runner ticks a JobScheduler on an interval, holding a distributed lock for each tick
// so that concurrent instances do not interleave.
type Runner struct {
	scheduler core.JobScheduler
	lock      core.LockRepository
	lockKey   string
	lockTTL   time.Duration
	owner     string
	interval  time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Scheduler core.JobScheduler   // Required
	Lock      core.LockRepository // Optional: nil runs every tick unguarded
	LockKey   string
	LockTTL   time.Duration
	Interval  time.Duration
	Now       func() time.Time
	Logger    *slog.Logger
}

// NewRunner creates a new scheduler runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Scheduler == nil {
		return nil, errors.New("scheduler is required")
	}
	r := &Runner{
		scheduler: opts.Scheduler,
		lock:      opts.Lock,
		lockKey:   opts.LockKey,
		lockTTL:   opts.LockTTL,
		interval:  opts.Interval,
		now:       opts.Now,
		logger:    opts.Logger,
	}
	if r.lock == nil {
		r.lock = noopLock{}
	}
	if r.lockKey == "" {
		r.lockKey = DefaultLockKey
	}
	if r.lockTTL <= 0 {
		r.lockTTL = 5 * time.Minute
	}
	if r.interval <= 0 {
		r.interval = time.Minute
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.logger = r.logger.With("component", "scheduler_runner")
	r.owner = lockOwner()
	return r, nil
}

func lockOwner() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return host + "/" + uuid.NewString()
}

// Run ticks immediately and then every interval until ctx is cancelled.
// Tick errors are logged and do not stop the loop. Cancellation returns nil.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting scheduler runner", "interval", r.interval, "lock_key", r.lockKey)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for ctx.Err() == nil {
		if _, err := r.TickOnce(ctx); err != nil && ctx.Err() == nil {
			r.logger.ErrorContext(ctx, "scheduler tick failed", "error", err)
		}

		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
	}
	r.logger.InfoContext(ctx, "scheduler runner stopping", "reason", ctx.Err())
	return nil
}

// TickOnce runs one guarded tick. It returns (0, nil) without ticking when another
// instance holds the lock.
func (r *Runner) TickOnce(ctx context.Context) (int, error) {
	var n int
	_, err := r.Guard(ctx, func(ctx context.Context) error {
		var err error
		n, err = r.scheduler.Tick(ctx, r.now())
		return err
	})
	if err != nil {
		return n, err
	}
	if n > 0 {
		r.logger.InfoContext(ctx, "scheduler enqueued jobs", "count", n)
	}
	return n, nil
}

// Guard runs fn while holding the scan lock. It reports false without calling fn
// when another instance holds the lock.
func (r *Runner) Guard(ctx context.Context, fn func(context.Context) error) (bool, error) {
	ok, err := r.lock.TryAcquire(ctx, r.lockKey, r.owner, r.lockTTL)
	if err != nil {
		return false, fmt.Errorf("acquire scan lock: %w", err)
	}
	if !ok {
		r.logger.DebugContext(ctx, "scan lock held elsewhere, skipping tick")
		return false, nil
	}
	defer func() {
		// Release with a fresh context so a cancelled tick still frees the key.
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if rerr := r.lock.Release(relCtx, r.lockKey, r.owner); rerr != nil {
			r.logger.WarnContext(ctx, "release scan lock failed", "error", rerr)
		}
	}()

	return true, fn(ctx)
}

type noopLock struct{}

func (noopLock) TryAcquire(context.Context, string, string, time.Duration) (bool, error) { return true, nil }
func (noopLock) Release(context.Context, string, string) error { return nil }
