package core

import (
	"context"
	"time"
)

// JobScheduler is a periodic producer of jobs.
type JobScheduler interface {
	// Tick runs one pass at now and returns the number of jobs enqueued.
	Tick(ctx context.Context, now time.Time) (int, error)
}

// LockRepository provides best-effort distributed mutual exclusion with expiry.
type LockRepository interface {
	// TryAcquire takes key for owner when nobody holds it. It returns false when the key is held.
	TryAcquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	// Release drops key only when owner still holds it.
	Release(ctx context.Context, key, owner string) error
}
