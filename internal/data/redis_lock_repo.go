package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const minLockTTL = time.Second

// releaseLockScript deletes the key only if it still holds the caller's token.
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLockRepo implements core.LockRepository on Redis.
type RedisLockRepo struct {
	client redis.UniversalClient
}

// NewRedisLockRepo creates a new RedisLockRepo.
func NewRedisLockRepo(client redis.UniversalClient) *RedisLockRepo {
	return &RedisLockRepo{client: client}
}

// TryAcquire sets key to owner with SET NX and a TTL, so a crashed holder cannot keep the lock forever.
func (r *RedisLockRepo) TryAcquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	if key == "" || owner == "" {
		return false, errors.New("lock key and owner are required")
	}
	if ttl < minLockTTL {
		ttl = minLockTTL
	}

	// SETNX followed by EXPIRE is not atomic; SET with NX and TTL is.
	status, err := r.client.SetArgs(ctx, key, owner, redis.SetArgs{Mode: "NX", TTL: ttl}).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	return status == "OK", nil
}

// Release drops key when owner still holds it. Releasing a lock held by someone else is a no-op.
func (r *RedisLockRepo) Release(ctx context.Context, key, owner string) error {
	if err := releaseLockScript.Run(ctx, r.client, []string{key}, owner).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	return nil
}

// Ping checks the Redis connection.
func (r *RedisLockRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
