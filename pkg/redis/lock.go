package redis

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrLockHeld is returned when another holder currently owns the lock key.
var ErrLockHeld = errors.New("lock already held")

// releaseScript deletes the lock key only when the caller still owns it,
// so an expired lock reacquired by someone else is never released by us.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`

// Locker provides TTL-bounded advisory locks on top of a RedisClient.
type Locker interface {
	// Acquire takes the lock for key, returning a release function.
	// Returns ErrLockHeld if the key is currently locked by another holder.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error)
}

type locker struct {
	client RedisClient
}

// NewLocker creates a Locker backed by the given Redis client
func NewLocker(client RedisClient) Locker {
	return &locker{client: client}
}

func (l *locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	token := ulid.Make().String()

	ok, err := l.client.SetNX(ctx, key, token, ttl)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}

	release := func(ctx context.Context) error {
		_, err := l.client.Eval(ctx, releaseScript, []string{key}, token)
		return err
	}
	return release, nil
}
