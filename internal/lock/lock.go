// Package lock serializes balance operations per account across service
// instances.
package lock

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"account-service/internal/errors"
)

const (
	keyPrefix     = "account:lock:"
	retryInterval = 50 * time.Millisecond
)

// UnlockFunc releases a held lock. It is safe to call more than once.
type UnlockFunc func()

type Locker interface {
	// Lock blocks until the lock for key is held or the wait time runs out,
	// in which case it returns ACCOUNT_TRANSACTION_LOCK.
	Lock(ctx context.Context, key string) (UnlockFunc, error)
}

// unlockScript deletes the key only if it still holds our token, so an
// expired lock re-acquired by someone else is left alone.
var unlockScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client *goredis.Client
	wait   time.Duration
	lease  time.Duration
	logger *slog.Logger
}

// NewRedisLocker builds a locker that waits up to wait for a lock and holds it
// for at most lease.
func NewRedisLocker(client *goredis.Client, wait, lease time.Duration, logger *slog.Logger) *RedisLocker {
	return &RedisLocker{
		client: client,
		wait:   wait,
		lease:  lease,
		logger: logger,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (UnlockFunc, error) {
	redisKey := keyPrefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		acquired, err := l.client.SetNX(ctx, redisKey, token, l.lease).Result()
		if err != nil {
			return nil, errors.Internal("failed to acquire account lock", err)
		}
		if acquired {
			break
		}

		if time.Now().After(deadline) {
			l.logger.Warn("Account lock contention", "account_number", key)
			return nil, errors.ErrAccountTransactionLock
		}

		select {
		case <-ctx.Done():
			return nil, errors.ErrAccountTransactionLock.WithDetails(ctx.Err().Error())
		case <-time.After(retryInterval):
		}
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true

		// The caller's context may already be cancelled.
		unlockCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := unlockScript.Run(unlockCtx, l.client, []string{redisKey}, token).Err(); err != nil {
			l.logger.Error("Failed to release account lock", "account_number", key, "error", err)
		}
	}, nil
}

// Noop grants every lock immediately. Used when Redis is not configured.
type Noop struct{}

func (Noop) Lock(context.Context, string) (UnlockFunc, error) {
	return func() {}, nil
}
