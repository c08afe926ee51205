// Package locker is the Redis implementation of port/locker.Locker, used when
// several server instances share one Redis.
package locker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	portlocker "github.com/MustafaBasol/crm-sub007/internal/port/locker"
)

var _ portlocker.Locker = (*Locker)(nil)

const retryInterval = 250 * time.Millisecond

type Locker struct {
	client *redislock.Client
	ttl    time.Duration
}

// New wraps rdb. ttl bounds how long a crashed holder keeps the lock; a live
// holder refreshes it every ttl/2.
func New(rdb redis.UniversalClient, ttl time.Duration) *Locker {
	return &Locker{client: redislock.New(rdb), ttl: ttl}
}

func (l *Locker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	lock, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(retryInterval),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return fmt.Errorf("lock %q is held elsewhere: %w", key, err)
	}
	if err != nil {
		return fmt.Errorf("obtain redis lock %q: %w", key, err)
	}
	defer func() {
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			slog.Warn("failed to release redis lock", "key", key, "error", err)
		}
	}()

	done := make(chan struct{})
	defer close(done)
	go l.keepAlive(lock, key, done)

	return fn(ctx)
}

func (l *Locker) keepAlive(lock *redislock.Lock, key string, done <-chan struct{}) {
	ticker := time.NewTicker(l.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := lock.Refresh(context.Background(), l.ttl, nil); err != nil {
				slog.Warn("failed to refresh redis lock", "key", key, "error", err)
				return
			}
		}
	}
}
