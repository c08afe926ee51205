package locker

import "context"

// Locker serialises critical sections across processes. WithLock blocks until
// the lock is held or ctx is done, runs fn, then releases the lock.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}
