package library

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 100 * time.Millisecond

// Lock serializes mutating library operations across processes. Reads go
// lock-free; every command that writes store documents, assets, or the deck
// acquires the lock for its whole run.
type Lock struct {
	fl *flock.Flock
}

// NewLock builds the lock for a library layout. The lock file lives inside
// the root so relocating the library carries the lock with it.
func NewLock(paths Paths) *Lock {
	return &Lock{fl: flock.New(paths.LockFile())}
}

// Acquire blocks until the lock is held or the context ends. A second shapes
// process mutating the same library waits here rather than interleaving
// writes.
func (l *Lock) Acquire(ctx context.Context) error {
	ok, err := l.fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("library: acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("library: another shapes process holds the lock")
	}
	return nil
}

// TryAcquire attempts a non-blocking acquisition.
func (l *Lock) TryAcquire() (bool, error) {
	ok, err := l.fl.TryLock()
	if err != nil {
		return false, fmt.Errorf("library: acquire lock: %w", err)
	}
	return ok, nil
}

// Release drops the lock. Safe to call when not held.
func (l *Lock) Release() error {
	return l.fl.Unlock()
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.fl.Path()
}
