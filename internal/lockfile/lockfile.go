// Package lockfile provides a cross-process exclusive lock held as an OS
// advisory lock on a file. The file is never removed; the kernel drops the
// lock when its holder closes it or dies, so a crashed session cannot leave
// the store locked.
package lockfile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"

	"github.com/julianstephens/innerlevel/internal/constants"
)

// ErrTimeout is returned when the lock could not be acquired in time
var ErrTimeout = errors.New("timed out waiting for store lock")

type Lock struct {
	fl *flock.Flock
}

// Acquire blocks until the lock at path is held or timeout elapses. The
// directory containing path must exist.
func Acquire(path string, timeout time.Duration) (*Lock, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fl := flock.New(path)
	locked, err := fl.TryLockContext(ctx, constants.LockRetryDelay)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrTimeout, path)
	}
	return &Lock{fl: fl}, nil
}

// Release unlocks. It only ever affects this holder's lock and may be
// called more than once.
func (l *Lock) Release() error {
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}
