package hardware

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 20 * time.Millisecond

// PinLocker hands out per-pin advisory locks backed by files in a directory.
type PinLocker struct {
	dir string
}

// NewPinLocker stores lock files under dir.
func NewPinLocker(dir string) *PinLocker {
	return &PinLocker{dir: dir}
}

// Lock blocks until the pin's lock is held or ctx is done. The returned
// function releases it.
func (l *PinLocker) Lock(ctx context.Context, pin int) (func(), error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	lock := flock.New(filepath.Join(l.dir, fmt.Sprintf("gpio-%d.lock", pin)))
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("lock gpio %d: %w", pin, err)
	}
	if !ok {
		return nil, fmt.Errorf("lock gpio %d: not acquired", pin)
	}
	return func() { _ = lock.Unlock() }, nil
}

// Serialized wraps a Trigger so pulses on the same pin never overlap.
type Serialized struct {
	next   Trigger
	locker *PinLocker
}

// NewSerialized returns next guarded by locker.
func NewSerialized(next Trigger, locker *PinLocker) *Serialized {
	return &Serialized{next: next, locker: locker}
}

// Trigger waits for the pin lock, then delegates.
func (s *Serialized) Trigger(ctx context.Context, pin int) (Result, error) {
	unlock, err := s.locker.Lock(ctx, pin)
	if err != nil {
		return Result{Pin: pin, Message: err.Error()}, err
	}
	defer unlock()
	return s.next.Trigger(ctx, pin)
}

// Close closes the wrapped trigger.
func (s *Serialized) Close() error {
	return s.next.Close()
}
