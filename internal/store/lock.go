package store

import (
	"os"
	"path/filepath"
	"time"

	"github.com/ziadkadry99/commitfind/internal/errs"
)

// LockTTL is the age past which a lock file is treated as abandoned and
// released, per spec.md §3.
const LockTTL = 2 * time.Hour

// Lock is the advisory, per-project lock file. It is an empty sentinel file
// whose mtime encodes the lock's age.
type Lock struct {
	path string
}

// NewLock returns the Lock for this project's layout.
func NewLock(l Layout) *Lock { return &Lock{path: l.LockPath()} }

// Status reports whether the lock is currently held, and for how long.
func (l *Lock) Status() (held bool, elapsed time.Duration, err error) {
	info, statErr := os.Stat(l.path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return false, 0, nil
		}
		return false, 0, errs.Internal(statErr)
	}
	elapsed = time.Since(info.ModTime())
	if elapsed > LockTTL {
		return false, elapsed, nil
	}
	return true, elapsed, nil
}

// Acquire creates the lock file, failing with a Locked error if it is
// already held and not yet expired. A stale (TTL-expired) lock is silently
// reclaimed.
func (l *Lock) Acquire() error {
	held, elapsed, err := l.Status()
	if err != nil {
		return err
	}
	if held {
		return errs.Locked(elapsed)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return errs.Internal(err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return errs.Internal(err)
	}
	return f.Close()
}

// Release removes the lock file unconditionally. Safe to call when the
// lock is already absent.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return errs.Internal(err)
	}
	return nil
}
