// Package runlock serializes runs per course with an advisory file lock.
package runlock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"ocwsync/internal/services"
	"ocwsync/internal/textutil"
)

// Lock is a held per-course lock.
type Lock struct {
	path string
	lock *flock.Flock
}

// Acquire takes <dir>/<slug>.lock without blocking, with the slug reduced to
// a filesystem-safe token. A lock held by another process fails with
// services.ErrLocked.
func Acquire(dir, slug string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	path := filepath.Join(dir, textutil.SanitizeToken(slug)+".lock")
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrLocked, "", "acquire lock", path, nil)
	}
	return &Lock{path: path, lock: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// Release unlocks. The lock file is left in place.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
