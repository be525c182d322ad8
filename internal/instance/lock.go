// Package instance guards against two daemons driving the same UDP port.
package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

var ErrAlreadyRunning = errors.New("another padrelay instance is running")

// Lock is an exclusive advisory file lock.
type Lock struct {
	f *flock.Flock
}

// DefaultPath is the lock file used when none is configured.
func DefaultPath() string {
	return filepath.Join(os.TempDir(), "padrelay.lock")
}

// Acquire takes the lock at path without blocking. An empty path uses
// DefaultPath.
func Acquire(path string) (*Lock, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o770); err != nil {
		return nil, err
	}
	f := flock.New(path)
	ok, err := f.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock held on %s)", ErrAlreadyRunning, path)
	}
	return &Lock{f: f}, nil
}

func (l *Lock) Path() string { return l.f.Path() }

func (l *Lock) Release() error { return l.f.Unlock() }
