package profile

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reloader watches a profile file and re-applies it on the next tick after
// it changes.
type Reloader struct {
	path   string
	target Target
	logger *slog.Logger

	mu      sync.Mutex
	pending *Profile
}

func NewReloader(path string, target Target, logger *slog.Logger) *Reloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reloader{path: path, target: target, logger: logger}
}

// Watch blocks until ctx is done, queueing a freshly loaded profile every
// time the file is written or replaced. The parent directory is watched so
// editors that save by rename are picked up.
func (r *Reloader) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		return err
	}
	want := filepath.Clean(r.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != want || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p, err := Load(r.path)
			if err != nil {
				r.logger.Warn("profile reload failed", "path", r.path, "error", err)
				continue
			}
			r.mu.Lock()
			r.pending = p
			r.mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("profile watcher error", "error", err)
		}
	}
}

// ApplyPending applies the most recent queued profile, if any.
func (r *Reloader) ApplyPending() bool {
	r.mu.Lock()
	p := r.pending
	r.pending = nil
	r.mu.Unlock()
	if p == nil {
		return false
	}
	if err := p.Apply(r.target); err != nil {
		r.logger.Warn("profile rejected", "path", r.path, "error", err)
		return false
	}
	r.logger.Info("profile reloaded", "path", r.path)
	return true
}

// Run applies queued profiles once per tick until ctx is done or ticks is
// closed.
func (r *Reloader) Run(ctx context.Context, ticks <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ticks:
			if !ok {
				return
			}
			r.ApplyPending()
		}
	}
}
