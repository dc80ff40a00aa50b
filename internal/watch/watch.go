// Package watch re-runs a callback whenever a changelog file changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// DefaultDebounce collapses the burst of events an editor save produces.
	DefaultDebounce = 150 * time.Millisecond
	// DefaultPollInterval is the backup poll for missed events.
	DefaultPollInterval = time.Second
)

// Watcher observes a single file. It watches the parent directory so that
// editors which save by renaming a temp file over the original are seen.
type Watcher struct {
	path         string
	watcher      *fsnotify.Watcher
	debounce     time.Duration
	pollInterval time.Duration
	onError      func(error)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a change is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithPollInterval sets the backup polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithErrorHandler receives watcher errors; they never stop the watch.
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// New creates a Watcher for path. The file does not need to exist yet.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		path:         abs,
		watcher:      fw,
		debounce:     DefaultDebounce,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run calls fn once immediately and again after every change to the file,
// until ctx is cancelled. Cancellation is not an error.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context)) error {
	fn(ctx)

	lastMod := w.modTime()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			if w.relevant(event) {
				pending = time.After(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			if w.onError != nil {
				w.onError(fmt.Errorf("watcher error: %w", err))
			}
		case <-ticker.C:
			// Poll as backup for missed events.
			if mod := w.modTime(); !mod.Equal(lastMod) {
				pending = time.After(w.debounce)
			}
		case <-pending:
			pending = nil
			lastMod = w.modTime()
			fn(ctx)
		}
	}
}

// relevant reports whether event concerns the watched file.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove)
}

// modTime returns the file's modification time, or zero if it is missing.
func (w *Watcher) modTime() time.Time {
	info, err := os.Stat(w.path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
