// Package watch re-runs an action when any of a fixed set of files changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last change before the
// action runs
const DefaultDebounce = 500 * time.Millisecond

// Action is run after changes settle
type Action func(ctx context.Context) error

// Watcher monitors files by watching their parent directories
type Watcher struct {
	files    map[string]bool
	watcher  *fsnotify.Watcher
	action   Action
	debounce time.Duration
	logger   *slog.Logger
}

// Option configures a Watcher
type Option func(*Watcher)

// WithDebounce sets the debounce interval
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a watcher for paths. Directories are watched rather than the
// files themselves so that editors replacing a file are still noticed.
func New(paths []string, action Action, opts ...Option) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, errors.New("no files to watch")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		files:    make(map[string]bool, len(paths)),
		watcher:  fw,
		action:   action,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}
	return w, nil
}

// Run blocks until ctx is cancelled, running the action once per settled
// burst of changes. Action errors are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	w.logger.Info("watching for changes", "files", len(w.files))
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("change detected", "file", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)

		case <-timer.C:
			if err := w.action(ctx); err != nil {
				w.logger.Error("run failed", "error", err)
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}
