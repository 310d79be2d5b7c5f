package watcher

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FileWatcher = (*Watcher)(nil)

// DefaultWindow is how long a file must stay quiet before a change is reported.
const DefaultWindow = 200 * time.Millisecond

// Watcher implements ports.FileWatcher using fsnotify.
type Watcher struct {
	logger ports.Logger
	window time.Duration
}

// New creates a Watcher coalescing events over window. A zero window selects
// DefaultWindow.
func New(logger ports.Logger, window time.Duration) *Watcher {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Watcher{logger: logger, window: window}
}

// Watch reports writes, creations and renames of path until ctx is done.
// The parent directory is watched so that editors replacing the file are seen.
func (w *Watcher) Watch(ctx context.Context, path string, onChange func()) error {
	path = filepath.Clean(path)

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return zerr.Wrap(err, "failed to create file watcher")
	}
	defer func() { _ = fsWatcher.Close() }()

	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to watch directory"), "path", path)
	}

	debouncer := NewDebouncer(w.window, onChange)
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				debouncer.Trigger()
			}
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher: " + err.Error())
		}
	}
}
