// Package watch reports changes to the set of pictures in a folder.
package watch

import (
	"context"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"azote/internal/backend"
	"azote/internal/config"
	"azote/internal/logging"
)

// Watcher polls a folder and, when the platform allows, also listens for
// filesystem events. Both feed one loop, so callbacks never overlap.
type Watcher struct {
	dir      string
	types    []string
	interval time.Duration
}

// New returns a watcher for the allowed files in dir.
func New(dir string, types []string, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Watcher{dir: dir, types: types, interval: interval}
}

// Names lists the allowed file names in dir, sorted.
func Names(dir string, types []string) ([]string, error) {
	paths, err := backend.GetWallpapers(dir, types, config.SortAZ)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	slices.Sort(names)
	return names, nil
}

// Run blocks until ctx is done, calling onChange with the new name set each
// time files are added, removed or renamed. Content-only changes are
// ignored.
func (w *Watcher) Run(ctx context.Context, onChange func(names []string)) error {
	current, err := Names(w.dir, w.types)
	if err != nil {
		return err
	}

	var events chan fsnotify.Event
	var errs chan error
	fsw, err := fsnotify.NewWatcher()
	if err == nil {
		defer fsw.Close()
		if err := fsw.Add(w.dir); err != nil {
			logging.Warn("Not watching %s for events: %v", w.dir, err)
		} else {
			events, errs = fsw.Events, fsw.Errors
		}
	} else {
		logging.Warn("fsnotify unavailable, polling only: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	check := func() {
		next, err := Names(w.dir, w.types)
		if err != nil {
			logging.Warn("Scan %s: %v", w.dir, err)
			return
		}
		if slices.Equal(current, next) {
			return
		}
		logging.Info("Folder %s changed: %d file(s)", w.dir, len(next))
		current = next
		onChange(next)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			check()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				check()
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logging.Debug("fsnotify: %v", err)
		}
	}
}
