// Package watch reports changes to the flags directory.
//
// Editors often save a file as several filesystem events (truncate, write,
// chmod, or write-to-temp plus rename). Events are debounced so a burst
// produces a single callback once the directory has been quiet for the
// debounce interval.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/jpl-au/flagsync/internal/errs"
	"github.com/jpl-au/flagsync/internal/path"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 200 * time.Millisecond

// Watcher calls a function when flag files in a directory change.
type Watcher struct {
	Dir      path.Safe
	Debounce time.Duration
	Ext      string // Only names with this extension trigger; empty matches all
}

// Run blocks until ctx is cancelled, calling onChange after each burst of
// relevant events. Errors returned by onChange are logged and watching
// continues. The returned error is nil on cancellation.
func (w Watcher) Run(ctx context.Context, onChange func(ctx context.Context) error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errs.FileSystem(errs.OpAccess, w.Dir.Resolved(), err)
	}
	defer fw.Close()

	if err := fw.Add(w.Dir.Resolved()); err != nil {
		return errs.FileSystem(errs.OpAccess, w.Dir.Resolved(), err)
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	// The timer starts stopped and is armed by the first relevant event.
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	log := logrus.WithField("dir", w.Dir.Resolved())
	log.Debug("watching flags directory")

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			log.WithField("event", ev.String()).Debug("flag file event")
			timer.Reset(debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watcher error")

		case <-timer.C:
			if err := onChange(ctx); err != nil {
				log.WithError(err).Warn("change handler failed")
			}
		}
	}
}

// relevant filters out hidden files, temporary files and chmod-only events.
func (w Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") {
		return false
	}
	if w.Ext != "" && !strings.EqualFold(filepath.Ext(name), w.Ext) {
		return false
	}
	return true
}
