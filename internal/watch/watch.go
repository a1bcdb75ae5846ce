// Package watch reloads the section set when markdown files in the content
// directory change.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/folio/internal/section"
	"github.com/starford/folio/internal/storage"
)

// DefaultDebounce is how long the watcher waits for a burst of writes to
// settle before reloading.
const DefaultDebounce = 200 * time.Millisecond

// Reloader re-reads the content set.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Callback receives the slugs touched by a batch after a successful reload.
type Callback func(slugs []string)

// Options configures Watch.
type Options struct {
	Root     string
	Debounce time.Duration
	Logger   *slog.Logger
}

// Watch watches the top level of opts.Root and calls r.Reload once per
// debounced batch of .md changes. It blocks until ctx is cancelled.
func Watch(ctx context.Context, r Reloader, opts Options, cb Callback) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(opts.Root); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", opts.Root))

	var timer *time.Timer
	var fire <-chan time.Time
	pending := make(map[string]struct{})

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(opts.Debounce)
			fire = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(opts.Debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			// Pending slugs survive a failed reload and go out with the next
			// successful one.
			if err := r.Reload(ctx); err != nil {
				logger.Warn("watcher: reload failed", slog.String("error", err.Error()))
				continue
			}
			slugs := drain(pending)
			logger.Debug("watcher: reloaded", slog.Any("sections", slugs))
			if cb != nil {
				cb(slugs)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			pending[section.SlugOf(ev.Name)] = struct{}{}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// relevant reports whether ev touches a section file. Chmod-only events
// and the hidden files staged by storage.FS are ignored.
func relevant(ev fsnotify.Event) bool {
	if !storage.IsSection(filepath.Base(ev.Name)) {
		return false
	}
	return ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}

func drain(pending map[string]struct{}) []string {
	out := make([]string, 0, len(pending))
	for slug := range pending {
		out = append(out, slug)
		delete(pending, slug)
	}
	sort.Strings(out)
	return out
}
