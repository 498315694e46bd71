package document

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/manual/internal/atomicfile"
	"github.com/aretw0/manual/pkg/core"
)

// Watch reports changes made to the document by other processes.
// Writes performed through this repository are not reported.
//
// The parent directory is watched rather than the file, because an atomic
// save replaces the file and a watch on the old inode would go silent.
// The channel is closed when ctx is done.
func (r *Repository) Watch(ctx context.Context) (<-chan core.Event, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	dir := filepath.Dir(r.Path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	events := make(chan core.Event, r.config.EventBuffer)
	r.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(events)
		defer r.setWatcherActive(false)
		defer watcher.Close()
		return r.watchLoop(ctx, watcher, events)
	}, lifecycle.WithErrorHandler(func(err error) {
		r.reportWatchError(fmt.Errorf("watcher panic: %w", err))
	}))

	return events, nil
}

// watchLoop coalesces bursts of filesystem events on the document into a
// single core.Event delivered once the burst has been quiet for Debounce.
func (r *Repository) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, events chan<- core.Event) error {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	var pending *core.Event
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			if atomicfile.IsTemp(ev.Name) || filepath.Base(ev.Name) != filepath.Base(r.Path) {
				continue
			}
			eType := mapEventType(ev)
			if eType == "" {
				continue
			}
			if r.config.Logger != nil {
				r.config.Logger.Debug("document event received", "op", ev.Op.String(), "path", ev.Name)
			}
			pending = &core.Event{Type: eType, Path: r.Path}
			timer.Reset(r.config.Debounce)

		case <-timer.C:
			if pending == nil {
				continue
			}
			e := r.settle(*pending)
			pending = nil
			if e.Type == "" {
				continue
			}
			select {
			case events <- e:
			case <-ctx.Done():
				return nil
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			r.reportWatchError(err)
		}
	}
}

// settle decides what a coalesced burst amounts to by looking at the file as
// it is now. It returns an empty event when the content is our own last write.
func (r *Repository) settle(e core.Event) core.Event {
	e.Timestamp = time.Now().Unix()

	data, err := os.ReadFile(r.Path)
	if errors.Is(err, fs.ErrNotExist) {
		e.Type = core.EventDelete
		return e
	}
	if err != nil {
		return e
	}
	if e.Type == core.EventDelete {
		// Removed and recreated within the window.
		e.Type = core.EventModify
	}

	r.stateMu.RLock()
	own := r.lastWrite != nil && sha256.Sum256(data) == r.lastDigest
	r.stateMu.RUnlock()
	if own {
		return core.Event{}
	}
	return e
}

func mapEventType(ev fsnotify.Event) core.EventType {
	switch {
	case ev.Has(fsnotify.Create):
		return core.EventCreate
	case ev.Has(fsnotify.Write):
		return core.EventModify
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return core.EventDelete
	default:
		return ""
	}
}

func (r *Repository) reportWatchError(err error) {
	if r.config.Logger != nil {
		r.config.Logger.Error("fsnotify error", "error", err)
	}
	if r.config.ErrorHandler != nil {
		r.config.ErrorHandler(err)
	}
}

func (r *Repository) setWatcherActive(active bool) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	r.watcherActive = active
}
