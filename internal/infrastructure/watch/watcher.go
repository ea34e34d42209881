package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeEvent is one debounced filesystem change on a watched spec file.
type ChangeEvent struct {
	Path       string
	ChangeType string // "create", "write", "remove", "rename"
}

// SpecWatcher watches spec directories for file changes using fsnotify.
// Events on the same path within the debounce window coalesce; distinct
// paths each get their own callback.
type SpecWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func(ChangeEvent)

	mu      sync.Mutex
	pending map[string]*pendingChange
}

type pendingChange struct {
	debouncer *Debouncer
	event     ChangeEvent
}

// NewSpecWatcher creates a watcher that invokes onChange for each changed
// spec file, debounced per path.
func NewSpecWatcher(debounce time.Duration, onChange func(ChangeEvent)) (*SpecWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if debounce == 0 {
		debounce = 500 * time.Millisecond
	}
	return &SpecWatcher{
		watcher:  w,
		debounce: debounce,
		onChange: onChange,
		pending:  make(map[string]*pendingChange),
	}, nil
}

// WatchRecursive adds a directory and all its subdirectories to the watcher.
func (w *SpecWatcher) WatchRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
		}
		return nil
	})
}

// Run starts the event loop. It blocks until the context is cancelled.
func (w *SpecWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	defer w.stopPending()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			changeType := opToChangeType(event.Op)
			if changeType == "" {
				continue
			}

			// New directories join the watch set so specs created inside
			// them are picked up.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.WatchRecursive(event.Name)
					continue
				}
			}
			if filepath.Ext(event.Name) != ".md" {
				continue
			}
			w.schedule(ChangeEvent{Path: event.Name, ChangeType: changeType})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func (w *SpecWatcher) schedule(event ChangeEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.pending[event.Path]
	if !ok {
		p = &pendingChange{}
		p.debouncer = NewDebouncer(w.debounce, func() {
			w.mu.Lock()
			ev := p.event
			delete(w.pending, ev.Path)
			w.mu.Unlock()
			if w.onChange != nil {
				w.onChange(ev)
			}
		})
		w.pending[event.Path] = p
	}
	p.event = event
	p.debouncer.Trigger()
}

func (w *SpecWatcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range w.pending {
		p.debouncer.Stop()
	}
}

func opToChangeType(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	default:
		return ""
	}
}
