package host

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/borgmon/review-nudger/pkg/logger"
)

// CollectionWatcher turns writes to the host's collection file into
// ItemAnswered events. Answering a card writes the database or its WAL.
type CollectionWatcher struct {
	path     string
	debounce time.Duration

	mu   sync.RWMutex
	last time.Time
}

// NewCollectionWatcher watches path. Bursts of writes closer together than
// debounce produce one event.
func NewCollectionWatcher(path string, debounce time.Duration) *CollectionWatcher {
	if debounce <= 0 {
		debounce = time.Second
	}
	return &CollectionWatcher{path: filepath.Clean(path), debounce: debounce}
}

// LastActivity returns the time of the last reported write
func (cw *CollectionWatcher) LastActivity() time.Time {
	cw.mu.RLock()
	defer cw.mu.RUnlock()
	return cw.last
}

// Run watches until ctx is cancelled, sending events on out
func (cw *CollectionWatcher) Run(ctx context.Context, out chan<- Event) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory: SQLite replaces and recreates its side files
	if err := w.Add(filepath.Dir(cw.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(cw.path), err)
	}
	logger.Info("Watching collection", "path", cw.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !cw.relevant(ev) {
				continue
			}
			if cw.mark(time.Now()) {
				select {
				case out <- Event{Kind: ItemAnswered}:
				case <-ctx.Done():
					return nil
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Collection watcher error", "error", err)
		}
	}
}

func (cw *CollectionWatcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	name := filepath.Clean(ev.Name)
	return name == cw.path || name == cw.path+"-wal" || name == cw.path+"-journal"
}

// mark records a write at t and reports whether it starts a new burst
func (cw *CollectionWatcher) mark(t time.Time) bool {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	fresh := cw.last.IsZero() || t.Sub(cw.last) >= cw.debounce
	cw.last = t
	return fresh
}
