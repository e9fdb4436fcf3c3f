package calendar

import (
	"sync"
	"time"

	"github.com/borgmon/review-nudger/pkg/logger"
	"github.com/borgmon/review-nudger/pkg/models"
)

// lookahead is how far past a refresh events are kept
const lookahead = 24 * time.Hour

// Busy caches events from the configured calendar files
type Busy struct {
	loader *Loader

	mu     sync.RWMutex
	paths  []string
	events []models.Event
	loaded time.Time
}

// NewBusy creates a Busy guard over the given calendar files
func NewBusy(loader *Loader, paths []string) *Busy {
	return &Busy{loader: loader, paths: append([]string(nil), paths...)}
}

// SetPaths replaces the calendar files. The cache is kept until the next Refresh.
func (b *Busy) SetPaths(paths []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.paths = append([]string(nil), paths...)
}

// Refresh reloads every calendar. A file that fails to load is logged and
// skipped; the returned error is the last such failure.
func (b *Busy) Refresh(now time.Time) error {
	b.mu.RLock()
	paths := append([]string(nil), b.paths...)
	b.mu.RUnlock()

	var (
		all     []models.Event
		lastErr error
	)
	for _, path := range paths {
		if !isICSPath(path) {
			logger.Debug("Calendar path has no .ics extension", "path", path)
		}
		events, err := b.loader.Load(path, now, now.Add(lookahead))
		if err != nil {
			logger.Warn("Could not load calendar", "path", path, "error", err)
			lastErr = err
			continue
		}
		all = append(all, events...)
	}

	b.mu.Lock()
	b.events = all
	b.loaded = now
	b.mu.Unlock()

	logger.Info("Calendars refreshed", "files", len(paths), "events", len(all))
	return lastErr
}

// Loaded returns the time of the last Refresh
func (b *Busy) Loaded() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loaded
}

// Events returns a copy of the cached events
func (b *Busy) Events() []models.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]models.Event(nil), b.events...)
}

// BusyAt reports whether an event covers t and returns its title
func (b *Busy) BusyAt(t time.Time) (bool, string) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ev := range b.events {
		if ev.Covers(t) {
			return true, ev.Title
		}
	}
	return false, ""
}
