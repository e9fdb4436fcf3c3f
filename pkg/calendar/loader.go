// Package calendar reads local iCalendar files and answers whether the user
// is in a meeting, so prompts are held back while they are busy.
package calendar

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/spf13/afero"

	"github.com/borgmon/review-nudger/pkg/models"
)

// ErrNotCalendar is returned for files that are not iCalendar data
var ErrNotCalendar = errors.New("not an iCalendar file")

// Loader reads .ics files from a filesystem
type Loader struct {
	fs afero.Fs
}

// NewLoader creates a Loader over fs
func NewLoader(fs afero.Fs) *Loader {
	return &Loader{fs: fs}
}

// Load parses path and returns the events overlapping [from, to)
func (l *Loader) Load(path string, from, to time.Time) ([]models.Event, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read calendar %s: %w", path, err)
	}

	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("BEGIN:VCALENDAR")) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotCalendar)
	}

	events, err := ParseEvents(bytes.NewReader(data), path, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return events, nil
}

// ParseEvents decodes every calendar in r and returns the events overlapping
// [from, to), with recurring events expanded to instances
func ParseEvents(r io.Reader, sourceID string, from, to time.Time) ([]models.Event, error) {
	decoder := ical.NewDecoder(r)
	seen := newDedupe()
	stats := &filterStats{}
	events := []models.Event{}

	for {
		cal, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode calendar: %w", err)
		}

		for _, ev := range cal.Events() {
			stats.events++
			normalizeTimezones(ev.Component)
			loc := componentLocation(ev.Component)

			base := parseEvent(&ev, loc)
			base.SourceID = sourceID
			if base.ID == "" {
				base.ID = sourceID + "-" + base.StartTime.Format(time.RFC3339) + "-" + base.Title
			}

			candidates := []models.Event{base}
			if instances, recurring := expandRecurring(&ev, base, loc, from, to); recurring {
				candidates = instances
			}

			for _, event := range candidates {
				if shouldInclude(event, from, to, stats) && !seen.seen(event, stats) {
					events = append(events, event)
				}
			}
		}
	}

	stats.log(sourceID, len(events))
	return events, nil
}

func isICSPath(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".ics")
}
