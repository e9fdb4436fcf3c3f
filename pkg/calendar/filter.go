package calendar

import (
	"time"

	"github.com/borgmon/review-nudger/pkg/logger"
	"github.com/borgmon/review-nudger/pkg/models"
)

const statusCancelled = "CANCELLED"

type filterStats struct {
	events      int
	missingTime int
	cancelled   int
	allDay      int
	outside     int
	duplicates  int
}

func (s *filterStats) log(source string, included int) {
	logger.Debug("Calendar loaded",
		"source", source,
		"events", s.events,
		"included", included,
		"cancelled", s.cancelled,
		"all_day", s.allDay,
		"outside_window", s.outside,
		"missing_time", s.missingTime,
		"duplicates", s.duplicates)
}

// shouldInclude keeps timed, confirmed events that overlap [from, to)
func shouldInclude(event models.Event, from, to time.Time, stats *filterStats) bool {
	switch {
	case event.StartTime.IsZero() || event.EndTime.IsZero():
		stats.missingTime++
		return false
	case event.Status == statusCancelled:
		stats.cancelled++
		return false
	case isAllDayEvent(event):
		stats.allDay++
		return false
	case event.StartTime.Before(to) && event.EndTime.After(from):
		return true
	default:
		stats.outside++
		return false
	}
}

// isAllDayEvent treats anything spanning a day boundary for 24h or more as
// all-day; those never block a prompt
func isAllDayEvent(event models.Event) bool {
	if models.DateKey(event.StartTime) == models.DateKey(event.EndTime) {
		return false
	}
	return event.EndTime.Sub(event.StartTime) >= 24*time.Hour
}

type dedupe struct {
	ids  map[string]bool
	keys map[string]bool
}

func newDedupe() *dedupe {
	return &dedupe{ids: make(map[string]bool), keys: make(map[string]bool)}
}

func (d *dedupe) seen(event models.Event, stats *filterStats) bool {
	key := event.Title + "|" + event.StartTime.Format(time.RFC3339)
	if d.ids[event.ID] || d.keys[key] {
		stats.duplicates++
		return true
	}
	d.ids[event.ID] = true
	d.keys[key] = true
	return false
}
