package calendar

import (
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/borgmon/review-nudger/pkg/logger"
	"github.com/borgmon/review-nudger/pkg/models"
)

// expandRecurring returns the instances of a recurring event that overlap
// [from, to). ok is false when the event has no recurrence rule.
func expandRecurring(ev *ical.Event, base models.Event, loc *time.Location, from, to time.Time) (instances []models.Event, ok bool) {
	set, err := ev.RecurrenceSet(loc)
	if err != nil {
		logger.Warn("Unsupported recurrence rule", "event", base.Title, "error", err)
		return nil, true
	}
	if set == nil {
		return nil, false
	}

	duration := base.EndTime.Sub(base.StartTime)
	for _, start := range occurrences(set, duration, from, to) {
		instance := base
		instance.StartTime = start.In(time.Local)
		instance.EndTime = instance.StartTime.Add(duration)
		instance.ID = base.ID + "-" + instance.StartTime.Format(time.RFC3339)
		instances = append(instances, instance)
	}

	logger.Debug("Expanded recurring event", "event", base.Title, "instances", len(instances))
	return instances, true
}

// occurrences returns the starts of instances overlapping [from, to),
// including ones that began before from and are still running
func occurrences(set *rrule.Set, duration time.Duration, from, to time.Time) []time.Time {
	starts := set.Between(from.Add(-duration), to, true)
	for len(starts) > 0 && !starts[len(starts)-1].Before(to) {
		starts = starts[:len(starts)-1]
	}
	return starts
}
