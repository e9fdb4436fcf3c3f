package calendar

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/borgmon/review-nudger/pkg/models"
)

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

func parseEvent(ev *ical.Event, loc *time.Location) models.Event {
	event := models.Event{}

	if uid, err := ev.Props.Text(ical.PropUID); err == nil {
		event.ID = uid
	}
	if summary, err := ev.Props.Text(ical.PropSummary); err == nil {
		event.Title = summary
	}

	if t, err := ev.DateTimeStart(loc); err == nil {
		event.StartTime = t.In(time.Local)
	} else if prop := ev.Props.Get(ical.PropDateTimeStart); prop != nil {
		event.StartTime, _ = parseDateTimeValue(prop.Value, loc)
	}

	if t, err := ev.DateTimeEnd(loc); err == nil {
		event.EndTime = t.In(time.Local)
	} else if prop := ev.Props.Get(ical.PropDateTimeEnd); prop != nil {
		event.EndTime, _ = parseDateTimeValue(prop.Value, loc)
	}

	if prop := ev.Props.Get(ical.PropStatus); prop != nil {
		event.Status = strings.ToUpper(prop.Value)
	}

	// Some calendars cancel by renaming instead of setting STATUS
	if event.Status != statusCancelled && isCancelledTitle(event.Title) {
		event.Status = statusCancelled
	}

	return event
}

// parseDateTimeValue handles values the library rejects, such as unknown TZIDs
func parseDateTimeValue(value string, loc *time.Location) (time.Time, error) {
	formats := []string{
		"20060102T150405Z",
		"20060102T150405",
		time.RFC3339,
		"2006-01-02T15:04:05",
	}

	for _, format := range formats {
		if t, err := time.ParseInLocation(format, value, loc); err == nil {
			return t.In(time.Local), nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse datetime value: %s", value)
}

func isCancelledTitle(title string) bool {
	clean := nonAlnum.ReplaceAllString(strings.ToLower(title), "")
	return strings.HasPrefix(clean, "canceled") || strings.HasPrefix(clean, "cancelled")
}
