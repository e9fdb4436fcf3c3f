package calendar

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"
)

const workCalendar = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//review-nudger//tests//EN
BEGIN:VEVENT
UID:standup
SUMMARY:Daily standup
DTSTART:20261012T110000Z
DTEND:20261012T120000Z
RRULE:FREQ=DAILY
END:VEVENT
BEGIN:VEVENT
UID:planning
SUMMARY:Sprint planning
DTSTART:20261019T140000Z
DTEND:20261019T150000Z
END:VEVENT
BEGIN:VEVENT
UID:planning
SUMMARY:Sprint planning
DTSTART:20261019T140000Z
DTEND:20261019T150000Z
END:VEVENT
BEGIN:VEVENT
UID:retro
SUMMARY:Retro
STATUS:CANCELLED
DTSTART:20261019T160000Z
DTEND:20261019T170000Z
END:VEVENT
BEGIN:VEVENT
UID:lunch
SUMMARY:Canceled - team lunch
DTSTART:20261019T170000Z
DTEND:20261019T180000Z
END:VEVENT
BEGIN:VEVENT
UID:offsite
SUMMARY:Offsite
DTSTART;VALUE=DATE:20261019
DTEND;VALUE=DATE:20261021
END:VEVENT
BEGIN:VEVENT
UID:last-week
SUMMARY:Old one-off
DTSTART:20261012T150000Z
DTEND:20261012T160000Z
END:VEVENT
END:VCALENDAR
`

const outlookCalendar = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Microsoft Corporation//Outlook 16.0 MIMEDIR//EN
BEGIN:VEVENT
UID:client-call
SUMMARY:Client call
DTSTART;TZID=Eastern Standard Time:20261019T073000
DTEND;TZID=Eastern Standard Time:20261019T083000
END:VEVENT
END:VCALENDAR
`

var testNow = time.Date(2026, 10, 19, 11, 30, 0, 0, time.UTC)

func TestParseEventsFiltersAndExpands(t *testing.T) {
	events, err := ParseEvents(strings.NewReader(workCalendar), "work.ics", testNow, testNow.Add(lookahead))
	require.NoError(t, err)

	got := map[string]int{}
	for _, ev := range events {
		got[ev.Title]++
		assert.Equal(t, "work.ics", ev.SourceID)
	}

	// Two standup instances fall in the next 24 hours; planning is de-duplicated
	assert.Equal(t, map[string]int{
		"Daily standup":   2,
		"Sprint planning": 1,
	}, got)
}

func TestParseEventsRecurringInstanceTimes(t *testing.T) {
	events, err := ParseEvents(strings.NewReader(workCalendar), "work.ics", testNow, testNow.Add(lookahead))
	require.NoError(t, err)

	var starts []time.Time
	for _, ev := range events {
		if ev.Title == "Daily standup" {
			starts = append(starts, ev.StartTime.UTC())
			assert.Equal(t, time.Hour, ev.EndTime.Sub(ev.StartTime))
			assert.True(t, strings.HasPrefix(ev.ID, "standup-"))
		}
	}
	assert.ElementsMatch(t, []time.Time{
		time.Date(2026, 10, 19, 11, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 20, 11, 0, 0, 0, time.UTC),
	}, starts)
}

func TestParseEventsWindowsTimezone(t *testing.T) {
	events, err := ParseEvents(strings.NewReader(outlookCalendar), "outlook.ics", testNow, testNow.Add(lookahead))
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, time.Date(2026, 10, 19, 11, 30, 0, 0, time.UTC), events[0].StartTime.UTC())
	assert.Equal(t, time.Date(2026, 10, 19, 12, 30, 0, 0, time.UTC), events[0].EndTime.UTC())
}

func TestIsCancelledTitle(t *testing.T) {
	assert.True(t, isCancelledTitle("Canceled: Standup"))
	assert.True(t, isCancelledTitle("[CANCELLED] retro"))
	assert.False(t, isCancelledTitle("Cancellation policy review"))
	assert.False(t, isCancelledTitle("Standup"))
}

func TestLoaderRejectsNonCalendar(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cal/page.ics", []byte("<!DOCTYPE html><html></html>"), 0644))

	_, err := NewLoader(fs).Load("/cal/page.ics", testNow, testNow.Add(lookahead))
	assert.ErrorIs(t, err, ErrNotCalendar)
}

func TestBusyRefreshAndBusyAt(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cal/work.ics", []byte(workCalendar), 0644))
	require.NoError(t, afero.WriteFile(fs, "/cal/outlook.ics", []byte(outlookCalendar), 0644))

	busy := NewBusy(NewLoader(fs), []string{"/cal/work.ics", "/cal/outlook.ics", "/cal/missing.ics"})

	// The missing file is reported but the others still load
	err := busy.Refresh(testNow)
	assert.Error(t, err)
	assert.Equal(t, testNow, busy.Loaded())
	assert.Len(t, busy.Events(), 4)

	tests := []struct {
		name  string
		at    time.Time
		busy  bool
		title string
	}{
		{"standup", time.Date(2026, 10, 19, 11, 15, 0, 0, time.UTC), true, "Daily standup"},
		{"client call", time.Date(2026, 10, 19, 12, 15, 0, 0, time.UTC), true, "Client call"},
		{"planning", time.Date(2026, 10, 19, 14, 59, 0, 0, time.UTC), true, "Sprint planning"},
		{"planning ended", time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC), false, ""},
		{"cancelled retro", time.Date(2026, 10, 19, 16, 30, 0, 0, time.UTC), false, ""},
		{"renamed lunch", time.Date(2026, 10, 19, 17, 30, 0, 0, time.UTC), false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isBusy, title := busy.BusyAt(tt.at)
			assert.Equal(t, tt.busy, isBusy)
			assert.Equal(t, tt.title, title)
		})
	}
}

func TestBusySetPaths(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cal/outlook.ics", []byte(outlookCalendar), 0644))

	busy := NewBusy(NewLoader(fs), []string{"/cal/outlook.ics"})
	require.NoError(t, busy.Refresh(testNow))
	assert.Len(t, busy.Events(), 1)

	busy.SetPaths(nil)
	assert.Len(t, busy.Events(), 1)

	require.NoError(t, busy.Refresh(testNow))
	assert.Empty(t, busy.Events())
	isBusy, _ := busy.BusyAt(testNow)
	assert.False(t, isBusy)
}

func TestOccurrencesWindow(t *testing.T) {
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.HOURLY,
		Dtstart: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
		Count:   6,
	})
	require.NoError(t, err)
	set := &rrule.Set{}
	set.RRule(rule)

	from := time.Date(2026, 10, 19, 10, 15, 0, 0, time.UTC)
	to := time.Date(2026, 10, 19, 13, 0, 0, 0, time.UTC)

	// 10:00 is still running at 10:15; 13:00 starts exactly at the window end
	assert.Equal(t, []time.Time{
		time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 19, 11, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}, occurrences(set, 30*time.Minute, from, to))
}
