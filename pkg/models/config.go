package models

import (
	"encoding/json"
	"math"
	"time"

	"github.com/spf13/cast"
)

const (
	DefaultIntervalMinutes        = 30
	DefaultSnoozeMinutes          = 5
	DefaultCalendarRefreshMinutes = 30

	// QuietHoursDisabledStart and QuietHoursDisabledEnd are the out-of-range
	// hours stored when quiet hours are switched off.
	QuietHoursDisabledStart = 25
	QuietHoursDisabledEnd   = 26

	minimumStep = time.Minute
)

// Config holds application configuration
type Config struct {
	IntervalMinutes  float64    `json:"interval_minutes"`
	SnoozeMinutes    float64    `json:"snooze_minutes"`
	QuietHours       QuietHours `json:"quiet_hours"`
	Enabled          bool       `json:"enabled"`
	TargetResourceID *int64     `json:"target_resource_id"`

	AutoStart              bool     `json:"auto_start"`
	Chime                  bool     `json:"chime"`
	BusyCalendars          []string `json:"busy_calendars"`           // local .ics files
	CalendarRefreshMinutes int      `json:"calendar_refresh_minutes"` // minutes
}

// QuietHours is an hour-of-day window during which prompts are suppressed.
// Hours outside 0-23 disable the window.
type QuietHours struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// DefaultConfig returns the configuration used when nothing is stored
func DefaultConfig() *Config {
	return &Config{
		IntervalMinutes:        DefaultIntervalMinutes,
		SnoozeMinutes:          DefaultSnoozeMinutes,
		QuietHours:             DisabledQuietHours(),
		Enabled:                true,
		Chime:                  true,
		BusyCalendars:          []string{},
		CalendarRefreshMinutes: DefaultCalendarRefreshMinutes,
	}
}

// DisabledQuietHours returns the sentinel window that is never quiet
func DisabledQuietHours() QuietHours {
	return QuietHours{Start: QuietHoursDisabledStart, End: QuietHoursDisabledEnd}
}

// ConfigFromMap merges a stored key-value document over the defaults.
// Values of the wrong type fall back to their defaults instead of failing.
func ConfigFromMap(stored map[string]any) *Config {
	cfg := DefaultConfig()
	if stored == nil {
		return cfg
	}

	if v, ok := stored["interval_minutes"]; ok {
		if f, ok := finiteMinutes(v); ok {
			cfg.IntervalMinutes = f
		}
	}
	if v, ok := stored["snooze_minutes"]; ok {
		if f, ok := finiteMinutes(v); ok {
			cfg.SnoozeMinutes = f
		}
	}
	if v, ok := stored["quiet_hours"]; ok {
		cfg.QuietHours = QuietHoursFromValue(v)
	}
	if v, ok := stored["enabled"]; ok {
		if b, err := cast.ToBoolE(v); err == nil {
			cfg.Enabled = b
		}
	}
	if v, ok := stored["target_resource_id"]; ok {
		cfg.TargetResourceID = resourceIDFromValue(v)
	}
	if v, ok := stored["auto_start"]; ok {
		cfg.AutoStart = cast.ToBool(v)
	}
	if v, ok := stored["chime"]; ok {
		if b, err := cast.ToBoolE(v); err == nil {
			cfg.Chime = b
		}
	}
	if v, ok := stored["busy_calendars"]; ok {
		if paths, err := cast.ToStringSliceE(v); err == nil {
			cfg.BusyCalendars = paths
		}
	}
	if v, ok := stored["calendar_refresh_minutes"]; ok {
		if n, err := cast.ToIntE(v); err == nil && n >= 1 {
			cfg.CalendarRefreshMinutes = n
		}
	}

	return cfg
}

// QuietHoursFromValue decodes a quiet-hours object. Anything that is not an
// object with integer start and end disables quiet hours.
func QuietHoursFromValue(v any) QuietHours {
	var m map[string]any
	switch raw := v.(type) {
	case QuietHours:
		return raw
	case string:
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return DisabledQuietHours()
		}
	default:
		var err error
		if m, err = cast.ToStringMapE(v); err != nil {
			return DisabledQuietHours()
		}
	}

	start, errStart := cast.ToIntE(m["start"])
	end, errEnd := cast.ToIntE(m["end"])
	if m["start"] == nil || m["end"] == nil || errStart != nil || errEnd != nil {
		return DisabledQuietHours()
	}
	return QuietHours{Start: start, End: end}
}

// finiteMinutes accepts any number. Negative values are kept and later floored
// to one minute; NaN and infinities are rejected.
func finiteMinutes(v any) (float64, bool) {
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func resourceIDFromValue(v any) *int64 {
	if v == nil {
		return nil
	}
	id, err := cast.ToInt64E(v)
	if err != nil || id == 0 {
		return nil
	}
	return &id
}

// ToMap renders the config as the stored key-value document
func (c *Config) ToMap() map[string]any {
	m := map[string]any{
		"interval_minutes": c.IntervalMinutes,
		"snooze_minutes":   c.SnoozeMinutes,
		"quiet_hours": map[string]any{
			"start": c.QuietHours.Start,
			"end":   c.QuietHours.End,
		},
		"enabled":                  c.Enabled,
		"target_resource_id":       nil,
		"auto_start":               c.AutoStart,
		"chime":                    c.Chime,
		"busy_calendars":           c.BusyCalendars,
		"calendar_refresh_minutes": c.CalendarRefreshMinutes,
	}
	if c.TargetResourceID != nil {
		m["target_resource_id"] = *c.TargetResourceID
	}
	return m
}

// Clone returns a deep copy of the config
func (c *Config) Clone() *Config {
	out := *c
	if c.TargetResourceID != nil {
		id := *c.TargetResourceID
		out.TargetResourceID = &id
	}
	out.BusyCalendars = append([]string(nil), c.BusyCalendars...)
	return &out
}

// Interval returns the effective reminder interval. Minutes are truncated to a
// whole number and the result is never shorter than one minute.
func (c *Config) Interval() time.Duration {
	return wholeMinutes(c.IntervalMinutes)
}

// Snooze returns the effective snooze length, coerced like Interval
func (c *Config) Snooze() time.Duration {
	return wholeMinutes(c.SnoozeMinutes)
}

// SnoozeLabelMinutes is the snooze length shown on buttons and menu items
func (c *Config) SnoozeLabelMinutes() int {
	return int(c.Snooze() / time.Minute)
}

// CalendarRefresh returns how often busy calendars are re-read
func (c *Config) CalendarRefresh() time.Duration {
	if c.CalendarRefreshMinutes < 1 {
		return DefaultCalendarRefreshMinutes * time.Minute
	}
	return time.Duration(c.CalendarRefreshMinutes) * time.Minute
}

// maxMinutes is the largest minute count a time.Duration can hold
const maxMinutes = float64(math.MaxInt64 / int64(time.Minute))

func wholeMinutes(minutes float64) time.Duration {
	if math.IsNaN(minutes) || minutes < 1 {
		return minimumStep
	}
	minutes = math.Min(minutes, maxMinutes)
	d := time.Duration(int64(minutes)) * time.Minute
	if d < minimumStep {
		return minimumStep
	}
	return d
}

// Enabled reports whether both hours are valid and differ
func (q QuietHours) Enabled() bool {
	return validHour(q.Start) && validHour(q.End) && q.Start != q.End
}

// IsQuietAt returns true if the given time falls inside the quiet window
func (q QuietHours) IsQuietAt(t time.Time) bool {
	if !q.Enabled() {
		return false
	}

	hour := t.Hour()

	// Handle overnight ranges (e.g., 22 to 7)
	if q.Start < q.End {
		return q.Start <= hour && hour < q.End
	}
	return hour >= q.Start || hour < q.End
}

func validHour(h int) bool {
	return h >= 0 && h <= 23
}
