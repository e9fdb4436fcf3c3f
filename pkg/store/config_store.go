package store

import (
	"encoding/json"

	"fyne.io/fyne/v2"

	"github.com/borgmon/review-nudger/pkg/logger"
	"github.com/borgmon/review-nudger/pkg/models"
)

// ConfigStore loads and saves the reminder configuration
type ConfigStore interface {
	Load() (*models.Config, error)
	Save(cfg *models.Config) error
}

// PrefsStore handles configuration persistence using Fyne preferences
type PrefsStore struct {
	prefs fyne.Preferences
}

// NewPrefsStore creates a new PrefsStore instance
func NewPrefsStore(app fyne.App) *PrefsStore {
	return &PrefsStore{prefs: app.Preferences()}
}

// Load loads configuration from preferences, falling back to defaults for
// anything missing
func (ps *PrefsStore) Load() (*models.Config, error) {
	def := models.DefaultConfig()

	stored := map[string]any{
		"interval_minutes":         ps.prefs.FloatWithFallback("interval_minutes", def.IntervalMinutes),
		"snooze_minutes":           ps.prefs.FloatWithFallback("snooze_minutes", def.SnoozeMinutes),
		"enabled":                  ps.prefs.BoolWithFallback("enabled", def.Enabled),
		"auto_start":               ps.prefs.BoolWithFallback("auto_start", def.AutoStart),
		"chime":                    ps.prefs.BoolWithFallback("chime", def.Chime),
		"calendar_refresh_minutes": ps.prefs.IntWithFallback("calendar_refresh_minutes", def.CalendarRefreshMinutes),
		"busy_calendars":           ps.prefs.StringListWithFallback("busy_calendars", []string{}),
	}

	// Quiet hours are stored as a JSON object string
	if quietJSON := ps.prefs.String("quiet_hours"); quietJSON != "" {
		stored["quiet_hours"] = quietJSON
	}

	// Zero means "use the host's current deck"
	if id := ps.prefs.Int("target_resource_id"); id != 0 {
		stored["target_resource_id"] = id
	}

	cfg := models.ConfigFromMap(stored)
	logger.Debug("Configuration loaded from preferences", "interval", cfg.Interval(), "snooze", cfg.Snooze(), "enabled", cfg.Enabled)
	return cfg, nil
}

// Save saves configuration to preferences
func (ps *PrefsStore) Save(cfg *models.Config) error {
	ps.prefs.SetFloat("interval_minutes", cfg.IntervalMinutes)
	ps.prefs.SetFloat("snooze_minutes", cfg.SnoozeMinutes)
	ps.prefs.SetBool("enabled", cfg.Enabled)
	ps.prefs.SetBool("auto_start", cfg.AutoStart)
	ps.prefs.SetBool("chime", cfg.Chime)
	ps.prefs.SetInt("calendar_refresh_minutes", cfg.CalendarRefreshMinutes)
	ps.prefs.SetStringList("busy_calendars", cfg.BusyCalendars)

	quietJSON, err := json.Marshal(cfg.QuietHours)
	if err != nil {
		return err
	}
	ps.prefs.SetString("quiet_hours", string(quietJSON))

	if cfg.TargetResourceID != nil {
		ps.prefs.SetInt("target_resource_id", int(*cfg.TargetResourceID))
	} else {
		ps.prefs.SetInt("target_resource_id", 0)
	}

	logger.Debug("Configuration saved to preferences")
	return nil
}
