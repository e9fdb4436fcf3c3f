package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/borgmon/review-nudger/pkg/host"
	"github.com/borgmon/review-nudger/pkg/logger"
	"github.com/borgmon/review-nudger/pkg/models"
	"github.com/borgmon/review-nudger/pkg/ui/components"
)

const (
	useCurrentDeck = "Use current deck"

	// Shown in the hour selects while quiet hours are off
	defaultQuietStart = 22
	defaultQuietEnd   = 7
)

type deckChoice struct {
	Label string
	ID    *int64
}

// SettingsWindow edits the reminder settings
type SettingsWindow struct {
	window fyne.Window
	config *models.Config
	decks  []deckChoice
	onSave func(*models.Config) error

	intervalEntry *widget.Entry
	snoozeEntry   *widget.Entry
	quietCheck    *widget.Check
	quietStart    *widget.Select
	quietEnd      *widget.Select
	deckSelect    *widget.Select
	autoStart     *widget.Check
	chime         *widget.Check
	calendars     *components.ListManager

	saveButton  *widget.Button
	statusLabel *widget.Label
}

// NewSettingsWindow creates the window. listDecks is called once to fill the
// deck select.
func NewSettingsWindow(app fyne.App, cfg *models.Config, listDecks func() []host.Deck, onSave func(*models.Config) error) *SettingsWindow {
	sw := &SettingsWindow{
		config: cfg.Clone(),
		decks:  deckChoices(listDecks()),
		onSave: onSave,
	}

	sw.window = app.NewWindow(appName + " - Settings")
	sw.buildUI()
	return sw
}

func (sw *SettingsWindow) buildUI() {
	sw.intervalEntry = widget.NewEntry()
	sw.intervalEntry.SetText(strconv.Itoa(int(sw.config.IntervalMinutes)))
	sw.intervalEntry.Validator = func(s string) error {
		_, err := parseMinutes(s, 1, 1440)
		return err
	}

	sw.snoozeEntry = widget.NewEntry()
	sw.snoozeEntry.SetText(strconv.Itoa(sw.config.SnoozeLabelMinutes()))
	sw.snoozeEntry.Validator = func(s string) error {
		_, err := parseMinutes(s, 1, 240)
		return err
	}

	start, end := defaultQuietStart, defaultQuietEnd
	if sw.config.QuietHours.Enabled() {
		start, end = sw.config.QuietHours.Start, sw.config.QuietHours.End
	}
	sw.quietStart = widget.NewSelect(hourOptions(), nil)
	sw.quietStart.SetSelected(formatHour(start))
	sw.quietEnd = widget.NewSelect(hourOptions(), nil)
	sw.quietEnd.SetSelected(formatHour(end))

	sw.quietCheck = widget.NewCheck("Enable quiet hours", sw.toggleQuiet)
	sw.quietCheck.SetChecked(sw.config.QuietHours.Enabled())
	sw.toggleQuiet(sw.quietCheck.Checked)

	labels := make([]string, len(sw.decks))
	for i, d := range sw.decks {
		labels[i] = d.Label
	}
	sw.deckSelect = widget.NewSelect(labels, nil)
	sw.deckSelect.SetSelected(selectedDeckLabel(sw.decks, sw.config.TargetResourceID))

	sw.autoStart = widget.NewCheck("Start when I log in", nil)
	sw.autoStart.SetChecked(sw.config.AutoStart)

	sw.chime = widget.NewCheck("Play a chime with the prompt", nil)
	sw.chime.SetChecked(sw.config.Chime)

	var calendarsBox *fyne.Container
	sw.calendars, calendarsBox = components.NewListManager(sw.config.BusyCalendars, components.ListManagerConfig{
		Placeholder: "/path/to/calendar.ics",
		Validate:    validateCalendarPath,
		OnError: func(err error) {
			dialog.ShowError(err, sw.window)
		},
	})

	calendarHelp := widget.NewLabel("Prompts wait while an event in these calendars is running")
	calendarHelp.Wrapping = fyne.TextWrapWord
	calendarHelp.Importance = widget.MediumImportance

	form := container.New(layout.NewFormLayout(),
		widget.NewLabel("Interval (minutes):"), sw.intervalEntry,
		widget.NewLabel("Snooze (minutes):"), sw.snoozeEntry,
		widget.NewLabel("Quiet hours:"), sw.quietCheck,
		widget.NewLabel("Start hour (0-23):"), sw.quietStart,
		widget.NewLabel("End hour (0-23):"), sw.quietEnd,
		widget.NewLabel("Target deck:"), sw.deckSelect,
		widget.NewLabel("Auto start:"), sw.autoStart,
		widget.NewLabel("Sound:"), sw.chime,
	)

	sw.statusLabel = widget.NewLabel("")
	sw.saveButton = widget.NewButton("Save", sw.save)
	sw.saveButton.Importance = widget.HighImportance
	cancelButton := widget.NewButton("Cancel", func() {
		sw.window.Close()
	})

	buttonRow := container.NewBorder(nil, nil, sw.statusLabel,
		container.NewHBox(sw.saveButton, cancelButton))

	content := container.NewVBox(
		form,
		widget.NewSeparator(),
		widget.NewLabel("Busy calendars"),
		calendarHelp,
		calendarsBox,
	)

	sw.window.SetContent(container.NewBorder(nil, container.NewPadded(buttonRow), nil, nil,
		container.NewPadded(content)))
	sw.window.Resize(fyne.NewSize(520, 640))
	sw.window.CenterOnScreen()
}

func (sw *SettingsWindow) toggleQuiet(enabled bool) {
	if enabled {
		sw.quietStart.Enable()
		sw.quietEnd.Enable()
	} else {
		sw.quietStart.Disable()
		sw.quietEnd.Disable()
	}
}

// Show displays the window
func (sw *SettingsWindow) Show() {
	sw.window.Show()
}

func (sw *SettingsWindow) save() {
	cfg, err := sw.configFromUI()
	if err != nil {
		dialog.ShowError(err, sw.window)
		return
	}

	sw.saveButton.Disable()
	sw.statusLabel.SetText("Saving...")

	go func() {
		err := sw.onSave(cfg)
		fyne.Do(func() {
			sw.saveButton.Enable()
			if err != nil {
				logger.Error("Failed to save settings", "error", err)
				sw.statusLabel.SetText("")
				dialog.ShowError(fmt.Errorf("failed to save settings: %w", err), sw.window)
				return
			}
			sw.window.Close()
		})
	}()
}

// configFromUI builds the new settings from the form
func (sw *SettingsWindow) configFromUI() (*models.Config, error) {
	interval, err := parseMinutes(sw.intervalEntry.Text, 1, 1440)
	if err != nil {
		return nil, fmt.Errorf("interval: %w", err)
	}
	snooze, err := parseMinutes(sw.snoozeEntry.Text, 1, 240)
	if err != nil {
		return nil, fmt.Errorf("snooze: %w", err)
	}

	cfg := sw.config.Clone()
	cfg.IntervalMinutes = float64(interval)
	cfg.SnoozeMinutes = float64(snooze)
	cfg.QuietHours = quietHoursFromForm(sw.quietCheck.Checked, sw.quietStart.Selected, sw.quietEnd.Selected)
	cfg.TargetResourceID = deckIDForLabel(sw.decks, sw.deckSelect.Selected)
	cfg.AutoStart = sw.autoStart.Checked
	cfg.Chime = sw.chime.Checked
	cfg.BusyCalendars = sw.calendars.GetData()
	return cfg, nil
}

// withLiveFields returns form with the fields the settings window does not
// edit taken from live, so changes made from the tray while the window was
// open survive a save
func withLiveFields(live, form *models.Config) *models.Config {
	cfg := form.Clone()
	cfg.Enabled = live.Enabled
	cfg.CalendarRefreshMinutes = live.CalendarRefreshMinutes
	return cfg
}

// deckChoices sorts decks by name ignoring case, drops exact duplicates and
// puts "Use current deck" first. Names shared by several decks get their id
// appended so every label is unique.
func deckChoices(decks []host.Deck) []deckChoice {
	seen := make(map[host.Deck]bool)
	names := make(map[string]int)
	unique := make([]host.Deck, 0, len(decks))
	for _, d := range decks {
		if d.Name == "" || seen[d] {
			continue
		}
		seen[d] = true
		names[d.Name]++
		unique = append(unique, d)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		li, lj := strings.ToLower(unique[i].Name), strings.ToLower(unique[j].Name)
		if li != lj {
			return li < lj
		}
		return unique[i].ID < unique[j].ID
	})

	choices := []deckChoice{{Label: useCurrentDeck}}
	for _, d := range unique {
		id := d.ID
		label := d.Name
		if names[d.Name] > 1 {
			label = fmt.Sprintf("%s (%d)", d.Name, d.ID)
		}
		choices = append(choices, deckChoice{Label: label, ID: &id})
	}
	return choices
}

// selectedDeckLabel returns the label for target, or "Use current deck"
// when target is unset or no longer exists
func selectedDeckLabel(choices []deckChoice, target *int64) string {
	if target == nil {
		return useCurrentDeck
	}
	for _, c := range choices {
		if c.ID != nil && *c.ID == *target {
			return c.Label
		}
	}
	return useCurrentDeck
}

func deckIDForLabel(choices []deckChoice, label string) *int64 {
	for _, c := range choices {
		if c.Label == label && c.ID != nil {
			id := *c.ID
			return &id
		}
	}
	return nil
}

func parseMinutes(text string, min, max int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, errors.New("enter a whole number of minutes")
	}
	if v < min || v > max {
		return 0, fmt.Errorf("must be between %d and %d", min, max)
	}
	return v, nil
}

// quietHoursFromForm stores the out-of-range pair when quiet hours are off
func quietHoursFromForm(enabled bool, start, end string) models.QuietHours {
	if !enabled {
		return models.DisabledQuietHours()
	}
	s, errS := strconv.Atoi(start)
	e, errE := strconv.Atoi(end)
	if errS != nil || errE != nil {
		return models.DisabledQuietHours()
	}
	return models.QuietHours{Start: s, End: e}
}

func validateCalendarPath(path string) error {
	if !strings.HasSuffix(strings.ToLower(path), ".ics") {
		return errors.New("calendar files must end in .ics")
	}
	return nil
}

func hourOptions() []string {
	hours := make([]string, 24)
	for h := range hours {
		hours[h] = formatHour(h)
	}
	return hours
}

func formatHour(h int) string {
	return fmt.Sprintf("%02d", h)
}
