package main

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"

	"github.com/borgmon/review-nudger/pkg/models"
	"github.com/borgmon/review-nudger/pkg/nudge"
	"github.com/borgmon/review-nudger/pkg/store"
)

func (n *Nudger) updateSystemTrayMenu() {
	desk, ok := n.app.(desktop.App)
	if !ok {
		return
	}

	now := time.Now()
	cfg := n.sched.Config()
	lines := statusLines(cfg, n.sched.State(), n.history.Summary(now), now)

	menuItems := []*fyne.MenuItem{}
	for _, line := range lines {
		item := fyne.NewMenuItem(line, nil)
		item.Disabled = true
		menuItems = append(menuItems, item)
	}
	menuItems = append(menuItems, fyne.NewMenuItemSeparator())

	menuItems = append(menuItems,
		fyne.NewMenuItem("Settings", n.showSettings),
		fyne.NewMenuItem("Toggle Enabled", n.toggleEnabled),
		fyne.NewMenuItem(fmt.Sprintf("Snooze %dm", cfg.SnoozeLabelMinutes()), n.quickSnooze),
		fyne.NewMenuItem("Reset Today", n.resetToday),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", n.quit),
	)

	menu := fyne.NewMenu(appName, menuItems...)
	fyne.Do(func() {
		desk.SetSystemTrayMenu(menu)
		desk.SetSystemTrayIcon(theme.InfoIcon())
	})
}

// statusLines describes the reminder state for the top of the tray menu
func statusLines(cfg *models.Config, st nudge.State, sum store.Summary, now time.Time) []string {
	var next string
	switch {
	case !cfg.Enabled:
		next = "Reminders off"
	case st.DisableUntil == models.DateKey(now):
		next = "Off for the rest of today"
	case cfg.QuietHours.IsQuietAt(now):
		next = fmt.Sprintf("Quiet hours until %02d:00", cfg.QuietHours.End)
	case !st.NextDue.After(now):
		next = "Next reminder: due now"
	default:
		next = "Next reminder: " + st.NextDue.Format("3:04 PM")
	}

	lines := []string{next}
	if sum.Prompts > 0 || sum.Deferred > 0 {
		lines = append(lines, fmt.Sprintf("Today: %d prompts, %d started, %d snoozed",
			sum.Prompts, sum.Started, sum.Snoozed))
	}
	if sum.Deferred > 0 {
		lines = append(lines, fmt.Sprintf("Held back by meetings: %d", sum.Deferred))
	}
	return lines
}
