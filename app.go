package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"github.com/spf13/afero"

	"github.com/borgmon/review-nudger/pkg/calendar"
	"github.com/borgmon/review-nudger/pkg/host"
	"github.com/borgmon/review-nudger/pkg/logger"
	"github.com/borgmon/review-nudger/pkg/models"
	"github.com/borgmon/review-nudger/pkg/nudge"
	"github.com/borgmon/review-nudger/pkg/platform"
	"github.com/borgmon/review-nudger/pkg/store"
)

const (
	appName = "Review Nudger"

	processPollInterval = 5 * time.Second
	collectionDebounce  = 2 * time.Second
	trayRefreshInterval = 30 * time.Second
)

// Nudger is the running tray application
type Nudger struct {
	app      fyne.App
	opts     *RunCmd
	runArgs  []string
	store    store.ConfigStore
	sched    *nudge.Scheduler
	history  *store.HistoryStore
	reminder *nudge.Reminder
	host     *host.Desktop
	busy     *calendar.Busy
	hotkey   *platform.QuickSnoozeHotkey

	process    *host.ProcessMonitor
	watcher    *host.CollectionWatcher
	collection *host.Collection

	mu       sync.Mutex
	prompt   *PromptWindow
	settings *SettingsWindow
	cancel   context.CancelFunc
}

func configStore(g *Globals, a fyne.App) store.ConfigStore {
	if g.ConfigPath != "" {
		return store.NewFileStore(afero.NewOsFs(), g.ConfigPath)
	}
	return store.NewPrefsStore(a)
}

// NewNudger loads settings and wires every component. Nothing runs until Run.
func NewNudger(a fyne.App, cfgStore store.ConfigStore, g *Globals, opts *RunCmd) (*Nudger, error) {
	cfg, err := cfgStore.Load()
	if err != nil {
		logger.Warn("Failed to load settings, using defaults", "error", err)
		cfg = models.DefaultConfig()
	}

	n := &Nudger{
		app:     a,
		opts:    opts,
		runArgs: runArgs(g, opts),
		store:   cfgStore,
		sched:   nudge.New(cfg, cfgStore, nudge.WithCancelDelay(opts.CancelDelay)),
		history: store.NewHistoryStore(),
		busy:    calendar.NewBusy(calendar.NewLoader(afero.NewOsFs()), cfg.BusyCalendars),
	}

	// Leave the interfaces nil when a detector is not configured
	var (
		process  host.ProcessState
		activity host.ActivityClock
		decks    host.DeckLookup
	)
	if opts.HostProcess != "" {
		n.process = host.NewProcessMonitor(opts.HostProcess, processPollInterval)
		process = n.process
	}
	if opts.Collection != "" {
		n.watcher = host.NewCollectionWatcher(opts.Collection, collectionDebounce)
		n.collection = host.NewCollection(opts.Collection)
		activity = n.watcher
		decks = n.collection
	}

	n.host = host.NewDesktop(process, activity, decks, host.DesktopOptions{
		Launch:       opts.Launch,
		ReviewWindow: opts.ReviewWindow,
		Notify:       n.notify,
	})

	n.reminder = nudge.NewReminder(n.sched, n.host, n,
		nudge.WithFocuser(platform.NewWindowFocuser(n.promptWindow)),
		nudge.WithBusyChecker(n.busy),
		nudge.WithRecorder(n.history),
	)
	n.hotkey = platform.NewQuickSnoozeHotkey(n.quickSnooze)

	if err := setupAutostart(cfg.AutoStart, n.runArgs); err != nil {
		logger.Warn("Failed to sync autostart", "error", err)
	}

	return n, nil
}

// Run blocks until the user quits
func (n *Nudger) Run() {
	n.app.Lifecycle().SetOnStarted(func() {
		platform.SetActivationPolicy()
		n.start()
	})
	n.app.Lifecycle().SetOnStopped(n.stop)

	n.updateSystemTrayMenu()
	n.app.Run()
}

func (n *Nudger) start() {
	ctx, cancel := context.WithCancel(context.Background())
	n.mu.Lock()
	n.cancel = cancel
	n.mu.Unlock()

	events := make(chan host.Event, 16)
	go host.Pump(ctx, events, n.sched)

	if n.process != nil {
		go n.process.Run(ctx, events)
	}
	if n.watcher != nil {
		go func() {
			if err := n.watcher.Run(ctx, events); err != nil {
				logger.Warn("Collection watcher stopped", "error", err)
			}
		}()
	}

	go n.reminder.Run(ctx, n.opts.Tick)
	go n.calendarLoop(ctx)
	go n.trayLoop(ctx)

	if err := n.hotkey.Register(); err != nil {
		logger.Warn("Quick snooze hotkey unavailable", "error", err)
	}

	logger.Info("Review Nudger started",
		"tick", n.opts.Tick,
		"cancel_delay", n.opts.CancelDelay,
		"host_process", n.opts.HostProcess,
		"collection", n.opts.Collection)
}

func (n *Nudger) stop() {
	n.mu.Lock()
	cancel := n.cancel
	n.cancel = nil
	n.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	n.hotkey.Unregister()
	logger.Info("Review Nudger stopped")
}

func (n *Nudger) quit() {
	n.stop()
	n.app.Quit()
}

// calendarLoop refreshes the busy calendars on the configured cadence
func (n *Nudger) calendarLoop(ctx context.Context) {
	for {
		cfg := n.sched.Config()
		n.busy.SetPaths(cfg.BusyCalendars)
		if len(cfg.BusyCalendars) > 0 || !n.busy.Loaded().IsZero() {
			if err := n.busy.Refresh(time.Now()); err != nil {
				logger.Debug("Calendar refresh incomplete", "error", err)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(cfg.CalendarRefresh()):
		}
	}
}

func (n *Nudger) trayLoop(ctx context.Context) {
	ticker := time.NewTicker(trayRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.updateSystemTrayMenu()
		}
	}
}

// Prompt implements nudge.Prompter with a window
func (n *Nudger) Prompt(p nudge.Prompt, respond func(models.Outcome)) {
	cfg := n.sched.Config()
	answer := func(o models.Outcome) {
		n.mu.Lock()
		n.prompt = nil
		n.mu.Unlock()

		respond(o)
		n.updateSystemTrayMenu()
	}

	pw := NewPromptWindow(n.app, p.SnoozeMinutes, cfg.Chime, answer)
	n.mu.Lock()
	n.prompt = pw
	n.mu.Unlock()
	pw.Show()
}

func (n *Nudger) promptWindow() fyne.Window {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.prompt == nil {
		return nil
	}
	return n.prompt.window
}

func (n *Nudger) notify(msg string) {
	logger.Info("Notice", "message", msg)
	n.app.SendNotification(fyne.NewNotification(appName, msg))
}

func (n *Nudger) toggleEnabled() {
	enabled, err := n.sched.ToggleEnabled()
	if err != nil {
		logger.Error("Failed to save enabled state", "error", err)
	}
	state := "OFF"
	if enabled {
		state = "ON"
	}
	n.notify(fmt.Sprintf("%s %s", appName, state))
	n.updateSystemTrayMenu()
}

func (n *Nudger) quickSnooze() {
	n.sched.QuickSnooze(time.Now())
	n.notify(fmt.Sprintf("Snoozed for %d minutes", n.sched.Config().SnoozeLabelMinutes()))
	n.updateSystemTrayMenu()
}

func (n *Nudger) resetToday() {
	n.sched.ResetToday()
	n.notify("Reset for today")
	n.updateSystemTrayMenu()
}

// saveSettings persists the settings window result and applies it
func (n *Nudger) saveSettings(cfg *models.Config) error {
	cfg = withLiveFields(n.sched.Config(), cfg)
	if err := n.sched.SaveConfig(cfg); err != nil {
		return err
	}
	if err := setupAutostart(cfg.AutoStart, n.runArgs); err != nil {
		logger.Warn("Failed to sync autostart", "error", err)
	}

	n.busy.SetPaths(cfg.BusyCalendars)
	go func() {
		if err := n.busy.Refresh(time.Now()); err != nil {
			logger.Debug("Calendar refresh incomplete", "error", err)
		}
	}()

	n.notify("Settings saved")
	n.updateSystemTrayMenu()
	return nil
}

func (n *Nudger) showSettings() {
	n.mu.Lock()
	existing := n.settings
	n.mu.Unlock()

	if existing != nil {
		existing.window.Show()
		existing.window.RequestFocus()
		return
	}

	sw := NewSettingsWindow(n.app, n.sched.Config(), n.listDecks, n.saveSettings)
	sw.window.SetOnClosed(func() {
		n.mu.Lock()
		n.settings = nil
		n.mu.Unlock()
	})
	n.mu.Lock()
	n.settings = sw
	n.mu.Unlock()
	sw.Show()
}

func (n *Nudger) listDecks() []host.Deck {
	if n.collection == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	decks, err := n.collection.Decks(ctx)
	if err != nil {
		logger.Warn("Could not list decks", "error", err)
		return nil
	}
	return decks
}
