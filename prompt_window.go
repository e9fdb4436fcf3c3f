package main

import (
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/borgmon/review-nudger/pkg/audio"
	"github.com/borgmon/review-nudger/pkg/models"
	"github.com/borgmon/review-nudger/pkg/ui/components"
)

const (
	promptMessage   = "Time to review! Do you want to start now?"
	disableHoldTime = 1500 * time.Millisecond
)

// PromptWindow asks whether to start a review. Every way of leaving it,
// including the close button, produces exactly one outcome.
type PromptWindow struct {
	window        fyne.Window
	app           fyne.App
	snoozeMinutes int
	chime         bool
	respond       func(models.Outcome)

	once     sync.Once
	playerMu sync.Mutex
	player   *audio.Player
	answered bool
}

// NewPromptWindow builds the window on the UI thread; call Show to display it
func NewPromptWindow(app fyne.App, snoozeMinutes int, chime bool, respond func(models.Outcome)) *PromptWindow {
	pw := &PromptWindow{
		app:           app,
		snoozeMinutes: snoozeMinutes,
		chime:         chime,
		respond:       respond,
	}

	fyne.Do(func() {
		pw.window = app.NewWindow(appName)
		pw.window.SetFixedSize(true)
		pw.buildUI()

		// Closing the window counts as Cancel
		pw.window.SetOnClosed(func() {
			pw.finish(models.OutcomeCancel)
		})
	})

	return pw
}

func (pw *PromptWindow) buildUI() {
	message := canvas.NewText(promptMessage, nil)
	message.TextSize = 20
	message.Alignment = fyne.TextAlignCenter

	startButton := widget.NewButton("Start Review", func() {
		pw.answer(models.OutcomeStart)
	})
	startButton.Importance = widget.HighImportance

	snoozeButton := widget.NewButton(fmt.Sprintf("Snooze %dm", pw.snoozeMinutes), func() {
		pw.answer(models.OutcomeSnooze)
	})

	disableButton := components.NewHoldButton("Disable for Today (hold)", disableHoldTime, func() {
		pw.answer(models.OutcomeDisableToday)
	})

	cancelButton := widget.NewButton("Cancel", func() {
		pw.answer(models.OutcomeCancel)
	})

	buttons := container.NewGridWithColumns(4, startButton, snoozeButton, disableButton, cancelButton)

	content := container.NewVBox(
		container.NewPadded(message),
		widget.NewSeparator(),
		buttons,
	)
	pw.window.SetContent(container.NewPadded(content))
	pw.window.CenterOnScreen()
}

// Show displays the window and starts the chime when enabled
func (pw *PromptWindow) Show() {
	if pw.chime {
		player := audio.PlayChime()
		pw.playerMu.Lock()
		if pw.answered {
			player.Stop()
		}
		pw.player = player
		pw.playerMu.Unlock()
	}
	fyne.Do(func() {
		if pw.window != nil {
			pw.window.Show()
		}
	})
}

func (pw *PromptWindow) answer(outcome models.Outcome) {
	pw.finish(outcome)
	fyne.Do(func() {
		if pw.window != nil {
			pw.window.Close()
		}
	})
}

// finish reports the first outcome; later calls are ignored
func (pw *PromptWindow) finish(outcome models.Outcome) {
	pw.once.Do(func() {
		pw.playerMu.Lock()
		pw.answered = true
		pw.player.Stop()
		pw.playerMu.Unlock()
		// Starting a review may run an external command; keep the UI thread free
		go pw.respond(outcome)
	})
}
