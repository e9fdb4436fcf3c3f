// Package platform holds the OS specific pieces: focus, activation policy
// and the global hotkey.
package platform

import (
	"fyne.io/fyne/v2"

	"github.com/borgmon/review-nudger/pkg/logger"
)

// WindowFocuser raises a window above other applications
type WindowFocuser struct {
	window func() fyne.Window
}

// NewWindowFocuser focuses whatever window the getter returns at call time.
// The getter may return nil when no window is open.
func NewWindowFocuser(window func() fyne.Window) *WindowFocuser {
	return &WindowFocuser{window: window}
}

// BringToFront shows, focuses and activates the window. Best effort: any
// panic from the driver is logged and swallowed.
func (f *WindowFocuser) BringToFront() {
	fyne.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Warn("Could not bring window to front", "error", r)
			}
		}()

		w := f.window()
		if w == nil {
			return
		}
		w.Show()
		w.RequestFocus()
		if !IsAppActive() {
			ActivateApp()
		}
	})
}
