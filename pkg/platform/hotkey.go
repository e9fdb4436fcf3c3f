package platform

import (
	"fmt"
	"sync"

	"golang.design/x/hotkey"

	"github.com/borgmon/review-nudger/pkg/logger"
)

// QuickSnoozeHotkey is a global Ctrl+Shift+S shortcut
type QuickSnoozeHotkey struct {
	onPress func()

	mu   sync.Mutex
	hk   *hotkey.Hotkey
	done chan struct{}
}

// NewQuickSnoozeHotkey calls onPress each time the shortcut is pressed
func NewQuickSnoozeHotkey(onPress func()) *QuickSnoozeHotkey {
	return &QuickSnoozeHotkey{onPress: onPress}
}

// Register grabs the shortcut and starts listening. On failure the app keeps
// running without it.
func (q *QuickSnoozeHotkey) Register() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.hk != nil {
		return nil
	}

	hk := hotkey.New([]hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeyS)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("register quick snooze hotkey: %w", err)
	}
	q.hk = hk
	q.done = make(chan struct{})
	logger.Info("Quick snooze hotkey registered", "keys", "ctrl+shift+s")

	go listen(hk.Keydown(), q.done, q.onPress)
	return nil
}

// listen calls onPress for every key down until done is closed. The keydown
// channel is never closed by the library.
func listen(keydown <-chan hotkey.Event, done <-chan struct{}, onPress func()) {
	for {
		select {
		case <-done:
			return
		case _, ok := <-keydown:
			if !ok {
				return
			}
			logger.Debug("Quick snooze hotkey pressed")
			if onPress != nil {
				onPress()
			}
		}
	}
}

// Unregister releases the shortcut
func (q *QuickSnoozeHotkey) Unregister() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.hk == nil {
		return
	}
	close(q.done)
	q.done = nil
	if err := q.hk.Unregister(); err != nil {
		logger.Warn("Failed to unregister hotkey", "error", err)
	}
	q.hk = nil
}
