package platform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.design/x/hotkey"
)

func TestListenStopsOnDone(t *testing.T) {
	keydown := make(chan hotkey.Event)
	done := make(chan struct{})
	presses := make(chan struct{}, 4)

	stopped := make(chan struct{})
	go func() {
		listen(keydown, done, func() { presses <- struct{}{} })
		close(stopped)
	}()

	keydown <- hotkey.Event{}
	keydown <- hotkey.Event{}
	close(done)

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("listener kept running after done was closed")
	}
	assert.Len(t, presses, 2)
}

func TestListenWithoutCallback(t *testing.T) {
	keydown := make(chan hotkey.Event, 1)
	keydown <- hotkey.Event{}
	close(keydown)

	// A closed channel ends the loop too
	listen(keydown, make(chan struct{}), nil)
}
