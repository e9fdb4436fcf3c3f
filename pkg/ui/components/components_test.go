package components

import (
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoldButtonConfirmsAfterHold(t *testing.T) {
	test.NewApp()

	var confirmed atomic.Int32
	b := NewHoldButton("Disable for Today (hold)", 150*time.Millisecond, func() {
		confirmed.Add(1)
	})

	b.Press()
	require.Eventually(t, func() bool { return confirmed.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, b.Progress())
}

func TestHoldButtonReleaseCancels(t *testing.T) {
	test.NewApp()

	var confirmed atomic.Int32
	b := NewHoldButton("Hold", 300*time.Millisecond, func() {
		confirmed.Add(1)
	})

	b.Press()
	time.Sleep(120 * time.Millisecond)
	b.Release()
	assert.Zero(t, b.Progress())

	time.Sleep(400 * time.Millisecond)
	assert.Zero(t, confirmed.Load())
}

func TestListManagerAddAndRemove(t *testing.T) {
	test.NewApp()

	var changes [][]string
	lm, box := NewListManager([]string{"/cal/work.ics"}, ListManagerConfig{
		OnChange: func(items []string) { changes = append(changes, items) },
	})
	require.NotNil(t, box)

	require.NoError(t, lm.AddItem("/cal/home.ics"))
	require.NoError(t, lm.AddItem("/cal/home.ics"))
	assert.Equal(t, []string{"/cal/work.ics", "/cal/home.ics"}, lm.GetData())

	lm.Select(0)
	lm.RemoveSelected()
	assert.Equal(t, []string{"/cal/home.ics"}, lm.GetData())

	// Nothing selected now
	lm.RemoveSelected()
	assert.Equal(t, []string{"/cal/home.ics"}, lm.GetData())

	assert.Len(t, changes, 2)
}

func TestListManagerValidation(t *testing.T) {
	test.NewApp()

	var shown error
	lm, _ := NewListManager(nil, ListManagerConfig{
		Validate: func(s string) error {
			if !strings.HasSuffix(s, ".ics") {
				return errors.New("calendar files must end in .ics")
			}
			return nil
		},
		OnError: func(err error) { shown = err },
	})

	lm.entry.SetText("  notes.txt ")
	lm.submit()
	assert.EqualError(t, shown, "calendar files must end in .ics")
	assert.Empty(t, lm.GetData())
	assert.Equal(t, "  notes.txt ", lm.entry.Text)

	lm.entry.SetText("/cal/work.ics")
	lm.submit()
	assert.Equal(t, []string{"/cal/work.ics"}, lm.GetData())
	assert.Empty(t, lm.entry.Text)
}

func TestListManagerSetData(t *testing.T) {
	test.NewApp()

	src := []string{"a.ics", "b.ics"}
	lm, _ := NewListManager(nil, ListManagerConfig{})
	lm.SetData(src)

	src[0] = "changed.ics"
	assert.Equal(t, []string{"a.ics", "b.ics"}, lm.GetData())
}
