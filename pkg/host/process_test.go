package host

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcess struct {
	pid int
	exe string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.exe }

func withProcesses(t *testing.T, list func() ([]ps.Process, error)) {
	t.Helper()
	orig := listProcessesFunc
	listProcessesFunc = list
	t.Cleanup(func() { listProcessesFunc = orig })
}

func TestProcessMonitorReportsStart(t *testing.T) {
	running := false
	withProcesses(t, func() ([]ps.Process, error) {
		procs := []ps.Process{fakeProcess{pid: 10, exe: "bash"}}
		if running {
			procs = append(procs, fakeProcess{pid: 11, exe: "Anki.exe"})
		}
		return procs, nil
	})

	pm := NewProcessMonitor("anki", time.Second)
	out := make(chan Event, 4)
	ctx := context.Background()

	pm.poll(ctx, out)
	assert.False(t, pm.Running())
	assert.Len(t, out, 0)

	running = true
	pm.poll(ctx, out)
	assert.True(t, pm.Running())
	require.Len(t, out, 1)
	assert.Equal(t, ProfileOpened, (<-out).Kind)

	// Still running: no second event
	pm.poll(ctx, out)
	assert.Len(t, out, 0)

	running = false
	pm.poll(ctx, out)
	assert.False(t, pm.Running())
	assert.Len(t, out, 0)
}

func TestProcessMonitorListError(t *testing.T) {
	withProcesses(t, func() ([]ps.Process, error) {
		return nil, errors.New("permission denied")
	})

	pm := NewProcessMonitor("anki", time.Second)
	out := make(chan Event, 1)
	pm.poll(context.Background(), out)

	assert.False(t, pm.Running())
	assert.Len(t, out, 0)
}

func TestProcessMonitorEmptyName(t *testing.T) {
	withProcesses(t, func() ([]ps.Process, error) {
		t.Fatal("process list should not be read")
		return nil, nil
	})

	found, err := NewProcessMonitor("", 0).find()
	require.NoError(t, err)
	assert.False(t, found)
}
