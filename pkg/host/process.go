package host

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/borgmon/review-nudger/pkg/logger"
)

var listProcessesFunc = ps.Processes

// ProcessMonitor polls the process table for the host executable and reports
// a ProfileOpened event each time it appears
type ProcessMonitor struct {
	name  string
	every time.Duration

	mu      sync.RWMutex
	running bool
}

// NewProcessMonitor watches for an executable whose name starts with name
func NewProcessMonitor(name string, every time.Duration) *ProcessMonitor {
	if every <= 0 {
		every = 5 * time.Second
	}
	return &ProcessMonitor{name: strings.ToLower(name), every: every}
}

// Running reports whether the host was running at the last poll
func (pm *ProcessMonitor) Running() bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.running
}

// Run polls until ctx is cancelled, sending events on out
func (pm *ProcessMonitor) Run(ctx context.Context, out chan<- Event) {
	ticker := time.NewTicker(pm.every)
	defer ticker.Stop()

	pm.poll(ctx, out)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pm.poll(ctx, out)
		}
	}
}

func (pm *ProcessMonitor) poll(ctx context.Context, out chan<- Event) {
	found, err := pm.find()
	if err != nil {
		logger.Warn("Could not list processes", "error", err)
		return
	}

	pm.mu.Lock()
	appeared := found && !pm.running
	if pm.running && !found {
		logger.Info("Host process exited", "name", pm.name)
	}
	pm.running = found
	pm.mu.Unlock()

	if appeared {
		logger.Info("Host process started", "name", pm.name)
		select {
		case out <- Event{Kind: ProfileOpened}:
		case <-ctx.Done():
		}
	}
}

func (pm *ProcessMonitor) find() (bool, error) {
	if pm.name == "" {
		return false, nil
	}
	procs, err := listProcessesFunc()
	if err != nil {
		return false, err
	}
	for _, p := range procs {
		exe := strings.ToLower(filepath.Base(p.Executable()))
		if strings.HasPrefix(exe, pm.name) {
			return true, nil
		}
	}
	return false, nil
}
