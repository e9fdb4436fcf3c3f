package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/emersion/go-autostart"

	"github.com/borgmon/review-nudger/pkg/logger"
)

// runArgs rebuilds the command line of the running instance so the login
// item starts with the same settings source and host detection
func runArgs(g *Globals, opts *RunCmd) []string {
	args := []string{"run"}
	if g.ConfigPath != "" {
		args = append(args, "--config="+g.ConfigPath)
	}
	if g.LogDir != "" {
		args = append(args, "--log-dir="+g.LogDir)
	}
	if g.Debug {
		args = append(args, "--debug")
	}
	args = append(args,
		"--tick="+opts.Tick.String(),
		"--cancel-delay="+opts.CancelDelay.String(),
		"--host-process="+opts.HostProcess,
		"--review-window="+opts.ReviewWindow.String(),
	)
	if opts.Collection != "" {
		args = append(args, "--collection="+opts.Collection)
	}
	if opts.Launch != "" {
		args = append(args, "--launch="+opts.Launch)
	}
	return args
}

func autostartApp(args []string) (*autostart.App, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(execPath); err == nil {
		execPath = resolved
	}

	return &autostart.App{
		Name:        "review-nudger",
		DisplayName: appName,
		Exec:        append([]string{execPath}, args...),
	}, nil
}

// setupAutostart makes the login item match the setting. An enabled item is
// rewritten so it carries the current arguments.
func setupAutostart(enable bool, args []string) error {
	app, err := autostartApp(args)
	if err != nil {
		return err
	}

	switch {
	case enable:
		wasEnabled := app.IsEnabled()
		if err := app.Enable(); err != nil {
			return fmt.Errorf("enable autostart: %w", err)
		}
		if !wasEnabled {
			logger.Info("Autostart enabled", "args", args)
		}
	case !enable && app.IsEnabled():
		if err := app.Disable(); err != nil {
			return fmt.Errorf("disable autostart: %w", err)
		}
		logger.Info("Autostart disabled")
	}
	return nil
}
