// Package logger writes the tray app's log to a size-rotated file. A tray app
// has no console, so stderr only gets a copy in debug mode.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the log file inside the log directory
const FileName = "review-nudger.log"

const (
	maxSizeMB  = 5
	maxBackups = 3
	maxAgeDays = 14
)

var (
	// Logger is nil until Init succeeds; the helpers below drop messages
	// until then
	Logger *log.Logger

	rotator *lumberjack.Logger
)

// Config selects the level and where the file goes
type Config struct {
	Debug  bool
	LogDir string
}

// Init opens the log file and installs the package logger
func Init(cfg Config) error {
	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		return err
	}

	rotator = &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, FileName),
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}

	var out io.Writer = rotator
	level := log.InfoLevel
	if cfg.Debug {
		out = io.MultiWriter(os.Stderr, rotator)
		level = log.DebugLevel
	}

	Logger = log.NewWithOptions(out, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "nudger",
	})
	return nil
}

// Close flushes and closes the log file. Later messages are dropped.
func Close() error {
	Logger = nil
	if rotator == nil {
		return nil
	}
	err := rotator.Close()
	rotator = nil
	return err
}

// DefaultDir is <user config dir>/review-nudger/logs, or the same under the
// temp dir when there is no config dir
func DefaultDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "review-nudger", "logs")
}

func logAt(level log.Level, msg string, keyvals []interface{}) {
	if Logger == nil {
		return
	}
	Logger.Log(level, msg, keyvals...)
}

func Debug(msg string, keyvals ...interface{}) { logAt(log.DebugLevel, msg, keyvals) }

func Info(msg string, keyvals ...interface{}) { logAt(log.InfoLevel, msg, keyvals) }

func Warn(msg string, keyvals ...interface{}) { logAt(log.WarnLevel, msg, keyvals) }

func Error(msg string, keyvals ...interface{}) { logAt(log.ErrorLevel, msg, keyvals) }
