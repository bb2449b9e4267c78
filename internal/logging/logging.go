// Package logging builds the structured loggers used across lingoland.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/pterm/pterm"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the rotating log file written inside the log directory.
const FileName = "lingoland.log"

// ParseLevel maps a config/flag level name to a pterm log level.
func ParseLevel(level string) (pterm.LogLevel, error) {
	switch level {
	case "trace":
		return pterm.LogLevelTrace, nil
	case "debug":
		return pterm.LogLevelDebug, nil
	case "", "info":
		return pterm.LogLevelInfo, nil
	case "warn":
		return pterm.LogLevelWarn, nil
	case "error":
		return pterm.LogLevelError, nil
	case "off":
		return pterm.LogLevelDisabled, nil
	}
	return pterm.LogLevelInfo, fmt.Errorf("invalid log level: %s", level)
}

// New returns a JSON logger writing to a rotating file in dir.
func New(level string, dir string) (*pterm.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log dir: %w", err)
	}

	w := &lumberjack.Logger{
		Filename:   filepath.Join(dir, FileName),
		MaxSize:    32, // MB
		MaxBackups: 1,
	}
	if lvl <= pterm.LogLevelDebug {
		w.MaxSize = 128
	}

	l := NewWriter(lvl, w)
	l.Info("Hello logging", l.Args("start", time.Now().Format(time.RFC3339)))
	l.Info("System information", l.Args(
		"goarch", runtime.GOARCH,
		"goos", runtime.GOOS,
		"go", runtime.Version(),
	))
	return l, nil
}

// NewWriter returns a JSON logger writing to w.
func NewWriter(level pterm.LogLevel, w io.Writer) *pterm.Logger {
	return pterm.DefaultLogger.
		WithLevel(level).
		WithWriter(w).
		WithFormatter(pterm.LogFormatterJSON)
}

// Discard returns a logger that drops everything.
func Discard() *pterm.Logger {
	return pterm.DefaultLogger.
		WithLevel(pterm.LogLevelDisabled).
		WithWriter(io.Discard)
}

// OrDiscard substitutes the discard logger for nil, so engines can be
// constructed without one.
func OrDiscard(l *pterm.Logger) *pterm.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
