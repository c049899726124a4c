// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the structured logger used across sessionchat.
//
// Log output goes to stderr (or a file) so it never interleaves with chat
// output on stdout. The default level is warn to keep the CLI quiet.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// EnvLogLevel overrides the configured level when set.
const EnvLogLevel = "SESSIONCHAT_LOG_LEVEL"

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stderr, log.WarnLevel)
	output io.Writer = os.Stderr
)

func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: false,
		Level:           level,
	})
	return l
}

// Configure sets the level and destination. An empty level falls back to the
// SESSIONCHAT_LOG_LEVEL environment variable, then to "warn". An empty file
// logs to stderr.
func Configure(level, file string) error {
	if level == "" {
		level = os.Getenv(EnvLogLevel)
	}

	var w io.Writer = os.Stderr
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return err
		}
		w = f
	}

	mu.Lock()
	defer mu.Unlock()
	output = w
	logger = newLogger(w, ParseLevel(level))
	return nil
}

// SetOutput redirects the logger, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	logger.SetOutput(w)
}

// ParseLevel maps a level name to a log.Level, defaulting to warn.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning", "":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.WarnLevel
	}
}

// Logger returns the process-wide logger.
func Logger() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg interface{}, keyvals ...interface{}) { Logger().Debug(msg, keyvals...) }

// Info logs an info message with optional key-value pairs.
func Info(msg interface{}, keyvals ...interface{}) { Logger().Info(msg, keyvals...) }

// Warn logs a warning with optional key-value pairs.
func Warn(msg interface{}, keyvals ...interface{}) { Logger().Warn(msg, keyvals...) }

// Error logs an error with optional key-value pairs.
func Error(msg interface{}, keyvals ...interface{}) { Logger().Error(msg, keyvals...) }

// NewComponentLogger returns a logger prefixed with the component name that
// shares the global destination and level.
func NewComponentLogger(component string) *log.Logger {
	mu.RLock()
	w, level := output, logger.GetLevel()
	mu.RUnlock()

	styles := log.DefaultStyles()
	styles.Levels[log.DebugLevel] = levelStyle("DEBUG", "240")
	styles.Levels[log.InfoLevel] = levelStyle("INFO", "33")
	styles.Levels[log.WarnLevel] = levelStyle("WARN", "214")
	styles.Levels[log.ErrorLevel] = levelStyle("ERROR", "196")
	styles.Keys["err"] = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styles.Keys["state"] = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
	styles.Values["state"] = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))

	l := log.NewWithOptions(w, log.Options{
		Prefix: component,
		Level:  level,
	})
	l.SetStyles(styles)
	return l
}

func levelStyle(label, bg string) lipgloss.Style {
	return lipgloss.NewStyle().
		SetString(label).
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color(bg)).
		Foreground(lipgloss.Color("15"))
}
