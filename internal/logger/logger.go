// Package logger provides level-gated structured logging for the pipeline.
//
// Every entry is one line with fixed-width columns so that runs are easy to
// scan and grep:
//
//	2006-01-02 15:04:05.000 | PIPELINE | round_start          | INFO  | run=… round=1
//
// Entries below the configured minimum level are dropped.
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// Level is a log severity, ordered lowest to highest.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Logger writes structured log lines on behalf of a single component.
type Logger struct {
	component string
	level     Level
	out       *log.Logger
}

// New creates a Logger for the given component name, gated at the given
// level string. Unrecognized level strings default to "info".
func New(component, levelStr string) *Logger {
	return &Logger{
		component: strings.ToUpper(component),
		level:     ParseLevel(levelStr),
		// The full line is assembled here, so no prefix or flags.
		out: log.New(os.Stderr, "", 0),
	}
}

// Debug logs at DEBUG level.
func (l *Logger) Debug(action, msg string) { l.write(LevelDebug, "DEBUG", action, msg) }

// Info logs at INFO level.
func (l *Logger) Info(action, msg string) { l.write(LevelInfo, "INFO ", action, msg) }

// Warn logs at WARN level.
func (l *Logger) Warn(action, msg string) { l.write(LevelWarn, "WARN ", action, msg) }

// Error logs at ERROR level.
func (l *Logger) Error(action, msg string) { l.write(LevelError, "ERROR", action, msg) }

// Debugf logs a formatted message at DEBUG level.
func (l *Logger) Debugf(action, format string, args ...any) {
	l.Debug(action, fmt.Sprintf(format, args...))
}

// Infof logs a formatted message at INFO level.
func (l *Logger) Infof(action, format string, args ...any) {
	l.Info(action, fmt.Sprintf(format, args...))
}

// Warnf logs a formatted message at WARN level.
func (l *Logger) Warnf(action, format string, args ...any) {
	l.Warn(action, fmt.Sprintf(format, args...))
}

// Errorf logs a formatted message at ERROR level.
func (l *Logger) Errorf(action, format string, args ...any) {
	l.Error(action, fmt.Sprintf(format, args...))
}

func (l *Logger) write(level Level, label, action, msg string) {
	if level < l.level {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05.000")
	l.out.Printf("%s | %-8s | %-20s | %s | %s", ts, l.component, action, label, msg)
}

// ParseLevel converts a level string to a Level, defaulting to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}
