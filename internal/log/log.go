// Package log provides structured debug logging for loupe.
// It wraps tea.LogToFile with leveled, categorized key=value entries and is
// enabled via the --debug flag or the LOUPE_DEBUG environment variable.
// Logging to a file keeps diagnostics off the terminal the TUI owns.
package log

import (
	"fmt"
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Category groups related log messages.
type Category string

const (
	CatGit     Category = "git"     // git CLI invocations
	CatWatcher Category = "watcher" // filesystem watcher events
	CatNav     Category = "nav"     // navigation stack transitions
	CatUI      Category = "ui"      // rendering and input
	CatConfig  Category = "config"  // configuration loading/saving
	CatCache   Category = "cache"   // fetch cache hits/misses
	CatTrace   Category = "trace"   // tracing subsystem lifecycle
)

type logger struct {
	mu       sync.Mutex
	writer   io.Closer
	out      io.Writer
	enabled  bool
	minLevel Level
}

var defaultLogger logger

// Init routes log output to path via tea.LogToFile and enables logging.
// Returns a cleanup function that closes the file.
func Init(path string) (func(), error) {
	f, err := tea.LogToFile(path, "loupe")
	if err != nil {
		return nil, err
	}

	defaultLogger.mu.Lock()
	defaultLogger.writer = f
	defaultLogger.out = f
	defaultLogger.enabled = true
	defaultLogger.minLevel = LevelDebug
	defaultLogger.mu.Unlock()

	return func() {
		defaultLogger.mu.Lock()
		defer defaultLogger.mu.Unlock()
		if defaultLogger.writer != nil {
			_ = defaultLogger.writer.Close()
			defaultLogger.writer = nil
			defaultLogger.out = nil
			defaultLogger.enabled = false
		}
	}, nil
}

// SetMinLevel raises or lowers the minimum logged level.
func SetMinLevel(level Level) {
	defaultLogger.mu.Lock()
	defaultLogger.minLevel = level
	defaultLogger.mu.Unlock()
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) { write(LevelDebug, cat, msg, fields...) }

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) { write(LevelInfo, cat, msg, fields...) }

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) { write(LevelWarn, cat, msg, fields...) }

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) { write(LevelError, cat, msg, fields...) }

// ErrorErr logs an error value alongside the message.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	}
	write(LevelError, cat, msg, fields...)
}

func write(level Level, cat Category, msg string, fields ...any) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()

	if !defaultLogger.enabled || defaultLogger.out == nil || level < defaultLogger.minLevel {
		return
	}

	// Format: 2026-01-02T15:04:05 [INFO] [watcher] message key=value
	entry := fmt.Sprintf("%s [%s] [%s] %s",
		time.Now().Format("2006-01-02T15:04:05"), level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		entry += fmt.Sprintf(" %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		entry += fmt.Sprintf(" %v=<missing>", fields[len(fields)-1])
	}

	_, _ = defaultLogger.out.Write([]byte(entry + "\n"))
}
