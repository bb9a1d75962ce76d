// Package logger is the process-wide structured logger. Calls made before
// Init are discarded.
package logger

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// Options configures the logger.
type Options struct {
	Debug  bool
	JSON   bool      // Emit one JSON object per line instead of console text
	Writer io.Writer // Defaults to os.Stderr
}

var singleton atomic.Pointer[log.Logger]

// Init installs the global logger.
func Init(opts Options) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level := log.InfoLevel
	if opts.Debug {
		level = log.DebugLevel
	}
	lo := log.Options{
		ReportTimestamp: true,
		Level:           level,
	}
	if opts.JSON {
		lo.Formatter = log.JSONFormatter
	}
	singleton.Store(log.NewWithOptions(w, lo))
}

// With returns a logger carrying keyvals on every entry. Before Init the
// returned logger discards its output.
func With(keyvals ...any) *log.Logger {
	l := singleton.Load()
	if l == nil {
		return log.New(io.Discard).With(keyvals...)
	}
	return l.With(keyvals...)
}

// Info writes a message at INFO level.
func Info(message string, keyvals ...any) {
	if l := singleton.Load(); l != nil {
		l.Info(message, keyvals...)
	}
}

// Warn writes a message at WARN level.
func Warn(message string, keyvals ...any) {
	if l := singleton.Load(); l != nil {
		l.Warn(message, keyvals...)
	}
}

// Error writes a message at ERROR level.
func Error(message string, keyvals ...any) {
	if l := singleton.Load(); l != nil {
		l.Error(message, keyvals...)
	}
}

// Debug writes a message at DEBUG level.
func Debug(message string, keyvals ...any) {
	if l := singleton.Load(); l != nil {
		l.Debug(message, keyvals...)
	}
}
