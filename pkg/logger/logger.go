// Package logger provides the logging interface used by notification channels.
// Implementations take slog-style key/value pairs; the zap adapter is the
// production backend and StandardLogger covers tools and tests.
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// Silent suppresses all log output.
	Silent LogLevel = iota + 1
	// Error only logs error messages.
	Error
	// Warn logs warnings and errors.
	Warn
	// Info logs informational messages, warnings, and errors.
	Info
	// Debug logs all messages including debug information.
	Debug
)

// ParseLevel maps a configuration string to a LogLevel. Unknown values map to Info.
func ParseLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent", "off", "none":
		return Silent
	case "error":
		return Error
	case "warn", "warning":
		return Warn
	case "debug":
		return Debug
	default:
		return Info
	}
}

// Logger is the interface that wraps the basic logging methods.
type Logger interface {
	// LogMode sets the log level and returns a new logger instance.
	LogMode(level LogLevel) Logger
	// Info logs an informational message with structured key-value pairs.
	Info(msg string, args ...any)
	// Warn logs a warning message with structured key-value pairs.
	Warn(msg string, args ...any)
	// Error logs an error message with structured key-value pairs.
	Error(msg string, args ...any)
	// Debug logs a debug message with structured key-value pairs.
	Debug(msg string, args ...any)
}

// StandardLogger writes through the standard log package.
type StandardLogger struct {
	logger *log.Logger
	level  LogLevel
	prefix string
}

// NewStandardLogger creates a new logger with the given writer and configuration.
func NewStandardLogger(writer *log.Logger, level LogLevel, prefix string) Logger {
	return &StandardLogger{
		logger: writer,
		level:  level,
		prefix: prefix,
	}
}

// LogMode sets the log level and returns a new logger instance.
func (l *StandardLogger) LogMode(level LogLevel) Logger {
	newLogger := *l
	newLogger.level = level
	return &newLogger
}

func (l *StandardLogger) Info(msg string, args ...any) {
	if l.level >= Info {
		l.logger.Print(l.formatLog("INFO", msg, args...))
	}
}

func (l *StandardLogger) Warn(msg string, args ...any) {
	if l.level >= Warn {
		l.logger.Print(l.formatLog("WARN", msg, args...))
	}
}

func (l *StandardLogger) Error(msg string, args ...any) {
	if l.level >= Error {
		l.logger.Print(l.formatLog("ERROR", msg, args...))
	}
}

func (l *StandardLogger) Debug(msg string, args ...any) {
	if l.level >= Debug {
		l.logger.Print(l.formatLog("DEBUG", msg, args...))
	}
}

func (l *StandardLogger) formatLog(level, msg string, args ...any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s", l.prefix, level, msg)
	for i := 0; i < len(args); i += 2 {
		var val any = "(no value)"
		if i+1 < len(args) {
			val = args[i+1]
		}
		fmt.Fprintf(&b, " %v=%v", args[i], val)
	}
	return b.String()
}

type discardLogger struct{}

func (d *discardLogger) LogMode(LogLevel) Logger { return d }
func (d *discardLogger) Info(string, ...any)     {}
func (d *discardLogger) Warn(string, ...any)     {}
func (d *discardLogger) Error(string, ...any)    {}
func (d *discardLogger) Debug(string, ...any)    {}

// Discard is a logger that discards all output.
var Discard Logger = &discardLogger{}

// New returns a default logger that writes to stdout.
func New() Logger {
	return NewStandardLogger(log.New(os.Stdout, "", log.LstdFlags), Info, "[reportnotify]")
}
