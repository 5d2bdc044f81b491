package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts a *zap.Logger to the Logger interface.
type ZapLogger struct {
	logger *zap.Logger
	level  LogLevel
}

// NewZapLogger wraps z. Level filtering happens both here and in z's core.
func NewZapLogger(z *zap.Logger, level LogLevel) Logger {
	return &ZapLogger{logger: z, level: level}
}

// NewFromConfig builds a zap-backed logger. format "console" selects the
// development encoder; anything else produces JSON.
func NewFromConfig(level, format string) (Logger, error) {
	lvl := ParseLevel(level)

	var cfg zap.Config
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(toZapLevel(lvl))

	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return NewZapLogger(z, lvl), nil
}

// LogMode sets the log level and returns a new logger instance.
func (l *ZapLogger) LogMode(level LogLevel) Logger {
	return &ZapLogger{logger: l.logger, level: level}
}

func (l *ZapLogger) Info(msg string, args ...any) {
	if l.level >= Info {
		l.logger.Info(msg, fields(args)...)
	}
}

func (l *ZapLogger) Warn(msg string, args ...any) {
	if l.level >= Warn {
		l.logger.Warn(msg, fields(args)...)
	}
}

func (l *ZapLogger) Error(msg string, args ...any) {
	if l.level >= Error {
		l.logger.Error(msg, fields(args)...)
	}
}

func (l *ZapLogger) Debug(msg string, args ...any) {
	if l.level >= Debug {
		l.logger.Debug(msg, fields(args)...)
	}
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}

func fields(args []any) []zap.Field {
	out := make([]zap.Field, 0, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key := fmt.Sprint(args[i])
		if i+1 >= len(args) {
			out = append(out, zap.String(key, "(no value)"))
			break
		}
		if err, ok := args[i+1].(error); ok {
			out = append(out, zap.NamedError(key, err))
			continue
		}
		out = append(out, zap.Any(key, args[i+1]))
	}
	return out
}

func toZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case Debug:
		return zapcore.DebugLevel
	case Warn:
		return zapcore.WarnLevel
	case Error:
		return zapcore.ErrorLevel
	case Silent:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
