package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelCritical sits above slog.LevelError and marks conditions that
// terminate the process.
const LevelCritical = slog.Level(12)

// Logger is the application-wide structured logging surface.
// BusinessError records expected domain failures at warn level;
// InternalError records unexpected failures at error level.
type Logger interface {
	Debug(message string, args ...any)
	Info(message string, args ...any)
	Warn(message string, args ...any)
	Error(message string, args ...any)
	Critical(message string, args ...any)
	BusinessError(message string, err error, args ...any)
	InternalError(message string, err error, args ...any)
	With(args ...any) Logger
}

type slogLogger struct {
	base *slog.Logger
}

// NewFromEnv builds a Logger from LOG_LEVEL, LOG_FORMAT and ENV.
// Development defaults to debug level, everything else to info.
func NewFromEnv() Logger {
	env := normalize(os.Getenv("ENV"))
	return New(os.Stdout, parseLevel(os.Getenv("LOG_LEVEL"), env), normalize(os.Getenv("LOG_FORMAT")))
}

func New(output io.Writer, level slog.Level, format string) Logger {
	options := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: renameCriticalLevel,
	}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(output, options)
	} else {
		handler = slog.NewJSONHandler(output, options)
	}

	return &slogLogger{base: slog.New(handler)}
}

func (l *slogLogger) Debug(message string, args ...any) { l.base.Debug(message, args...) }
func (l *slogLogger) Info(message string, args ...any)  { l.base.Info(message, args...) }
func (l *slogLogger) Warn(message string, args ...any)  { l.base.Warn(message, args...) }
func (l *slogLogger) Error(message string, args ...any) { l.base.Error(message, args...) }

func (l *slogLogger) Critical(message string, args ...any) {
	l.base.Log(context.Background(), LevelCritical, message, args...)
}

func (l *slogLogger) BusinessError(message string, err error, args ...any) {
	if err == nil {
		return
	}
	l.base.Warn(message, append([]any{"err", err}, args...)...)
}

func (l *slogLogger) InternalError(message string, err error, args ...any) {
	if err == nil {
		return
	}
	l.base.Error(message, append([]any{"err", err}, args...)...)
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{base: l.base.With(args...)}
}

func parseLevel(value, env string) slog.Level {
	switch normalize(value) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "critical", "fatal":
		return LevelCritical
	default:
		if env == "development" {
			return slog.LevelDebug
		}
		return slog.LevelInfo
	}
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func renameCriticalLevel(_ []string, attr slog.Attr) slog.Attr {
	if attr.Key != slog.LevelKey {
		return attr
	}
	if level, ok := attr.Value.Any().(slog.Level); ok && level == LevelCritical {
		attr.Value = slog.StringValue("CRITICAL")
	}
	return attr
}
