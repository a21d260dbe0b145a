package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
	LevelNone
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelError:
		return "ERROR"
	case LevelNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

func LevelFromString(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO", "WARN", "WARNING":
		return LevelInfo
	case "ERROR":
		return LevelError
	case "NONE", "OFF":
		return LevelNone
	default:
		return LevelDebug // Default to DEBUG
	}
}

// slogLevel maps a Level onto the slog threshold. LevelNone sits above every
// slog level so nothing is emitted.
func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelError + 4
	}
}

// Logger is a printf-style wrapper around slog. Messages carry their own
// "[COMPONENT]" prefix; attributes added with With are appended by slog.
type Logger struct {
	logger *slog.Logger
	lvl    *slog.LevelVar
	level  Level
}

func New(out io.Writer, level Level) *Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(level.slogLevel())
	h := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Time is noise for a frame-driven app; drop it.
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
	return &Logger{logger: slog.New(h), lvl: lvl, level: level}
}

// Discard returns a logger that drops everything.
func Discard() *Logger { return New(io.Discard, LevelNone) }

func (l *Logger) Debugf(format string, v ...interface{}) {
	l.logf(slog.LevelDebug, format, v...)
}

func (l *Logger) Infof(format string, v ...interface{}) {
	l.logf(slog.LevelInfo, format, v...)
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	l.logf(slog.LevelError, format, v...)
}

// Warnf is shown at Info level or higher, matching the old behaviour.
func (l *Logger) Warnf(format string, v ...interface{}) {
	if l.level > LevelInfo {
		return
	}
	l.logf(slog.LevelWarn, format, v...)
}

func (l *Logger) logf(level slog.Level, format string, v ...interface{}) {
	if l == nil || !l.logger.Enabled(context.Background(), level) {
		return
	}
	l.logger.Log(context.Background(), level, fmt.Sprintf(format, v...))
}

// With returns a child logger that attaches key/value pairs to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{logger: l.logger.With(args...), lvl: l.lvl, level: l.level}
}

// SetLevel changes the threshold for this logger and every child created
// with With.
func (l *Logger) SetLevel(level Level) {
	l.level = level
	l.lvl.Set(level.slogLevel())
}

func (l *Logger) Level() Level {
	return l.level
}

// Slog exposes the underlying structured logger for libraries that want one.
func (l *Logger) Slog() *slog.Logger { return l.logger }
