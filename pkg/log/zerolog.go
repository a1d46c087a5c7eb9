package log

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/YuminosukeSato/pcaffine/pkg/errors"
	"github.com/rs/zerolog"
)

// ZerologLogger implements Logger on top of zerolog.
//
// Errors that carry a structured type from pkg/errors (anywhere in their
// wrap chain) are logged twice: as the error string under the given key and
// as a zerolog object under "<key>_detail".
type ZerologLogger struct {
	z zerolog.Logger
}

// NewZerologLogger creates a JSON zerolog logger writing to w.
func NewZerologLogger(w io.Writer, level Level) *ZerologLogger {
	z := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &ZerologLogger{z: z}
}

// NewConsoleLogger creates a human-readable zerolog logger writing to w.
func NewConsoleLogger(w io.Writer, level Level) *ZerologLogger {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	z := zerolog.New(cw).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &ZerologLogger{z: z}
}

func (l *ZerologLogger) Debug(msg string, fields ...any) { l.emit(l.z.Debug(), msg, fields) }
func (l *ZerologLogger) Info(msg string, fields ...any) { l.emit(l.z.Info(), msg, fields) }
func (l *ZerologLogger) Warn(msg string, fields ...any) { l.emit(l.z.Warn(), msg, fields) }
func (l *ZerologLogger) Error(msg string, fields ...any) { l.emit(l.z.Error(), msg, fields) }

// With implements Logger.With.
func (l *ZerologLogger) With(fields ...any) Logger {
	ctx := l.z.With()
	for i := 0; i+1 < len(fields); i += 2 {
		ctx = ctx.Interface(fmt.Sprint(fields[i]), fieldValue(fields[i+1]))
	}
	return &ZerologLogger{z: ctx.Logger()}
}

// Enabled implements Logger.Enabled.
func (l *ZerologLogger) Enabled(_ context.Context, level Level) bool {
	return l.z.GetLevel() <= toZerologLevel(level)
}

// CaptureWarnings routes errors.Warn through this logger at warn level.
func (l *ZerologLogger) CaptureWarnings() {
	errors.SetZerologWarnFunc(func(w error) {
		ev := l.z.Warn()
		if m, ok := w.(zerolog.LogObjectMarshaler); ok {
			ev = ev.Object("warning", m)
		}
		ev.Msg(w.Error())
	})
}

func (l *ZerologLogger) emit(ev *zerolog.Event, msg string, fields []any) {
	if ev == nil {
		return
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		switch v := fields[i+1].(type) {
		case error:
			ev = ev.AnErr(key, v)
			var m zerolog.LogObjectMarshaler
			if errors.As(v, &m) {
				ev = ev.Object(key+"_detail", m)
			}
		case string:
			ev = ev.Str(key, v)
		case int:
			ev = ev.Int(key, v)
		case int64:
			ev = ev.Int64(key, v)
		case float64:
			ev = ev.Float64(key, v)
		case float32:
			ev = ev.Float32(key, v)
		case bool:
			ev = ev.Bool(key, v)
		case time.Duration:
			ev = ev.Dur(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}

func fieldValue(v any) any {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return v
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
