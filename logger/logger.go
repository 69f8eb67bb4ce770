package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ZeroLogger implements Logger on top of zerolog.
type ZeroLogger struct {
	zlog *zerolog.Logger
}

var _ Logger = (*ZeroLogger)(nil)

// New creates a logger writing to stdout. Unrecognized levels fall back to
// info. If pretty is true, output is formatted for human readability.
func New(level string, pretty bool) *ZeroLogger {
	return NewWithWriter(os.Stdout, level, pretty)
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(w io.Writer, level string, pretty bool) *ZeroLogger {
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	l := zerolog.New(w).With().Timestamp().Logger()

	zLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		zLevel = zerolog.InfoLevel
	}
	l = l.Level(zLevel)

	return &ZeroLogger{zlog: &l}
}

// Noop returns a logger that discards every event.
func Noop() *ZeroLogger {
	l := zerolog.Nop()
	return &ZeroLogger{zlog: &l}
}

// Debug creates a debug-level log event.
func (l *ZeroLogger) Debug() LogEvent {
	return &event{e: l.zlog.Debug()}
}

// Info creates an info-level log event.
func (l *ZeroLogger) Info() LogEvent {
	return &event{e: l.zlog.Info()}
}

// Warn creates a warning-level log event.
func (l *ZeroLogger) Warn() LogEvent {
	return &event{e: l.zlog.Warn()}
}

// Error creates an error-level log event.
func (l *ZeroLogger) Error() LogEvent {
	return &event{e: l.zlog.Error()}
}

// WithFields returns a logger attaching the fields to every event.
func (l *ZeroLogger) WithFields(fields map[string]any) Logger {
	log := l.zlog.With().Fields(fields).Logger()
	return &ZeroLogger{zlog: &log}
}

// event adapts zerolog events to the LogEvent interface.
type event struct {
	e *zerolog.Event
}

func (ev *event) Msg(msg string) {
	ev.e.Msg(msg)
}

func (ev *event) Msgf(format string, args ...any) {
	ev.e.Msgf(format, args...)
}

func (ev *event) Err(err error) LogEvent {
	return &event{e: ev.e.Err(err)}
}

func (ev *event) Str(key, value string) LogEvent {
	return &event{e: ev.e.Str(key, value)}
}

func (ev *event) Int(key string, value int) LogEvent {
	return &event{e: ev.e.Int(key, value)}
}

func (ev *event) Int64(key string, value int64) LogEvent {
	return &event{e: ev.e.Int64(key, value)}
}

func (ev *event) Dur(key string, d time.Duration) LogEvent {
	return &event{e: ev.e.Dur(key, d)}
}

func (ev *event) Interface(key string, i any) LogEvent {
	return &event{e: ev.e.Interface(key, i)}
}
