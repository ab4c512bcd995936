package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.TimestampFieldName = "timestamp"
	zerolog.MessageFieldName = "message"
	zerolog.ErrorFieldName = "error"
	zerolog.TimeFieldFormat = "2006-01-02T15:04:05.000Z07:00"
	zerolog.LevelFieldMarshalFunc = func(l zerolog.Level) string {
		return strings.ToUpper(l.String())
	}
}

// Output is one destination of a ZerologLogger
type Output struct {
	// Writer receives the encoded entries
	Writer io.Writer
	// Format is the entry encoding
	Format Format
	// Color enables ANSI colors in text format
	Color bool
	// MinLevel drops entries below this level for this output only
	MinLevel Level
}

// levelFilter applies a per-output minimum level inside a MultiLevelWriter
type levelFilter struct {
	w   io.Writer
	min zerolog.Level
}

func (f levelFilter) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

func (f levelFilter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < f.min {
		return len(p), nil
	}
	return f.w.Write(p)
}

// ZerologLogger implements Logger on top of zerolog. Several outputs can be
// written at once, each with its own format.
type ZerologLogger struct {
	zl      zerolog.Logger
	closers *[]io.Closer
}

// New creates a logger writing every entry at or above level to all outputs
func New(level Level, outputs ...Output) *ZerologLogger {
	writers := make([]io.Writer, 0, len(outputs))
	for _, out := range outputs {
		if out.Writer == nil {
			continue
		}
		w := encoderFor(out)
		if out.MinLevel > DebugLevel {
			w = levelFilter{w: w, min: zerologLevel(out.MinLevel)}
		}
		writers = append(writers, w)
	}

	var w io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		w = writers[0]
	default:
		w = zerolog.MultiLevelWriter(writers...)
	}

	closers := make([]io.Closer, 0)
	return &ZerologLogger{
		zl:      zerolog.New(w).Level(zerologLevel(level)).With().Timestamp().Logger(),
		closers: &closers,
	}
}

// Attach registers a resource that Close releases
func (l *ZerologLogger) Attach(c io.Closer) *ZerologLogger {
	*l.closers = append(*l.closers, c)
	return l
}

func encoderFor(out Output) io.Writer {
	if out.Format == FormatJSON {
		return out.Writer
	}
	return zerolog.ConsoleWriter{
		Out:        out.Writer,
		NoColor:    !out.Color,
		TimeFormat: zerolog.TimeFieldFormat,
		FormatLevel: func(i interface{}) string {
			s, ok := i.(string)
			if !ok {
				return "[UNKNOWN]"
			}
			return "[" + strings.ToUpper(s) + "]"
		},
	}
}

func zerologLevel(level Level) zerolog.Level {
	switch level {
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug logs a debug message
func (l *ZerologLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.zl.Debug().Fields(map[string]interface{}(fields)).Msg(msg)
}

// Info logs an info message
func (l *ZerologLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.zl.Info().Fields(map[string]interface{}(fields)).Msg(msg)
}

// Warn logs a warning message
func (l *ZerologLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.zl.Warn().Fields(map[string]interface{}(fields)).Msg(msg)
}

// Error logs an error message
func (l *ZerologLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.zl.Error().Err(err).Fields(map[string]interface{}(fields)).Msg(msg)
}

// WithFields returns a logger with additional fields. The child shares the
// outputs of its parent.
func (l *ZerologLogger) WithFields(fields Fields) Logger {
	return &ZerologLogger{
		zl:      l.zl.With().Fields(map[string]interface{}(fields)).Logger(),
		closers: l.closers,
	}
}

// Close releases every attached resource
func (l *ZerologLogger) Close() error {
	var errs []error
	for _, c := range *l.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	*l.closers = (*l.closers)[:0]
	if len(errs) > 0 {
		return fmt.Errorf("failed to close logger: %w", errors.Join(errs...))
	}
	return nil
}
