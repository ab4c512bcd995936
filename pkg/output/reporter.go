package output

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/sdejongh/syncreplica/pkg/logging"
)

// LogReporter writes change events to a logger at INFO level, tagged with
// the ID of the current pass
type LogReporter struct {
	mu     sync.Mutex
	base   logging.Logger
	logger logging.Logger
}

// NewLogReporter creates a reporter backed by logger
func NewLogReporter(logger logging.Logger) *LogReporter {
	return &LogReporter{base: logger, logger: logger}
}

// BeginPass tags subsequent events with the pass ID
func (r *LogReporter) BeginPass(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = r.base.WithFields(logging.Fields{"pass_id": id})
}

// Report logs message
func (r *LogReporter) Report(message string) {
	r.mu.Lock()
	logger := r.logger
	r.mu.Unlock()
	logger.Info(context.Background(), message, nil)
}

// ConsoleReporter prints change events, one per line, with a timestamp.
// Lines are colored by the kind of change they describe.
type ConsoleReporter struct {
	mu     sync.Mutex
	writer io.Writer
	now    func() time.Time

	colors map[string]*color.Color
	faint  *color.Color
}

// NewConsoleReporter creates a console reporter
func NewConsoleReporter(writer io.Writer, useColor bool) *ConsoleReporter {
	r := &ConsoleReporter{
		writer: writer,
		now:    time.Now,
		colors: map[string]*color.Color{
			"created":  color.New(color.FgGreen),
			"copied":   color.New(color.FgGreen),
			"modified": color.New(color.FgYellow),
			"replaced": color.New(color.FgMagenta),
			"deleted":  color.New(color.FgRed),
		},
		faint: color.New(color.Faint),
	}
	if !useColor {
		r.faint.DisableColor()
		for _, c := range r.colors {
			c.DisableColor()
		}
	}
	return r
}

// Report prints message. Write errors are ignored.
func (r *ConsoleReporter) Report(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := message
	if c := r.colorFor(message); c != nil {
		line = c.Sprint(message)
	}
	fmt.Fprintf(r.writer, "%s %s\n", r.faint.Sprint(r.now().Format("2006-01-02 15:04:05")), line)
}

func (r *ConsoleReporter) colorFor(message string) *color.Color {
	for verb, c := range r.colors {
		if strings.HasSuffix(message, " was "+verb) {
			return c
		}
	}
	return nil
}

// Reporter is the subset of reporting behavior shared by all reporters
type Reporter interface {
	Report(message string)
}

// MultiReporter fans each event out to several reporters
type MultiReporter []Reporter

// BeginPass forwards the pass ID to every reporter that tags events with it
func (m MultiReporter) BeginPass(id string) {
	for _, r := range m {
		if s, ok := r.(interface{ BeginPass(id string) }); ok {
			s.BeginPass(id)
		}
	}
}

// Report forwards message to every reporter
func (m MultiReporter) Report(message string) {
	for _, r := range m {
		if r != nil {
			r.Report(message)
		}
	}
}

// Recorder keeps every reported message in memory
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

// Report records message
func (r *Recorder) Report(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

// Messages returns a copy of the recorded messages
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

// Reset forgets all recorded messages
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}
