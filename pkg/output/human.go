package output

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/sdejongh/syncreplica/pkg/models"
)

// HumanFormatter formats pass summaries for a terminal
type HumanFormatter struct {
	writer io.Writer

	success *color.Color
	failure *color.Color
	faint   *color.Color
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter(writer io.Writer, useColor bool) *HumanFormatter {
	if writer == nil {
		writer = io.Discard
	}
	f := &HumanFormatter{
		writer:  writer,
		success: color.New(color.FgGreen, color.Bold),
		failure: color.New(color.FgRed, color.Bold),
		faint:   color.New(color.Faint),
	}
	if !useColor {
		for _, c := range []*color.Color{f.success, f.failure, f.faint} {
			c.DisableColor()
		}
	}
	return f
}

// Complete displays the pass summary
func (f *HumanFormatter) Complete(report *models.PassReport) error {
	status := f.success
	if report.Status != models.StatusSuccess {
		status = f.failure
	}

	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Pass %s %s in %s\n",
		f.faint.Sprint(shortID(report.ID)),
		status.Sprint(report.Status),
		report.Duration.Round(time.Millisecond))
	fmt.Fprintf(f.writer, "  Directories:      %d\n", report.Stats.DirsVisited)
	fmt.Fprintf(f.writer, "  Created:          %d\n", report.Stats.EntriesCreated)
	fmt.Fprintf(f.writer, "  Modified:         %d\n", report.Stats.FilesModified)
	fmt.Fprintf(f.writer, "  Replaced:         %d\n", report.Stats.EntriesReplaced)
	fmt.Fprintf(f.writer, "  Deleted:          %d\n", report.Stats.EntriesDeleted)
	fmt.Fprintf(f.writer, "  Data:             %s\n", humanize.IBytes(uint64(report.Stats.BytesTransferred)))

	if speed := averageSpeed(report); speed > 0 {
		fmt.Fprintf(f.writer, "  Average speed:    %s/s\n", humanize.IBytes(uint64(speed)))
	}

	if report.Error != nil {
		fmt.Fprintf(f.writer, "  %s %v\n", f.failure.Sprint("Error:"), report.Error)
	}

	return nil
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	_, werr := fmt.Fprintf(f.writer, "%s %v\n", f.failure.Sprint("Error:"), err)
	return werr
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

// averageSpeed returns bytes per second over the pass duration
func averageSpeed(report *models.PassReport) int64 {
	if report.Duration.Seconds() <= 0 {
		return 0
	}
	return int64(float64(report.Stats.BytesTransferred) / report.Duration.Seconds())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
