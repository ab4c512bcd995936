package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sdejongh/syncreplica/pkg/models"
)

// JSONFormatter writes one JSON document per line for automation and scripting
type JSONFormatter struct {
	encoder *json.Encoder
}

// JSONEvent represents a single event in the JSON output stream
type JSONEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
}

// JSONReportData represents a pass summary
type JSONReportData struct {
	ID          string        `json:"id"`
	SourcePath  string        `json:"source_path"`
	ReplicaPath string        `json:"replica_path"`
	Status      string        `json:"status"`
	Duration    string        `json:"duration"`
	DurationMs  int64         `json:"duration_ms"`
	Stats       JSONStatsData `json:"stats"`
	Error       string        `json:"error,omitempty"`
}

// JSONStatsData represents pass statistics in JSON format
type JSONStatsData struct {
	DirsVisited      int    `json:"dirs_visited"`
	EntriesCreated   int    `json:"entries_created"`
	FilesModified    int    `json:"files_modified"`
	EntriesReplaced  int    `json:"entries_replaced"`
	EntriesDeleted   int    `json:"entries_deleted"`
	BytesTransferred int64  `json:"bytes_transferred"`
	AverageSpeed     int64  `json:"average_speed_bytes_per_sec,omitempty"`
	AverageSpeedStr  string `json:"average_speed,omitempty"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(writer io.Writer) *JSONFormatter {
	if writer == nil {
		writer = io.Discard
	}
	return &JSONFormatter{encoder: json.NewEncoder(writer)}
}

// Complete writes a "pass" event
func (f *JSONFormatter) Complete(report *models.PassReport) error {
	data := JSONReportData{
		ID:          report.ID,
		SourcePath:  report.SourcePath,
		ReplicaPath: report.ReplicaPath,
		Status:      string(report.Status),
		Duration:    report.Duration.Round(time.Millisecond).String(),
		DurationMs:  report.Duration.Milliseconds(),
		Stats: JSONStatsData{
			DirsVisited:      report.Stats.DirsVisited,
			EntriesCreated:   report.Stats.EntriesCreated,
			FilesModified:    report.Stats.FilesModified,
			EntriesReplaced:  report.Stats.EntriesReplaced,
			EntriesDeleted:   report.Stats.EntriesDeleted,
			BytesTransferred: report.Stats.BytesTransferred,
		},
	}
	if speed := averageSpeed(report); speed > 0 {
		data.Stats.AverageSpeed = speed
		data.Stats.AverageSpeedStr = humanize.IBytes(uint64(speed)) + "/s"
	}
	if report.Error != nil {
		data.Error = report.Error.Error()
	}

	return f.encoder.Encode(JSONEvent{
		Timestamp: report.EndTime,
		Type:      "pass",
		Data:      data,
	})
}

// Error writes an "error" event
func (f *JSONFormatter) Error(err error) error {
	return f.encoder.Encode(JSONEvent{
		Timestamp: time.Now(),
		Type:      "error",
		Data: map[string]string{
			"error": err.Error(),
		},
	})
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
