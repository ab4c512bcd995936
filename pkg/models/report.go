package models

import (
	"time"
)

// PassReport represents the results of one reconciliation pass
type PassReport struct {
	// Pass details
	ID          string
	SourcePath  string
	ReplicaPath string

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Statistics
	Stats Statistics

	// Error is the error that aborted the pass, if any
	Error error

	// Overall status
	Status PassStatus
}

// Statistics holds pass metrics
type Statistics struct {
	// Directory levels compared
	DirsVisited int

	// Entries handled, counted per top-level name of each batch
	EntriesCreated  int
	FilesModified   int
	EntriesReplaced int
	EntriesDeleted  int

	// Data transfer
	BytesTransferred int64
}

// Operations returns the number of entries touched by the pass
func (s Statistics) Operations() int {
	return s.EntriesCreated + s.FilesModified + s.EntriesReplaced + s.EntriesDeleted
}

// PassStatus represents the overall result of a pass
type PassStatus string

const (
	// StatusSuccess indicates the replica now matches the source
	StatusSuccess PassStatus = "success"
	// StatusFailed indicates an operation failed and the pass was aborted
	StatusFailed PassStatus = "failed"
	// StatusCancelled indicates the pass was interrupted by cancellation
	StatusCancelled PassStatus = "cancelled"
)

// ExitCode returns the appropriate exit code for the pass status
func (s PassStatus) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusFailed:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}
