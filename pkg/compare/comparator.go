package compare

import (
	"context"
	"io"

	"github.com/sdejongh/syncreplica/pkg/storage"
)

// Result represents the outcome of comparing two files
type Result string

const (
	// Same indicates files are identical
	Same Result = "same"
	// Different indicates files differ
	Different Result = "different"
)

// Comparison holds the result of comparing two files
type Comparison struct {
	SourcePath string
	DestPath   string
	Result     Result
	Reason     string
}

// ReaderWrapper wraps readers opened during a comparison
type ReaderWrapper func(io.Reader) io.Reader

// Comparator defines the interface for file comparison algorithms.
// An error means the files could not be compared at all.
type Comparator interface {
	// Compare compares two files and returns the result
	Compare(ctx context.Context, source, dest storage.Backend, sourcePath, destPath string) (*Comparison, error)

	// Name returns the name of the comparison method
	Name() string
}
