package output

import (
	"fmt"
	"io"

	"github.com/sdejongh/syncreplica/pkg/models"
)

// Formatter renders the outcome of reconciliation passes.
// Implementations include human-readable and JSON formatters.
type Formatter interface {
	// Complete writes the summary of a finished (or aborted) pass
	Complete(report *models.PassReport) error

	// Error reports an error that ended or interrupted a pass
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// NewFormatter returns the formatter registered under name
func NewFormatter(name string, writer io.Writer, color bool) (Formatter, error) {
	switch name {
	case "", "human":
		return NewHumanFormatter(writer, color), nil
	case "json":
		return NewJSONFormatter(writer), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (expected human or json)", name)
	}
}
