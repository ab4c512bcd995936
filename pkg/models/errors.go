package models

import (
	"errors"
	"fmt"
)

// ErrNotADirectory is returned when a compared path exists but is not a
// directory
var ErrNotADirectory = errors.New("not a directory")

// Side names which tree a path belongs to
type Side string

const (
	// SideSource is the authoritative tree
	SideSource Side = "source"
	// SideReplica is the mutated tree
	SideReplica Side = "replica"
)

// ConfigurationError reports that a path handed to the comparator is missing
// or is not a directory. It is fatal to the run.
type ConfigurationError struct {
	Side Side
	Path string
	Err  error
}

func (e *ConfigurationError) Error() string {
	p := e.Path
	if p == "" {
		p = "."
	}
	return fmt.Sprintf("%s directory %q: %v", e.Side, p, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// MutationError reports a failed copy or delete. It aborts the current pass.
type MutationError struct {
	// Op is the filesystem operation that failed: "copy" or "delete"
	Op   string
	Path string
	Err  error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether err carries a ConfigurationError
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
