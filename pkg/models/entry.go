package models

import (
	"time"
)

// EntryKind classifies an immediate child of a directory
type EntryKind string

const (
	// KindFile is a regular file (or anything that is not a directory)
	KindFile EntryKind = "file"
	// KindDirectory is a directory
	KindDirectory EntryKind = "directory"
)

// Entry represents one immediate child of a directory
type Entry struct {
	// Name is the base name of the entry
	Name string

	// Kind is the entry kind
	Kind EntryKind

	// Size in bytes (zero for directories)
	Size int64

	// ModTime is the last modification time
	ModTime time.Time

	// Permissions are the file mode bits
	Permissions uint32
}

// IsDir reports whether the entry is a directory
func (e Entry) IsDir() bool {
	return e.Kind == KindDirectory
}

// Action represents what was done to a replica entry
type Action string

const (
	// ActionCreate copies an entry that only exists in the source
	ActionCreate Action = "create"
	// ActionModify overwrites a replica file whose content differs
	ActionModify Action = "modify"
	// ActionReplace swaps a replica entry whose kind differs from the source
	ActionReplace Action = "replace"
	// ActionDelete removes an entry that only exists in the replica
	ActionDelete Action = "delete"
)
