package models

import "path"

// DiffResult is the outcome of comparing the immediate children of two
// directories. All name slices are sorted.
//
// LeftOnly, RightOnly, CommonDirs, CommonFiles and TypeConflicts partition the
// union of both directories' entry names. DiffFiles is a subset of CommonFiles.
type DiffResult struct {
	// LeftPath is the compared directory on the source side
	LeftPath string

	// RightPath is the compared directory on the replica side
	RightPath string

	// LeftOnly holds names that exist only in the source directory
	LeftOnly []string

	// RightOnly holds names that exist only in the replica directory
	RightOnly []string

	// CommonDirs holds names that are directories on both sides
	CommonDirs []string

	// CommonFiles holds names that are files on both sides
	CommonFiles []string

	// DiffFiles holds common files whose contents differ
	DiffFiles []string

	// TypeConflicts holds names that are a directory on one side and a file
	// on the other
	TypeConflicts []string

	// LeftEntries and RightEntries index the listed children by name
	LeftEntries  map[string]Entry
	RightEntries map[string]Entry

	// Reasons explains each name in DiffFiles
	Reasons map[string]string
}

// Identical reports whether this level needs no operation. Subdirectories
// are not inspected.
func (d *DiffResult) Identical() bool {
	return len(d.LeftOnly) == 0 &&
		len(d.RightOnly) == 0 &&
		len(d.DiffFiles) == 0 &&
		len(d.TypeConflicts) == 0
}

// LeftChild returns the source-side path of a child entry
func (d *DiffResult) LeftChild(name string) string {
	return path.Join(d.LeftPath, name)
}

// RightChild returns the replica-side path of a child entry
func (d *DiffResult) RightChild(name string) string {
	return path.Join(d.RightPath, name)
}

// Difference describes one pending operation found by a read-only walk
type Difference struct {
	// RelativePath is the replica path relative to the root
	RelativePath string `json:"path"`

	// Action is the operation a reconciliation pass would perform
	Action Action `json:"action"`

	// Kind is the kind of the source entry (replica entry for deletions)
	Kind EntryKind `json:"kind"`

	// Details explains the difference
	Details string `json:"details,omitempty"`
}
