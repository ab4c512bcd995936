package storage

import (
	"context"
	"io"
	"time"

	"github.com/sdejongh/syncreplica/pkg/models"
)

// FileInfo represents metadata about a file or directory
type FileInfo struct {
	Path        string
	Name        string
	Size        int64
	ModTime     time.Time
	IsDir       bool
	Permissions uint32
}

// Entry converts the info into a directory entry
func (fi FileInfo) Entry() models.Entry {
	kind := models.KindFile
	if fi.IsDir {
		kind = models.KindDirectory
	}
	return models.Entry{
		Name:        fi.Name,
		Kind:        kind,
		Size:        fi.Size,
		ModTime:     fi.ModTime,
		Permissions: fi.Permissions,
	}
}

// Backend defines the interface for storage operations.
// Paths are slash-separated and relative to the backend root; "" is the root.
// Errors wrap the underlying filesystem error so that errors.Is works with
// fs.ErrNotExist, fs.ErrExist and fs.ErrPermission.
type Backend interface {
	// ReadDir returns the immediate children of a directory, sorted by name.
	// Symbolic links are followed.
	ReadDir(ctx context.Context, path string) ([]FileInfo, error)

	// Read opens a file for reading
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write creates or overwrites a file with the given content.
	// size is the expected length, or -1 when unknown.
	Write(ctx context.Context, path string, reader io.Reader, size int64) error

	// SetMetadata applies modification time and permissions from metadata
	SetMetadata(ctx context.Context, path string, metadata *FileInfo) error

	// Mkdir creates a single directory; it fails if path already exists
	Mkdir(ctx context.Context, path string) error

	// Remove removes a file or an empty directory
	Remove(ctx context.Context, path string) error

	// RemoveAll removes a directory and everything below it.
	// Unlike os.RemoveAll it fails when path does not exist.
	RemoveAll(ctx context.Context, path string) error

	// Exists checks if a file or directory exists
	Exists(ctx context.Context, path string) (bool, error)

	// Stat returns file metadata, following symbolic links
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Lstat returns file metadata without following a final symbolic link
	Lstat(ctx context.Context, path string) (*FileInfo, error)

	// Root describes the backend root for reports and logs
	Root() string

	// Close releases any resources held by the backend
	Close() error
}
