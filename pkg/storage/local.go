package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// Local is a filesystem-based storage backend
type Local struct {
	rootPath string
}

// NewLocal creates a new local filesystem backend
func NewLocal(rootPath string) (*Local, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absPath)
	}

	return &Local{rootPath: absPath}, nil
}

func (l *Local) fullPath(p string) string {
	return filepath.Join(l.rootPath, filepath.FromSlash(p))
}

// ReadDir returns the immediate children of a directory
func (l *Local) ReadDir(ctx context.Context, dir string) ([]FileInfo, error) {
	fullPath := l.fullPath(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, d := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		p := filepath.Join(fullPath, d.Name())

		// Follow symlinks; a dangling link is listed as the link itself
		info, err := os.Stat(p)
		if err != nil {
			info, err = d.Info()
			if err != nil {
				return nil, fmt.Errorf("failed to stat %s: %w", d.Name(), err)
			}
		}

		files = append(files, toFileInfo(p, info))
	}

	return files, nil
}

// Read opens a file for reading
func (l *Local) Read(ctx context.Context, p string) (io.ReadCloser, error) {
	file, err := os.Open(l.fullPath(p))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Write creates or overwrites a file
func (l *Local) Write(ctx context.Context, p string, reader io.Reader, size int64) error {
	fullPath := l.fullPath(p)

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(file, reader)
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	if size >= 0 && written != size {
		return fmt.Errorf("incomplete write: expected %d bytes, wrote %d", size, written)
	}

	return nil
}

// SetMetadata preserves modification time and permissions
func (l *Local) SetMetadata(ctx context.Context, p string, metadata *FileInfo) error {
	if metadata == nil {
		return nil
	}
	fullPath := l.fullPath(p)

	if metadata.Permissions != 0 {
		if err := os.Chmod(fullPath, os.FileMode(metadata.Permissions)); err != nil {
			return fmt.Errorf("failed to set permissions: %w", err)
		}
	}

	if !metadata.ModTime.IsZero() {
		if err := os.Chtimes(fullPath, metadata.ModTime, metadata.ModTime); err != nil {
			return fmt.Errorf("failed to set modification time: %w", err)
		}
	}

	return nil
}

// Mkdir creates a single directory
func (l *Local) Mkdir(ctx context.Context, p string) error {
	if err := os.Mkdir(l.fullPath(p), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// Remove removes a file or an empty directory
func (l *Local) Remove(ctx context.Context, p string) error {
	if err := os.Remove(l.fullPath(p)); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}
	return nil
}

// RemoveAll removes a directory tree
func (l *Local) RemoveAll(ctx context.Context, p string) error {
	fullPath := l.fullPath(p)

	if _, err := os.Lstat(fullPath); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}

	if err := os.RemoveAll(fullPath); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}

	return nil
}

// Exists checks if a file or directory exists
func (l *Local) Exists(ctx context.Context, p string) (bool, error) {
	_, err := os.Stat(l.fullPath(p))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check existence: %w", err)
}

// Stat returns file metadata
func (l *Local) Stat(ctx context.Context, p string) (*FileInfo, error) {
	fullPath := l.fullPath(p)

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	fi := toFileInfo(fullPath, info)
	if p == "" {
		fi.Name = ""
	} else {
		fi.Name = path.Base(p)
	}
	return &fi, nil
}

// Lstat returns file metadata of the entry itself; a symbolic link is
// reported as a non-directory
func (l *Local) Lstat(ctx context.Context, p string) (*FileInfo, error) {
	fullPath := l.fullPath(p)

	info, err := os.Lstat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to lstat file: %w", err)
	}

	fi := toFileInfo(fullPath, info)
	fi.Name = path.Base(p)
	return &fi, nil
}

// Root returns the absolute root path
func (l *Local) Root() string {
	return l.rootPath
}

// Close releases resources (no-op for local filesystem)
func (l *Local) Close() error {
	return nil
}

func toFileInfo(p string, info fs.FileInfo) FileInfo {
	fi := FileInfo{
		Path:        p,
		Name:        info.Name(),
		ModTime:     info.ModTime(),
		IsDir:       info.IsDir(),
		Permissions: uint32(info.Mode().Perm()),
	}
	if !fi.IsDir {
		fi.Size = info.Size()
	}
	return fi
}
