package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Billy is a storage backend over a go-billy filesystem. It serves in-memory
// trees (memfs) as well as chrooted OS directories (osfs).
type Billy struct {
	fs   billy.Filesystem
	root string
}

// NewBilly wraps an existing go-billy filesystem
func NewBilly(fsys billy.Filesystem) *Billy {
	return &Billy{fs: fsys, root: fsys.Root()}
}

// NewMemory creates a backend over an empty in-memory filesystem
func NewMemory() *Billy {
	b := NewBilly(memfs.New())
	b.root = "memfs://"
	return b
}

// NewOS creates a backend over an OS directory chrooted at root
func NewOS(root string) (*Billy, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("billy: stat %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("billy: path is not a directory: %s", root)
	}
	return NewBilly(osfs.New(root)), nil
}

// Raw returns the underlying go-billy filesystem
func (b *Billy) Raw() billy.Filesystem {
	return b.fs
}

func billyPath(p string) string {
	if p == "" {
		return "."
	}
	return p
}

// ReadDir returns the immediate children of a directory
func (b *Billy) ReadDir(ctx context.Context, dir string) ([]FileInfo, error) {
	list, err := b.fs.ReadDir(billyPath(dir))
	if err != nil {
		return nil, fmt.Errorf("billy: readdir %q: %w", dir, err)
	}

	files := make([]FileInfo, 0, len(list))
	for _, info := range list {
		p := path.Join(dir, info.Name())
		// ReadDir may report links unresolved
		if info.Mode()&os.ModeSymlink != 0 {
			if target, err := b.fs.Stat(p); err == nil {
				info = target
			}
		}
		fi := toFileInfo(p, info)
		fi.Name = path.Base(p)
		files = append(files, fi)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Read opens a file for reading
func (b *Billy) Read(ctx context.Context, p string) (io.ReadCloser, error) {
	f, err := b.fs.Open(p)
	if err != nil {
		return nil, fmt.Errorf("billy: open %q: %w", p, err)
	}
	return f, nil
}

// Write creates or overwrites a file
func (b *Billy) Write(ctx context.Context, p string, reader io.Reader, size int64) error {
	f, err := b.fs.Create(p)
	if err != nil {
		return fmt.Errorf("billy: create %q: %w", p, err)
	}

	written, err := io.Copy(f, reader)
	if err != nil {
		f.Close()
		return fmt.Errorf("billy: write %q: %w", p, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("billy: close %q: %w", p, err)
	}

	if size >= 0 && written != size {
		return fmt.Errorf("billy: incomplete write %q: expected %d bytes, wrote %d", p, size, written)
	}
	return nil
}

// SetMetadata applies permissions and times when the filesystem supports
// billy.Change, and does nothing otherwise
func (b *Billy) SetMetadata(ctx context.Context, p string, metadata *FileInfo) error {
	change, ok := b.fs.(billy.Change)
	if !ok || metadata == nil {
		return nil
	}

	if metadata.Permissions != 0 {
		if err := change.Chmod(p, os.FileMode(metadata.Permissions)); err != nil {
			return fmt.Errorf("billy: chmod %q: %w", p, err)
		}
	}
	if !metadata.ModTime.IsZero() {
		if err := change.Chtimes(p, metadata.ModTime, metadata.ModTime); err != nil {
			return fmt.Errorf("billy: chtimes %q: %w", p, err)
		}
	}
	return nil
}

// Mkdir creates a single directory
func (b *Billy) Mkdir(ctx context.Context, p string) error {
	if _, err := b.fs.Lstat(p); err == nil {
		return fmt.Errorf("billy: mkdir %q: %w", p, &fs.PathError{Op: "mkdir", Path: p, Err: fs.ErrExist})
	}
	if err := b.fs.MkdirAll(p, 0755); err != nil {
		return fmt.Errorf("billy: mkdir %q: %w", p, err)
	}
	return nil
}

// Remove removes a file or an empty directory
func (b *Billy) Remove(ctx context.Context, p string) error {
	if err := b.fs.Remove(p); err != nil {
		return fmt.Errorf("billy: remove %q: %w", p, err)
	}
	return nil
}

// RemoveAll removes a directory tree
func (b *Billy) RemoveAll(ctx context.Context, p string) error {
	if _, err := b.fs.Lstat(p); err != nil {
		return fmt.Errorf("billy: removeall %q: %w", p, err)
	}
	if err := util.RemoveAll(b.fs, p); err != nil {
		return fmt.Errorf("billy: removeall %q: %w", p, err)
	}
	return nil
}

// Exists checks if a file or directory exists
func (b *Billy) Exists(ctx context.Context, p string) (bool, error) {
	_, err := b.fs.Stat(billyPath(p))
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fmt.Errorf("billy: stat %q: %w", p, err)
	}
}

// Stat returns file metadata
func (b *Billy) Stat(ctx context.Context, p string) (*FileInfo, error) {
	info, err := b.fs.Stat(billyPath(p))
	if err != nil {
		return nil, fmt.Errorf("billy: stat %q: %w", p, err)
	}
	fi := toFileInfo(p, info)
	if p == "" {
		fi.Name = ""
	} else {
		fi.Name = path.Base(p)
	}
	return &fi, nil
}

// Lstat returns file metadata without following a final symbolic link
func (b *Billy) Lstat(ctx context.Context, p string) (*FileInfo, error) {
	info, err := b.fs.Lstat(billyPath(p))
	if err != nil {
		return nil, fmt.Errorf("billy: lstat %q: %w", p, err)
	}
	fi := toFileInfo(p, info)
	fi.Name = path.Base(p)
	return &fi, nil
}

// Root describes the filesystem root
func (b *Billy) Root() string {
	return b.root
}

// Close is a no-op
func (b *Billy) Close() error {
	return nil
}
