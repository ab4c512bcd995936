// Package fileops applies copy and delete operations to the replica tree.
package fileops

import (
	"bufio"
	"context"
	"io"
	"path"

	"github.com/sdejongh/syncreplica/pkg/logging"
	"github.com/sdejongh/syncreplica/pkg/models"
	"github.com/sdejongh/syncreplica/pkg/ratelimit"
	"github.com/sdejongh/syncreplica/pkg/storage"
	"github.com/sdejongh/syncreplica/pkg/tree"
)

// DefaultBufferSize is the read buffer used when none is configured
const DefaultBufferSize = 64 * 1024

const (
	opCopy   = "copy"
	opDelete = "delete"
)

// Ops copies entries from the source backend to the replica backend and
// deletes entries from the replica backend. Operations run sequentially.
type Ops struct {
	source     storage.Backend
	replica    storage.Backend
	limiter    *ratelimit.Limiter
	exclude    *tree.Matcher
	logger     logging.Logger
	bufferSize int
}

// Option configures Ops
type Option func(*Ops)

// WithLimiter throttles copies to the limiter's rate
func WithLimiter(limiter *ratelimit.Limiter) Option {
	return func(o *Ops) { o.limiter = limiter }
}

// WithExclude skips excluded entries while copying directory trees
func WithExclude(exclude *tree.Matcher) Option {
	return func(o *Ops) { o.exclude = exclude }
}

// WithLogger sets the logger used for metadata warnings
func WithLogger(logger logging.Logger) Option {
	return func(o *Ops) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithBufferSize sets the read buffer size
func WithBufferSize(size int) Option {
	return func(o *Ops) {
		if size > 0 {
			o.bufferSize = size
		}
	}
}

// New creates file operations between two backends
func New(source, replica storage.Backend, opts ...Option) *Ops {
	o := &Ops{
		source:     source,
		replica:    replica,
		logger:     logging.Nop(),
		bufferSize: DefaultBufferSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Copy copies each named child of the source directory src into the
// replica directory dest and returns the number of bytes written.
//
// A directory is copied recursively and must not exist in dest yet; the
// error then matches fs.ErrExist. A file overwrites whatever file is at the
// destination. Modification time and permissions are preserved on a best
// effort basis.
func (o *Ops) Copy(ctx context.Context, names []string, src, dest string) (int64, error) {
	var total int64
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		srcPath, destPath := path.Join(src, name), path.Join(dest, name)
		info, err := o.source.Stat(ctx, srcPath)
		if err != nil {
			return total, &models.MutationError{Op: opCopy, Path: srcPath, Err: err}
		}

		var n int64
		if info.IsDir {
			n, err = o.copyDir(ctx, srcPath, destPath, info)
		} else {
			n, err = o.copyFile(ctx, srcPath, destPath, info)
		}
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Delete removes each named child of the replica directory dir. Directories
// are removed recursively. A symbolic link is removed itself, never its
// target, so dangling links are deleted too. A missing entry fails with an
// error matching fs.ErrNotExist.
func (o *Ops) Delete(ctx context.Context, names []string, dir string) error {
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}

		p := path.Join(dir, name)
		info, err := o.replica.Lstat(ctx, p)
		if err != nil {
			return &models.MutationError{Op: opDelete, Path: p, Err: err}
		}

		if info.IsDir {
			err = o.replica.RemoveAll(ctx, p)
		} else {
			err = o.replica.Remove(ctx, p)
		}
		if err != nil {
			return &models.MutationError{Op: opDelete, Path: p, Err: err}
		}

		o.logger.Debug(ctx, "Deleted", logging.Fields{"path": p, "directory": info.IsDir})
	}
	return nil
}

func (o *Ops) copyDir(ctx context.Context, srcPath, destPath string, info *storage.FileInfo) (int64, error) {
	if err := o.replica.Mkdir(ctx, destPath); err != nil {
		return 0, &models.MutationError{Op: opCopy, Path: destPath, Err: err}
	}

	children, err := o.source.ReadDir(ctx, srcPath)
	if err != nil {
		return 0, &models.MutationError{Op: opCopy, Path: srcPath, Err: err}
	}

	var total int64
	for _, child := range children {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		childSrc, childDest := path.Join(srcPath, child.Name), path.Join(destPath, child.Name)
		if o.exclude.Excluded(childSrc, child.IsDir) {
			continue
		}

		var n int64
		if child.IsDir {
			n, err = o.copyDir(ctx, childSrc, childDest, &child)
		} else {
			n, err = o.copyFile(ctx, childSrc, childDest, &child)
		}
		total += n
		if err != nil {
			return total, err
		}
	}

	// Applied last: copying children would bump the modification time
	o.setMetadata(ctx, destPath, info)
	return total, nil
}

func (o *Ops) copyFile(ctx context.Context, srcPath, destPath string, info *storage.FileInfo) (int64, error) {
	reader, err := o.source.Read(ctx, srcPath)
	if err != nil {
		return 0, &models.MutationError{Op: opCopy, Path: srcPath, Err: err}
	}
	defer reader.Close()

	counter := &countingReader{reader: bufio.NewReaderSize(reader, o.bufferSize)}
	var r io.Reader = counter
	if o.limiter != nil {
		r = ratelimit.NewReader(ctx, counter, o.limiter)
	}

	// The size is not enforced: the source may change between Stat and Read
	if err := o.replica.Write(ctx, destPath, r, -1); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return counter.n, ctxErr
		}
		return counter.n, &models.MutationError{Op: opCopy, Path: destPath, Err: err}
	}

	o.setMetadata(ctx, destPath, info)
	o.logger.Debug(ctx, "Copied", logging.Fields{"path": destPath, "bytes": counter.n})
	return counter.n, nil
}

func (o *Ops) setMetadata(ctx context.Context, p string, info *storage.FileInfo) {
	if err := o.replica.SetMetadata(ctx, p, info); err != nil {
		o.logger.Warn(ctx, "Failed to preserve metadata", logging.Fields{
			"path":  p,
			"error": err.Error(),
		})
	}
}

// countingReader counts the bytes read through it
type countingReader struct {
	reader io.Reader
	n      int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.reader.Read(p)
	c.n += int64(n)
	return n, err
}
