package tree

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/sdejongh/syncreplica/pkg/compare"
	"github.com/sdejongh/syncreplica/pkg/logging"
	"github.com/sdejongh/syncreplica/pkg/models"
	"github.com/sdejongh/syncreplica/pkg/storage"
)

// Comparator computes the differences between one directory of the source
// tree and one directory of the replica tree. Each call inspects a single
// level; callers drive the recursion.
type Comparator struct {
	source  storage.Backend
	replica storage.Backend
	files   compare.Comparator
	exclude *Matcher
	logger  logging.Logger
}

// NewComparator creates a tree comparator. exclude and logger may be nil.
func NewComparator(source, replica storage.Backend, files compare.Comparator, exclude *Matcher, logger logging.Logger) *Comparator {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Comparator{
		source:  source,
		replica: replica,
		files:   files,
		exclude: exclude,
		logger:  logger,
	}
}

// Source returns the authoritative backend
func (c *Comparator) Source() storage.Backend {
	return c.source
}

// Replica returns the mutated backend
func (c *Comparator) Replica() storage.Backend {
	return c.replica
}

// Compare lists both directories and classifies every child name. Common
// files are compared byte-for-byte; a file that cannot be read counts as
// different. left and right are the roots of the walk: it fails with a
// *models.ConfigurationError when either is not an existing directory.
func (c *Comparator) Compare(ctx context.Context, left, right string) (*models.DiffResult, error) {
	return c.compare(ctx, left, right, false, false)
}

// CompareChild is Compare for a level reached by descending into a common
// directory. A path that is missing or no longer a directory there means the
// tree changed during the walk; the error is ordinary and not fatal to a run.
func (c *Comparator) CompareChild(ctx context.Context, left, right string) (*models.DiffResult, error) {
	return c.compare(ctx, left, right, true, false)
}

// Equal reports whether the two trees hold the same names, the same kinds
// and byte-identical files, recursively. It stops at the first difference.
func (c *Comparator) Equal(ctx context.Context, left, right string) (bool, error) {
	return c.equal(ctx, left, right, false)
}

func (c *Comparator) equal(ctx context.Context, left, right string, nested bool) (bool, error) {
	diff, err := c.compare(ctx, left, right, nested, true)
	if err != nil {
		return false, err
	}
	if !diff.Identical() {
		return false, nil
	}

	for _, name := range diff.CommonDirs {
		equal, err := c.equal(ctx, diff.LeftChild(name), diff.RightChild(name), true)
		if err != nil || !equal {
			return false, err
		}
	}
	return true, nil
}

func (c *Comparator) compare(ctx context.Context, left, right string, nested, stopAtFirstDiff bool) (*models.DiffResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	leftEntries, err := c.list(ctx, c.source, models.SideSource, left, nested)
	if err != nil {
		return nil, err
	}
	rightEntries, err := c.list(ctx, c.replica, models.SideReplica, right, nested)
	if err != nil {
		return nil, err
	}
	c.applyExclusions(left, right, leftEntries, rightEntries)

	diff := &models.DiffResult{
		LeftPath:     left,
		RightPath:    right,
		LeftEntries:  leftEntries,
		RightEntries: rightEntries,
		Reasons:      make(map[string]string),
	}

	for name, l := range leftEntries {
		r, ok := rightEntries[name]
		switch {
		case !ok:
			diff.LeftOnly = append(diff.LeftOnly, name)
		case l.IsDir() && r.IsDir():
			diff.CommonDirs = append(diff.CommonDirs, name)
		case !l.IsDir() && !r.IsDir():
			diff.CommonFiles = append(diff.CommonFiles, name)
		default:
			diff.TypeConflicts = append(diff.TypeConflicts, name)
		}
	}
	for name := range rightEntries {
		if _, ok := leftEntries[name]; !ok {
			diff.RightOnly = append(diff.RightOnly, name)
		}
	}

	sort.Strings(diff.LeftOnly)
	sort.Strings(diff.RightOnly)
	sort.Strings(diff.CommonDirs)
	sort.Strings(diff.CommonFiles)
	sort.Strings(diff.TypeConflicts)

	if stopAtFirstDiff && !diff.Identical() {
		return diff, nil
	}

	for _, name := range diff.CommonFiles {
		same, reason, err := c.sameContent(ctx, diff.LeftChild(name), diff.RightChild(name))
		if err != nil {
			return nil, err
		}
		if same {
			continue
		}
		diff.DiffFiles = append(diff.DiffFiles, name)
		diff.Reasons[name] = reason
		if stopAtFirstDiff {
			break
		}
	}

	return diff, nil
}

// sameContent compares two files. Only cancellation is returned as an error;
// any other failure makes the files different.
func (c *Comparator) sameContent(ctx context.Context, left, right string) (bool, string, error) {
	result, err := c.files.Compare(ctx, c.source, c.replica, left, right)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, "", ctxErr
		}
		c.logger.Debug(ctx, "File comparison failed, treating as different", logging.Fields{
			"source":  left,
			"replica": right,
			"error":   err.Error(),
		})
		return false, fmt.Sprintf("comparison failed: %v", err), nil
	}
	return result.Result == compare.Same, result.Reason, nil
}

// list returns the children of dir keyed by name. A missing or non-directory
// root is a *models.ConfigurationError; on a nested level the same condition
// is a race with a concurrent writer and only fails the current pass.
func (c *Comparator) list(ctx context.Context, backend storage.Backend, side models.Side, dir string, nested bool) (map[string]models.Entry, error) {
	info, err := backend.Stat(ctx, dir)
	switch {
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("failed to access %s directory %q: %w", side, dir, err)
	case err != nil:
		err = fs.ErrNotExist
	case !info.IsDir:
		err = models.ErrNotADirectory
	}
	if err != nil {
		if nested {
			return nil, fmt.Errorf("%s directory %q changed during comparison: %w", side, dir, err)
		}
		return nil, &models.ConfigurationError{Side: side, Path: dir, Err: err}
	}

	children, err := backend.ReadDir(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s directory %q: %w", side, dir, err)
	}

	entries := make(map[string]models.Entry, len(children))
	for _, child := range children {
		entries[child.Name] = child.Entry()
	}
	return entries, nil
}

// applyExclusions drops excluded names from both listings. A name is
// decided once per level: when the entry on either side matches, it is
// hidden on both.
func (c *Comparator) applyExclusions(left, right string, leftEntries, rightEntries map[string]models.Entry) {
	if c.exclude.Len() == 0 {
		return
	}

	excluded := func(dir, name string, entries map[string]models.Entry) bool {
		e, ok := entries[name]
		return ok && c.exclude.Excluded(path.Join(dir, name), e.IsDir())
	}

	for _, entries := range []map[string]models.Entry{leftEntries, rightEntries} {
		for name := range entries {
			if excluded(left, name, leftEntries) || excluded(right, name, rightEntries) {
				delete(leftEntries, name)
				delete(rightEntries, name)
			}
		}
	}
}
