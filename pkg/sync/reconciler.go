package sync

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sdejongh/syncreplica/pkg/fileops"
	"github.com/sdejongh/syncreplica/pkg/logging"
	"github.com/sdejongh/syncreplica/pkg/models"
	"github.com/sdejongh/syncreplica/pkg/tree"
)

// Reconciler makes the replica tree match the source tree
type Reconciler struct {
	comparator *tree.Comparator
	ops        *fileops.Ops
	reporter   Reporter
	logger     logging.Logger
}

// NewReconciler creates a reconciler. reporter and logger may be nil.
func NewReconciler(comparator *tree.Comparator, ops *fileops.Ops, reporter Reporter, logger logging.Logger) *Reconciler {
	if reporter == nil {
		reporter = nopReporter{}
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Reconciler{
		comparator: comparator,
		ops:        ops,
		reporter:   reporter,
		logger:     logger,
	}
}

// Reconcile brings the replica directory right in line with the source
// directory left, recursively. At every level it first descends into the
// common subdirectories, then creates, then modifies and replaces, then
// deletes. The first failed filesystem operation aborts the walk; the
// replica is then left partially updated.
func (r *Reconciler) Reconcile(ctx context.Context, left, right string) error {
	var stats models.Statistics
	return r.reconcile(ctx, left, right, false, &stats)
}

// Pass reconciles the two roots once and describes the outcome. The
// returned error is the one recorded in the report.
func (r *Reconciler) Pass(ctx context.Context) (*models.PassReport, error) {
	report := &models.PassReport{
		ID:          uuid.New().String(),
		SourcePath:  r.comparator.Source().Root(),
		ReplicaPath: r.comparator.Replica().Root(),
		StartTime:   time.Now(),
		Status:      models.StatusSuccess,
	}

	if s, ok := r.reporter.(PassScoper); ok {
		s.BeginPass(report.ID)
	}

	logger := r.logger.WithFields(logging.Fields{"pass_id": report.ID})
	logger.Info(ctx, "Starting reconciliation pass", logging.Fields{
		"source":  report.SourcePath,
		"replica": report.ReplicaPath,
	})

	err := r.reconcile(ctx, "", "", false, &report.Stats)

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)

	switch {
	case err == nil:
	case IsCancellation(err):
		report.Status = models.StatusCancelled
		report.Error = err
	default:
		report.Status = models.StatusFailed
		report.Error = err
	}

	fields := logging.Fields{
		"duration":          report.Duration.String(),
		"status":            report.Status,
		"dirs_visited":      report.Stats.DirsVisited,
		"entries_created":   report.Stats.EntriesCreated,
		"files_modified":    report.Stats.FilesModified,
		"entries_replaced":  report.Stats.EntriesReplaced,
		"entries_deleted":   report.Stats.EntriesDeleted,
		"bytes_transferred": report.Stats.BytesTransferred,
	}
	if report.Status == models.StatusFailed {
		logger.Error(ctx, "Reconciliation pass failed", err, fields)
	} else {
		logger.Info(ctx, "Reconciliation pass completed", fields)
	}

	return report, err
}

func (r *Reconciler) reconcile(ctx context.Context, left, right string, nested bool, stats *models.Statistics) error {
	compare := r.comparator.Compare
	if nested {
		compare = r.comparator.CompareChild
	}
	diff, err := compare(ctx, left, right)
	if err != nil {
		return err
	}
	stats.DirsVisited++

	for _, name := range diff.CommonDirs {
		if err := r.reconcile(ctx, diff.LeftChild(name), diff.RightChild(name), true, stats); err != nil {
			return err
		}
	}

	if len(diff.LeftOnly) > 0 {
		paths := childPaths(right, diff.LeftOnly)
		r.reporter.Report(eventMessage(paths, "created"))

		n, err := r.ops.Copy(ctx, diff.LeftOnly, left, right)
		stats.BytesTransferred += n
		if err != nil {
			return err
		}
		stats.EntriesCreated += len(diff.LeftOnly)
		r.reporter.Report(eventMessage(paths, "copied"))
	}

	if len(diff.DiffFiles) > 0 {
		n, err := r.ops.Copy(ctx, diff.DiffFiles, left, right)
		stats.BytesTransferred += n
		if err != nil {
			return err
		}
		stats.FilesModified += len(diff.DiffFiles)
		r.reporter.Report(eventMessage(childPaths(right, diff.DiffFiles), "modified"))
	}

	if len(diff.TypeConflicts) > 0 {
		if err := r.ops.Delete(ctx, diff.TypeConflicts, right); err != nil {
			return err
		}
		n, err := r.ops.Copy(ctx, diff.TypeConflicts, left, right)
		stats.BytesTransferred += n
		if err != nil {
			return err
		}
		stats.EntriesReplaced += len(diff.TypeConflicts)
		r.reporter.Report(eventMessage(childPaths(right, diff.TypeConflicts), "replaced"))
	}

	if len(diff.RightOnly) > 0 {
		if err := r.ops.Delete(ctx, diff.RightOnly, right); err != nil {
			return err
		}
		stats.EntriesDeleted += len(diff.RightOnly)
		r.reporter.Report(eventMessage(childPaths(right, diff.RightOnly), "deleted"))
	}

	return nil
}

// childPaths returns the root-relative paths of names below dir
func childPaths(dir string, names []string) []string {
	paths := make([]string, len(names))
	for i, name := range names {
		if dir == "" {
			paths[i] = name
		} else {
			paths[i] = dir + "/" + name
		}
	}
	return paths
}
