package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sdejongh/syncreplica/pkg/logging"
	"github.com/sdejongh/syncreplica/pkg/models"
	"github.com/sdejongh/syncreplica/pkg/output"
	"github.com/sdejongh/syncreplica/pkg/tree"
)

// RunnerConfig controls the polling loop
type RunnerConfig struct {
	// Interval is the pause between checks once the replica is in sync
	Interval time.Duration

	// ExitOnError ends the run on the first failed pass instead of retrying
	// after one interval
	ExitOnError bool

	// Once performs a single check, and a single pass if needed, then returns
	Once bool
}

// Validate checks the configuration
func (c RunnerConfig) Validate() error {
	if c.Interval <= 0 {
		return &models.ValidationError{Field: "interval", Message: "must be positive"}
	}
	return nil
}

// Runner polls the two trees and reconciles them whenever they differ
type Runner struct {
	config     RunnerConfig
	comparator *tree.Comparator
	reconciler *Reconciler
	formatter  output.Formatter
	logger     logging.Logger
}

// NewRunner creates a runner. formatter and logger may be nil.
func NewRunner(config RunnerConfig, comparator *tree.Comparator, reconciler *Reconciler, formatter output.Formatter, logger logging.Logger) (*Runner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Runner{
		config:     config,
		comparator: comparator,
		reconciler: reconciler,
		formatter:  formatter,
		logger:     logger,
	}, nil
}

// Run loops until ctx is cancelled. When the trees are equal it sleeps one
// interval; otherwise it runs a pass and checks again right away.
//
// Run returns nil on cancellation. A ConfigurationError always ends the run.
// A failed pass ends it only when ExitOnError is set (or in Once mode);
// otherwise the runner waits one interval and starts over.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info(ctx, "Starting synchronization", logging.Fields{
		"source":   r.comparator.Source().Root(),
		"replica":  r.comparator.Replica().Root(),
		"interval": r.config.Interval.String(),
	})

	for {
		if ctx.Err() != nil {
			return r.stopped(ctx)
		}

		equal, err := r.comparator.Equal(ctx, "", "")
		if err != nil {
			if stop, err := r.handleError(ctx, err); stop {
				return err
			}
			if !r.sleep(ctx) {
				return r.stopped(ctx)
			}
			continue
		}

		if equal {
			r.logger.Debug(ctx, "Replica is in sync", nil)
			if r.config.Once {
				return nil
			}
			if !r.sleep(ctx) {
				return r.stopped(ctx)
			}
			continue
		}

		report, err := r.reconciler.Pass(ctx)
		if r.formatter != nil && report != nil {
			if ferr := r.formatter.Complete(report); ferr != nil {
				r.logger.Warn(ctx, "Failed to write pass summary", logging.Fields{"error": ferr.Error()})
			}
		}

		if err != nil {
			if stop, err := r.handleError(ctx, err); stop {
				return err
			}
			if !r.sleep(ctx) {
				return r.stopped(ctx)
			}
			continue
		}

		if r.config.Once {
			return nil
		}
	}
}

// handleError decides whether err ends the run and returns the error Run
// should return
func (r *Runner) handleError(ctx context.Context, err error) (bool, error) {
	if ctx.Err() != nil {
		return true, r.stopped(ctx)
	}

	if r.formatter != nil {
		_ = r.formatter.Error(err)
	}

	if models.IsConfigurationError(err) {
		r.logger.Error(ctx, "Synchronization stopped", err, nil)
		return true, err
	}

	if r.config.ExitOnError || r.config.Once {
		r.logger.Error(ctx, "Synchronization stopped", err, nil)
		return true, fmt.Errorf("reconciliation failed: %w", err)
	}

	r.logger.Warn(ctx, "Reconciliation failed, retrying after interval", logging.Fields{
		"error":    err.Error(),
		"interval": r.config.Interval.String(),
	})
	return false, nil
}

// sleep waits one interval and reports false if ctx was cancelled first
func (r *Runner) sleep(ctx context.Context) bool {
	timer := time.NewTimer(r.config.Interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (r *Runner) stopped(ctx context.Context) error {
	r.logger.Info(ctx, "Synchronization stopped", logging.Fields{"reason": "cancelled"})
	return nil
}

// IsCancellation reports whether err only reflects a cancelled context
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
