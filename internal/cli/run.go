package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sdejongh/syncreplica/pkg/config"
	"github.com/sdejongh/syncreplica/pkg/output"
	"github.com/sdejongh/syncreplica/pkg/sync"
)

// SyncFlags holds the flags of the run and diff commands
type SyncFlags struct {
	Source          string
	Replica         string
	IntervalSeconds int
	Once            bool
	ExitOnError     bool
	CreateReplica   bool
	Bandwidth       string
	Exclude         []string
	Output          string
	NoColor         bool
	DiffReport      string
	DiffFormat      string
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var syncFlags SyncFlags

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Keep a replica folder in sync with a source folder",
		Long: `Compare the source and replica trees every interval and, when they
differ, make the replica identical to the source: copy entries that only exist
in the source, overwrite files whose content differs and delete entries that
only exist in the replica. Runs until interrupted.`,
		RunE: runSync,
	}

	// Paths may also come from the config file
	cmd.Flags().StringVarP(&syncFlags.Source, "source", "s", "", "source directory path")
	cmd.Flags().StringVarP(&syncFlags.Replica, "replica", "r", "", "replica directory path")
	cmd.Flags().IntVarP(&syncFlags.IntervalSeconds, "interval", "i", 60, "seconds to wait between checks")

	// Optional flags
	cmd.Flags().BoolVar(&syncFlags.Once, "once", false, "check once, synchronize if needed, then exit")
	cmd.Flags().BoolVar(&syncFlags.ExitOnError, "exit-on-error", false, "stop on the first failed pass instead of retrying")
	cmd.Flags().BoolVar(&syncFlags.CreateReplica, "create-replica", false, "create replica directory if it doesn't exist")
	cmd.Flags().StringVarP(&syncFlags.Bandwidth, "bandwidth", "b", "", "bandwidth limit (e.g., \"10M\", \"1G\")")
	cmd.Flags().StringSliceVar(&syncFlags.Exclude, "exclude", []string{}, "glob patterns to exclude")
	cmd.Flags().StringVarP(&syncFlags.Output, "output", "o", "human", "output format: human, json")
	cmd.Flags().BoolVar(&syncFlags.NoColor, "no-color", false, "disable colored output")

	// Logging flags
	cmd.Flags().StringVar(&syncFlags.LogFile, "log-file", "", "also write logs to file")
	cmd.Flags().StringVar(&syncFlags.LogFormat, "log-format", "text", "log file format: text, json")
	cmd.Flags().StringVar(&syncFlags.LogLevel, "log-level", "info", "log level: debug, info, warn, error")

	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := prepareConfig(cmd)
	if err != nil {
		return err
	}

	logs, err := createLoggers(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer logs.Close()

	a, err := newApp(cfg, logs.console)
	if err != nil {
		return err
	}
	defer a.Close()

	stdout := cmd.OutOrStdout()
	if cfg.Output.Quiet {
		stdout = io.Discard
	}

	formatter, err := output.NewFormatter(cfg.Output.Format, stdout, cfg.Output.Color)
	if err != nil {
		return err
	}

	reconciler := sync.NewReconciler(a.comparator, a.ops, newReporter(cfg, stdout, logs), logs.console)

	runner, err := sync.NewRunner(sync.RunnerConfig{
		Interval:    cfg.Sync.Interval(),
		ExitOnError: cfg.Sync.ExitOnError,
		Once:        syncFlags.Once,
	}, a.comparator, reconciler, formatter, logs.console)
	if err != nil {
		return err
	}

	if err := runner.Run(ctx); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}

// newReporter routes change events. Human output prints them on the
// console; otherwise they go through the logger so stdout stays parseable.
func newReporter(cfg *config.Config, stdout io.Writer, logs *loggers) sync.Reporter {
	if cfg.Output.Format == "json" || cfg.Output.Quiet {
		return output.NewLogReporter(logs.console)
	}

	reporters := output.MultiReporter{output.NewConsoleReporter(stdout, cfg.Output.Color)}
	if logs.file != nil {
		reporters = append(reporters, output.NewLogReporter(logs.file))
	}
	return reporters
}

// prepareConfig merges the config file with the flags and checks the result
func prepareConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	applyFlagsToConfig(cmd, cfg, &syncFlags)

	if cfg.Sync.Source == "" {
		return nil, fmt.Errorf("source directory is required (--source or sync.source)")
	}
	if cfg.Sync.Replica == "" {
		return nil, fmt.Errorf("replica directory is required (--replica or sync.replica)")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.Sync.Source, cfg.Sync.Replica, err = validatePaths(cfg.Sync.Source, cfg.Sync.Replica, syncFlags.CreateReplica)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
