package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/syncreplica/pkg/output"
)

// NewDiffCommand creates the diff command
func NewDiffCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show pending changes without synchronizing",
		Long: `Compare source and replica folders and list the entries a sync pass
would create, modify, replace or delete, without touching either tree.
Exits with status 0 when the trees are identical and 1 when they differ.`,
		RunE: runDiff,
	}

	// Reuse sync flags for comparison
	cmd.Flags().StringVarP(&syncFlags.Source, "source", "s", "", "source directory path")
	cmd.Flags().StringVarP(&syncFlags.Replica, "replica", "r", "", "replica directory path")
	cmd.Flags().StringSliceVar(&syncFlags.Exclude, "exclude", []string{}, "glob patterns to exclude")
	cmd.Flags().StringVar(&syncFlags.DiffReport, "diff-report", "", "write differences report to file")
	cmd.Flags().StringVar(&syncFlags.DiffFormat, "diff-format", "human", "differences report format: human, json")
	cmd.Flags().StringVar(&syncFlags.LogLevel, "log-level", "info", "log level: debug, info, warn, error")

	return cmd
}

func runDiff(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if syncFlags.DiffFormat != "human" && syncFlags.DiffFormat != "json" {
		return fmt.Errorf("invalid diff format: %s (valid: human, json)", syncFlags.DiffFormat)
	}

	// Never create the replica from a read-only command
	syncFlags.CreateReplica = false

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

	differences, err := a.comparator.Plan(ctx, "", "")
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	report := &output.DifferencesReport{
		SourcePath:  a.source.Root(),
		ReplicaPath: a.replica.Root(),
		Differences: differences,
	}

	if syncFlags.DiffReport != "" {
		if err := output.WriteDifferencesReport(report, syncFlags.DiffReport, syncFlags.DiffFormat); err != nil {
			return fmt.Errorf("failed to write differences report: %w", err)
		}
	} else if !cfg.Output.Quiet {
		if err := output.WriteDifferences(report, cmd.OutOrStdout(), syncFlags.DiffFormat); err != nil {
			return err
		}
	}

	if len(differences) > 0 {
		return &ExitError{Code: 1}
	}
	return nil
}
