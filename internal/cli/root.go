package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ExitError carries a process exit code that is not a failure message,
// such as "differences found" from the diff command
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode maps an error returned by a command to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// NewRootCommand assembles the command tree
func NewRootCommand() *cobra.Command {
	build := currentBuild()
	rootCmd := &cobra.Command{
		Use:   "syncreplica",
		Short: "One-way periodic folder replication",
		Long: `syncreplica keeps a replica folder identical to a source folder.
At a fixed interval it compares both trees and, when they differ, copies new
entries, overwrites changed files and deletes entries missing from the source.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", build.version, build.commit, build.date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewDiffCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}
