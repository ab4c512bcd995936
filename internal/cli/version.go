package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set by main from its ldflags-injected variables
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

type buildInfo struct {
	version, commit, date, goVersion string
	modified                         bool
}

// currentBuild fills whatever the linker did not set from the module's
// embedded VCS stamp, so `go install` builds still identify themselves.
func currentBuild() buildInfo {
	b := buildInfo{version: Version, commit: Commit, date: BuildDate, goVersion: runtime.Version()}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	if b.version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		b.version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.commit == "none" {
				b.commit = s.Value
			}
		case "vcs.time":
			if b.date == "unknown" {
				b.date = s.Value
			}
		case "vcs.modified":
			b.modified = s.Value == "true"
		}
	}
	return b
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			b := currentBuild()
			w := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(w, b.version)
				return
			}

			commit := b.commit
			if b.modified {
				commit += " (dirty)"
			}
			fmt.Fprintf(w, "syncreplica %s\n", b.version)
			fmt.Fprintf(w, "  commit:   %s\n", commit)
			fmt.Fprintf(w, "  built:    %s\n", b.date)
			fmt.Fprintf(w, "  go:       %s %s/%s\n", b.goVersion, runtime.GOOS, runtime.GOARCH)
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "print only the version number")
	return cmd
}
