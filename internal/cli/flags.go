package cli

import (
	"github.com/spf13/cobra"

	"github.com/sdejongh/syncreplica/pkg/config"
)

// GlobalFlags are the persistent flags shared by every command
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
}

var globalFlags GlobalFlags

// AddGlobalFlags registers the persistent flags on the root command.
// --verbose and --quiet cannot be combined.
func AddGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&globalFlags.ConfigFile, "config", "", "config file (default is $HOME/.config/syncreplica/config.yaml)")
	flags.BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "log every comparison and filesystem operation (debug level)")
	flags.BoolVarP(&globalFlags.Quiet, "quiet", "q", false, "print errors only")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// applyTo overrides the output and logging settings of cfg
func (g GlobalFlags) applyTo(cfg *config.Config) {
	if g.Quiet {
		cfg.Output.Quiet = true
	}
	if g.Verbose {
		cfg.Logging.Level = "debug"
	}
}
