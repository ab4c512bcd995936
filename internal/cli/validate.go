package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdejongh/syncreplica/internal/platform"
	"github.com/sdejongh/syncreplica/pkg/config"
	"github.com/sdejongh/syncreplica/pkg/models"
)

// validatePaths checks the source and replica directories and returns
// their normalized forms. The replica is created when createReplica is set.
func validatePaths(source, replica string, createReplica bool) (string, string, error) {
	if err := platform.ValidatePath(source); err != nil {
		return "", "", &models.ValidationError{Field: "source", Message: err.Error()}
	}
	if err := platform.ValidatePath(replica); err != nil {
		return "", "", &models.ValidationError{Field: "replica", Message: err.Error()}
	}

	// Validate source exists
	sourceInfo, err := os.Stat(source)
	if os.IsNotExist(err) {
		return "", "", fmt.Errorf("source path does not exist: %s", source)
	} else if err != nil {
		return "", "", fmt.Errorf("failed to access source path: %w", err)
	} else if !sourceInfo.IsDir() {
		return "", "", fmt.Errorf("source path exists but is not a directory: %s", source)
	}

	sourceAbs, err := platform.NormalizePath(source)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve source path: %w", err)
	}
	replicaAbs, err := platform.NormalizePath(replica)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve replica path: %w", err)
	}

	// Validate paths are not identical or nested, before creating anything
	if sourceAbs == replicaAbs {
		return "", "", fmt.Errorf("source and replica cannot be the same: %s", sourceAbs)
	}
	if platform.Contains(sourceAbs, replicaAbs) {
		return "", "", fmt.Errorf("replica cannot be inside source directory")
	}
	if platform.Contains(replicaAbs, sourceAbs) {
		return "", "", fmt.Errorf("source cannot be inside replica directory")
	}

	// Check replica
	replicaInfo, err := os.Stat(replicaAbs)
	if os.IsNotExist(err) {
		if !createReplica {
			return "", "", fmt.Errorf("replica path does not exist: %s (use --create-replica to create it)", replica)
		}
		// Create replica directory with parents
		if err := os.MkdirAll(replicaAbs, 0755); err != nil {
			return "", "", fmt.Errorf("failed to create replica directory: %w", err)
		}
	} else if err != nil {
		return "", "", fmt.Errorf("failed to access replica path: %w", err)
	} else if !replicaInfo.IsDir() {
		return "", "", fmt.Errorf("replica path exists but is not a directory: %s", replica)
	}

	return sourceAbs, replicaAbs, nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyFlagsToConfig overrides config values with the command-line flags
// that were explicitly set
func applyFlagsToConfig(cmd *cobra.Command, cfg *config.Config, flags *SyncFlags) {
	changed := cmd.Flags().Changed

	if changed("source") {
		cfg.Sync.Source = flags.Source
	}
	if changed("replica") {
		cfg.Sync.Replica = flags.Replica
	}
	if changed("interval") {
		cfg.Sync.IntervalSeconds = flags.IntervalSeconds
	}
	if changed("exit-on-error") {
		cfg.Sync.ExitOnError = flags.ExitOnError
	}
	if changed("bandwidth") {
		cfg.Performance.BandwidthLimit = flags.Bandwidth
	}

	// Exclude patterns
	if len(flags.Exclude) > 0 {
		cfg.Exclude = flags.Exclude
	}

	// Output format
	if changed("output") {
		cfg.Output.Format = flags.Output
	}
	if changed("no-color") {
		cfg.Output.Color = !flags.NoColor
	}

	// Logging
	if changed("log-file") {
		cfg.Logging.File = flags.LogFile
	}
	if changed("log-format") {
		cfg.Logging.Format = flags.LogFormat
	}
	if changed("log-level") {
		cfg.Logging.Level = flags.LogLevel
	}

	globalFlags.applyTo(cfg)
}
