package cmd

import (
	"github.com/spf13/cobra"

	"pixelgardenlabs.io/pgl-mirror/pkg/buildinfo"
	"pixelgardenlabs.io/pgl-mirror/pkg/plog"
)

// Global flags.
var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "pgl-mirror",
	Short: "One-way synchronization of a destination directory tree to a source tree",
	Long: `pgl-mirror makes a destination directory tree match a source directory
tree: it copies new or changed regular files, creates missing directories,
and (by default) removes destination entries that no longer exist in the
source. It runs locally, in a single pass, with no state between runs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (default: "+`pgl-mirror.yaml`+" if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "logging level: debug, notice, info, warn, error")
}

// Execute runs the root command. Any error has already been logged; the
// caller only maps it to the exit code.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		plog.Error(buildinfo.Name+" failed", "error", err)
		return err
	}
	return nil
}
