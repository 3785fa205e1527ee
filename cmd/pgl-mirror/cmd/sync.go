package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"pixelgardenlabs.io/pgl-mirror/pkg/buildinfo"
	"pixelgardenlabs.io/pgl-mirror/pkg/config"
	"pixelgardenlabs.io/pgl-mirror/pkg/pathmirror"
	"pixelgardenlabs.io/pgl-mirror/pkg/plog"
	"pixelgardenlabs.io/pgl-mirror/pkg/report"
	"pixelgardenlabs.io/pgl-mirror/pkg/util"
)

var (
	syncKeepExtra    bool
	syncArchiveExtra string
)

var syncCmd = &cobra.Command{
	Use:   "sync [flags] <source> <destination>",
	Short: "Mirror the source directory tree into the destination",
	Long: `Copies new and updated regular files from source to destination, creates
missing directories, and removes destination entries that have no source
counterpart. Use --keep-extra to retain destination-only entries, or
--archive-extra to preserve them in a compressed tarball before removal.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		plog.SetLevel(plog.LevelFromString(cfg.LogLevel))

		src, err := util.ExpandPath(args[0])
		if err != nil {
			return err
		}
		dst, err := util.ExpandPath(args[1])
		if err != nil {
			return err
		}

		opts := pathmirror.Options{
			RemoveExtraneous: !cfg.KeepExtra,
			ArchiveRemoved:   cfg.ArchiveExtra,
		}

		startTime := time.Now()
		stats, err := pathmirror.NewSyncer(opts).Synchronize(src, dst)
		duration := time.Since(startTime).Round(time.Millisecond)
		if err != nil {
			return err // Logged with full details by Execute.
		}

		plog.Info(buildinfo.Name+" finished successfully.", "duration", duration)
		report.Print(os.Stdout, stats)
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncKeepExtra, "keep-extra", false, "preserve destination entries that exist only in the destination")
	syncCmd.Flags().StringVar(&syncArchiveExtra, "archive-extra", "", "archive pruned entries into this tarball (.tar.gz, .tgz or .tar.zst) before removal")
	rootCmd.AddCommand(syncCmd)
}

// resolveConfig layers the run configuration: defaults, then the config file,
// then any flag the user explicitly set.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	path := configPath
	explicit := path != ""
	if !explicit {
		path = config.DefaultFileName
	}

	cfg, err := config.Load(path, explicit)
	if err != nil {
		return cfg, err
	}

	if cmd.Flags().Changed("keep-extra") {
		cfg.KeepExtra = syncKeepExtra
	}
	if cmd.Flags().Changed("archive-extra") {
		cfg.ArchiveExtra = syncArchiveExtra
	}
	if cmd.Root().PersistentFlags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
