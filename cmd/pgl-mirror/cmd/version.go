package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"pixelgardenlabs.io/pgl-mirror/pkg/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", buildinfo.Name, buildinfo.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
