package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version information",
		Long:  "Displays the build version and the Go toolchain that produced this binary.",
		Run: func(cmd *cobra.Command, _ []string) {
			info, ok := debug.ReadBuildInfo()
			if !ok {
				cmd.Println("modulize (unknown build)")
				return
			}

			version := info.Main.Version
			if version == "" {
				version = "devel"
			}

			cmd.Println("modulize", version)
			cmd.Println("built with", info.GoVersion)
		},
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
