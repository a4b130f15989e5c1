package cmd

import (
	"github.com/spf13/cobra"
)

// RootCmd is the base command when called without any subcommands.
var RootCmd = NewRootCmd()

// NewRootCmd assembles the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mipbuild",
		Short: "mipbuild is a static asset build pipeline",
		Long: `mipbuild loads a source tree, runs a chain of processors over the selected
files and writes the results to an output directory.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().Bool("debug", false, "Enable debug logging")
	root.PersistentFlags().StringP("config", "c", "", "Config file (default: mipbuild.yaml, mipbuild.yml or mipbuild.toml)")

	root.AddCommand(newBuildCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}
