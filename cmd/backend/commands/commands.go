// Package commands defines the buspass CLI: the server itself plus
// one-shot maintenance and pass administration commands.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartbuspass/backend/version"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "buspass",
		Short: "Smart bus pass verification backend",
	}

	rootCmd.AddCommand(
		NewServeCommand(),
		NewSweepCommand(),
		NewExpirePassesCommand(),
		NewPassCommand(),
		NewVersionCommand(),
	)

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := version.GetVersionInfo()
			fmt.Println("Version:", info.Version)
			fmt.Println("Built At:", info.BuiltAt)
		},
	}
}
