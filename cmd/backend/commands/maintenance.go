package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewSweepCommand creates the one-shot session sweep command
func NewSweepCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Clear expired sessions and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := bootstrap(configFile)
			if err != nil {
				return err
			}
			defer cleanup()

			cleared, err := app.sessions.Sweep(context.Background(), time.Now())
			if err != nil {
				return err
			}
			fmt.Printf("Cleared %d expired sessions\n", cleared)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")
	return cmd
}

// NewExpirePassesCommand creates the one-shot pass expiry command
func NewExpirePassesCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "expire-passes",
		Short: "Deactivate passes whose validity has lapsed and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := bootstrap(configFile)
			if err != nil {
				return err
			}
			defer cleanup()

			flipped, err := app.verify.ExpirePasses(context.Background(), time.Now())
			if err != nil {
				return err
			}
			fmt.Printf("Expired %d passes\n", flipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")
	return cmd
}
