package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartbuspass/backend/dates"
)

// NewPassCommand creates the pass administration command
func NewPassCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pass",
		Short: "Pass application administration",
	}

	cmd.AddCommand(
		newPassApproveCommand(),
		newPassDeclineCommand(),
	)

	return cmd
}

func newPassApproveCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "approve [rider-id]",
		Short: "Approve a rider's pass application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := bootstrap(configFile)
			if err != nil {
				return err
			}
			defer cleanup()

			rider, err := app.approval.Approve(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to approve pass: %w", err)
			}

			fmt.Printf("Approved pass for %s (%s)\n", rider.Name, rider.Email)
			fmt.Printf("  Pass code: %s\n", rider.PassCode)
			fmt.Printf("  Valid until: %s\n", dates.Format(rider.PassExpiry))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")
	return cmd
}

func newPassDeclineCommand() *cobra.Command {
	var configFile string
	var reason string

	cmd := &cobra.Command{
		Use:   "decline [rider-id]",
		Short: "Decline a rider's pass application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := bootstrap(configFile)
			if err != nil {
				return err
			}
			defer cleanup()

			rider, err := app.approval.Decline(context.Background(), args[0], reason)
			if err != nil {
				return fmt.Errorf("failed to decline pass: %w", err)
			}

			fmt.Printf("Declined pass application for %s (%s)\n", rider.Name, rider.Email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")
	cmd.Flags().StringVarP(&reason, "reason", "r", "", "rejection reason sent to the applicant")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}
