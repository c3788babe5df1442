package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Queue maintenance commands",
}

// queueResetCmd clears all queue lists and zeroes the counters. Controlled
// startup only: jobs in flight at reset time are silently dropped.
var queueResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear queue lists and zero counters (drops in-flight jobs)",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if err := appInstance.Queue.Reset(cmd.Context()); err != nil {
			return fmt.Errorf("reset queue: %w", err)
		}
		fmt.Println("Queue reset.")
		return nil
	},
}

func init() {
	queueCmd.AddCommand(queueResetCmd)
	rootCmd.AddCommand(queueCmd)
}
