package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// reenqueueCmd puts a failed document back on the processing queue. This
// is the operator escape hatch out of the failed status.
var reenqueueCmd = &cobra.Command{
	Use:   "reenqueue <document-id>",
	Short: "Re-enqueue a failed document for processing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		doc, err := appInstance.Ingest.Reenqueue(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Document %s (%s) re-enqueued.\n", doc.ID, doc.OriginalName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reenqueueCmd)
}
