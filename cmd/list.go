package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	listOwner  string
	listLimit  int
	listOffset int
)

// listCmd prints an owner's documents, newest first.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents for an owner",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if listOwner == "" {
			return fmt.Errorf("--owner is required")
		}

		docs, err := appInstance.Documents.ListByOwner(cmd.Context(), listOwner, listLimit, listOffset)
		if err != nil {
			return fmt.Errorf("list documents: %w", err)
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "Name", "Type", "Size", "Status", "Error"})
		for _, doc := range docs {
			table.Append([]string{
				doc.ID,
				doc.OriginalName,
				doc.MimeType,
				strconv.FormatInt(doc.SizeBytes, 10),
				doc.Status,
				doc.ErrorMessage,
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listOwner, "owner", "", "owner id to list documents for")
	listCmd.Flags().IntVar(&listLimit, "limit", 50, "maximum number of documents")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "listing offset")
}
