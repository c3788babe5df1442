package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// statusCmd prints the queue counters snapshot.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show queue counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		counters, err := appInstance.Queue.Status(cmd.Context())
		if err != nil {
			return fmt.Errorf("queue status: %w", err)
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Waiting", "Active", "Completed", "Failed"})
		failed := strconv.FormatInt(counters.Failed, 10)
		if counters.Failed > 0 {
			failed = color.RedString(failed)
		}
		table.Append([]string{
			strconv.FormatInt(counters.Waiting, 10),
			strconv.FormatInt(counters.Active, 10),
			color.GreenString(strconv.FormatInt(counters.Completed, 10)),
			failed,
		})
		table.Render()

		fmt.Printf("as of %s\n", counters.Timestamp.Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
