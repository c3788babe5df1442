package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docflow/internal/app"
	"docflow/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "docflow",
	Short: "Docflow document processing pipeline",
	Long: `Docflow ingests uploaded documents, extracts their text, summarizes
them and makes the results available for search and status display.`,
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is given, print help.
		cmd.Help()
	},
	// PersistentPreRunE runs before any subcommand's RunE.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		appInstance, err := app.NewApp(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}

		ctx := context.WithValue(cmd.Context(), appKey, appInstance)
		cmd.SetContext(ctx)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Custom context key type to avoid collisions.
type contextKey string

const appKey contextKey = "app"

// GetAppFromContext retrieves the app instance stored by PersistentPreRunE.
func GetAppFromContext(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	return appInstance, nil
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check queue, database and blob store connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to get app instance: %w", err)
		}

		fmt.Println("Checking queue store connectivity...")
		if err := appInstance.Queue.Ping(ctx); err != nil {
			return fmt.Errorf("queue store ping failed: %w", err)
		}

		fmt.Println("Checking document store connectivity...")
		if err := appInstance.Documents.Ping(ctx); err != nil {
			return fmt.Errorf("document store ping failed: %w", err)
		}

		fmt.Println("Checking blob store connectivity...")
		if err := appInstance.Blobs.Ping(ctx); err != nil {
			return fmt.Errorf("blob store ping failed: %w", err)
		}

		fmt.Println("All stores reachable.")
		return nil
	},
}
