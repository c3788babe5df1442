package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"docflow/internal/app"
	"docflow/internal/worker"
)

var workerCount int

// workerCmd represents the worker command.
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run document processing workers",
	Long: `Starts one or more worker coordinators that consume the processing
queue, extract text, generate summaries and update document records.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get application context: %w", err)
		}
		return runWorkers(cmd.Context(), appInstance)
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
	workerCmd.Flags().IntVar(&workerCount, "count", 0, "number of coordinators to run (default from config)")
}

func runWorkers(ctx context.Context, appInstance *app.App) error {
	defer appInstance.Close()

	cfg := appInstance.Config
	count := workerCount
	if count <= 0 {
		count = cfg.Worker.Count
	}
	if count <= 0 {
		count = 1
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Infof("starting %d worker coordinator(s)", count)

	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		coordinator := worker.NewCoordinator(
			appInstance.Queue,
			appInstance.Documents,
			appInstance.Blobs,
			appInstance.Extractors,
			appInstance.Summarizer,
			worker.Options{
				PollInterval: cfg.Worker.PollInterval,
				CallTimeout:  cfg.Worker.CallTimeout,
			},
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			coordinator.Run(runCtx)
		}()
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	log.Info("shutdown signal received, stopping workers...")
	cancel()
	wg.Wait()
	log.Info("worker shutdown complete")
	return nil
}
