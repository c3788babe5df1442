package cmd

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"docflow/internal/apihandlers"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Starts an HTTP server exposing document upload, document status and
queue status endpoints for the dashboard.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		router := gin.Default() // logger and recovery middleware
		apiHandler := apihandlers.NewAPIHandler(appInstance)

		v1 := router.Group("/api/v1")
		{
			documents := v1.Group("/documents")
			{
				documents.POST("", apiHandler.UploadDocumentHandler)
				documents.GET("", apiHandler.ListDocumentsHandler)
				documents.GET("/:id", apiHandler.GetDocumentHandler)
				documents.POST("/:id/reenqueue", apiHandler.ReenqueueDocumentHandler)
			}
			v1.GET("/queue/status", apiHandler.QueueStatusHandler)
		}

		router.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		cfg := appInstance.Config
		listenAddr := fmt.Sprintf("%s:%s", cfg.Server.Address, cfg.Server.Port)
		log.Infof("starting API server on http://%s", listenAddr)

		if err := router.Run(listenAddr); err != nil {
			return fmt.Errorf("failed to run API server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
