package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"docflow/internal/config"
	"docflow/internal/extract"
	"docflow/internal/ingest"
	"docflow/internal/store"
	"docflow/internal/store/blob"
	"docflow/internal/store/document"
	"docflow/internal/store/queue"
	"docflow/internal/summarize"
)

// App holds every initialized dependency. Commands pull it out of the
// cobra context and wire the pieces they need.
type App struct {
	Config *config.Config

	Queue      store.QueueStore
	Documents  store.DocumentStore
	Blobs      store.BlobStore
	Extractors *extract.Registry
	Summarizer *summarize.Summarizer
	Ingest     *ingest.Service
}

// NewApp connects to the queue store, document store and blob store and
// builds the pipeline stages. Failing to reach the queue store here is
// unrecoverable by design; everything after boot is retried in-loop.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	q, err := queue.NewRedisQueue(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("init queue store: %w", err)
	}
	app.Queue = q

	docs, err := document.NewPostgresStore(ctx, cfg.Database.DSN)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("init document store: %w", err)
	}
	app.Documents = docs

	blobs, err := blob.NewMinioStore(ctx, blob.MinioConfig{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("init blob store: %w", err)
	}
	app.Blobs = blobs

	app.Extractors = extract.NewRegistry(cfg.Extraction.TesseractPath)

	model := summarize.NewOpenAIModel(
		cfg.Summarization.OpenaiApiKey,
		cfg.Summarization.Model,
		cfg.Summarization.MinLength,
		cfg.Summarization.MaxLength,
	)
	app.Summarizer = summarize.New(model, cfg.Summarization.MaxChunkLength, cfg.Summarization.Parallelism)

	app.Ingest = ingest.NewService(app.Documents, app.Blobs, app.Queue, app.Extractors)

	log.Debug("application initialization complete")
	return app, nil
}

// Close releases store connections. Safe to call on a partially
// initialized App.
func (a *App) Close() {
	if a.Documents != nil {
		if err := a.Documents.Close(); err != nil {
			log.Errorf("close document store: %v", err)
		}
	}
	if a.Queue != nil {
		if err := a.Queue.Close(); err != nil {
			log.Errorf("close queue store: %v", err)
		}
	}
}
