// Package worker contains the coordinator loop that turns queued jobs
// into completed or failed documents.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"docflow/internal/extract"
	"docflow/internal/models"
	"docflow/internal/store"
	"docflow/internal/store/blob"
	"docflow/internal/summarize"
)

// Coordinator drives documents through extraction and summarization. Any
// number of coordinators may run concurrently, in one process or many;
// they synchronize only through the queue store's claim set and the
// document store.
type Coordinator struct {
	queue      store.QueueStore
	documents  store.DocumentStore
	blobs      store.BlobStore
	extractors *extract.Registry
	summarizer *summarize.Summarizer

	pollInterval time.Duration
	callTimeout  time.Duration
}

// Options tune the coordinator loop. Zero values pick the defaults: 5s
// poll backoff, 30s per store call.
type Options struct {
	PollInterval time.Duration
	CallTimeout  time.Duration
}

func NewCoordinator(q store.QueueStore, d store.DocumentStore, b store.BlobStore,
	reg *extract.Registry, s *summarize.Summarizer, opts Options) *Coordinator {

	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 30 * time.Second
	}
	return &Coordinator{
		queue:        q,
		documents:    d,
		blobs:        b,
		extractors:   reg,
		summarizer:   s,
		pollInterval: opts.PollInterval,
		callTimeout:  opts.CallTimeout,
	}
}

// Run executes the coordinator loop until ctx is cancelled. Stage errors
// resolve individual jobs; infrastructure errors log, attempt to
// re-establish connectivity and back off before the next iteration.
// Nothing escapes to crash the process.
func (c *Coordinator) Run(ctx context.Context) {
	log.Info("worker coordinator started")
	for {
		if ctx.Err() != nil {
			log.Info("worker coordinator stopped")
			return
		}
		if err := c.runOnce(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Errorf("worker iteration failed: %v", err)
			c.reconnect(ctx)
			c.sleep(ctx)
		}
	}
}

// runOnce performs a single dequeue-and-process iteration. A nil return
// means the iteration resolved (including "queue empty, slept"); an error
// means infrastructure trouble around the loop itself.
func (c *Coordinator) runOnce(ctx context.Context) error {
	item, err := c.queue.Dequeue(ctx)
	if err != nil {
		return fmt.Errorf("dequeue: %w", err)
	}
	if item == nil {
		c.sleep(ctx)
		return nil
	}

	log.Infof("processing document %s", item.DocumentID)

	doc, err := c.loadDocument(ctx, item.DocumentID)
	if errors.Is(err, models.ErrNotFound) {
		// Permanent: the job references a record that does not exist.
		log.Errorf("document not found: %s", item.DocumentID)
		if err := c.queue.MarkFailed(ctx, item.DocumentID, item.OwnerID, models.ErrDocumentNotFound.Error()); err != nil {
			return fmt.Errorf("mark failed: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("load document %s: %w", item.DocumentID, err)
	}

	// Concurrency guard: at most one in-flight job per document. A losing
	// duplicate resolves as completed without re-running the pipeline.
	claimed, err := c.queue.Claim(ctx, item.DocumentID)
	if err != nil {
		return fmt.Errorf("claim document %s: %w", item.DocumentID, err)
	}
	if !claimed {
		log.Warnf("document %s already being processed, resolving duplicate job", item.DocumentID)
		return c.queue.MarkCompleted(ctx, item.DocumentID, item.OwnerID)
	}
	defer func() {
		if err := c.queue.Release(ctx, item.DocumentID); err != nil {
			log.Errorf("release document %s: %v", item.DocumentID, err)
		}
	}()

	// Idempotent short-circuit: the document finished on a previous
	// delivery but the job was never acknowledged.
	if doc.Status == models.StatusCompleted {
		log.Infof("document %s already completed, acknowledging job", item.DocumentID)
		return c.queue.MarkCompleted(ctx, item.DocumentID, item.OwnerID)
	}

	if err := doc.TransitionTo(models.StatusProcessing); err != nil {
		// Reachable only through stale records; treat like a duplicate.
		log.Warnf("document %s: %v, acknowledging job", item.DocumentID, err)
		return c.queue.MarkCompleted(ctx, item.DocumentID, item.OwnerID)
	}
	if err := c.saveDocument(ctx, doc); err != nil {
		// The job already left the pending list; dropping it here would
		// strand the document in uploaded with no terminal queue record
		// and nothing for the re-enqueue path to act on.
		c.resolveFailure(ctx, item, fmt.Errorf("persist processing status: %w", err))
		return nil
	}

	if perr := c.process(ctx, doc); perr != nil {
		c.resolveFailure(ctx, item, perr)
		return nil
	}

	if err := c.queue.MarkCompleted(ctx, item.DocumentID, item.OwnerID); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	log.Infof("document %s processed successfully", item.DocumentID)
	return nil
}

// process runs extraction and summarization against the document's stored
// bytes and persists the results. Errors here are job-fatal, not loop
// errors.
func (c *Coordinator) process(ctx context.Context, doc *models.Document) error {
	data, err := c.fetchBlob(ctx, doc.OriginalLocation)
	if err != nil {
		return fmt.Errorf("fetch original bytes: %w", err)
	}

	text, err := c.extractors.Extract(ctx, data, doc.MimeType)
	if err != nil {
		return err
	}
	log.Debugf("document %s: extracted %d characters", doc.ID, len(text))

	summary, err := c.summarizer.Summarize(ctx, text)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	processed, err := c.storeProcessed(ctx, doc, data)
	if err != nil {
		return fmt.Errorf("store processed file: %w", err)
	}

	doc.ExtractedText = text
	doc.Summary = summary
	doc.ProcessedLocation = processed
	doc.ErrorMessage = ""
	if err := doc.TransitionTo(models.StatusCompleted); err != nil {
		return err
	}
	if err := c.saveDocument(ctx, doc); err != nil {
		return fmt.Errorf("persist results: %w", err)
	}
	return nil
}

// resolveFailure records a job-fatal error. The document is re-read first:
// a concurrent duplicate may have completed it in the meantime, and a
// completed document is never downgraded.
func (c *Coordinator) resolveFailure(ctx context.Context, item *models.QueueItem, cause error) {
	log.Errorf("processing document %s failed: %v", item.DocumentID, cause)

	doc, err := c.loadDocument(ctx, item.DocumentID)
	if err != nil {
		log.Errorf("re-read document %s after failure: %v", item.DocumentID, err)
	} else if doc.Status != models.StatusCompleted {
		doc.ErrorMessage = cause.Error()
		if terr := doc.TransitionTo(models.StatusFailed); terr != nil {
			log.Errorf("transition document %s to failed: %v", item.DocumentID, terr)
		} else if serr := c.saveDocument(ctx, doc); serr != nil {
			log.Errorf("persist failed status for %s: %v", item.DocumentID, serr)
		}
	}

	if err := c.queue.MarkFailed(ctx, item.DocumentID, item.OwnerID, cause.Error()); err != nil {
		log.Errorf("mark document %s failed in queue: %v", item.DocumentID, err)
	}
}

// storeProcessed persists the processed copy of the original bytes and
// returns its location reference.
func (c *Coordinator) storeProcessed(ctx context.Context, doc *models.Document, data []byte) (string, error) {
	key := blob.ProcessedKey(doc.OriginalLocation)
	cctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	return c.blobs.Put(cctx, key, data, doc.MimeType)
}

func (c *Coordinator) loadDocument(ctx context.Context, id string) (*models.Document, error) {
	cctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	return c.documents.GetByID(cctx, id)
}

func (c *Coordinator) saveDocument(ctx context.Context, doc *models.Document) error {
	cctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	return c.documents.Update(cctx, doc)
}

func (c *Coordinator) fetchBlob(ctx context.Context, location string) ([]byte, error) {
	cctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	return c.blobs.Get(cctx, location)
}

// reconnect pings the external stores so a transient outage is noticed
// and, where the client supports it, re-established before the next
// iteration.
func (c *Coordinator) reconnect(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	if err := c.documents.Ping(cctx); err != nil {
		log.Warnf("document store unreachable: %v", err)
	}
	if err := c.queue.Ping(cctx); err != nil {
		log.Warnf("queue store unreachable: %v", err)
	}
}

// sleep blocks for the poll interval or until ctx is cancelled.
func (c *Coordinator) sleep(ctx context.Context) {
	timer := time.NewTimer(c.pollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
