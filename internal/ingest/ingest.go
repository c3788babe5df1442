// Package ingest implements the enqueue side of the pipeline: accepting
// validated uploads, storing their bytes and queueing them for processing.
package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"docflow/internal/extract"
	"docflow/internal/models"
	"docflow/internal/store"
	"docflow/internal/store/blob"
)

// Service wires the document store, blob store and queue into the upload
// flow. HTTP handlers and CLI commands are thin wrappers around it.
type Service struct {
	documents store.DocumentStore
	blobs     store.BlobStore
	queue     store.QueueStore
	registry  *extract.Registry
}

func NewService(d store.DocumentStore, b store.BlobStore, q store.QueueStore, reg *extract.Registry) *Service {
	return &Service{documents: d, blobs: b, queue: q, registry: reg}
}

// Ingest accepts one uploaded file: rejects unsupported mime types before
// anything is stored, creates the document record as pending, stores the
// bytes, promotes the record to uploaded and enqueues the processing job.
// A blob-store failure leaves the record failed with the error captured.
func (s *Service) Ingest(ctx context.Context, ownerID, originalName, mimeType string, data []byte) (*models.Document, error) {
	if !s.registry.Supported(mimeType) {
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedFormat, mimeType)
	}

	doc := &models.Document{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		OriginalName: originalName,
		MimeType:     mimeType,
		SizeBytes:    int64(len(data)),
		Status:       models.StatusPending,
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document record: %w", err)
	}

	key := blob.ObjectKey(ownerID, originalName)
	location, err := s.blobs.Put(ctx, key, data, mimeType)
	if err != nil {
		doc.ErrorMessage = err.Error()
		if terr := doc.TransitionTo(models.StatusFailed); terr == nil {
			if uerr := s.documents.Update(ctx, doc); uerr != nil {
				log.Errorf("persist failed upload status for %s: %v", doc.ID, uerr)
			}
		}
		return nil, fmt.Errorf("store upload: %w", err)
	}

	doc.OriginalLocation = location
	if err := doc.TransitionTo(models.StatusUploaded); err != nil {
		return nil, err
	}
	if err := s.documents.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("update document record: %w", err)
	}

	if err := s.queue.Enqueue(ctx, doc.ID, ownerID); err != nil {
		return nil, fmt.Errorf("enqueue document %s: %w", doc.ID, err)
	}

	log.Infof("document %s (%s) uploaded and queued", doc.ID, originalName)
	return doc, nil
}

// Reenqueue puts a failed document back on the queue. This is the only
// path out of a terminal status and is always an explicit operator
// action, never automatic.
func (s *Service) Reenqueue(ctx context.Context, documentID string) (*models.Document, error) {
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", documentID, err)
	}
	if doc.Status != models.StatusFailed {
		return nil, fmt.Errorf("document %s is %s, only failed documents can be re-enqueued", documentID, doc.Status)
	}
	if err := s.queue.Enqueue(ctx, doc.ID, doc.OwnerID); err != nil {
		return nil, fmt.Errorf("re-enqueue document %s: %w", documentID, err)
	}
	log.Infof("document %s re-enqueued", documentID)
	return doc, nil
}
