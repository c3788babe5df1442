package store

import (
	"context"

	"docflow/internal/models"
)

// --- Queue Store ---

// QueueStore is the durable job queue shared by the upload path and the
// worker coordinators. Ordering is strict FIFO within the pending list.
// Counters are approximate and exist only for status reporting.
type QueueStore interface {
	// Enqueue appends a job to the tail of the pending list and increments
	// the waiting counter.
	Enqueue(ctx context.Context, documentID, ownerID string) error

	// Dequeue pops the head of the pending list, decrements waiting and
	// increments active. Returns (nil, nil) when the list is empty; callers
	// poll with backoff.
	Dequeue(ctx context.Context) (*models.QueueItem, error)

	// MarkCompleted appends to the completed history list, decrements
	// active and increments completed.
	MarkCompleted(ctx context.Context, documentID, ownerID string) error

	// MarkFailed appends to the failed history list with the reason,
	// decrements active and increments failed.
	MarkFailed(ctx context.Context, documentID, ownerID, reason string) error

	// Claim registers documentID in the set of actively processed
	// documents. It returns false when another in-flight job already holds
	// the document, in which case the caller must treat its job as a
	// harmless duplicate.
	Claim(ctx context.Context, documentID string) (bool, error)

	// Release removes documentID from the active-document set.
	Release(ctx context.Context, documentID string) error

	// Status returns a counters snapshot with a timestamp.
	Status(ctx context.Context) (models.QueueCounters, error)

	// Reset clears all lists and zeroes counters. Controlled startup only:
	// a reset while jobs are in flight silently drops them.
	Reset(ctx context.Context) error

	Ping(ctx context.Context) error
	Close() error
}

// --- Document Store ---

// DocumentStore persists document metadata records. Mutation is
// last-writer-wins at the record level; the state machine in models guards
// against downgrading terminal documents.
type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	Update(ctx context.Context, doc *models.Document) error
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*models.Document, error)

	Ping(ctx context.Context) error
	Close() error
}

// --- Blob Store ---

// BlobStore persists raw file bytes under opaque keys.
type BlobStore interface {
	// Put stores data under key and returns the location reference.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Get retrieves the bytes behind a location reference.
	Get(ctx context.Context, location string) ([]byte, error)
	// Delete removes the object behind a location reference.
	Delete(ctx context.Context, location string) error

	Ping(ctx context.Context) error
}
