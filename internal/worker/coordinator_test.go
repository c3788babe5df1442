package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docflow/internal/extract"
	"docflow/internal/models"
	"docflow/internal/store"
	"docflow/internal/store/blob"
	"docflow/internal/store/document"
	"docflow/internal/store/queue"
	"docflow/internal/summarize"
)

type fixture struct {
	queue       *queue.MemoryQueue
	documents   *document.MemoryStore
	blobs       *blob.MemoryStore
	coordinator *Coordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	q := queue.NewMemoryQueue()
	d := document.NewMemoryStore()
	b := blob.NewMemoryStore()
	c := NewCoordinator(q, d, b, extract.NewRegistry(""), summarize.New(nil, 0, 0), Options{
		PollInterval: time.Millisecond,
		CallTimeout:  time.Second,
	})
	return &fixture{queue: q, documents: d, blobs: b, coordinator: c}
}

func (f *fixture) seedDocument(t *testing.T, text string) *models.Document {
	return seedDocument(t, f.documents, f.blobs, f.queue, text)
}

// seedDocument stores a text document's bytes and record and enqueues its
// processing job, mirroring what the ingest service does.
func seedDocument(t *testing.T, docs store.DocumentStore, blobs store.BlobStore, q store.QueueStore, text string) *models.Document {
	t.Helper()
	ctx := context.Background()
	doc := &models.Document{
		ID:           uuid.NewString(),
		OwnerID:      "owner-1",
		OriginalName: "notes.txt",
		MimeType:     extract.MimeText,
		SizeBytes:    int64(len(text)),
		Status:       models.StatusPending,
	}
	require.NoError(t, docs.Create(ctx, doc))

	location, err := blobs.Put(ctx, "owner-1/notes.txt", []byte(text), doc.MimeType)
	require.NoError(t, err)
	doc.OriginalLocation = location
	require.NoError(t, doc.TransitionTo(models.StatusUploaded))
	require.NoError(t, docs.Update(ctx, doc))
	require.NoError(t, q.Enqueue(ctx, doc.ID, doc.OwnerID))
	return doc
}

// countingDocumentStore wraps the memory store to count Update calls and
// optionally fail the next N of them.
type countingDocumentStore struct {
	*document.MemoryStore
	mu          sync.Mutex
	updates     int
	failUpdates int
}

func (s *countingDocumentStore) Update(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	if s.failUpdates > 0 {
		s.failUpdates--
		s.mu.Unlock()
		return errors.New("write document: connection reset by peer")
	}
	s.updates++
	s.mu.Unlock()
	return s.MemoryStore.Update(ctx, doc)
}

func (s *countingDocumentStore) updateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates
}

// slowModel holds each chunk call open long enough for concurrent
// deliveries of the same document to overlap.
type slowModel struct {
	delay time.Duration
}

func (m slowModel) SummarizeChunk(ctx context.Context, text string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(m.delay):
		return "condensed passage", nil
	}
}

func longText() string {
	var out string
	for i := 1; i <= 20; i++ {
		out += "This sentence number describes one part of the uploaded report in detail. "
	}
	return out
}

func TestRunOnce_ProcessesDocumentToCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.seedDocument(t, longText())

	require.NoError(t, f.coordinator.runOnce(ctx))

	got, err := f.documents.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Equal(t, longText(), got.ExtractedText)
	assert.NotEmpty(t, got.Summary)
	assert.Less(t, len(got.Summary), len(got.ExtractedText))
	assert.Equal(t, "processed/"+doc.OriginalLocation, got.ProcessedLocation)
	assert.Empty(t, got.ErrorMessage)

	// Processed copy stored alongside the original.
	assert.Equal(t, 2, f.blobs.Len())

	completed := f.queue.CompletedItems()
	require.Len(t, completed, 1)
	assert.Equal(t, doc.ID, completed[0].DocumentID)

	counters, err := f.queue.Status(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, counters.Active)
	assert.EqualValues(t, 1, counters.Completed)
}

func TestRunOnce_EmptyQueueIsNotAnError(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.coordinator.runOnce(context.Background()))
}

func TestRunOnce_MissingDocumentFailsJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.queue.Enqueue(ctx, "ghost-id", "owner-1"))

	require.NoError(t, f.coordinator.runOnce(ctx))

	failed := f.queue.FailedItems()
	require.Len(t, failed, 1)
	assert.Equal(t, "ghost-id", failed[0].DocumentID)
	assert.Equal(t, models.ErrDocumentNotFound.Error(), failed[0].ErrorMessage)
}

func TestRunOnce_DuplicateClaimResolvesWithoutProcessing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.seedDocument(t, longText())

	// Simulate another worker holding the claim.
	claimed, err := f.queue.Claim(ctx, doc.ID)
	require.NoError(t, err)
	require.True(t, claimed)

	require.NoError(t, f.coordinator.runOnce(ctx))

	got, err := f.documents.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUploaded, got.Status, "losing duplicate must not touch the record")
	assert.Empty(t, got.Summary)

	require.Len(t, f.queue.CompletedItems(), 1)
	assert.Empty(t, f.queue.FailedItems())
}

func TestRunOnce_AlreadyCompletedShortCircuits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.seedDocument(t, longText())
	require.NoError(t, doc.TransitionTo(models.StatusProcessing))
	require.NoError(t, doc.TransitionTo(models.StatusCompleted))
	doc.Summary = "already summarized"
	require.NoError(t, f.documents.Update(ctx, doc))

	require.NoError(t, f.coordinator.runOnce(ctx))

	got, err := f.documents.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "already summarized", got.Summary)
	require.Len(t, f.queue.CompletedItems(), 1)

	// Claim released so later jobs for the same document proceed.
	claimed, err := f.queue.Claim(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestRunOnce_UnsupportedMimeTypeFailsDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.seedDocument(t, "plain body")
	doc.MimeType = "application/x-unknown"
	require.NoError(t, f.documents.Update(ctx, doc))

	require.NoError(t, f.coordinator.runOnce(ctx))

	got, err := f.documents.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.Contains(t, got.ErrorMessage, "unsupported file type")

	failed := f.queue.FailedItems()
	require.Len(t, failed, 1)
	assert.Equal(t, doc.ID, failed[0].DocumentID)
}

func TestRunOnce_MissingBlobFailsDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.seedDocument(t, "plain body")
	require.NoError(t, f.blobs.Delete(ctx, doc.OriginalLocation))

	require.NoError(t, f.coordinator.runOnce(ctx))

	got, err := f.documents.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.NotEmpty(t, got.ErrorMessage)
}

func TestRunOnce_FailedDocumentCanBeReprocessed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc := f.seedDocument(t, longText())
	doc.MimeType = "application/x-unknown"
	require.NoError(t, f.documents.Update(ctx, doc))
	require.NoError(t, f.coordinator.runOnce(ctx))

	// Operator fixes the record and re-enqueues.
	got, err := f.documents.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusFailed, got.Status)
	got.MimeType = extract.MimeText
	require.NoError(t, f.documents.Update(ctx, got))
	require.NoError(t, f.queue.Enqueue(ctx, got.ID, got.OwnerID))

	require.NoError(t, f.coordinator.runOnce(ctx))

	final, err := f.documents.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, final.Status)
	assert.Empty(t, final.ErrorMessage, "recovery must clear the previous error")
	assert.NotEmpty(t, final.Summary)
}

func TestRunOnce_ProcessingPersistFailureResolvesJob(t *testing.T) {
	ctx := context.Background()
	q := queue.NewMemoryQueue()
	docs := &countingDocumentStore{MemoryStore: document.NewMemoryStore()}
	blobs := blob.NewMemoryStore()
	c := NewCoordinator(q, docs, blobs, extract.NewRegistry(""), summarize.New(nil, 0, 0), Options{
		PollInterval: time.Millisecond,
		CallTimeout:  time.Second,
	})
	doc := seedDocument(t, docs, blobs, q, longText())

	// The write persisting the processing status fails; the job must
	// still settle instead of vanishing from the queue.
	docs.mu.Lock()
	docs.failUpdates = 1
	docs.mu.Unlock()

	require.NoError(t, c.runOnce(ctx))

	got, err := docs.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.Contains(t, got.ErrorMessage, "connection reset by peer")

	failed := q.FailedItems()
	require.Len(t, failed, 1)
	assert.Equal(t, doc.ID, failed[0].DocumentID)

	counters, err := q.Status(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, counters.Active, "settled job must not leak the active counter")

	// The failed status is the operator's handle: a re-enqueue after the
	// outage recovers the document.
	require.NoError(t, q.Enqueue(ctx, doc.ID, doc.OwnerID))
	require.NoError(t, c.runOnce(ctx))

	final, err := docs.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, final.Status)
	assert.Empty(t, final.ErrorMessage)
}

func TestRunOnce_ConcurrentDeliveriesForOneDocument(t *testing.T) {
	ctx := context.Background()
	q := queue.NewMemoryQueue()
	docs := &countingDocumentStore{MemoryStore: document.NewMemoryStore()}
	blobs := blob.NewMemoryStore()
	opts := Options{PollInterval: time.Millisecond, CallTimeout: 5 * time.Second}
	model := slowModel{delay: 50 * time.Millisecond}
	first := NewCoordinator(q, docs, blobs, extract.NewRegistry(""), summarize.New(model, 0, 0), opts)
	second := NewCoordinator(q, docs, blobs, extract.NewRegistry(""), summarize.New(model, 0, 0), opts)

	doc := seedDocument(t, docs, blobs, q, longText())
	require.NoError(t, q.Enqueue(ctx, doc.ID, doc.OwnerID)) // duplicate delivery
	baseline := docs.updateCount()

	var wg sync.WaitGroup
	for _, c := range []*Coordinator{first, second} {
		c := c
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.runOnce(ctx))
		}()
	}
	wg.Wait()

	got, err := docs.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Contains(t, got.Summary, "condensed passage")

	// Exactly one worker ran the pipeline: one processing write plus one
	// completion write; the losing delivery acknowledges without touching
	// the record.
	assert.Equal(t, baseline+2, docs.updateCount())

	require.Len(t, q.CompletedItems(), 2)
	assert.Empty(t, q.FailedItems())

	counters, err := q.Status(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, counters.Active)
	assert.EqualValues(t, 2, counters.Completed)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		f.coordinator.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("coordinator did not stop after cancellation")
	}
}
