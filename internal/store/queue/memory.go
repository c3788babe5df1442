package queue

import (
	"context"
	"sync"
	"time"

	"docflow/internal/models"
	"docflow/internal/store"
)

var _ store.QueueStore = (*MemoryQueue)(nil)

// MemoryQueue implements store.QueueStore in process memory. It backs the
// test suite and single-process local runs; the contract is identical to
// the Redis implementation, including the approximate counter semantics.
type MemoryQueue struct {
	mu        sync.Mutex
	pending   []models.QueueItem
	completed []models.QueueItem
	failed    []models.QueueItem
	active    map[string]bool
	counters  models.QueueCounters
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{active: make(map[string]bool)}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, documentID, ownerID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, models.QueueItem{
		DocumentID: documentID,
		OwnerID:    ownerID,
		Timestamp:  time.Now().UnixMilli(),
	})
	q.counters.Waiting++
	return nil
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (*models.QueueItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil, nil
	}
	item := q.pending[0]
	q.pending = q.pending[1:]
	q.counters.Waiting--
	q.counters.Active++
	return &item, nil
}

func (q *MemoryQueue) MarkCompleted(ctx context.Context, documentID, ownerID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.completed = append(q.completed, models.QueueItem{
		DocumentID: documentID,
		OwnerID:    ownerID,
		Timestamp:  time.Now().UnixMilli(),
	})
	q.counters.Completed++
	q.counters.Active--
	return nil
}

func (q *MemoryQueue) MarkFailed(ctx context.Context, documentID, ownerID, reason string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failed = append(q.failed, models.QueueItem{
		DocumentID:   documentID,
		OwnerID:      ownerID,
		Timestamp:    time.Now().UnixMilli(),
		ErrorMessage: reason,
	})
	q.counters.Failed++
	q.counters.Active--
	return nil
}

func (q *MemoryQueue) Claim(ctx context.Context, documentID string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.active[documentID] {
		return false, nil
	}
	q.active[documentID] = true
	return true, nil
}

func (q *MemoryQueue) Release(ctx context.Context, documentID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.active, documentID)
	return nil
}

func (q *MemoryQueue) Status(ctx context.Context) (models.QueueCounters, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	snapshot := q.counters
	snapshot.Timestamp = time.Now()
	return snapshot, nil
}

func (q *MemoryQueue) Reset(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = nil
	q.completed = nil
	q.failed = nil
	q.active = make(map[string]bool)
	q.counters = models.QueueCounters{}
	return nil
}

func (q *MemoryQueue) Ping(ctx context.Context) error { return nil }

func (q *MemoryQueue) Close() error { return nil }

// FailedItems returns a copy of the failed history list. Used by the
// status surfaces and tests; no ordering guarantee beyond append order.
func (q *MemoryQueue) FailedItems() []models.QueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]models.QueueItem, len(q.failed))
	copy(out, q.failed)
	return out
}

// CompletedItems returns a copy of the completed history list.
func (q *MemoryQueue) CompletedItems() []models.QueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]models.QueueItem, len(q.completed))
	copy(out, q.completed)
	return out
}
