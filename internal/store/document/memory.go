package document

import (
	"context"
	"sort"
	"sync"
	"time"

	"docflow/internal/models"
	"docflow/internal/store"
)

var _ store.DocumentStore = (*MemoryStore)(nil)

// MemoryStore implements store.DocumentStore in process memory for tests
// and local runs. Records are stored by value so callers cannot mutate
// the store's copy behind its back.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string]models.Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]models.Document)}
}

func (s *MemoryStore) Create(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	s.docs[doc.ID] = *doc
	return nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := doc
	return &out, nil
}

func (s *MemoryStore) Update(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[doc.ID]; !ok {
		return models.ErrNotFound
	}
	doc.UpdatedAt = time.Now()
	s.docs[doc.ID] = *doc
	return nil
}

func (s *MemoryStore) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	var docs []*models.Document
	for _, doc := range s.docs {
		if doc.OwnerID == ownerID {
			d := doc
			docs = append(docs, &d)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	if offset >= len(docs) {
		return nil, nil
	}
	docs = docs[offset:]
	if len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
