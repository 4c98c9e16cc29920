package storage

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps documents in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
	now  func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Document), now: time.Now}
}

func (s *MemoryStore) Save(ctx context.Context, doc Document) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing *Document
	if prev, ok := s.docs[doc.ID]; ok {
		existing = &prev
	}
	doc, err := Prepare(doc, existing, s.now())
	if err != nil {
		return Document{}, err
	}
	s.docs[doc.ID] = doc
	return doc, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return Document{}, NotFound(id)
	}
	return doc, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]Document, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, d)
	}
	SortByUpdated(docs)
	return docs, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// SortByUpdated orders docs most recently updated first, breaking ties by ID.
func SortByUpdated(docs []Document) {
	slices.SortFunc(docs, func(a, b Document) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
}

var _ Store = (*MemoryStore)(nil)
