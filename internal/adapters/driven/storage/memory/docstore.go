package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// It keeps one session's documents in ingestion order and indexes chunks
// by ID for citation lookup.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	order     []string
	chunks    map[string][]domain.Chunk
	chunkByID map[string]domain.Chunk
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
		chunkByID: make(map[string]domain.Chunk),
	}
}

// NewDocumentStoreFactory returns a factory producing empty stores.
func NewDocumentStoreFactory() driven.DocumentStoreFactory {
	return func() driven.DocumentStore { return NewDocumentStore() }
}

// SaveDocument stores or updates a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.documents[doc.ID]; !exists {
		s.order = append(s.order, doc.ID)
	}
	s.documents[doc.ID] = *doc
	return nil
}

// SaveChunks replaces the chunks of the document they belong to.
// All chunks must share one DocumentID.
func (s *DocumentStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	docID := chunks[0].DocumentID
	for _, c := range chunks {
		if c.DocumentID != docID {
			return domain.ErrInvalidInput
		}
	}

	sorted := make([]domain.Chunk, len(chunks))
	copy(sorted, chunks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, old := range s.chunks[docID] {
		delete(s.chunkByID, old.ID)
	}
	s.chunks[docID] = sorted
	for _, c := range sorted {
		s.chunkByID[c.ID] = c
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetChunks retrieves all chunks for a document, ordered by position.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks, ok := s.chunks[documentID]
	if !ok {
		return nil, nil
	}
	result := make([]domain.Chunk, len(chunks))
	copy(result, chunks)
	return result, nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *DocumentStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunk, ok := s.chunkByID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &chunk, nil
}

// DeleteDocument removes a document and its chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.chunks[id] {
		delete(s.chunkByID, c.ID)
	}
	delete(s.chunks, id)

	if _, ok := s.documents[id]; ok {
		delete(s.documents, id)
		for i, docID := range s.order {
			if docID == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	return nil
}

// ListDocuments returns documents in ingestion order.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Document, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.documents[id])
	}
	return result, nil
}
