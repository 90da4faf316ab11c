package driven

import (
	"context"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
)

// DocumentStore holds one session's documents and chunk text.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks stores chunks for a document.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunks retrieves all chunks for a document, by position.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns documents in ingestion order.
	ListDocuments(ctx context.Context) ([]domain.Document, error)
}

// DocumentStoreFactory creates an empty store for a new or reset session.
type DocumentStoreFactory func() DocumentStore
