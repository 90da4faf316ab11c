package driven

import "github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"

// Chunker splits a document's segments into overlapping, size-bounded chunks.
type Chunker interface {
	// Chunk returns the chunks for documentID in order.
	// Returns domain.ErrEmptyDocument when the segments carry no text.
	Chunk(documentID string, segments []domain.Segment) ([]domain.Chunk, error)
}
