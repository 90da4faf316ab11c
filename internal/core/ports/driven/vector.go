package driven

import (
	"context"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
)

// VectorIndex provides semantic similarity search over one session's chunks.
// Every session gets its own instance; there is no shared index.
type VectorIndex interface {
	// Upsert stores an entry. The first entry fixes the index dimension;
	// later entries of another size fail with domain.ErrDimensionMismatch.
	Upsert(ctx context.Context, entry domain.IndexEntry) error

	// Delete removes entries by chunk ID; unknown IDs are ignored.
	// Deleting the last entry releases the dimension.
	Delete(ctx context.Context, chunkIDs ...string) error

	// Search finds the k most similar entries, highest cosine similarity first.
	// Ties go to the entry inserted first. An empty index returns no hits.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of entries.
	Len() int

	// Dimension returns the established dimension, or 0 when empty.
	Dimension() int

	// Clear drops every entry and the established dimension.
	Clear()
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// DocumentID is the matched chunk's document.
	DocumentID string

	// Locator is the matched chunk's position.
	Locator domain.Locator

	// Similarity is the cosine similarity score (-1 to 1).
	Similarity float64
}

// VectorIndexFactory creates an empty index for a new or reset session.
type VectorIndexFactory func() VectorIndex
