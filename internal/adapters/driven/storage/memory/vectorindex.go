package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/viant/vec/search"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// vectorEntry is a stored vector with its precomputed magnitude.
// The magnitude only screens out zero vectors.
type vectorEntry struct {
	chunkID    string
	documentID string
	locator    domain.Locator
	vector     search.Float32s
	magnitude  float32
}

// VectorIndex is an exact, brute-force cosine index held in memory.
// Entries keep insertion order, which breaks similarity ties.
type VectorIndex struct {
	mu        sync.RWMutex
	entries   []vectorEntry
	positions map[string]int
	dimension int
}

// NewVectorIndex creates an empty vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{positions: make(map[string]int)}
}

// NewVectorIndexFactory returns a factory producing empty indexes.
func NewVectorIndexFactory() driven.VectorIndexFactory {
	return func() driven.VectorIndex { return NewVectorIndex() }
}

// Upsert stores an entry. Re-upserting a chunk ID replaces its vector in place.
func (v *VectorIndex) Upsert(_ context.Context, entry domain.IndexEntry) error {
	if entry.ChunkID == "" || len(entry.Vector) == 0 {
		return domain.ErrInvalidInput
	}

	vec := make(search.Float32s, len(entry.Vector))
	copy(vec, entry.Vector)

	e := vectorEntry{
		chunkID:    entry.ChunkID,
		documentID: entry.DocumentID,
		locator:    entry.Locator,
		vector:     vec,
		magnitude:  vec.Magnitude(),
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.dimension != 0 && len(vec) != v.dimension {
		return fmt.Errorf("%w: index has %d dimensions, got %d", domain.ErrDimensionMismatch, v.dimension, len(vec))
	}
	v.dimension = len(vec)

	if i, ok := v.positions[entry.ChunkID]; ok {
		v.entries[i] = e
		return nil
	}
	v.positions[entry.ChunkID] = len(v.entries)
	v.entries = append(v.entries, e)
	return nil
}

// Delete removes entries by chunk ID, keeping the rest in insertion order.
func (v *VectorIndex) Delete(_ context.Context, chunkIDs ...string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	drop := make(map[string]bool, len(chunkIDs))
	for _, id := range chunkIDs {
		if _, ok := v.positions[id]; ok {
			drop[id] = true
		}
	}
	if len(drop) == 0 {
		return nil
	}

	kept := v.entries[:0]
	for _, e := range v.entries {
		if !drop[e.chunkID] {
			kept = append(kept, e)
		}
	}
	clear(v.entries[len(kept):])
	v.entries = kept

	v.positions = make(map[string]int, len(kept))
	for i, e := range kept {
		v.positions[e.chunkID] = i
	}
	if len(kept) == 0 {
		v.dimension = 0
	}
	return nil
}

// Search returns up to k hits ordered by descending cosine similarity.
func (v *VectorIndex) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", domain.ErrInvalidInput)
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if len(v.entries) == 0 {
		return nil, nil
	}
	if len(query) != v.dimension {
		return nil, fmt.Errorf("%w: index has %d dimensions, query has %d", domain.ErrDimensionMismatch, v.dimension, len(query))
	}

	q := search.Float32s(query)
	qMag := q.Magnitude()

	hits := make([]driven.VectorHit, len(v.entries))
	for i, e := range v.entries {
		hits[i] = driven.VectorHit{
			ChunkID:    e.chunkID,
			DocumentID: e.documentID,
			Locator:    e.locator,
			Similarity: similarity(q, qMag, e),
		}
	}

	// Stable sort keeps insertion order among equal scores.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Similarity > hits[j].Similarity })

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// similarity is 1 - cosine distance; zero vectors score 0.
func similarity(q search.Float32s, qMag float32, e vectorEntry) float64 {
	if qMag == 0 || e.magnitude == 0 {
		return 0
	}
	return 1 - float64(q.CosineDistance(e.vector))
}

// Len returns the number of entries.
func (v *VectorIndex) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.entries)
}

// Dimension returns the established dimension, or 0 when empty.
func (v *VectorIndex) Dimension() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.dimension
}

// Clear drops every entry and the established dimension.
func (v *VectorIndex) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.entries = nil
	v.positions = make(map[string]int)
	v.dimension = 0
}
