package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/logger"
)

// RetrievalScope is the slice of session state a plan may read.
// It is captured under the session lock, so a concurrent reset does not
// change the index a running search uses.
type RetrievalScope struct {
	Index     driven.VectorIndex
	Documents driven.DocumentStore
}

// RetrievalPlanner decides whether a query is answered in chat or document
// mode and gathers the evidence for document mode.
type RetrievalPlanner struct {
	gateway *EmbeddingGateway
	config  domain.RetrievalSettings
}

// NewRetrievalPlanner creates a planner. A non-positive K falls back to the default.
func NewRetrievalPlanner(gateway *EmbeddingGateway, config domain.RetrievalSettings) *RetrievalPlanner {
	if config.K <= 0 {
		config.K = domain.DefaultAppSettings().Retrieval.K
	}
	return &RetrievalPlanner{gateway: gateway, config: config}
}

// Plan returns the evidence for query.
// An empty index short-circuits to chat mode without calling the embedding provider.
func (p *RetrievalPlanner) Plan(ctx context.Context, query string, scope RetrievalScope) (*domain.EvidenceSet, error) {
	logger.Section("Retrieval")

	if scope.Index == nil || scope.Index.Len() == 0 {
		logger.Debug("No documents indexed, using chat mode")
		return domain.ChatEvidence(query), nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty query: %w", domain.ErrInvalidInput)
	}

	vectors, err := p.gateway.Embed(ctx, []string{query}, scope.Index.Dimension())
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := scope.Index.Search(ctx, vectors[0], p.config.K)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	logger.Debug("Index returned %d hits for k=%d", len(hits), p.config.K)

	evidence := &domain.EvidenceSet{Query: query, Mode: domain.ModeDocument}
	for _, hit := range hits {
		if hit.Similarity < p.config.MinSimilarity {
			logger.Debug("Dropping chunk %s at similarity %.3f", hit.ChunkID, hit.Similarity)
			continue
		}

		citation, err := hydrate(ctx, scope.Documents, hit)
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Indexed chunk %s has no stored text", hit.ChunkID)
			continue
		}
		if err != nil {
			return nil, err
		}
		evidence.Citations = append(evidence.Citations, citation)
	}

	evidence.LowRelevance = len(evidence.Citations) == 0
	logger.Info("Retrieved %d citations (low relevance: %t)", len(evidence.Citations), evidence.LowRelevance)
	return evidence, nil
}

// hydrate fills a citation with the chunk text from the document store.
func hydrate(ctx context.Context, docs driven.DocumentStore, hit driven.VectorHit) (domain.Citation, error) {
	citation := domain.Citation{
		ChunkID:    hit.ChunkID,
		DocumentID: hit.DocumentID,
		Locator:    hit.Locator,
		Similarity: hit.Similarity,
	}
	if docs == nil {
		return citation, domain.ErrNotFound
	}

	chunk, err := docs.GetChunk(ctx, hit.ChunkID)
	if err != nil {
		return citation, fmt.Errorf("load chunk %s: %w", hit.ChunkID, err)
	}
	citation.Content = chunk.Content
	if chunk.Locator != (domain.Locator{}) {
		citation.Locator = chunk.Locator
	}
	return citation, nil
}

// FormatEvidence renders citations as numbered excerpts for a prompt.
func FormatEvidence(citations []domain.Citation) string {
	var b strings.Builder
	for i, c := range citations {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] (%s)\n%s", i+1, c.Locator.String(), c.Content)
	}
	return b.String()
}
