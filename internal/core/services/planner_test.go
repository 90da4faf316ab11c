package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driven/storage/memory"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
)

type plannerFixture struct {
	embedder *mockEmbedder
	planner  *RetrievalPlanner
	scope    RetrievalScope
	stored   []domain.Chunk
}

func newPlannerFixture(config domain.RetrievalSettings) *plannerFixture {
	embedder := newMockEmbedder()
	return &plannerFixture{
		embedder: embedder,
		planner:  NewRetrievalPlanner(NewEmbeddingGateway(embedder, fastGateway()), config),
		scope: RetrievalScope{
			Index:     memory.NewVectorIndexFactory()(),
			Documents: memory.NewDocumentStoreFactory()(),
		},
	}
}

// add indexes one chunk and, when store is set, saves its text. The store
// replaces a document's chunks on every save, so the whole set is saved.
func (f *plannerFixture) add(t *testing.T, id, content string, store bool) {
	t.Helper()
	ctx := context.Background()
	locator := domain.Locator{Source: "handbook.pdf", Page: f.scope.Index.Len() + 1}
	require.NoError(t, f.scope.Index.Upsert(ctx, domain.IndexEntry{
		ChunkID: id, DocumentID: "handbook", Vector: keywordVector(content), Locator: locator,
	}))
	if store {
		f.stored = append(f.stored, domain.Chunk{
			ID: id, DocumentID: "handbook", Position: len(f.stored), Content: content, Locator: locator,
		})
		require.NoError(t, f.scope.Documents.SaveChunks(ctx, f.stored))
	}
}

func TestRetrievalPlanner_EmptyIndexUsesChatMode(t *testing.T) {
	f := newPlannerFixture(domain.RetrievalSettings{K: 4})

	evidence, err := f.planner.Plan(context.Background(), "what is a refund?", f.scope)
	require.NoError(t, err)

	assert.Equal(t, domain.ModeChat, evidence.Mode)
	assert.True(t, evidence.IsEmpty())
	assert.False(t, evidence.LowRelevance)
	assert.Zero(t, f.embedder.callCount(), "chat mode must not call the embedding provider")

	evidence, err = f.planner.Plan(context.Background(), "hello", RetrievalScope{})
	require.NoError(t, err)
	assert.Equal(t, domain.ModeChat, evidence.Mode)
}

func TestRetrievalPlanner_DocumentMode(t *testing.T) {
	f := newPlannerFixture(domain.RetrievalSettings{K: 2, MinSimilarity: 0.1})
	f.add(t, "c1", "shipping takes five days", true)
	f.add(t, "c2", "refund within thirty days", true)
	f.add(t, "c3", "refund and shipping are separate", true)
	f.add(t, "c4", "holiday calendar", true)

	evidence, err := f.planner.Plan(context.Background(), "  refund rules  ", f.scope)
	require.NoError(t, err)

	assert.Equal(t, domain.ModeDocument, evidence.Mode)
	assert.Equal(t, "refund rules", evidence.Query)
	assert.False(t, evidence.LowRelevance)
	require.Len(t, evidence.Citations, 2)
	assert.Equal(t, "c2", evidence.Citations[0].ChunkID)
	assert.Equal(t, "refund within thirty days", evidence.Citations[0].Content)
	assert.Equal(t, 2, evidence.Citations[0].Locator.Page)
	assert.Equal(t, "c3", evidence.Citations[1].ChunkID)
	assert.Greater(t, evidence.Citations[0].Similarity, evidence.Citations[1].Similarity)
	assert.Equal(t, 1, f.embedder.callCount())
}

func TestRetrievalPlanner_LowRelevance(t *testing.T) {
	f := newPlannerFixture(domain.RetrievalSettings{K: 4, MinSimilarity: 0.5})
	f.add(t, "c1", "holiday calendar", true)
	f.add(t, "c2", "invoice numbering", true)

	evidence, err := f.planner.Plan(context.Background(), "refund", f.scope)
	require.NoError(t, err)

	assert.Equal(t, domain.ModeDocument, evidence.Mode)
	assert.Empty(t, evidence.Citations)
	assert.True(t, evidence.LowRelevance)
}

func TestRetrievalPlanner_SkipsChunksWithoutText(t *testing.T) {
	f := newPlannerFixture(domain.RetrievalSettings{K: 4})
	f.add(t, "orphan", "refund", false)
	f.add(t, "kept", "refund policy", true)

	evidence, err := f.planner.Plan(context.Background(), "refund", f.scope)
	require.NoError(t, err)

	require.Len(t, evidence.Citations, 1)
	assert.Equal(t, "kept", evidence.Citations[0].ChunkID)
}

func TestRetrievalPlanner_EmbeddingFailure(t *testing.T) {
	f := newPlannerFixture(domain.RetrievalSettings{K: 4})
	f.add(t, "c1", "refund", true)
	f.embedder.embedFn = func(int, []string) ([][]float32, error) {
		return nil, &domain.ProviderError{Provider: "mock", StatusCode: 400, Message: "bad request"}
	}

	_, err := f.planner.Plan(context.Background(), "refund", f.scope)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestRetrievalPlanner_DimensionMismatch(t *testing.T) {
	f := newPlannerFixture(domain.RetrievalSettings{K: 4})
	require.NoError(t, f.scope.Index.Upsert(context.Background(), domain.IndexEntry{
		ChunkID: "wide", Vector: make([]float32, 8),
	}))

	_, err := f.planner.Plan(context.Background(), "refund", f.scope)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestRetrievalPlanner_BlankQueryWithDocuments(t *testing.T) {
	f := newPlannerFixture(domain.RetrievalSettings{K: 4})
	f.add(t, "c1", "refund", true)

	_, err := f.planner.Plan(context.Background(), "   ", f.scope)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewRetrievalPlanner_DefaultK(t *testing.T) {
	p := NewRetrievalPlanner(nil, domain.RetrievalSettings{})
	assert.Equal(t, domain.DefaultAppSettings().Retrieval.K, p.config.K)
}

func TestFormatEvidence(t *testing.T) {
	citations := []domain.Citation{
		{Content: "Refunds take 30 days.", Locator: domain.Locator{Source: "policy.pdf", Page: 2}},
		{Content: "Ships in 5 days.", Locator: domain.Locator{Source: "faq.md", Section: "Shipping"}},
	}

	assert.Equal(t,
		"[1] (policy.pdf, page 2)\nRefunds take 30 days.\n\n[2] (faq.md, Shipping)\nShips in 5 days.",
		FormatEvidence(citations))
	assert.Empty(t, FormatEvidence(nil))
}
