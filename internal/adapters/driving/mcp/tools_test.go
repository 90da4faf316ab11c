package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
)

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns grounded answer", func(t *testing.T) {
		server, conv, _, session := newTestServer()
		conv.turn = &domain.Turn{
			Seq:     1,
			Role:    domain.RoleAssistant,
			Content: "Refunds take 5 days.",
			Model:   "gpt-4o-mini",
			Mode:    domain.ModeDocument,
			Citations: []domain.Citation{{
				DocumentID: "doc-1",
				Content:    "Refunds are processed within 5 days.",
				Locator:    domain.Locator{Source: "policy.pdf", Page: 3},
				Similarity: 0.82,
			}},
		}

		_, output, err := server.handleAsk(ctx, nil, AskInput{SessionID: "s1", Question: "How long do refunds take?"})
		require.NoError(t, err)

		assert.Empty(t, session.opened)
		assert.Equal(t, "s1", conv.lastSession)
		assert.Equal(t, "s1", output.SessionID)
		assert.Equal(t, "assistant", output.Role)
		assert.Equal(t, "document", output.Mode)
		require.Len(t, output.Citations, 1)
		assert.Equal(t, "policy.pdf, page 3", output.Citations[0].Location)
		assert.Equal(t, 0.82, output.Citations[0].Similarity)
	})

	t.Run("opens a session when none given", func(t *testing.T) {
		server, conv, _, session := newTestServer()
		session.stats = domain.SessionStats{SessionID: "fresh"}
		conv.turn = &domain.Turn{Role: domain.RoleAssistant, Content: "hi"}
		temp := 0.3

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "hello", Model: "gpt-4o", Temperature: &temp})
		require.NoError(t, err)

		assert.Equal(t, []string{""}, session.opened)
		assert.Equal(t, "fresh", conv.lastSession)
		assert.Equal(t, "fresh", output.SessionID)
		assert.Equal(t, "gpt-4o", conv.lastOpts.Model)
		assert.Same(t, &temp, conv.lastOpts.Temperature)
	})

	t.Run("blank question is rejected", func(t *testing.T) {
		server, conv, _, _ := newTestServer()
		_, _, err := server.handleAsk(ctx, nil, AskInput{SessionID: "s1", Question: "  "})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, conv.lastSession)
	})

	t.Run("service error is returned", func(t *testing.T) {
		server, conv, _, _ := newTestServer()
		conv.err = domain.ErrLLMUnavailable
		_, _, err := server.handleAsk(ctx, nil, AskInput{SessionID: "s1", Question: "q"})
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})
}

func TestServer_handleEditTurn(t *testing.T) {
	ctx := context.Background()

	t.Run("edits the referenced turn", func(t *testing.T) {
		server, conv, _, _ := newTestServer()
		conv.turn = &domain.Turn{Seq: 3, Role: domain.RoleAssistant, Content: "new answer"}

		_, output, err := server.handleEditTurn(ctx, nil, EditTurnInput{SessionID: "s1", Index: 2, Content: "rephrased", Model: "gpt-4o"})
		require.NoError(t, err)

		assert.Equal(t, 2, conv.lastIndex)
		assert.Equal(t, "rephrased", conv.lastContent)
		assert.Equal(t, "gpt-4o", conv.lastOpts.Model)
		assert.Equal(t, 3, output.Seq)
	})

	t.Run("requires a session", func(t *testing.T) {
		server, _, _, _ := newTestServer()
		_, _, err := server.handleEditTurn(ctx, nil, EditTurnInput{Index: 0, Content: "x"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("invalid reference", func(t *testing.T) {
		server, conv, _, _ := newTestServer()
		conv.err = domain.ErrInvalidTurnReference
		_, _, err := server.handleEditTurn(ctx, nil, EditTurnInput{SessionID: "s1", Index: 1, Content: "x"})
		assert.ErrorIs(t, err, domain.ErrInvalidTurnReference)
	})
}

func TestServer_handleRetry(t *testing.T) {
	server, conv, _, _ := newTestServer()
	conv.turn = &domain.Turn{Seq: 1, Role: domain.RoleAssistant, Failed: true, Error: "provider timeout"}

	_, output, err := server.handleRetry(context.Background(), nil, RetryInput{SessionID: "s1", Model: "gpt-4o"})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", conv.lastOpts.Model)
	assert.True(t, output.Failed)
	assert.Equal(t, "provider timeout", output.Error)
}

func TestServer_handleSwitchModel(t *testing.T) {
	ctx := context.Background()

	t.Run("returns updated stats", func(t *testing.T) {
		server, conv, _, session := newTestServer()
		session.stats = domain.SessionStats{SessionID: "s1", Model: "gpt-4o", VectorStoreSize: 4}

		_, output, err := server.handleSwitchModel(ctx, nil, SwitchModelInput{SessionID: "s1", Model: "gpt-4o"})
		require.NoError(t, err)

		assert.Equal(t, "gpt-4o", conv.lastModel)
		assert.Equal(t, "gpt-4o", output.Model)
		assert.Equal(t, "document", output.Mode)
	})

	t.Run("unknown model", func(t *testing.T) {
		server, conv, _, _ := newTestServer()
		conv.err = domain.ErrUnknownModel
		_, _, err := server.handleSwitchModel(ctx, nil, SwitchModelInput{SessionID: "s1", Model: "nope"})
		assert.ErrorIs(t, err, domain.ErrUnknownModel)
	})
}

func TestServer_handleIngestFiles(t *testing.T) {
	ctx := context.Background()

	t.Run("reads files and merges read failures", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "notes.md")
		require.NoError(t, os.WriteFile(path, []byte("# Notes\nbody"), 0o600))

		server, _, ingest, session := newTestServer()
		session.stats = domain.SessionStats{SessionID: "fresh"}
		ingest.report = &domain.IngestReport{
			Documents:     []domain.Document{{ID: "d1", Filename: "notes.md", Format: domain.FormatMD, ChunkCount: 1}},
			Warnings:      []domain.IngestFailure{{Filename: "notes.md", Err: domain.ErrEmptyDocument}},
			ChunksIndexed: 1,
		}

		_, output, err := server.handleIngestFiles(ctx, nil, IngestFilesInput{
			Paths: []string{path, filepath.Join(dir, "missing.pdf")},
		})
		require.NoError(t, err)

		assert.Equal(t, "fresh", output.SessionID)
		require.Len(t, ingest.lastFiles, 1)
		assert.Equal(t, "notes.md", ingest.lastFiles[0].Filename)

		require.Len(t, output.Documents, 1)
		assert.Equal(t, "md", output.Documents[0].Format)
		assert.Equal(t, 1, output.ChunksIndexed)
		require.Len(t, output.Failures, 1)
		assert.Equal(t, "missing.pdf", output.Failures[0].Filename)
		require.Len(t, output.Warnings, 1)
	})

	t.Run("all reads failing skips ingest", func(t *testing.T) {
		server, _, ingest, _ := newTestServer()

		_, output, err := server.handleIngestFiles(ctx, nil, IngestFilesInput{
			SessionID: "s1",
			Paths:     []string{filepath.Join(t.TempDir(), "gone.txt")},
		})
		require.NoError(t, err)

		assert.Zero(t, ingest.calls)
		assert.Empty(t, output.Documents)
		assert.Len(t, output.Failures, 1)
	})

	t.Run("no paths", func(t *testing.T) {
		server, _, _, _ := newTestServer()
		_, _, err := server.handleIngestFiles(ctx, nil, IngestFilesInput{SessionID: "s1"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestServer_handleResetSession(t *testing.T) {
	ctx := context.Background()

	t.Run("full reset", func(t *testing.T) {
		server, _, _, session := newTestServer()
		_, _, err := server.handleResetSession(ctx, nil, ResetSessionInput{SessionID: "s1"})
		require.NoError(t, err)
		assert.Equal(t, []string{"s1"}, session.reset)
		assert.Empty(t, session.cleared)
	})

	t.Run("documents only", func(t *testing.T) {
		server, _, _, session := newTestServer()
		_, _, err := server.handleResetSession(ctx, nil, ResetSessionInput{SessionID: "s1", DocumentsOnly: true})
		require.NoError(t, err)
		assert.Empty(t, session.reset)
		assert.Equal(t, []string{"s1"}, session.cleared)
	})

	t.Run("unknown session", func(t *testing.T) {
		server, _, _, session := newTestServer()
		session.err = domain.ErrSessionNotFound
		_, _, err := server.handleResetSession(ctx, nil, ResetSessionInput{SessionID: "gone"})
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}

func TestServer_handleSessionStats(t *testing.T) {
	server, _, _, session := newTestServer()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	session.stats = domain.SessionStats{
		SessionID:          "s1",
		Model:              "gpt-4o-mini",
		DocumentsProcessed: 2,
		VectorStoreSize:    0,
		TranscriptLength:   4,
		StorageType:        domain.StorageMemoryOnly,
		CreatedAt:          created,
	}

	_, output, err := server.handleSessionStats(context.Background(), nil, SessionInput{SessionID: "s1"})
	require.NoError(t, err)

	assert.Equal(t, "chat", output.Mode)
	assert.Equal(t, 2, output.DocumentsProcessed)
	assert.Equal(t, 4, output.TranscriptLength)
	assert.Equal(t, "2026-01-02T03:04:05Z", output.CreatedAt)
	assert.Empty(t, output.LastActive)
}

func TestServer_handleListModels(t *testing.T) {
	server, conv, _, _ := newTestServer()
	conv.models = domain.ModelCatalogue()

	_, output, err := server.handleListModels(context.Background(), nil, ListModelsInput{})
	require.NoError(t, err)
	assert.Equal(t, len(conv.models), output.Count)
	assert.NotEmpty(t, output.Models)
}
