package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driving"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService turns uploaded files into indexed chunks for a session.
type IngestService struct {
	registry    *SessionRegistry
	normalisers driven.NormaliserRegistry
	chunker     driven.Chunker
	gateway     *EmbeddingGateway
	concurrency int
	now         func() time.Time
}

// NewIngestService creates an ingest service. Concurrency bounds how many
// files are normalised and embedded at once.
func NewIngestService(
	registry *SessionRegistry,
	normalisers driven.NormaliserRegistry,
	chunker driven.Chunker,
	gateway *EmbeddingGateway,
	concurrency int,
) *IngestService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &IngestService{
		registry:    registry,
		normalisers: normalisers,
		chunker:     chunker,
		gateway:     gateway,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// prepared is one file after normalising, chunking and embedding.
type prepared struct {
	doc     domain.Document
	chunks  []domain.Chunk
	vectors [][]float32
	err     error
}

// Ingest adds files to the session. Files are prepared concurrently and
// indexed in upload order. A failing file is reported, never fatal.
func (s *IngestService) Ingest(
	ctx context.Context, sessionID string, files []domain.UploadedFile,
) (*domain.IngestReport, error) {
	logger.Section("Ingest")

	session, err := s.registry.GetOrCreate(sessionID)
	if err != nil {
		return nil, err
	}

	report := &domain.IngestReport{}
	if len(files) == 0 {
		return report, nil
	}

	dim := session.Scope().Index.Dimension()
	results := make([]prepared, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, file := range files {
		g.Go(func() error {
			results[i] = s.prepare(gctx, session.ID(), file, dim)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	for i, res := range results {
		filename := files[i].Filename
		switch {
		case errors.Is(res.err, domain.ErrEmptyDocument):
			logger.Warn("%s: no text extracted", filename)
			report.Warnings = append(report.Warnings, domain.IngestFailure{Filename: filename, Err: res.err})
			continue
		case res.err != nil:
			logger.Warn("%s: %v", filename, res.err)
			report.Failures = append(report.Failures, domain.IngestFailure{Filename: filename, Err: res.err})
			continue
		}

		if err := s.commit(ctx, session, res); err != nil {
			logger.Warn("%s: %v", filename, err)
			report.Failures = append(report.Failures, domain.IngestFailure{Filename: filename, Err: err})
			continue
		}
		report.Documents = append(report.Documents, res.doc)
		report.ChunksIndexed += len(res.chunks)
	}

	session.lastActive = s.now()
	logger.Info("Ingested %d of %d files (%d chunks) into session %s",
		len(report.Documents), len(files), report.ChunksIndexed, session.ID())
	return report, nil
}

// SupportedFormats lists the accepted format tags by group, restricted to
// tags a normaliser is registered for.
func (s *IngestService) SupportedFormats() []domain.FormatGroup {
	registered := make(map[domain.FormatTag]bool)
	for _, tag := range s.normalisers.SupportedFormats() {
		registered[tag] = true
	}

	var groups []domain.FormatGroup
	for _, group := range domain.SupportedFormatGroups() {
		var tags []domain.FormatTag
		for _, tag := range group.Formats {
			if registered[tag] {
				tags = append(tags, tag)
			}
		}
		if len(tags) > 0 {
			groups = append(groups, domain.FormatGroup{Name: group.Name, Formats: tags})
		}
	}
	return groups
}

// prepare normalises, chunks and embeds one file without touching the session.
func (s *IngestService) prepare(ctx context.Context, sessionID string, file domain.UploadedFile, dim int) prepared {
	name := filepath.Base(strings.TrimSpace(file.Filename))
	if name == "" || name == "." {
		return prepared{err: fmt.Errorf("missing filename: %w", domain.ErrInvalidInput)}
	}

	format := file.Format
	if format == "" {
		format = domain.FormatFromFilename(name)
	}

	segments, err := s.normalisers.Normalise(ctx, &domain.RawDocument{
		Filename: name,
		Format:   format,
		Content:  file.Content,
	})
	if err != nil {
		return prepared{err: err}
	}

	doc := domain.Document{
		ID:         uuid.New().String(),
		SessionID:  sessionID,
		Filename:   name,
		Format:     format,
		ByteLength: len(file.Content),
		Title:      titleFromFilename(name),
		CreatedAt:  s.now(),
	}

	chunks, err := s.chunker.Chunk(doc.ID, segments)
	if err != nil {
		return prepared{err: err}
	}
	doc.ChunkCount = len(chunks)
	logger.Debug("%s: %d segments, %d chunks", name, len(segments), len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := s.gateway.Embed(ctx, texts, dim)
	if err != nil {
		return prepared{err: err}
	}

	return prepared{doc: doc, chunks: chunks, vectors: vectors}
}

// commit writes a prepared file into the session. The caller holds the session lock.
func (s *IngestService) commit(ctx context.Context, session *Session, res prepared) error {
	if session.closed {
		return fmt.Errorf("session %s: %w", session.ID(), domain.ErrSessionNotFound)
	}

	index := session.index
	if dim := index.Dimension(); dim != 0 && len(res.vectors) > 0 && len(res.vectors[0]) != dim {
		return fmt.Errorf("document has %d dimensions, index has %d: %w",
			len(res.vectors[0]), dim, domain.ErrDimensionMismatch)
	}

	if err := session.documents.SaveDocument(ctx, &res.doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	if err := session.documents.SaveChunks(ctx, res.chunks); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}

	indexed := make([]string, 0, len(res.chunks))
	for i, c := range res.chunks {
		if err := index.Upsert(ctx, domain.IndexEntry{
			ChunkID:    c.ID,
			DocumentID: c.DocumentID,
			Vector:     res.vectors[i],
			Locator:    c.Locator,
		}); err != nil {
			s.rollback(ctx, session, res.doc.ID, indexed)
			return fmt.Errorf("index chunk %d: %w", c.Position, err)
		}
		indexed = append(indexed, c.ID)
	}
	return nil
}

// rollback removes a partly indexed document. The caller holds the session lock.
func (s *IngestService) rollback(ctx context.Context, session *Session, docID string, chunkIDs []string) {
	if err := session.index.Delete(ctx, chunkIDs...); err != nil {
		logger.Warn("Roll back vectors of document %s: %v", docID, err)
	}
	if err := session.documents.DeleteDocument(ctx, docID); err != nil {
		logger.Warn("Roll back document %s: %v", docID, err)
	}
}

// titleFromFilename turns "quarterly_report-2024.pdf" into "quarterly report 2024".
func titleFromFilename(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	if title := strings.Join(strings.Fields(base), " "); title != "" {
		return title
	}
	return name
}
