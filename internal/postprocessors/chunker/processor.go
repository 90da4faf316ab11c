// Package chunker splits normalised document text into overlapping chunks.
package chunker

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// SegmentSeparator joins consecutive non-empty segments.
const SegmentSeparator = "\n\n"

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// Processor splits segment text into fixed-size, overlapping chunks.
// Lengths and offsets are counted in runes.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
// Overlap is clamped to half the chunk size.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.overlap > p.chunkSize/2 {
		p.overlap = p.chunkSize / 2
	}

	return p
}

// ChunkSize returns the configured maximum chunk length.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the effective overlap after clamping.
func (p *Processor) Overlap() int {
	return p.overlap
}

// span marks where a segment's contribution starts in the joined text.
type span struct {
	start   int
	locator domain.Locator
}

// Chunk splits the segments of one document.
// A chunk is cut once it reaches the chunk size; the next one starts
// overlap runes before the cut. The last chunk ends at the end of the text.
func (p *Processor) Chunk(documentID string, segments []domain.Segment) ([]domain.Chunk, error) {
	text, spans := join(segments)
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil, domain.ErrEmptyDocument
	}

	step := p.chunkSize - p.overlap
	chunks := make([]domain.Chunk, 0, n/step+1)

	for start := 0; ; start += step {
		end := start + p.chunkSize
		if end > n {
			end = n
		}

		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			Position:   len(chunks),
			Content:    string(runes[start:end]),
			Locator:    locate(spans, start),
			Start:      start,
			End:        end,
		})

		if end == n {
			break
		}
	}

	return chunks, nil
}

// NormalisedText returns the text Chunk operates on: non-blank segments
// joined by SegmentSeparator.
func NormalisedText(segments []domain.Segment) string {
	text, _ := join(segments)
	return text
}

// join concatenates non-blank segments and records where each begins.
// A separator is attributed to the segment that follows it.
func join(segments []domain.Segment) (string, []span) {
	var b strings.Builder
	spans := make([]span, 0, len(segments))
	offset := 0
	sepLen := len([]rune(SegmentSeparator))

	for _, seg := range segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		spans = append(spans, span{start: offset, locator: seg.Locator})
		if b.Len() > 0 {
			b.WriteString(SegmentSeparator)
			offset += sepLen
		}
		b.WriteString(seg.Text)
		offset += len([]rune(seg.Text))
	}

	return b.String(), spans
}

// locate returns the locator of the segment containing rune offset pos.
func locate(spans []span, pos int) domain.Locator {
	i := sort.Search(len(spans), func(i int) bool { return spans[i].start > pos })
	if i == 0 {
		return domain.Locator{}
	}
	return spans[i-1].locator
}
