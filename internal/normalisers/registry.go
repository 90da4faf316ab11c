package normalisers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches documents to normalisers by format tag.
// When several normalisers claim a tag, the highest priority wins.
type Registry struct {
	mu       sync.RWMutex
	byFormat map[domain.FormatTag][]driven.Normaliser
}

// NewRegistry creates a registry holding the given normalisers.
func NewRegistry(normalisers ...driven.Normaliser) *Registry {
	r := &Registry{byFormat: make(map[domain.FormatTag][]driven.Normaliser)}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// Register adds a normaliser for every format it declares.
func (r *Registry) Register(n driven.Normaliser) {
	if n == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range n.Formats() {
		list := append(r.byFormat[f], n)
		sort.SliceStable(list, func(i, j int) bool { return list[i].Priority() > list[j].Priority() })
		r.byFormat[f] = list
	}
}

// Normalise picks the normaliser for the document's format and runs it.
// An empty format is detected from the filename.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) ([]domain.Segment, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	format := raw.Format
	if format == "" {
		format = domain.FormatFromFilename(raw.Filename)
	}

	n, ok := r.lookup(format)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}

	doc := *raw
	doc.Format = format

	logger.Debug("normalise: %s as %s", raw.Filename, format)
	segments, err := n.Normalise(ctx, &doc)
	if err != nil {
		return nil, fmt.Errorf("normalise %s: %w", raw.Filename, err)
	}
	return segments, nil
}

// SupportedFormats returns every registered format tag, sorted.
func (r *Registry) SupportedFormats() []domain.FormatTag {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]domain.FormatTag, 0, len(r.byFormat))
	for f := range r.byFormat {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// Has reports whether a normaliser is registered for format.
func (r *Registry) Has(format domain.FormatTag) bool {
	_, ok := r.lookup(format)
	return ok
}

func (r *Registry) lookup(format domain.FormatTag) (driven.Normaliser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.byFormat[format]
	if len(list) == 0 {
		return nil, false
	}
	return list[0], true
}
