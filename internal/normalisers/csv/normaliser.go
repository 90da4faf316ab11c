// Package csv provides a Normaliser for delimited text tables.
// Each data row becomes one segment rendered as "column: value" lines.
package csv

import (
	"context"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles CSV documents.
type Normaliser struct{}

// New creates a new CSV normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Formats returns the format tags this normaliser handles.
func (n *Normaliser) Formats() []domain.FormatTag {
	return []domain.FormatTag{domain.FormatCSV}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise treats the first record as the header. Row locators count file
// records from 1, so the first data row is row 2.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) ([]domain.Segment, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text := plaintext.Decode(raw.Content)
	if text == "" {
		return []domain.Segment{{Locator: domain.Locator{Source: raw.Filename}}}, nil
	}

	r := stdcsv.NewReader(strings.NewReader(text))
	r.Comma = sniffDelimiter(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var (
		header   []string
		segments []domain.Segment
		row      int
	)
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrCorruptInput, err)
		}
		row++

		if header == nil {
			header = record
			continue
		}

		segments = append(segments, domain.Segment{
			Text:    RenderRow(header, record),
			Locator: domain.Locator{Source: raw.Filename, Row: row},
		})
	}

	if len(segments) == 0 {
		segments = append(segments, domain.Segment{
			Text:    strings.Join(header, ", "),
			Locator: domain.Locator{Source: raw.Filename, Row: 1},
		})
	}
	return segments, nil
}

// RenderRow formats one record as "column: value" lines, skipping empty
// cells. Cells beyond the header are labelled by position.
func RenderRow(header, record []string) string {
	var b strings.Builder
	for i, value := range record {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		if name == "" {
			name = fmt.Sprintf("column %d", i+1)
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
	}
	return b.String()
}

// sniffDelimiter picks the most frequent of comma, semicolon and tab on the first line.
func sniffDelimiter(text string) rune {
	first := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		first = text[:i]
	}

	best, bestCount := ',', strings.Count(first, ",")
	for _, d := range []rune{';', '\t'} {
		if c := strings.Count(first, string(d)); c > bestCount {
			best, bestCount = d, c
		}
	}
	return best
}
