// Package sheet provides a Normaliser for spreadsheet workbooks
// (Office Open XML .xlsx and OpenDocument .ods).
//
// Every sheet is read in order. The first non-empty row of a sheet is
// its header; each later row becomes one segment located by sheet name
// and row number.
package sheet

import (
	"context"
	"fmt"
	"strings"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/csv"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/zipxml"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles spreadsheet documents.
type Normaliser struct{}

// New creates a new spreadsheet normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Formats returns the format tags this normaliser handles.
func (n *Normaliser) Formats() []domain.FormatTag {
	return []domain.FormatTag{domain.FormatXLSX, domain.FormatXLS, domain.FormatODS}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// row is one spreadsheet row with its 1-based number.
type row struct {
	number int
	cells  []string
}

// table is one sheet.
type table struct {
	name string
	rows []row
}

// Normalise extracts one segment per data row across all sheets.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) ([]domain.Segment, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if !zipxml.IsZip(raw.Content) && raw.Format == domain.FormatXLS {
		return nil, fmt.Errorf("%w: legacy binary .xls is not supported, save as .xlsx", domain.ErrCorruptInput)
	}

	archive, err := zipxml.Open(raw.Content)
	if err != nil {
		return nil, err
	}

	var tables []table
	switch {
	case archive.Has(workbookPart):
		tables, err = readXLSX(archive)
	case archive.Has(odsContentPart):
		tables, err = readODS(archive)
	default:
		err = fmt.Errorf("%w: no workbook found", domain.ErrCorruptInput)
	}
	if err != nil {
		return nil, err
	}

	return segments(raw.Filename, tables), nil
}

func segments(source string, tables []table) []domain.Segment {
	var out []domain.Segment

	for _, t := range tables {
		var header *row
		emitted := false

		for i := range t.rows {
			r := &t.rows[i]
			if isBlank(r.cells) {
				continue
			}
			if header == nil {
				header = r
				continue
			}
			out = append(out, domain.Segment{
				Text:    csv.RenderRow(header.cells, r.cells),
				Locator: domain.Locator{Source: source, Sheet: t.name, Row: r.number},
			})
			emitted = true
		}

		if header != nil && !emitted {
			out = append(out, domain.Segment{
				Text:    strings.Join(nonEmpty(header.cells), ", "),
				Locator: domain.Locator{Source: source, Sheet: t.name, Row: header.number},
			})
		}
	}

	if len(out) == 0 {
		out = append(out, domain.Segment{Locator: domain.Locator{Source: source}})
	}
	return out
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func nonEmpty(cells []string) []string {
	out := make([]string, 0, len(cells))
	for _, c := range cells {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
