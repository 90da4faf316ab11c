// Package pdf provides a Normaliser for PDF documents backed by the
// pdftotext tool from poppler.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Tool is the extraction binary.
const Tool = "pdftotext"

// pageBreak separates pages in pdftotext output.
const pageBreak = "\f"

var pdfMagic = []byte("%PDF-")

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found: install poppler to ingest PDF files")

// Normaliser handles PDF documents.
type Normaliser struct {
	runner driven.CommandRunner
}

// New creates a PDF normaliser that shells out through runner.
func New(runner driven.CommandRunner) *Normaliser {
	return &Normaliser{runner: runner}
}

// Formats returns the format tags this normaliser handles.
func (n *Normaliser) Formats() []domain.FormatTag {
	return []domain.FormatTag{domain.FormatPDF}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// CheckAvailable reports whether pdftotext can be run.
func (n *Normaliser) CheckAvailable() error {
	if err := n.runner.LookPath(Tool); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// Normalise returns one segment per page, numbered from 1.
// Pages without extractable text yield empty segments.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) ([]domain.Segment, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if !bytes.HasPrefix(bytes.TrimLeft(raw.Content, "\x00\t\r\n "), pdfMagic) {
		return nil, fmt.Errorf("%w: missing PDF header", domain.ErrCorruptInput)
	}
	if err := n.CheckAvailable(); err != nil {
		return nil, err
	}

	out, err := n.runner.Run(ctx, raw.Content, Tool, "-layout", "-enc", "UTF-8", "-", "-")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: pdftotext failed: %v", domain.ErrCorruptInput, err)
	}

	return splitPages(raw.Filename, string(out)), nil
}

// splitPages cuts pdftotext output at form feeds.
func splitPages(source, text string) []domain.Segment {
	pages := strings.Split(text, pageBreak)
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}

	segments := make([]domain.Segment, len(pages))
	for i, page := range pages {
		segments[i] = domain.Segment{
			Text:    cleanPage(page),
			Locator: domain.Locator{Source: source, Page: i + 1},
		}
	}
	return segments
}

// cleanPage trims layout padding from each line.
func cleanPage(page string) string {
	page = plaintext.Decode([]byte(page))
	lines := strings.Split(page, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// InstallInstructions returns platform-specific install hints for pdftotext.
func InstallInstructions() string {
	return `pdftotext is required to ingest PDF files.

Install poppler:
  macOS:          brew install poppler
  Debian/Ubuntu:  sudo apt install poppler-utils
  Fedora:         sudo dnf install poppler-utils
  Windows:        choco install poppler`
}
