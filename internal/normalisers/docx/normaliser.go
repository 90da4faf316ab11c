// Package docx provides a Normaliser for Word documents.
package docx

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/zipxml"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const documentPart = "word/document.xml"

// Normaliser handles DOCX documents. Legacy binary .doc files are only
// accepted when they are really a DOCX container under the old extension.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Formats returns the format tags this normaliser handles.
func (n *Normaliser) Formats() []domain.FormatTag {
	return []domain.FormatTag{domain.FormatDOCX, domain.FormatDOC}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts paragraph text, grouped into sections at heading
// paragraphs. Each table cell paragraph becomes its own line.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) ([]domain.Segment, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	if !zipxml.IsZip(raw.Content) && raw.Format == domain.FormatDOC {
		return nil, fmt.Errorf("%w: legacy binary .doc is not supported, save as .docx", domain.ErrCorruptInput)
	}

	archive, err := zipxml.Open(raw.Content)
	if err != nil {
		return nil, err
	}

	paragraphs, err := readParagraphs(archive)
	if err != nil {
		return nil, err
	}

	return sections(raw.Filename, paragraphs), nil
}

type paragraph struct {
	text    string
	heading bool
}

// readParagraphs streams word/document.xml collecting w:p text runs.
func readParagraphs(archive *zipxml.Archive) ([]paragraph, error) {
	d, err := archive.Decoder(documentPart)
	if err != nil {
		return nil, err
	}

	var (
		paragraphs []paragraph
		current    strings.Builder
		heading    bool
		inText     bool
	)

	for {
		tok, err := zipxml.Next(d)
		if err != nil {
			return nil, err
		}
		if tok == nil {
			break
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "p":
				current.Reset()
				heading = false
			case "pStyle":
				style := strings.ToLower(zipxml.Attr(el, "val"))
				heading = strings.HasPrefix(style, "heading") || style == "title"
			case "t":
				inText = true
			case "tab":
				current.WriteByte('\t')
			case "br", "cr":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				text := strings.TrimSpace(current.String())
				if text != "" {
					paragraphs = append(paragraphs, paragraph{text: text, heading: heading})
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(el)
			}
		}
	}

	return paragraphs, nil
}

// sections groups paragraphs under the most recent heading.
func sections(source string, paragraphs []paragraph) []domain.Segment {
	var (
		segments []domain.Segment
		heading  string
		body     []string
	)

	flush := func() {
		if len(body) == 0 {
			return
		}
		segments = append(segments, domain.Segment{
			Text:    strings.Join(body, "\n"),
			Locator: domain.Locator{Source: source, Section: heading},
		})
		body = nil
	}

	for _, p := range paragraphs {
		if p.heading {
			flush()
			heading = p.text
		}
		body = append(body, p.text)
	}
	flush()

	if len(segments) == 0 {
		segments = append(segments, domain.Segment{Locator: domain.Locator{Source: source}})
	}
	return segments
}
