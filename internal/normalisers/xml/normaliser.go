// Package xml provides a Normaliser for generic XML documents.
//
// Text and attributes are rendered as "path: value" lines. Each child of
// the root element becomes one segment whose section is its element path.
package xml

import (
	"bytes"
	"context"
	stdxml "encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles XML documents.
type Normaliser struct{}

// New creates a new XML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Formats returns the format tags this normaliser handles.
func (n *Normaliser) Formats() []domain.FormatTag {
	return []domain.FormatTag{domain.FormatXML}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise streams the document and emits one segment per root child.
// Text directly under the root is emitted as its own segment.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) ([]domain.Segment, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	d := stdxml.NewDecoder(bytes.NewReader(raw.Content))
	d.Strict = false
	d.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) { return input, nil }

	var (
		segments []domain.Segment
		stack    []string
		lines    []string
		text     []*strings.Builder
		seenRoot bool
	)

	flush := func(section string) {
		if len(lines) == 0 {
			return
		}
		segments = append(segments, domain.Segment{
			Text:    strings.Join(lines, "\n"),
			Locator: domain.Locator{Source: raw.Filename, Section: section},
		})
		lines = nil
	}

	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrCorruptInput, err)
		}

		switch el := tok.(type) {
		case stdxml.StartElement:
			if len(stack) == 0 {
				seenRoot = true
			}
			// A new root child starts; emit text gathered directly under the root.
			if len(stack) == 1 {
				flush(stack[0])
			}
			stack = append(stack, el.Name.Local)
			text = append(text, &strings.Builder{})

			path := strings.Join(stack, "/")
			for _, a := range el.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				if v := strings.TrimSpace(a.Value); v != "" {
					lines = append(lines, fmt.Sprintf("%s@%s: %s", path, a.Name.Local, v))
				}
			}
		case stdxml.CharData:
			if len(text) > 0 {
				text[len(text)-1].Write(el)
			}
		case stdxml.EndElement:
			if len(stack) == 0 {
				continue
			}
			path := strings.Join(stack, "/")
			if v := collapse(text[len(text)-1].String()); v != "" {
				lines = append(lines, path+": "+v)
			}
			stack = stack[:len(stack)-1]
			text = text[:len(text)-1]

			if len(stack) <= 1 {
				flush(path)
			}
		}
	}

	if !seenRoot && len(bytes.TrimSpace(raw.Content)) > 0 {
		return nil, fmt.Errorf("%w: no root element", domain.ErrCorruptInput)
	}
	if len(segments) == 0 {
		segments = append(segments, domain.Segment{Locator: domain.Locator{Source: raw.Filename}})
	}
	return segments, nil
}

// collapse trims text and folds internal whitespace runs to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
