// Package pptx provides a Normaliser for PowerPoint presentations.
// Each slide becomes one segment located by its 1-based position.
package pptx

import (
	"context"
	"encoding/xml"
	"fmt"
	"path"
	"strings"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/zipxml"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const (
	presentationPart     = "ppt/presentation.xml"
	presentationRelsPart = "ppt/_rels/presentation.xml.rels"
)

// Normaliser handles PPTX documents.
type Normaliser struct{}

// New creates a new PPTX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Formats returns the format tags this normaliser handles.
func (n *Normaliser) Formats() []domain.FormatTag {
	return []domain.FormatTag{domain.FormatPPTX}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the text of every slide in presentation order.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) ([]domain.Segment, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	archive, err := zipxml.Open(raw.Content)
	if err != nil {
		return nil, err
	}

	slides := slideOrder(archive)
	if len(slides) == 0 {
		return nil, fmt.Errorf("%w: no slides found", domain.ErrCorruptInput)
	}

	segments := make([]domain.Segment, 0, len(slides))
	for i, part := range slides {
		text, err := slideText(archive, part)
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", i+1, err)
		}
		segments = append(segments, domain.Segment{
			Text:    text,
			Locator: domain.Locator{Source: raw.Filename, Slide: i + 1},
		})
	}
	return segments, nil
}

type presentationXML struct {
	Slides []struct {
		RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sldIdLst>sldId"`
}

type relationshipsXML struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// slideOrder returns slide parts in presentation order, falling back to
// file numbering when the presentation part cannot be read.
func slideOrder(archive *zipxml.Archive) []string {
	fallback := archive.Numbered("ppt/slides/slide", ".xml")

	presData, err := archive.Read(presentationPart)
	if err != nil {
		return fallback
	}
	relsData, err := archive.Read(presentationRelsPart)
	if err != nil {
		return fallback
	}

	var pres presentationXML
	var rels relationshipsXML
	if xml.Unmarshal(presData, &pres) != nil || xml.Unmarshal(relsData, &rels) != nil {
		return fallback
	}

	targets := make(map[string]string, len(rels.Relationships))
	for _, r := range rels.Relationships {
		target := r.Target
		if strings.HasPrefix(target, "/") {
			target = strings.TrimPrefix(target, "/")
		} else {
			target = path.Clean(path.Join("ppt", target))
		}
		targets[r.ID] = target
	}

	var order []string
	for _, s := range pres.Slides {
		if part, ok := targets[s.RID]; ok && archive.Has(part) {
			order = append(order, part)
		}
	}
	if len(order) == 0 {
		return fallback
	}
	return order
}

// slideText joins the drawing paragraphs (a:p) of a slide, one per line.
func slideText(archive *zipxml.Archive, part string) (string, error) {
	d, err := archive.Decoder(part)
	if err != nil {
		return "", err
	}

	var (
		lines   []string
		current strings.Builder
		inText  bool
	)

	for {
		tok, err := zipxml.Next(d)
		if err != nil {
			return "", err
		}
		if tok == nil {
			break
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "p":
				current.Reset()
			case "t":
				inText = true
			case "br":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				if line := strings.TrimSpace(current.String()); line != "" {
					lines = append(lines, line)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(el)
			}
		}
	}

	return strings.Join(lines, "\n"), nil
}
