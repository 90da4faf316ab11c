// Package markdown provides a Normaliser for Markdown documents.
// Documents are split at headings; each section becomes one segment whose
// locator carries the heading text.
package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Formats returns the format tags this normaliser handles.
func (n *Normaliser) Formats() []domain.FormatTag {
	return []domain.FormatTag{domain.FormatMD}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise splits the document into heading sections with formatting stripped.
// Text before the first heading forms a section with no name.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) ([]domain.Segment, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	sections := splitSections(plaintext.Decode(raw.Content))
	segments := make([]domain.Segment, 0, len(sections))
	for _, s := range sections {
		text := stripMarkdown(s.body)
		if s.heading != "" {
			text = strings.TrimSpace(s.heading + "\n" + text)
		}
		if text == "" {
			continue
		}
		segments = append(segments, domain.Segment{
			Text:    text,
			Locator: domain.Locator{Source: raw.Filename, Section: s.heading},
		})
	}

	if len(segments) == 0 {
		segments = append(segments, domain.Segment{Locator: domain.Locator{Source: raw.Filename}})
	}
	return segments, nil
}

// Pre-compiled regular expressions for markdown parsing.
var (
	headingLine  = regexp.MustCompile(`^#{1,6}\s+(.+?)\s*#*\s*$`)
	fenceLine    = regexp.MustCompile("^\\s*(```|~~~)")
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	images       = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	emphasis     = regexp.MustCompile(`(\*\*|\*)([^*\n]+)(\*\*|\*)`)
	underscores  = regexp.MustCompile(`(^|\W)(__|_)([^_\n]+)(__|_)(\W|$)`)
	blockquote   = regexp.MustCompile(`(?m)^>\s?`)
	hr           = regexp.MustCompile(`(?m)^[ \t]*([-*_][ \t]*){3,}$`)
	listMarkers  = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	numberedList = regexp.MustCompile(`(?m)^[ \t]*\d+[.)][ \t]+`)
	tableRule    = regexp.MustCompile(`(?m)^[ \t]*\|?([ \t]*:?-+:?[ \t]*\|)+[ \t]*:?-*:?[ \t]*$`)
	multiNewline = regexp.MustCompile(`\n{3,}`)
)

type section struct {
	heading string
	body    string
}

// splitSections cuts the text at ATX headings. Headings inside fenced code
// blocks are ignored.
func splitSections(text string) []section {
	var (
		sections []section
		current  section
		body     strings.Builder
		inFence  bool
	)

	flush := func() {
		current.body = body.String()
		sections = append(sections, current)
		body.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		if fenceLine.MatchString(line) {
			inFence = !inFence
			continue
		}
		if !inFence {
			if m := headingLine.FindStringSubmatch(line); m != nil {
				flush()
				current = section{heading: stripInline(m[1])}
				continue
			}
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	flush()

	return sections
}

// stripInline removes inline formatting, keeping the visible text.
func stripInline(s string) string {
	s = images.ReplaceAllString(s, "$1")
	s = links.ReplaceAllString(s, "$1")
	s = inlineCode.ReplaceAllString(s, "$1")
	s = emphasis.ReplaceAllString(s, "$2")
	s = underscores.ReplaceAllString(s, "$1$3$5")
	return strings.TrimSpace(s)
}

// stripMarkdown removes block and inline markdown formatting.
func stripMarkdown(content string) string {
	content = tableRule.ReplaceAllString(content, "")
	content = hr.ReplaceAllString(content, "")
	content = blockquote.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "")
	content = numberedList.ReplaceAllString(content, "")
	content = stripInline(content)
	content = multiNewline.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
