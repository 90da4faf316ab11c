package html

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Formats returns the format tags this normaliser handles.
func (n *Normaliser) Formats() []domain.FormatTag {
	return []domain.FormatTag{domain.FormatHTML, domain.FormatHTM}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise converts an HTML document to one segment per heading section.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) ([]domain.Segment, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content := removeInvisible(plaintext.Decode(raw.Content))

	var segments []domain.Segment
	add := func(heading, fragment string) {
		text := StripHTML(fragment)
		if heading != "" {
			text = strings.TrimSpace(heading + "\n" + text)
		}
		if text == "" {
			return
		}
		segments = append(segments, domain.Segment{
			Text:    text,
			Locator: domain.Locator{Source: raw.Filename, Section: heading},
		})
	}

	heading, last := "", 0
	for _, m := range sectionHeading.FindAllStringSubmatchIndex(content, -1) {
		add(heading, content[last:m[0]])
		heading = StripHTML(content[m[2]:m[3]])
		last = m[1]
	}
	add(heading, content[last:])

	if len(segments) == 0 {
		segments = append(segments, domain.Segment{Locator: domain.Locator{Source: raw.Filename}})
	}
	return segments, nil
}

// Pre-compiled regular expressions for HTML parsing performance.
var (
	titleTag          = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	sectionHeading    = regexp.MustCompile(`(?is)<h[1-3][^>]*>(.*?)</h[1-3]>`)
	scriptTag         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag       = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag           = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag            = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	htmlComments      = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements     = regexp.MustCompile(`(?i)</(p|div|br|hr|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	openBlockElements = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	cellElements      = regexp.MustCompile(`(?i)</(td|th)>`)
	brTags            = regexp.MustCompile(`(?i)<br\s*/?>`)
	hrTags            = regexp.MustCompile(`(?i)<hr\s*/?>`)
	allTags           = regexp.MustCompile(`<[^>]+>`)
	multiSpaces       = regexp.MustCompile(`[ \t]+`)
)

// Title returns the content of the <title> element, or "".
func Title(content string) string {
	matches := titleTag.FindStringSubmatch(content)
	if len(matches) > 1 {
		return strings.TrimSpace(html.UnescapeString(matches[1]))
	}
	return ""
}

// removeInvisible drops elements that never contribute readable text.
func removeInvisible(content string) string {
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = noscriptTag.ReplaceAllString(content, "")
	content = headTag.ReplaceAllString(content, "")
	content = svgTag.ReplaceAllString(content, "")
	return htmlComments.ReplaceAllString(content, "")
}

// StripHTML removes HTML tags and extracts readable text content,
// one block element per line.
func StripHTML(content string) string {
	content = removeInvisible(content)

	content = openBlockElements.ReplaceAllString(content, "\n")
	content = blockElements.ReplaceAllString(content, "\n")
	content = cellElements.ReplaceAllString(content, " ")
	content = brTags.ReplaceAllString(content, "\n")
	content = hrTags.ReplaceAllString(content, "\n")

	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = multiSpaces.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}
