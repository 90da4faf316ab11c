package normalisers

import (
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/csv"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/docx"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/eml"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/html"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/image"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/markdown"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/pdf"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/plaintext"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/pptx"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/rtf"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/sheet"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/structured"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/xml"
)

// DefaultNormalisers returns one normaliser for every supported format group.
// External tools (pdftotext, tesseract) run through runner.
func DefaultNormalisers(runner driven.CommandRunner, imageOpts ...image.Option) []driven.Normaliser {
	return []driven.Normaliser{
		plaintext.New(),
		markdown.New(),
		html.New(),
		rtf.New(),
		eml.New(),
		docx.New(),
		pdf.New(runner),
		csv.New(),
		sheet.New(),
		pptx.New(),
		structured.New(),
		xml.New(),
		image.New(runner, imageOpts...),
	}
}

// NewDefaultRegistry creates a registry populated with DefaultNormalisers.
func NewDefaultRegistry(runner driven.CommandRunner, imageOpts ...image.Option) *Registry {
	return NewRegistry(DefaultNormalisers(runner, imageOpts...)...)
}
