// Package image provides a Normaliser for raster images.
//
// Two extraction modes exist: OCR through the tesseract tool, and a
// description written by a vision-capable model.
package image

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/logger"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Tool is the OCR binary.
const Tool = "tesseract"

// ErrOCRToolNotFound is returned in OCR mode when tesseract is not installed.
var ErrOCRToolNotFound = errors.New("tesseract not found: install tesseract-ocr to ingest images")

// Normaliser extracts text from images.
type Normaliser struct {
	mode      domain.ImageMode
	runner    driven.CommandRunner
	describer driven.ImageDescriber
	prompt    string
	languages string
}

// Option configures the image normaliser.
type Option func(*Normaliser)

// WithVision switches to vision mode using describer and prompt.
func WithVision(describer driven.ImageDescriber, prompt string) Option {
	return func(n *Normaliser) {
		if describer != nil {
			n.mode = domain.ImageModeVision
			n.describer = describer
			n.prompt = prompt
		}
	}
}

// WithLanguages sets the tesseract language list, e.g. "eng+deu".
func WithLanguages(languages string) Option {
	return func(n *Normaliser) {
		if languages != "" {
			n.languages = languages
		}
	}
}

// New creates an image normaliser. OCR mode is the default.
func New(runner driven.CommandRunner, opts ...Option) *Normaliser {
	n := &Normaliser{
		mode:      domain.ImageModeOCR,
		runner:    runner,
		languages: "eng",
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Formats returns the format tags this normaliser handles.
func (n *Normaliser) Formats() []domain.FormatTag {
	return []domain.FormatTag{
		domain.FormatPNG, domain.FormatJPG, domain.FormatJPEG, domain.FormatBMP,
		domain.FormatTIFF, domain.FormatGIF, domain.FormatWEBP,
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Mode returns the active extraction mode.
func (n *Normaliser) Mode() domain.ImageMode {
	return n.mode
}

// Normalise returns a single segment for the image.
// OCR is best effort: an image with no recognisable text yields an empty
// segment rather than an error.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) ([]domain.Segment, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if len(raw.Content) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrCorruptInput)
	}

	var (
		text string
		err  error
	)
	if n.mode == domain.ImageModeVision {
		text, err = n.describe(ctx, raw)
	} else {
		text, err = n.ocr(ctx, raw)
	}
	if err != nil {
		return nil, err
	}

	return []domain.Segment{{
		Text:    text,
		Locator: domain.Locator{Source: raw.Filename},
	}}, nil
}

func (n *Normaliser) ocr(ctx context.Context, raw *domain.RawDocument) (string, error) {
	if err := n.runner.LookPath(Tool); err != nil {
		return "", ErrOCRToolNotFound
	}

	out, err := n.runner.Run(ctx, raw.Content, Tool, "stdin", "stdout", "-l", n.languages)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: tesseract failed: %v", domain.ErrCorruptInput, err)
	}

	text := plaintext.Decode(out)
	if text == "" {
		logger.Debug("image: no text recognised in %s", raw.Filename)
	}
	return text, nil
}

// describe asks the vision model for a description. A model failure falls
// back to a placeholder so the upload still appears in the session.
func (n *Normaliser) describe(ctx context.Context, raw *domain.RawDocument) (string, error) {
	mimeType := raw.Format.MIMEType()
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = domain.FormatFromFilename(raw.Filename).MIMEType()
	}

	description, err := n.describer.DescribeImage(ctx, mimeType, raw.Content, n.prompt)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		logger.Warn("image: vision description failed for %s: %v", raw.Filename, err)
		return fmt.Sprintf("[IMAGE: %s - Could not process]", raw.Filename), nil
	}

	return fmt.Sprintf("[IMAGE: %s]\n\n%s", raw.Filename, strings.TrimSpace(description)), nil
}
