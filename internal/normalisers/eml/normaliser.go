// Package eml provides a Normaliser for RFC 5322 email messages.
package eml

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/html"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles EML (email) documents.
type Normaliser struct{}

// New creates a new EML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Formats returns the format tags this normaliser handles.
func (n *Normaliser) Formats() []domain.FormatTag {
	return []domain.FormatTag{domain.FormatEML}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise returns one segment holding the main headers followed by the
// text body. The subject becomes the locator section.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) ([]domain.Segment, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptInput, err)
	}

	subject := decodeHeader(msg.Header.Get("Subject"))

	body, err := extractBody(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	if err != nil {
		return nil, err
	}

	var content strings.Builder
	for _, h := range []string{"From", "To", "Cc", "Date", "Subject"} {
		if v := decodeHeader(msg.Header.Get(h)); v != "" {
			fmt.Fprintf(&content, "%s: %s\n", h, v)
		}
	}
	content.WriteString("\n")
	content.WriteString(body)

	return []domain.Segment{{
		Text:    strings.TrimSpace(content.String()),
		Locator: domain.Locator{Source: raw.Filename, Section: subject},
	}}, nil
}

// decodeHeader decodes RFC 2047 encoded headers.
func decodeHeader(header string) string {
	if header == "" {
		return ""
	}

	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(header)
	if err != nil {
		return header
	}
	return decoded
}

// decodeTransfer undoes the Content-Transfer-Encoding of a part.
func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	default:
		return r
	}
}

// extractBody returns the readable text of a message or part, preferring
// text/plain alternatives over HTML.
func extractBody(contentType, encoding string, r io.Reader) (string, error) {
	if contentType == "" {
		contentType = "text/plain"
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		return extractMultipartBody(r, params["boundary"])
	}

	body, err := io.ReadAll(decodeTransfer(encoding, r))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCorruptInput, err)
	}

	switch mediaType {
	case "text/html":
		return html.StripHTML(string(body)), nil
	case "text/plain":
		return plaintext.Decode(body), nil
	default:
		return "", nil
	}
}

// extractMultipartBody extracts text from multipart messages.
func extractMultipartBody(r io.Reader, boundary string) (string, error) {
	if boundary == "" {
		return "", nil
	}

	mr := multipart.NewReader(r, boundary)
	var textParts, htmlParts []string

	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}

		partType := part.Header.Get("Content-Type")
		if partType == "" {
			partType = "text/plain"
		}
		mediaType, _, parseErr := mime.ParseMediaType(partType)
		if parseErr != nil {
			mediaType = "application/octet-stream"
		}
		if disposition, _, _ := mime.ParseMediaType(part.Header.Get("Content-Disposition")); disposition == "attachment" {
			part.Close()
			continue
		}

		// multipart.Reader already decodes quoted-printable parts.
		text, err := extractBody(partType, part.Header.Get("Content-Transfer-Encoding"), part)
		part.Close()
		if err != nil || text == "" {
			continue
		}

		switch {
		case mediaType == "text/html":
			htmlParts = append(htmlParts, text)
		default:
			textParts = append(textParts, text)
		}
	}

	if len(textParts) > 0 {
		return strings.Join(textParts, "\n"), nil
	}
	return strings.Join(htmlParts, "\n"), nil
}
