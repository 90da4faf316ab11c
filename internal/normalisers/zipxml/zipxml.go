// Package zipxml reads the zipped XML containers used by office formats
// (docx, xlsx, pptx, ods).
package zipxml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
)

// maxEntrySize bounds a single decompressed entry.
const maxEntrySize = 64 << 20

var zipMagic = []byte("PK\x03\x04")

// IsZip reports whether content starts with a zip local file header.
func IsZip(content []byte) bool {
	return bytes.HasPrefix(content, zipMagic)
}

// Archive is an opened office container.
type Archive struct {
	files map[string]*zip.File
	names []string
}

// Open parses content as a zip archive.
// Returns domain.ErrCorruptInput when it is not one.
func Open(content []byte) (*Archive, error) {
	if !IsZip(content) {
		return nil, fmt.Errorf("%w: not a zip container", domain.ErrCorruptInput)
	}
	r, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptInput, err)
	}

	a := &Archive{files: make(map[string]*zip.File, len(r.File))}
	for _, f := range r.File {
		a.files[f.Name] = f
		a.names = append(a.names, f.Name)
	}
	return a, nil
}

// Has reports whether the archive contains name.
func (a *Archive) Has(name string) bool {
	_, ok := a.files[name]
	return ok
}

// Read returns the decompressed bytes of name.
func (a *Archive) Read(name string) ([]byte, error) {
	f, ok := a.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", domain.ErrCorruptInput, name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptInput, name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptInput, name, err)
	}
	if len(data) > maxEntrySize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrCorruptInput, name, maxEntrySize)
	}
	return data, nil
}

// Numbered returns entries named prefix + N + suffix ordered by N,
// e.g. ppt/slides/slide1.xml, ppt/slides/slide2.xml, ..., slide10.xml.
func (a *Archive) Numbered(prefix, suffix string) []string {
	type entry struct {
		name string
		n    int
	}
	var entries []entry
	for _, name := range a.names {
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix))
		if err != nil {
			continue
		}
		entries = append(entries, entry{name: name, n: n})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].n < entries[j].n })

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

// Decoder returns a token decoder over name.
func (a *Archive) Decoder(name string) (*xml.Decoder, error) {
	data, err := a.Read(name)
	if err != nil {
		return nil, err
	}
	d := xml.NewDecoder(bytes.NewReader(data))
	d.Strict = false
	return d, nil
}

// Attr returns the value of the attribute with the given local name.
func Attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// Next returns the next token, mapping io.EOF to (nil, nil) and decode
// failures to domain.ErrCorruptInput.
func Next(d *xml.Decoder) (xml.Token, error) {
	tok, err := d.Token()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptInput, err)
	}
	return tok, nil
}
