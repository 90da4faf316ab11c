// Package structured provides a Normaliser for JSON and YAML data files.
//
// Documents are flattened into "path: value" lines, e.g.
// "server.ports[0]: 8080". Each top-level key becomes one segment with
// the key as its locator section.
package structured

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles JSON and YAML documents.
type Normaliser struct{}

// New creates a new structured-data normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Formats returns the format tags this normaliser handles.
func (n *Normaliser) Formats() []domain.FormatTag {
	return []domain.FormatTag{domain.FormatJSON, domain.FormatYAML, domain.FormatYML}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise decodes every document in the stream and flattens it.
// JSON is decoded with the YAML parser, which accepts it as a subset.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) ([]domain.Segment, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw.Content))

	var segments []domain.Segment
	for doc := 0; ; doc++ {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrCorruptInput, err)
		}

		prefix := ""
		if doc > 0 {
			prefix = fmt.Sprintf("document %d", doc+1)
		}
		segments = append(segments, flattenDocument(raw.Filename, prefix, &node)...)
	}

	if len(segments) == 0 {
		segments = append(segments, domain.Segment{Locator: domain.Locator{Source: raw.Filename}})
	}
	return segments, nil
}

// flattenDocument splits a document at its top-level keys or items.
func flattenDocument(source, prefix string, node *yaml.Node) []domain.Segment {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}

	segment := func(section string, lines []string) domain.Segment {
		if prefix != "" {
			section = strings.TrimSpace(prefix + " " + section)
		}
		return domain.Segment{
			Text:    strings.Join(lines, "\n"),
			Locator: domain.Locator{Source: source, Section: section},
		}
	}

	var segments []domain.Segment
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			segments = append(segments, segment(key, Flatten(key, node.Content[i+1])))
		}
	case yaml.SequenceNode:
		for i, item := range node.Content {
			key := "[" + strconv.Itoa(i) + "]"
			segments = append(segments, segment(key, Flatten(key, item)))
		}
	default:
		segments = append(segments, segment("", Flatten("", node)))
	}
	return segments
}

// Flatten renders node as "path: value" lines rooted at path.
func Flatten(path string, node *yaml.Node) []string {
	var lines []string
	flatten(path, node, &lines)
	return lines
}

func flatten(path string, node *yaml.Node, lines *[]string) {
	switch node.Kind {
	case yaml.DocumentNode:
		for _, c := range node.Content {
			flatten(path, c, lines)
		}
	case yaml.MappingNode:
		if len(node.Content) == 0 {
			*lines = append(*lines, line(path, "{}"))
		}
		for i := 0; i+1 < len(node.Content); i += 2 {
			flatten(join(path, node.Content[i].Value), node.Content[i+1], lines)
		}
	case yaml.SequenceNode:
		if len(node.Content) == 0 {
			*lines = append(*lines, line(path, "[]"))
		}
		for i, c := range node.Content {
			flatten(path+"["+strconv.Itoa(i)+"]", c, lines)
		}
	case yaml.AliasNode:
		if node.Alias != nil {
			flatten(path, node.Alias, lines)
		}
	case yaml.ScalarNode:
		value := node.Value
		if node.Tag == "!!null" {
			value = "null"
		}
		*lines = append(*lines, line(path, value))
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func line(path, value string) string {
	if path == "" {
		return value
	}
	return path + ": " + value
}
