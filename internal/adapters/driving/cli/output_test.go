package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
)

func TestPrintTurn_WithCitations(t *testing.T) {
	buf := new(bytes.Buffer)
	printTurn(buf, &domain.Turn{
		Role:    domain.RoleAssistant,
		Content: "Refunds take five days.",
		Mode:    domain.ModeDocument,
		Citations: []domain.Citation{
			{Content: "Refunds are\nprocessed within five days.", Locator: domain.Locator{Source: "policy.pdf", Page: 2}, Similarity: 0.81},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Refunds take five days.")
	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "[1] policy.pdf, page 2 (0.81)")
	assert.Contains(t, out, "Refunds are processed within five days.")
}

func TestPrintTurn_LowRelevance(t *testing.T) {
	buf := new(bytes.Buffer)
	printTurn(buf, &domain.Turn{Role: domain.RoleAssistant, Content: "Not sure.", LowRelevance: true})
	assert.Contains(t, buf.String(), "No passage in your documents matched closely")
}

func TestPrintIngestReport(t *testing.T) {
	buf := new(bytes.Buffer)
	printIngestReport(buf, &domain.IngestReport{
		Documents:     []domain.Document{{Filename: "a.pdf", ChunkCount: 3}},
		Warnings:      []domain.IngestFailure{{Filename: "blank.txt", Err: domain.ErrEmptyDocument}},
		Failures:      []domain.IngestFailure{{Filename: "x.bin", Err: domain.ErrUnsupportedFormat}},
		ChunksIndexed: 3,
	})

	out := buf.String()
	assert.Contains(t, out, "Indexed a.pdf (3 chunks)")
	assert.Contains(t, out, "Warning: blank.txt")
	assert.Contains(t, out, "Failed: x.bin")
	assert.Contains(t, out, "1 document(s), 3 chunk(s) added.")
}

func TestPrintStats_Mode(t *testing.T) {
	buf := new(bytes.Buffer)
	printStats(buf, domain.SessionStats{SessionID: "s", VectorStoreSize: 0})
	assert.Regexp(t, `Mode:\s+chat`, buf.String())

	buf.Reset()
	printStats(buf, domain.SessionStats{SessionID: "s", VectorStoreSize: 5, Dimension: 1536})
	assert.Regexp(t, `Mode:\s+document`, buf.String())
	assert.Regexp(t, `Dimension:\s+1536`, buf.String())
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b c", snippet("a\n b\t\tc"))

	long := strings.Repeat("x", snippetLength+20)
	s := snippet(long)
	assert.Len(t, []rune(s), snippetLength)
	assert.True(t, strings.HasSuffix(s, "..."))
}

func TestHumanBytes(t *testing.T) {
	tests := []struct {
		n        int
		expected string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, humanBytes(tt.n))
	}
}
