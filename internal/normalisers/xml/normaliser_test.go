package xml

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
)

func normalise(t *testing.T, content string) ([]domain.Segment, error) {
	t.Helper()
	return New().Normalise(context.Background(), &domain.RawDocument{
		Filename: "catalog.xml",
		Format:   domain.FormatXML,
		Content:  []byte(content),
	})
}

func TestFormatsAndPriority(t *testing.T) {
	n := New()
	assert.Equal(t, []domain.FormatTag{domain.FormatXML}, n.Formats())
	assert.Equal(t, 50, n.Priority())
}

func TestNormalise_RootChildren(t *testing.T) {
	segments, err := normalise(t, `<?xml version="1.0" encoding="ISO-8859-1"?>
<catalog xmlns="urn:example">
  <book id="bk101">
    <title>XML   Developer's
      Guide</title>
    <price>44.95</price>
  </book>
  <book id="bk102"><title>Midnight Rain</title></book>
</catalog>`)
	require.NoError(t, err)
	require.Len(t, segments, 2)

	assert.Equal(t, "catalog/book@id: bk101\ncatalog/book/title: XML Developer's Guide\ncatalog/book/price: 44.95", segments[0].Text)
	assert.Equal(t, domain.Locator{Source: "catalog.xml", Section: "catalog/book"}, segments[0].Locator)
	assert.Equal(t, "catalog/book@id: bk102\ncatalog/book/title: Midnight Rain", segments[1].Text)
}

func TestNormalise_RootText(t *testing.T) {
	segments, err := normalise(t, `<note>Remember the milk</note>`)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "note: Remember the milk", segments[0].Text)
	assert.Equal(t, "note", segments[0].Locator.Section)
}

func TestNormalise_Empty(t *testing.T) {
	segments, err := normalise(t, "")
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Empty(t, segments[0].Text)
}

func TestNormalise_NoRoot(t *testing.T) {
	_, err := normalise(t, "just text, no markup")
	assert.ErrorIs(t, err, domain.ErrCorruptInput)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}

func TestNormalise_DeepNesting(t *testing.T) {
	segments, err := normalise(t, `<a>top<b>one<c>two<d>three<e>four<f>five<g>six<h>seven</h></g></f></e></d></c></b>tail</a>`)
	require.NoError(t, err)
	require.Len(t, segments, 2)

	assert.Equal(t, "a/b/c/d/e/f/g/h: seven\na/b/c/d/e/f/g: six\na/b/c/d/e/f: five\n"+
		"a/b/c/d/e: four\na/b/c/d: three\na/b/c: two\na/b: one", segments[0].Text)
	assert.Equal(t, "a/b", segments[0].Locator.Section)
	assert.Equal(t, "a: toptail", segments[1].Text)
}
