package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		expected FormatTag
	}{
		{"report.pdf", FormatPDF},
		{"Report.PDF", FormatPDF},
		{"notes.md", FormatMD},
		{"archive.tar.gz", FormatTag("gz")},
		{"/tmp/data/sheet.xlsx", FormatXLSX},
		{"README", FormatTag("")},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatFromFilename(tt.filename))
		})
	}
}

func TestFormatTag_IsSupported(t *testing.T) {
	assert.True(t, FormatPDF.IsSupported())
	assert.True(t, FormatYML.IsSupported())
	assert.True(t, FormatWEBP.IsSupported())
	assert.False(t, FormatTag("exe").IsSupported())
	assert.False(t, FormatTag("").IsSupported())
}

func TestFormatTag_IsImage(t *testing.T) {
	assert.True(t, FormatPNG.IsImage())
	assert.True(t, FormatJPEG.IsImage())
	assert.False(t, FormatPDF.IsImage())
}

func TestFormatTag_MIMEType(t *testing.T) {
	assert.Equal(t, "application/pdf", FormatPDF.MIMEType())
	assert.Equal(t, "image/jpeg", FormatJPG.MIMEType())
	assert.Equal(t, "image/png", FormatPNG.MIMEType())
	assert.Equal(t, "text/plain", FormatTXT.MIMEType())
}

func TestSupportedFormatGroups_NoDuplicates(t *testing.T) {
	seen := map[FormatTag]string{}
	for _, g := range SupportedFormatGroups() {
		for _, f := range g.Formats {
			prev, dup := seen[f]
			assert.False(t, dup, "%s listed in %s and %s", f, prev, g.Name)
			seen[f] = g.Name
		}
	}
}
