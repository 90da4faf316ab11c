package domain

import (
	"path/filepath"
	"strings"
)

// FormatTag identifies the file format of an upload.
// Tags are lower-case extensions without the dot.
type FormatTag string

// Supported format tags.
const (
	FormatPDF  FormatTag = "pdf"
	FormatDOCX FormatTag = "docx"
	FormatDOC  FormatTag = "doc"
	FormatTXT  FormatTag = "txt"
	FormatMD   FormatTag = "md"
	FormatRTF  FormatTag = "rtf"
	FormatHTML FormatTag = "html"
	FormatHTM  FormatTag = "htm"
	FormatEML  FormatTag = "eml"

	FormatCSV  FormatTag = "csv"
	FormatXLSX FormatTag = "xlsx"
	FormatXLS  FormatTag = "xls"
	FormatODS  FormatTag = "ods"

	FormatPPTX FormatTag = "pptx"

	FormatJSON FormatTag = "json"
	FormatXML  FormatTag = "xml"
	FormatYAML FormatTag = "yaml"
	FormatYML  FormatTag = "yml"

	FormatPNG  FormatTag = "png"
	FormatJPG  FormatTag = "jpg"
	FormatJPEG FormatTag = "jpeg"
	FormatBMP  FormatTag = "bmp"
	FormatTIFF FormatTag = "tiff"
	FormatGIF  FormatTag = "gif"
	FormatWEBP FormatTag = "webp"
)

// FormatGroup is a display grouping of format tags.
type FormatGroup struct {
	// Name is the group label, e.g. "documents".
	Name string `json:"name"`

	// Formats lists the tags in the group.
	Formats []FormatTag `json:"formats"`
}

// SupportedFormatGroups lists every accepted format tag by group.
func SupportedFormatGroups() []FormatGroup {
	return []FormatGroup{
		{Name: "documents", Formats: []FormatTag{
			FormatPDF, FormatDOCX, FormatDOC, FormatTXT, FormatRTF, FormatMD, FormatHTML, FormatHTM, FormatEML,
		}},
		{Name: "spreadsheets", Formats: []FormatTag{FormatCSV, FormatXLSX, FormatXLS, FormatODS}},
		{Name: "presentations", Formats: []FormatTag{FormatPPTX}},
		{Name: "images", Formats: []FormatTag{
			FormatPNG, FormatJPG, FormatJPEG, FormatBMP, FormatTIFF, FormatGIF, FormatWEBP,
		}},
		{Name: "data", Formats: []FormatTag{FormatJSON, FormatXML, FormatYAML, FormatYML}},
	}
}

// IsSupported reports whether the tag appears in SupportedFormatGroups.
func (f FormatTag) IsSupported() bool {
	for _, g := range SupportedFormatGroups() {
		for _, tag := range g.Formats {
			if tag == f {
				return true
			}
		}
	}
	return false
}

// IsImage reports whether the tag is an image format.
func (f FormatTag) IsImage() bool {
	switch f {
	case FormatPNG, FormatJPG, FormatJPEG, FormatBMP, FormatTIFF, FormatGIF, FormatWEBP:
		return true
	default:
		return false
	}
}

// MIMEType returns the conventional MIME type for the tag.
func (f FormatTag) MIMEType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPPTX:
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case FormatJPG, FormatJPEG:
		return "image/jpeg"
	case FormatPNG, FormatBMP, FormatTIFF, FormatGIF, FormatWEBP:
		return "image/" + string(f)
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	case FormatHTML, FormatHTM:
		return "text/html"
	case FormatMD:
		return "text/markdown"
	default:
		return "text/plain"
	}
}

// FormatFromFilename derives the format tag from a filename's extension.
// The result may be unsupported; check IsSupported.
func FormatFromFilename(name string) FormatTag {
	ext := strings.ToLower(filepath.Ext(name))
	return FormatTag(strings.TrimPrefix(ext, "."))
}
