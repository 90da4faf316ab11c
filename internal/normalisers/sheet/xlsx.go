package sheet

import (
	"encoding/xml"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/zipxml"
)

const (
	workbookPart      = "xl/workbook.xml"
	workbookRelsPart  = "xl/_rels/workbook.xml.rels"
	sharedStringsPart = "xl/sharedStrings.xml"
	relationshipsNS   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

type workbookXML struct {
	Sheets []struct {
		Name string `xml:"name,attr"`
		RID  string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sheets>sheet"`
}

type relationshipsXML struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

type sharedStringsXML struct {
	Items []struct {
		T    string `xml:"t"`
		Runs []struct {
			T string `xml:"t"`
		} `xml:"r"`
	} `xml:"si"`
}

// readXLSX reads every worksheet in workbook order.
func readXLSX(archive *zipxml.Archive) ([]table, error) {
	var wb workbookXML
	if err := unmarshal(archive, workbookPart, &wb); err != nil {
		return nil, err
	}

	var rels relationshipsXML
	if err := unmarshal(archive, workbookRelsPart, &rels); err != nil {
		return nil, err
	}
	targets := make(map[string]string, len(rels.Relationships))
	for _, r := range rels.Relationships {
		targets[r.ID] = resolveTarget(r.Target)
	}

	var shared []string
	if archive.Has(sharedStringsPart) {
		var sst sharedStringsXML
		if err := unmarshal(archive, sharedStringsPart, &sst); err != nil {
			return nil, err
		}
		shared = make([]string, len(sst.Items))
		for i, si := range sst.Items {
			var b strings.Builder
			b.WriteString(si.T)
			for _, r := range si.Runs {
				b.WriteString(r.T)
			}
			shared[i] = b.String()
		}
	}

	tables := make([]table, 0, len(wb.Sheets))
	for _, s := range wb.Sheets {
		part, ok := targets[s.RID]
		if !ok || !archive.Has(part) {
			continue
		}
		rows, err := readWorksheet(archive, part, shared)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", s.Name, err)
		}
		tables = append(tables, table{name: s.Name, rows: rows})
	}
	return tables, nil
}

func unmarshal(archive *zipxml.Archive, part string, v any) error {
	data, err := archive.Read(part)
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrCorruptInput, part, err)
	}
	return nil
}

// resolveTarget maps a workbook relationship target to an archive path.
func resolveTarget(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join("xl", target))
}

// readWorksheet streams sheetData, resolving shared and inline strings.
func readWorksheet(archive *zipxml.Archive, part string, shared []string) ([]row, error) {
	d, err := archive.Decoder(part)
	if err != nil {
		return nil, err
	}

	var (
		rows     []row
		current  *row
		col      int
		cellType string
		value    strings.Builder
		inValue  bool
	)

	for {
		tok, err := zipxml.Next(d)
		if err != nil {
			return nil, err
		}
		if tok == nil {
			break
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "row":
				number, _ := strconv.Atoi(zipxml.Attr(el, "r"))
				if number == 0 {
					number = len(rows) + 1
				}
				rows = append(rows, row{number: number})
				current = &rows[len(rows)-1]
				col = 0
			case "c":
				if idx, ok := columnIndex(zipxml.Attr(el, "r")); ok {
					col = idx
				}
				cellType = zipxml.Attr(el, "t")
				value.Reset()
			case "v", "t":
				inValue = true
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "v", "t":
				inValue = false
			case "c":
				if current != nil {
					setCell(current, col, cellValue(cellType, value.String(), shared))
				}
				col++
			}
		case xml.CharData:
			if inValue {
				value.Write(el)
			}
		}
	}

	return rows, nil
}

func cellValue(cellType, raw string, shared []string) string {
	switch cellType {
	case "s":
		i, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || i < 0 || i >= len(shared) {
			return ""
		}
		return shared[i]
	case "b":
		if strings.TrimSpace(raw) == "1" {
			return "TRUE"
		}
		return "FALSE"
	default:
		return raw
	}
}

func setCell(r *row, col int, value string) {
	for len(r.cells) <= col {
		r.cells = append(r.cells, "")
	}
	r.cells[col] = value
}

// columnIndex converts a cell reference such as "C7" or "AA10" to a
// zero-based column index.
func columnIndex(ref string) (int, bool) {
	idx := 0
	n := 0
	for _, ch := range ref {
		if ch < 'A' || ch > 'Z' {
			break
		}
		idx = idx*26 + int(ch-'A'+1)
		n++
	}
	if n == 0 {
		return 0, false
	}
	return idx - 1, true
}
