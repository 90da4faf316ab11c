package sheet

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/normalisers/zipxml"
)

const odsContentPart = "content.xml"

// maxRepeat caps number-rows-repeated and number-columns-repeated for
// non-empty content. Trailing filler rows often declare a million repeats.
const maxRepeat = 1000

// readODS streams the OpenDocument content.xml tables.
func readODS(archive *zipxml.Archive) ([]table, error) {
	d, err := archive.Decoder(odsContentPart)
	if err != nil {
		return nil, err
	}

	var (
		tables    []table
		current   *table
		cells     []string
		rowNumber int
		rowRepeat int
		colRepeat int
		cell      strings.Builder
		inCell    bool
		paragraph int
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
			case "table":
				tables = append(tables, table{name: zipxml.Attr(el, "name")})
				current = &tables[len(tables)-1]
				rowNumber = 0
			case "table-row":
				cells = cells[:0]
				rowRepeat = repeat(zipxml.Attr(el, "number-rows-repeated"))
			case "table-cell", "covered-table-cell":
				inCell = true
				paragraph = 0
				cell.Reset()
				colRepeat = repeat(zipxml.Attr(el, "number-columns-repeated"))
			case "p":
				if inCell && paragraph > 0 {
					cell.WriteByte('\n')
				}
				paragraph++
			case "s":
				if inCell {
					cell.WriteByte(' ')
				}
			case "tab":
				if inCell {
					cell.WriteByte('\t')
				}
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "table-cell", "covered-table-cell":
				inCell = false
				text := cell.String()
				for i := 0; i < colRepeat; i++ {
					cells = append(cells, text)
				}
			case "table-row":
				if current == nil {
					continue
				}
				if isBlank(cells) {
					rowNumber += rowRepeat
					continue
				}
				for i := 0; i < rowRepeat; i++ {
					rowNumber++
					current.rows = append(current.rows, row{number: rowNumber, cells: append([]string(nil), cells...)})
				}
			case "table":
				current = nil
			}
		case xml.CharData:
			if inCell {
				cell.Write(el)
			}
		}
	}

	return tables, nil
}

func repeat(attr string) int {
	n, err := strconv.Atoi(attr)
	if err != nil || n < 1 {
		return 1
	}
	return min(n, maxRepeat)
}
