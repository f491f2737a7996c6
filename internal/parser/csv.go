package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"docrank/internal/document"
)

// CSVParser handles CSV files: the header row is repeated into every
// section and data rows are grouped into fixed-size batches so large
// tables rank at a useful granularity.
type CSVParser struct{}

const csvBatchSize = 20

func (p *CSVParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}

	doc := &document.Document{ID: filename, Filename: filename}
	if len(records) == 0 {
		return doc, nil
	}

	headers := records[0]
	dataRows := records[1:]

	for i := 0; i < len(dataRows); i += csvBatchSize {
		end := i + csvBatchSize
		if end > len(dataRows) {
			end = len(dataRows)
		}

		var text strings.Builder
		for _, row := range dataRows[i:end] {
			for j, cell := range row {
				if j > 0 {
					text.WriteString(", ")
				}
				if j < len(headers) {
					text.WriteString(headers[j] + ": " + cell)
				} else {
					text.WriteString(cell)
				}
			}
			text.WriteString(". ")
		}

		doc.Sections = append(doc.Sections, document.Section{
			DocumentID: filename,
			Title:      fmt.Sprintf("Rows %d-%d", i+2, end+1), // 1-indexed, skip header
			StartPage:  1,
			EndPage:    1,
			Body:       normalizeBody(text.String()),
		})
	}

	return doc, nil
}
