package parser

import (
	"fmt"
	"io"
	"os"

	"docrank/internal/document"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser extracts per-page text with ledongthuc/pdf and sections it
// along the author-declared outline when one exists. Without an
// outline it falls back to one section per page.
type PDFParser struct{}

func (p *PDFParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	// ledongthuc/pdf and pdfcpu both need a ReadSeeker+size, so we
	// write to a temp file.
	tmp, err := os.CreateTemp("", "docrank-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	pages, err := extractPageTexts(tmpPath)
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}

	doc := &document.Document{ID: filename, Filename: filename}
	if len(pages) == 0 {
		// A zero-page PDF yields an empty section sequence, not an error.
		return doc, nil
	}

	if entries := readOutline(tmpPath); len(entries) > 0 {
		doc.Sections = sectionsFromOutline(filename, entries, pages)
	} else {
		doc.Sections = sectionsByPage(filename, pages)
	}
	return doc, nil
}

// extractPageTexts returns the plain text of every page, 1-based page
// N at index N-1. Pages whose content cannot be decoded stay empty
// rather than failing the whole document.
func extractPageTexts(path string) ([]string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages := make([]string, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages[i-1] = text
	}
	return pages, nil
}

// sectionsByPage is the fallback sectioning: one section per page with
// a generated "Page N" title.
func sectionsByPage(docID string, pages []string) []document.Section {
	sections := make([]document.Section, 0, len(pages))
	for i, text := range pages {
		sections = append(sections, document.Section{
			DocumentID: docID,
			Title:      fmt.Sprintf("Page %d", i+1),
			StartPage:  i + 1,
			EndPage:    i + 1,
			Body:       normalizeBody(text),
		})
	}
	return sections
}
