package parser

import (
	"bufio"
	"io"
	"strings"

	"docrank/internal/document"
)

// TextParser handles plain text files. Plain text carries no structure
// to section on, so the whole file becomes a single section titled
// after the filename; the chunker provides the finer granularity.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var body strings.Builder
	for scanner.Scan() {
		body.WriteString(scanner.Text())
		body.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}

	doc := &document.Document{ID: filename, Filename: filename}
	text := normalizeBody(body.String())
	if text == "" {
		return doc, nil
	}

	doc.Sections = []document.Section{{
		DocumentID: filename,
		Title:      strings.TrimSuffix(filename, ".txt"),
		StartPage:  1,
		EndPage:    1,
		Body:       text,
	}}
	return doc, nil
}
