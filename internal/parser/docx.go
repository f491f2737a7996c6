package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"docrank/internal/document"
	"github.com/fumiama/go-docx"
)

// DOCXParser sections .docx files on paragraphs styled as headings.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	// go-docx needs a ReadSeeker+size, so write to a temp file.
	tmp, err := os.CreateTemp("", "docrank-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	wordDoc, err := docx.Parse(tmp, int64(size))
	tmp.Close()
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}

	b := newSectionBuilder(filename)
	for _, item := range wordDoc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		if docxHeadingLevel(para) > 0 {
			b.StartSection(text)
		} else {
			b.AddText(text)
		}
	}

	return &document.Document{
		ID:       filename,
		Filename: filename,
		Sections: b.Finish(),
	}, nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	switch style {
	case "heading1":
		return 1
	case "heading2":
		return 2
	case "heading3":
		return 3
	case "heading4":
		return 4
	case "heading5":
		return 5
	case "heading6":
		return 6
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
