package parser

import (
	"regexp"
	"strings"

	"docrank/internal/document"
)

var wsRun = regexp.MustCompile(`\s+`)

// normalizeBody strips layout artifacts from extracted text: control
// characters become spaces and runs of whitespace collapse to one.
func normalizeBody(text string) string {
	text = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, text)
	return strings.TrimSpace(wsRun.ReplaceAllString(text, " "))
}

// sectionBuilder accumulates heading-delimited text into flat sections.
// Used by the parsers for formats without physical pages (markdown,
// html, docx); every section they emit reports page 1.
type sectionBuilder struct {
	docID    string
	sections []document.Section
	title    string
	open     bool
	body     strings.Builder
}

func newSectionBuilder(docID string) *sectionBuilder {
	return &sectionBuilder{docID: docID}
}

// StartSection closes the current section and opens a new one.
func (b *sectionBuilder) StartSection(title string) {
	b.flush()
	b.title = title
	b.open = true
}

// AddText appends a block of text to the current section. Text seen
// before the first heading opens an untitled preamble section.
func (b *sectionBuilder) AddText(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	b.open = true
	if b.body.Len() > 0 {
		b.body.WriteString("\n")
	}
	b.body.WriteString(text)
}

func (b *sectionBuilder) flush() {
	if !b.open {
		return
	}
	body := normalizeBody(b.body.String())
	if b.title == "" && body == "" {
		b.body.Reset()
		b.open = false
		return
	}
	title := b.title
	if title == "" {
		title = "Preamble"
	}
	b.sections = append(b.sections, document.Section{
		DocumentID: b.docID,
		Title:      title,
		StartPage:  1,
		EndPage:    1,
		Body:       body,
	})
	b.body.Reset()
	b.title = ""
	b.open = false
}

// Finish closes the last open section and returns them all.
func (b *sectionBuilder) Finish() []document.Section {
	b.flush()
	return b.sections
}
