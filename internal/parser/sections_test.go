package parser

import "testing"

func TestNormalizeBody(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses whitespace", "a  b\t c", "a b c"},
		{"control chars become spaces", "a\x00b\x1fc", "a b c"},
		{"newlines collapse", "line one\n\nline two", "line one line two"},
		{"trims edges", "  padded  ", "padded"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeBody(tt.in); got != tt.want {
				t.Errorf("normalizeBody(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSectionBuilder(t *testing.T) {
	b := newSectionBuilder("doc.md")
	b.AddText("intro text before any heading")
	b.StartSection("First")
	b.AddText("first body")
	b.StartSection("Second")
	b.AddText("second body")
	b.AddText("more second body")
	sections := b.Finish()

	if len(sections) != 3 {
		t.Fatalf("got %d sections, want 3", len(sections))
	}
	if sections[0].Title != "Preamble" {
		t.Errorf("untitled leading text should become Preamble, got %q", sections[0].Title)
	}
	if sections[0].Body != "intro text before any heading" {
		t.Errorf("preamble body = %q", sections[0].Body)
	}
	if sections[1].Title != "First" || sections[1].Body != "first body" {
		t.Errorf("section 1 = %q / %q", sections[1].Title, sections[1].Body)
	}
	if sections[2].Body != "second body more second body" {
		t.Errorf("section 2 body = %q", sections[2].Body)
	}
	for i, sec := range sections {
		if sec.DocumentID != "doc.md" {
			t.Errorf("section %d document = %q", i, sec.DocumentID)
		}
		if sec.StartPage != 1 || sec.EndPage != 1 {
			t.Errorf("section %d pages = %d-%d, want 1-1", i, sec.StartPage, sec.EndPage)
		}
	}
}

func TestSectionBuilderKeepsEmptyTitledSection(t *testing.T) {
	b := newSectionBuilder("doc.md")
	b.StartSection("Heading With No Body")
	sections := b.Finish()
	if len(sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(sections))
	}
	if sections[0].Title != "Heading With No Body" || sections[0].Body != "" {
		t.Errorf("got %q / %q", sections[0].Title, sections[0].Body)
	}
}

func TestSectionBuilderEmpty(t *testing.T) {
	b := newSectionBuilder("doc.md")
	if sections := b.Finish(); len(sections) != 0 {
		t.Errorf("got %d sections, want 0", len(sections))
	}
}
