package parser

import "testing"

func TestSectionsFromOutline(t *testing.T) {
	pages := []string{"page one text.", "page two text.", "page three text.", "page four text."}
	entries := []outlineEntry{
		{Title: "Introduction", Page: 1},
		{Title: "Methods", Page: 2},
		{Title: "Results", Page: 4},
	}

	sections := sectionsFromOutline("paper.pdf", entries, pages)
	if len(sections) != 3 {
		t.Fatalf("got %d sections, want 3", len(sections))
	}

	tests := []struct {
		title      string
		start, end int
		body       string
	}{
		{"Introduction", 1, 1, "page one text."},
		{"Methods", 2, 3, "page two text. page three text."},
		{"Results", 4, 4, "page four text."},
	}
	for i, tt := range tests {
		sec := sections[i]
		if sec.Title != tt.title {
			t.Errorf("section %d title = %q, want %q", i, sec.Title, tt.title)
		}
		if sec.StartPage != tt.start || sec.EndPage != tt.end {
			t.Errorf("section %d pages = %d-%d, want %d-%d", i, sec.StartPage, sec.EndPage, tt.start, tt.end)
		}
		if sec.Body != tt.body {
			t.Errorf("section %d body = %q, want %q", i, sec.Body, tt.body)
		}
	}
}

func TestSectionsFromOutlineClampsPages(t *testing.T) {
	pages := []string{"only page."}
	entries := []outlineEntry{
		{Title: "Past The End", Page: 9},
		{Title: "Before The Start", Page: 0},
	}

	sections := sectionsFromOutline("short.pdf", entries, pages)
	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(sections))
	}
	for i, sec := range sections {
		if sec.StartPage != 1 || sec.EndPage != 1 {
			t.Errorf("section %d pages = %d-%d, want clamped to 1-1", i, sec.StartPage, sec.EndPage)
		}
	}
}

func TestSectionsFromOutlineSortsByStartPage(t *testing.T) {
	pages := []string{"one.", "two.", "three."}
	entries := []outlineEntry{
		{Title: "Later", Page: 3},
		{Title: "Earlier", Page: 1},
	}

	sections := sectionsFromOutline("doc.pdf", entries, pages)
	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(sections))
	}
	if sections[0].Title != "Earlier" || sections[1].Title != "Later" {
		t.Errorf("sections out of page order: %q then %q", sections[0].Title, sections[1].Title)
	}
	if sections[0].EndPage != 2 {
		t.Errorf("first section should run to page 2, got %d", sections[0].EndPage)
	}
}

func TestSectionsFromOutlineSamePageEntries(t *testing.T) {
	pages := []string{"a.", "b."}
	entries := []outlineEntry{
		{Title: "First", Page: 1},
		{Title: "Also First", Page: 1},
	}

	sections := sectionsFromOutline("doc.pdf", entries, pages)
	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(sections))
	}
	// Stable sort keeps outline order for entries sharing a page, and
	// the earlier entry never ends before it starts.
	if sections[0].Title != "First" || sections[1].Title != "Also First" {
		t.Errorf("outline order not preserved: %q then %q", sections[0].Title, sections[1].Title)
	}
	if sections[0].StartPage != 1 || sections[0].EndPage != 1 {
		t.Errorf("first section pages = %d-%d, want 1-1", sections[0].StartPage, sections[0].EndPage)
	}
}

func TestSectionsByPage(t *testing.T) {
	pages := []string{"first  page", "second\npage", ""}
	sections := sectionsByPage("plain.pdf", pages)
	if len(sections) != 3 {
		t.Fatalf("got %d sections, want 3", len(sections))
	}
	wantTitles := []string{"Page 1", "Page 2", "Page 3"}
	wantBodies := []string{"first page", "second page", ""}
	for i, sec := range sections {
		if sec.Title != wantTitles[i] {
			t.Errorf("section %d title = %q, want %q", i, sec.Title, wantTitles[i])
		}
		if sec.Body != wantBodies[i] {
			t.Errorf("section %d body = %q, want %q", i, sec.Body, wantBodies[i])
		}
		if sec.StartPage != i+1 || sec.EndPage != i+1 {
			t.Errorf("section %d pages = %d-%d, want %d-%d", i, sec.StartPage, sec.EndPage, i+1, i+1)
		}
	}
}

func TestFlattenBookmarksSkipsEmptyTitles(t *testing.T) {
	var entries []outlineEntry
	flattenBookmarks(nil, &entries)
	if len(entries) != 0 {
		t.Errorf("nil bookmarks should flatten to nothing, got %d", len(entries))
	}
}
