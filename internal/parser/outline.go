package parser

import (
	"os"
	"sort"
	"strings"

	"docrank/internal/document"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

// outlineEntry is one flattened table-of-contents entry: a title and
// the 1-based page it points at.
type outlineEntry struct {
	Title string
	Page  int
}

// readOutline extracts the PDF bookmark tree via pdfcpu and flattens
// it in document order. Returns nil when the document has no usable
// outline; the caller then falls back to per-page sectioning.
func readOutline(path string) []outlineEntry {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	bms, err := api.Bookmarks(f, nil)
	if err != nil {
		return nil
	}

	var entries []outlineEntry
	flattenBookmarks(bms, &entries)
	return entries
}

func flattenBookmarks(bms []pdfcpu.Bookmark, out *[]outlineEntry) {
	for _, bm := range bms {
		title := strings.TrimSpace(bm.Title)
		if title != "" && bm.PageFrom > 0 {
			*out = append(*out, outlineEntry{Title: title, Page: bm.PageFrom})
		}
		flattenBookmarks(bm.Kids, out)
	}
}

// sectionsFromOutline turns outline entries into sections: each entry
// starts a section at its target page and the section runs up to the
// page before the next entry (or the last page). Entries pointing past
// the end of the document are clamped to the last page.
func sectionsFromOutline(docID string, entries []outlineEntry, pages []string) []document.Section {
	lastPage := len(pages)
	clamped := make([]outlineEntry, len(entries))
	copy(clamped, entries)
	for i := range clamped {
		if clamped[i].Page > lastPage {
			clamped[i].Page = lastPage
		}
		if clamped[i].Page < 1 {
			clamped[i].Page = 1
		}
	}

	// Sections within a document must be ordered by ascending start
	// page and must not overlap. Stable sort keeps outline order for
	// entries sharing a page.
	sort.SliceStable(clamped, func(i, j int) bool {
		return clamped[i].Page < clamped[j].Page
	})

	sections := make([]document.Section, 0, len(clamped))
	for i, entry := range clamped {
		end := lastPage
		if i+1 < len(clamped) {
			end = clamped[i+1].Page - 1
		}
		if end < entry.Page {
			// Two entries on the same page: the earlier one covers
			// just that page.
			end = entry.Page
		}

		var body strings.Builder
		for p := entry.Page; p <= end; p++ {
			if body.Len() > 0 {
				body.WriteString("\n")
			}
			body.WriteString(pages[p-1])
		}

		sections = append(sections, document.Section{
			DocumentID: docID,
			Title:      entry.Title,
			StartPage:  entry.Page,
			EndPage:    end,
			Body:       normalizeBody(body.String()),
		})
	}
	return sections
}
