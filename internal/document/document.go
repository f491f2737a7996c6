package document

import "fmt"

// Chunk is the smallest unit of semantic analysis: a bounded span of
// section text with one embedding vector. Immutable once embedded.
type Chunk struct {
	DocumentID   string
	SectionIndex int // index of the owning section within its document
	PageNumber   int // start page of the owning section
	OrderIndex   int // position of the chunk within its section
	Text         string
	Embedding    []float32
}

// Section is a contiguous, titled region of a document. Sections are
// ordered by ascending start page and do not overlap.
type Section struct {
	DocumentID string
	Title      string
	StartPage  int
	EndPage    int
	Body       string
	Chunks     []Chunk
}

// Document is one parsed input file. It is built once by a parser,
// embedded by exactly one worker and read-only afterwards.
type Document struct {
	ID       string
	Filename string
	Sections []Section
}

// Query is the embedded persona+task pair, derived once per run.
type Query struct {
	PersonaRole string
	Task        string
	Embedding   []float32
}

// CombinedText returns the single string that is embedded as the query.
func (q Query) CombinedText() string {
	return fmt.Sprintf("Persona: %s. Task: %s", q.PersonaRole, q.Task)
}

// RankedSection is a scored projection of a Section. Rank is 1-based,
// unique and increases as the score decreases.
type RankedSection struct {
	Document     string
	SectionTitle string
	PageNumber   int
	Score        float64
	Rank         int
}

// RefinedExcerpt is the most representative chunk of a top-ranked
// section, cleaned of formatting artifacts.
type RefinedExcerpt struct {
	Document    string
	PageNumber  int
	RefinedText string
}
