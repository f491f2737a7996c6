package output

import (
	"encoding/json"
	"fmt"
	"os"

	"docrank/internal/document"
)

// AssemblyError marks malformed ranked/refined inputs reaching the
// assembler. Given the ranking engine's invariants it should never
// occur; it is an internal-consistency fault and always fatal.
type AssemblyError struct {
	Reason string
}

func (e *AssemblyError) Error() string {
	return "result assembly failed: " + e.Reason
}

// Metadata describes the run that produced a result.
type Metadata struct {
	InputDocuments      []string `json:"input_documents"`
	Persona             string   `json:"persona"`
	JobToBeDone         string   `json:"job_to_be_done"`
	ProcessingTimestamp string   `json:"processing_timestamp"`
}

// ExtractedSection is one ranked section in the serialized result.
type ExtractedSection struct {
	Document       string `json:"document"`
	SectionTitle   string `json:"section_title"`
	ImportanceRank int    `json:"importance_rank"`
	PageNumber     int    `json:"page_number"`
}

// Subsection is the refined excerpt of one ranked section.
type Subsection struct {
	Document    string `json:"document"`
	RefinedText string `json:"refined_text"`
	PageNumber  int    `json:"page_number"`
}

// ResultDocument is the final result object: ranked sections in rank
// order and their refined excerpts in the same order.
type ResultDocument struct {
	Metadata           Metadata           `json:"metadata"`
	ExtractedSections  []ExtractedSection `json:"extracted_sections"`
	SubsectionAnalysis []Subsection       `json:"subsection_analysis"`
}

// Assemble packages ranked sections and refined excerpts into the
// final result. The two inputs must be the same length, ordered by
// rank, with rank values forming a contiguous 1..N sequence.
func Assemble(ranked []document.RankedSection, refined []document.RefinedExcerpt, meta Metadata) (*ResultDocument, error) {
	if len(ranked) != len(refined) {
		return nil, &AssemblyError{Reason: fmt.Sprintf(
			"%d ranked sections but %d refined excerpts", len(ranked), len(refined),
		)}
	}

	sections := make([]ExtractedSection, 0, len(ranked))
	subsections := make([]Subsection, 0, len(refined))
	for i, rs := range ranked {
		if rs.Rank != i+1 {
			return nil, &AssemblyError{Reason: fmt.Sprintf(
				"rank %d at position %d breaks the contiguous 1..N ordering", rs.Rank, i,
			)}
		}
		sections = append(sections, ExtractedSection{
			Document:       rs.Document,
			SectionTitle:   rs.SectionTitle,
			ImportanceRank: rs.Rank,
			PageNumber:     rs.PageNumber,
		})
		subsections = append(subsections, Subsection{
			Document:    refined[i].Document,
			RefinedText: refined[i].RefinedText,
			PageNumber:  refined[i].PageNumber,
		})
	}

	if meta.InputDocuments == nil {
		meta.InputDocuments = []string{}
	}
	return &ResultDocument{
		Metadata:           meta,
		ExtractedSections:  sections,
		SubsectionAnalysis: subsections,
	}, nil
}

// WriteFile serializes a result to disk as indented JSON.
func WriteFile(path string, res *ResultDocument) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
