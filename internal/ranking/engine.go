package ranking

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"

	"docrank/internal/document"
)

// ConfigError marks an invalid engine configuration. Fatal: it aborts
// the run before any scoring happens.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid ranking configuration: " + e.Reason
}

// Engine scores every section of every document against the query,
// orders them globally and refines the top results.
type Engine struct {
	topSections int
	topChunks   int
	log         *slog.Logger
}

// NewEngine validates the ranking parameters. topSections is the
// number of sections kept in the global ranking; topChunks is the K of
// the mean-of-top-K score aggregation.
func NewEngine(topSections, topChunks int, log *slog.Logger) (*Engine, error) {
	if topSections <= 0 {
		return nil, &ConfigError{Reason: fmt.Sprintf("top sections must be positive, got %d", topSections)}
	}
	if topChunks <= 0 {
		return nil, &ConfigError{Reason: fmt.Sprintf("top chunks must be positive, got %d", topChunks)}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{topSections: topSections, topChunks: topChunks, log: log}, nil
}

// scoredSection pairs a section with its aggregated score and keeps
// the discovery order for deterministic tie-breaking.
type scoredSection struct {
	section   *document.Section
	score     float64
	bestChunk int
	order     int
}

// Rank scores all sections across all documents against the query and
// returns the top sections in rank order, each paired with its refined
// excerpt. Documents must be fully embedded before Rank is called; it
// treats them as read-only.
//
// A section's score is the mean of its top-K chunk similarities (all
// chunks when it has fewer than K). Sections with zero chunks score
// negative infinity and never appear in the output. Ties break by
// discovery order: document list order, then section order within the
// document.
func (e *Engine) Rank(docs []*document.Document, query document.Query) ([]document.RankedSection, []document.RefinedExcerpt, error) {
	if len(query.Embedding) == 0 {
		return nil, nil, &ConfigError{Reason: "query embedding is empty"}
	}

	var scored []scoredSection
	order := 0
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		for si := range doc.Sections {
			sec := &doc.Sections[si]
			order++
			if len(sec.Chunks) == 0 {
				// Score is -Inf: excluded from the output entirely.
				continue
			}

			sims := make([]float64, len(sec.Chunks))
			best := 0
			for ci := range sec.Chunks {
				if len(sec.Chunks[ci].Embedding) != len(query.Embedding) {
					return nil, nil, &ConfigError{Reason: fmt.Sprintf(
						"chunk embedding dimension %d does not match query dimension %d (document %s)",
						len(sec.Chunks[ci].Embedding), len(query.Embedding), doc.ID,
					)}
				}
				sims[ci] = dot(sec.Chunks[ci].Embedding, query.Embedding)
				if sims[ci] > sims[best] {
					best = ci
				}
			}

			scored = append(scored, scoredSection{
				section:   sec,
				score:     meanTopK(sims, e.topChunks),
				bestChunk: best,
				order:     order,
			})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	topN := e.topSections
	if topN > len(scored) {
		topN = len(scored)
	}

	ranked := make([]document.RankedSection, 0, topN)
	refined := make([]document.RefinedExcerpt, 0, topN)
	for i := 0; i < topN; i++ {
		s := scored[i]
		ranked = append(ranked, document.RankedSection{
			Document:     s.section.DocumentID,
			SectionTitle: s.section.Title,
			PageNumber:   s.section.StartPage,
			Score:        s.score,
			Rank:         i + 1,
		})
		refined = append(refined, document.RefinedExcerpt{
			Document:    s.section.DocumentID,
			PageNumber:  s.section.StartPage,
			RefinedText: cleanExcerpt(s.section.Chunks[s.bestChunk].Text),
		})
	}

	e.log.Info("global ranking complete",
		"sections_scored", len(scored),
		"sections_kept", topN,
	)
	return ranked, refined, nil
}

// dot is the cosine similarity of two pre-normalized vectors.
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// meanTopK averages the k highest values, or all of them when fewer
// than k exist.
func meanTopK(vals []float64, k int) float64 {
	if len(vals) == 0 {
		return math.Inf(-1)
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	if k > len(sorted) {
		k = len(sorted)
	}
	var sum float64
	for _, v := range sorted[:k] {
		sum += v
	}
	return sum / float64(k)
}

var excerptWS = regexp.MustCompile(`\s+`)

// cleanExcerpt strips residual formatting artifacts from a refined
// excerpt: control characters and duplicate whitespace.
func cleanExcerpt(text string) string {
	text = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, text)
	return strings.TrimSpace(excerptWS.ReplaceAllString(text, " "))
}
