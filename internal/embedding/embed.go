package embedding

import (
	"context"
	"fmt"

	"docrank/internal/chunker"
	"docrank/internal/document"
)

// EmbedDocument chunks and embeds every section of a document in
// place. Sections with no extractable text get zero chunks and are
// later excluded from ranking. A failed embedding call (after retries)
// aborts this document only; a chunk is never filled with a substitute
// vector.
func EmbedDocument(ctx context.Context, doc *document.Document, emb Embedder, charBudget int) error {
	if emb == nil {
		return ErrNoEmbedder
	}
	for si := range doc.Sections {
		sec := &doc.Sections[si]
		texts := chunker.Split(sec.Body, charBudget)
		if len(texts) == 0 {
			sec.Chunks = nil
			continue
		}

		vectors, err := emb.EmbedBatch(ctx, texts)
		if err != nil {
			return &EmbeddingError{DocumentID: doc.ID, Err: err}
		}
		if len(vectors) != len(texts) {
			return &EmbeddingError{
				DocumentID: doc.ID,
				Err:        fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(texts)),
			}
		}

		sec.Chunks = make([]document.Chunk, 0, len(texts))
		for i, text := range texts {
			Normalize(vectors[i])
			sec.Chunks = append(sec.Chunks, document.Chunk{
				DocumentID:   doc.ID,
				SectionIndex: si,
				PageNumber:   sec.StartPage,
				OrderIndex:   i,
				Text:         text,
				Embedding:    vectors[i],
			})
		}
	}
	return nil
}

// EmbedQuery derives the run's query from the persona and task,
// embedding their combined text once.
func EmbedQuery(ctx context.Context, emb Embedder, personaRole, task string) (document.Query, error) {
	if emb == nil {
		return document.Query{}, ErrNoEmbedder
	}
	q := document.Query{PersonaRole: personaRole, Task: task}
	vec, err := emb.EmbedQuery(ctx, q.CombinedText())
	if err != nil {
		return document.Query{}, fmt.Errorf("embed query: %w", err)
	}
	Normalize(vec)
	q.Embedding = vec
	return q, nil
}
