package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	"docrank/internal/document"
	"docrank/internal/embedding"
	"docrank/internal/metrics"
	"docrank/internal/parser"
)

// Worker runs the per-document half of the pipeline: structure
// extraction, chunking and embedding. Each worker owns its document
// end-to-end and returns it as a complete, immutable value; no state
// is shared between workers.
type Worker struct {
	emb         embedding.Embedder
	chunkBudget int
	log         *slog.Logger
}

func NewWorker(emb embedding.Embedder, chunkBudget int, log *slog.Logger) *Worker {
	return &Worker{
		emb:         emb,
		chunkBudget: chunkBudget,
		log:         log,
	}
}

// ProcessDocument parses, chunks and embeds one document. Failures are
// returned as tagged errors, not panics: the caller records them and
// keeps ranking the remaining documents.
func (w *Worker) ProcessDocument(ctx context.Context, name string, data []byte) (*document.Document, error) {
	log := w.log.With("document", name)

	p, err := parser.ForFile(name)
	if err != nil {
		metrics.DocumentFailed()
		return nil, err
	}

	doc, err := p.Parse(bytes.NewReader(data), name)
	if err != nil {
		metrics.DocumentFailed()
		var parseErr *parser.ParseError
		if !errors.As(err, &parseErr) {
			err = &parser.ParseError{Filename: name, Err: err}
		}
		log.Error("parse failed", "error", err)
		return nil, err
	}
	log.Debug("parsed document", "sections", len(doc.Sections))

	if err := embedding.EmbedDocument(ctx, doc, w.emb, w.chunkBudget); err != nil {
		metrics.DocumentFailed()
		log.Error("embedding failed", "error", err)
		return nil, err
	}

	chunks := 0
	for _, sec := range doc.Sections {
		chunks += len(sec.Chunks)
	}
	log.Info("document embedded", "sections", len(doc.Sections), "chunks", chunks)
	metrics.DocumentProcessed()
	return doc, nil
}
