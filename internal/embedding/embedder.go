package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Embedder is the injected embedding capability: text in, fixed-length
// vector out. Implementations must be deterministic for identical
// input and safe for concurrent use; each pipeline worker calls the
// same instance.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// ErrNoEmbedder is returned when a run is started without an embedding
// capability configured. Fatal before any work begins.
var ErrNoEmbedder = errors.New("no embedding capability configured")

// EmbeddingError marks a failure of the embedding capability for one
// document. The owning document is dropped from the run; other
// documents are unaffected.
type EmbeddingError struct {
	DocumentID string
	Err        error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embed %s: %v", e.DocumentID, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// Normalize scales a vector to unit L2 length in place, so similarity
// later reduces to a dot product. Zero vectors are left untouched.
func Normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= inv
	}
}
