package embedding

import (
	"context"
	"math"
	"testing"
)

func TestLocalEmbedderDeterministic(t *testing.T) {
	e := NewLocalEmbedder(128)
	ctx := context.Background()

	a, err := e.EmbedQuery(ctx, "travel planning for a group of friends")
	if err != nil {
		t.Fatalf("EmbedQuery: %v", err)
	}
	b, err := e.EmbedQuery(ctx, "travel planning for a group of friends")
	if err != nil {
		t.Fatalf("EmbedQuery: %v", err)
	}
	if len(a) != 128 || len(b) != 128 {
		t.Fatalf("dimensions = %d, %d, want 128", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestLocalEmbedderUnitNorm(t *testing.T) {
	e := NewLocalEmbedder(64)
	vec, err := e.EmbedQuery(context.Background(), "chunk embeddings must leave this unit length")
	if err != nil {
		t.Fatalf("EmbedQuery: %v", err)
	}
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1) > 1e-5 {
		t.Errorf("squared norm = %v, want 1", sum)
	}
}

func TestLocalEmbedderStopwordsOnly(t *testing.T) {
	e := NewLocalEmbedder(64)
	vec, err := e.EmbedQuery(context.Background(), "the and of in on")
	if err != nil {
		t.Fatalf("EmbedQuery: %v", err)
	}
	for i, v := range vec {
		if v != 0 {
			t.Fatalf("stopword-only text should embed to zero, got %v at %d", v, i)
		}
	}
}

func TestLocalEmbedderSimilarityOrdering(t *testing.T) {
	e := NewLocalEmbedder(256)
	ctx := context.Background()

	query, _ := e.EmbedQuery(ctx, "cooking recipes dinner")
	near, _ := e.EmbedQuery(ctx, "recipes for cooking")
	far, _ := e.EmbedQuery(ctx, "quantum physics experiment")

	if cos(query, near) <= cos(query, far) {
		t.Errorf("related text should score higher: near=%v far=%v",
			cos(query, near), cos(query, far))
	}
}

func TestLocalEmbedderBatch(t *testing.T) {
	e := NewLocalEmbedder(32)
	vectors, err := e.EmbedBatch(context.Background(), []string{"first text", "second text", ""})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vectors) != 3 {
		t.Fatalf("got %d vectors, want 3", len(vectors))
	}
	for i, vec := range vectors {
		if len(vec) != 32 {
			t.Errorf("vector %d dimension = %d, want 32", i, len(vec))
		}
	}
}

func TestLocalEmbedderDefaultDimension(t *testing.T) {
	e := NewLocalEmbedder(0)
	if e.Dimension() != DefaultLocalDimension {
		t.Errorf("dimension = %d, want %d", e.Dimension(), DefaultLocalDimension)
	}
}

func TestLocalEmbedderCancelledContext(t *testing.T) {
	e := NewLocalEmbedder(32)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.EmbedQuery(ctx, "text"); err == nil {
		t.Error("expected context error")
	}
	if _, err := e.EmbedBatch(ctx, []string{"text"}); err == nil {
		t.Error("expected context error")
	}
}

func cos(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
