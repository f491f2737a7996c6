package embedding

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"
)

// LocalEmbedder is an offline, dependency-free embedding capability
// using the feature-hashing trick: tokens are hashed into a fixed
// number of buckets, weighted by term frequency and L2-normalized.
// Unlike a TF-IDF vectorizer it needs no corpus pass, so documents can
// be embedded in parallel before the full collection is known. It is
// deterministic, has a fixed dimension and carries no mutable state,
// which makes it safe for concurrent workers and for tests.
type LocalEmbedder struct {
	dimension int
}

// DefaultLocalDimension is the bucket count used when none is
// configured.
const DefaultLocalDimension = 256

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

func NewLocalEmbedder(dimension int) *LocalEmbedder {
	if dimension <= 0 {
		dimension = DefaultLocalDimension
	}
	return &LocalEmbedder{dimension: dimension}
}

func (e *LocalEmbedder) Dimension() int { return e.dimension }

func (e *LocalEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.embed(text), nil
}

func (e *LocalEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = e.embed(text)
	}
	return vectors, nil
}

func (e *LocalEmbedder) embed(text string) []float32 {
	vec := make([]float32, e.dimension)
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	for _, tok := range tokens {
		if _, isStop := stopwords[tok]; isStop {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(tok))
		sum := h.Sum32()
		bucket := int(sum % uint32(e.dimension))
		// Top hash bit decides the sign, which keeps colliding tokens
		// from always reinforcing each other.
		if sum&0x80000000 != 0 {
			vec[bucket] -= 1
		} else {
			vec[bucket] += 1
		}
	}
	Normalize(vec)
	return vec
}

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to",
		"of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were",
		"be", "been", "being", "it", "this", "that", "these", "those", "from",
		"up", "down", "over", "under", "again", "further", "than", "so", "such",
		"into", "about", "between", "through", "during", "before", "after",
		"above", "below", "out", "off", "own", "same", "too", "very", "can",
		"will", "just", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
