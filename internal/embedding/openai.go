package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIEmbedder calls the OpenAI embeddings API. Transient failures
// (429s and 5xxs) are retried with jittered backoff before the
// document is reported as failed.
type OpenAIEmbedder struct {
	client    openai.Client
	model     string
	dimension int
}

func NewOpenAIEmbedder(apiKey, model string, dimension int) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, errors.New("missing OpenAI API key")
	}
	if model == "" {
		model = string(openai.EmbeddingModelTextEmbedding3Small)
	}
	if dimension <= 0 {
		dimension = 1536
	}
	return &OpenAIEmbedder{
		client:    openai.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		dimension: dimension,
	}, nil
}

func (e *OpenAIEmbedder) Dimension() int { return e.dimension }

func (e *OpenAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var resp *openai.CreateEmbeddingResponse
	var lastErr error
	for attempt := range MaxRetries {
		resp, lastErr = e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{
				OfArrayOfStrings: texts,
			},
			Model:      openai.EmbeddingModel(e.model),
			Dimensions: openai.Int(int64(e.dimension)),
		})
		if lastErr == nil {
			break
		}
		lastErr = classify(lastErr)
		if !IsRetryable(lastErr) {
			return nil, lastErr
		}
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		vec := make([]float32, len(item.Embedding))
		for i, v := range item.Embedding {
			vec[i] = float32(v)
		}
		vectors[int(item.Index)] = vec
	}
	return vectors, nil
}

// classify turns upstream rate limits and server errors into
// RetryableErrors.
func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500 {
			return &RetryableError{StatusCode: apiErr.StatusCode, Message: apiErr.Message}
		}
	}
	return err
}
