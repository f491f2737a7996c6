package embedding

import (
	"fmt"

	"docrank/internal/config"
)

// NewFromConfig builds the configured embedding capability. The
// capability is loaded once per process and shared by all workers.
func NewFromConfig(cfg config.Config) (Embedder, error) {
	switch cfg.EmbedProvider {
	case "", "local":
		return NewLocalEmbedder(cfg.EmbedDimension), nil
	case "openai":
		return NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.EmbedDimension)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbedProvider)
	}
}
