package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string

	// Server auth
	APIKey string

	// Embedding capability
	EmbedProvider  string // "local" or "openai"
	OpenAIAPIKey   string
	OpenAIModel    string
	EmbedDimension int

	// Pipeline
	WorkerCount       int // document-level parallelism within a collection
	CollectionWorkers int // concurrent collection jobs (server mode)
	MaxQueueSize      int

	// Ranking defaults
	TopSections int
	TopChunks   int

	// Chunking
	ChunkCharBudget int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("DOCRANK_API_KEY"),

		EmbedProvider:  envOr("EMBED_PROVIDER", "local"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    envOr("OPENAI_EMBED_MODEL", "text-embedding-3-small"),
		EmbedDimension: envInt("EMBED_DIMENSION", 256),

		WorkerCount:       envInt("WORKER_COUNT", 4),
		CollectionWorkers: envInt("COLLECTION_WORKERS", 2),
		MaxQueueSize:      envInt("MAX_QUEUE_SIZE", 100),

		TopSections: envInt("TOP_SECTIONS", 5),
		TopChunks:   envInt("TOP_CHUNKS", 3),

		ChunkCharBudget: envInt("CHUNK_CHAR_BUDGET", 1000),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.CollectionWorkers <= 0 {
		cfg.CollectionWorkers = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.ChunkCharBudget <= 0 {
		cfg.ChunkCharBudget = 1000
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

// fileConfig is the YAML shape of an optional config file; set fields
// override the environment.
type fileConfig struct {
	Port              string `yaml:"port"`
	APIKey            string `yaml:"api_key"`
	EmbedProvider     string `yaml:"embed_provider"`
	OpenAIModel       string `yaml:"openai_model"`
	EmbedDimension    int    `yaml:"embed_dimension"`
	WorkerCount       int    `yaml:"worker_count"`
	CollectionWorkers int    `yaml:"collection_workers"`
	TopSections       int    `yaml:"top_sections"`
	TopChunks         int    `yaml:"top_chunks"`
	ChunkCharBudget   int    `yaml:"chunk_char_budget"`
}

// ApplyFile overlays settings from a YAML file onto the config.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Port != "" {
		c.Port = fc.Port
	}
	if fc.APIKey != "" {
		c.APIKey = fc.APIKey
	}
	if fc.EmbedProvider != "" {
		c.EmbedProvider = fc.EmbedProvider
	}
	if fc.OpenAIModel != "" {
		c.OpenAIModel = fc.OpenAIModel
	}
	if fc.EmbedDimension > 0 {
		c.EmbedDimension = fc.EmbedDimension
	}
	if fc.WorkerCount > 0 {
		c.WorkerCount = fc.WorkerCount
	}
	if fc.CollectionWorkers > 0 {
		c.CollectionWorkers = fc.CollectionWorkers
	}
	if fc.TopSections > 0 {
		c.TopSections = fc.TopSections
	}
	if fc.TopChunks > 0 {
		c.TopChunks = fc.TopChunks
	}
	if fc.ChunkCharBudget > 0 {
		c.ChunkCharBudget = fc.ChunkCharBudget
	}
	return nil
}

// Validate checks settings every mode needs.
func (c Config) Validate() error {
	if c.TopSections <= 0 {
		return fmt.Errorf("TOP_SECTIONS must be positive, got %d", c.TopSections)
	}
	if c.TopChunks <= 0 {
		return fmt.Errorf("TOP_CHUNKS must be positive, got %d", c.TopChunks)
	}
	switch c.EmbedProvider {
	case "local":
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when EMBED_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("unknown EMBED_PROVIDER %q", c.EmbedProvider)
	}
	return nil
}

// ValidateServer checks settings the HTTP service additionally needs.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("DOCRANK_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
