package config

import "time"

// Chunking and retrieval defaults.
const (
	DefaultChunkMaxLen   = 500
	DefaultChunkOverlap  = 100
	DefaultTopK          = 4
	DefaultMinSimilarity = 0.2
	DefaultHistoryTurns  = 8
	DefaultContextChars  = 6000
)

// Generator defaults point at Groq's OpenAI-compatible endpoint.
const (
	DefaultGeneratorBaseURL = "https://api.groq.com/openai/v1"
	DefaultGeneratorModel   = "llama3-70b-8192"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 90 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.CORSOrigins == nil {
		cfg.Server.CORSOrigins = []string{"*"}
	}

	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "hashing"
	}
	if cfg.Embedding.Dimensions == 0 {
		switch cfg.Embedding.Provider {
		case "onnx":
			cfg.Embedding.Dimensions = 384
		case "hashing":
			cfg.Embedding.Dimensions = 512
		}
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 32
	}
	if cfg.Embedding.Timeout == 0 {
		cfg.Embedding.Timeout = 30 * time.Second
	}

	if cfg.Chunking.MaxLen == 0 {
		cfg.Chunking.MaxLen = DefaultChunkMaxLen
	}
	if cfg.Chunking.Overlap == nil {
		ov := DefaultChunkOverlap
		cfg.Chunking.Overlap = &ov
	}

	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = DefaultTopK
	}
	if cfg.Retrieval.MinSimilarity == nil {
		ms := DefaultMinSimilarity
		cfg.Retrieval.MinSimilarity = &ms
	}
	if cfg.Retrieval.HistoryTurns == 0 {
		cfg.Retrieval.HistoryTurns = DefaultHistoryTurns
	}
	if cfg.Retrieval.ContextChars == 0 {
		cfg.Retrieval.ContextChars = DefaultContextChars
	}

	if cfg.Generator.BaseURL == "" {
		cfg.Generator.BaseURL = DefaultGeneratorBaseURL
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = DefaultGeneratorModel
	}
	if cfg.Generator.Temperature == 0 {
		cfg.Generator.Temperature = 0.3
	}
	if cfg.Generator.MaxTokens == 0 {
		cfg.Generator.MaxTokens = 1000
	}
	if cfg.Generator.Timeout == 0 {
		cfg.Generator.Timeout = 30 * time.Second
	}

	if cfg.Upload.MaxBytes == 0 {
		cfg.Upload.MaxBytes = 10 << 20
	}
	if cfg.Upload.Extensions == nil {
		cfg.Upload.Extensions = []string{".pdf", ".docx", ".txt", ".md", ".xlsx"}
	}
}
