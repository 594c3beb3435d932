// Package config provides configuration loading and structs for the docchat server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	LogLevel  string          `yaml:"log_level"`
	Server    ServerConfig    `yaml:"server"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Generator GeneratorConfig `yaml:"generator"`
	Upload    UploadConfig    `yaml:"upload"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	// RateLimit is requests per minute per client IP; 0 disables limiting.
	RateLimit int `yaml:"rate_limit"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is one of hashing, onnx, openai, mock, none.
	Provider   string `yaml:"provider"`
	Dimensions int    `yaml:"dimensions"`
	CacheSize  int    `yaml:"cache_size"`
	// ONNX settings.
	ModelPath string `yaml:"model_path"`
	MaxTokens int    `yaml:"max_tokens"`
	// OpenAI-compatible settings.
	BaseURL   string        `yaml:"base_url"`
	APIKeyEnv string        `yaml:"api_key_env"`
	Model     string        `yaml:"model"`
	BatchSize int           `yaml:"batch_size"`
	Timeout   time.Duration `yaml:"timeout"`
}

// ChunkingConfig holds chunker window settings, in characters.
type ChunkingConfig struct {
	MaxLen  int  `yaml:"max_len"`
	Overlap *int `yaml:"overlap"`
}

// OverlapOrDefault returns the configured overlap; 100 when unset.
func (c ChunkingConfig) OverlapOrDefault() int {
	if c.Overlap != nil {
		return *c.Overlap
	}
	return DefaultChunkOverlap
}

// RetrievalConfig holds the tunables that can change while the server runs. MinSimilarity is a
// pointer so an explicit 0 is kept rather than defaulted.
type RetrievalConfig struct {
	TopK          int      `yaml:"top_k"`
	MinSimilarity *float64 `yaml:"min_similarity"`
	HistoryTurns  int      `yaml:"history_turns"`
	ContextChars  int      `yaml:"context_chars"`
}

// MinSimilarityOrDefault returns the configured threshold; 0.2 when unset.
func (c RetrievalConfig) MinSimilarityOrDefault() float64 {
	if c.MinSimilarity != nil {
		return *c.MinSimilarity
	}
	return DefaultMinSimilarity
}

// GeneratorConfig configures the OpenAI-compatible chat completion client.
type GeneratorConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Enabled reports whether an API key is configured.
func (g GeneratorConfig) Enabled() bool {
	return strings.TrimSpace(g.APIKey) != ""
}

// UploadConfig limits accepted uploads.
type UploadConfig struct {
	MaxBytes   int64    `yaml:"max_bytes"`
	Extensions []string `yaml:"extensions"`
}

// Load reads and parses the config file at path, applies environment overrides and defaults.
// A missing file is not an error: defaults (plus environment) are returned.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	ApplyEnv(&cfg)
	ApplyDefaults(&cfg)

	if path != "" {
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, filepath.Dir(path))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	if c.Chunking.MaxLen <= 0 {
		return fmt.Errorf("chunking.max_len must be positive, got %d", c.Chunking.MaxLen)
	}
	if ov := c.Chunking.OverlapOrDefault(); ov < 0 || ov >= c.Chunking.MaxLen {
		return fmt.Errorf("chunking.overlap must be in [0, max_len), got %d", ov)
	}
	if ms := c.Retrieval.MinSimilarityOrDefault(); ms < -1 || ms > 1 {
		return fmt.Errorf("retrieval.min_similarity must be within [-1, 1], got %v", ms)
	}
	if c.Retrieval.TopK < 1 {
		return fmt.Errorf("retrieval.top_k must be at least 1, got %d", c.Retrieval.TopK)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
