package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override file settings.
const (
	EnvGroqAPIKey        = "GROQ_API_KEY"
	EnvGroqModel         = "GROQ_MODEL"
	EnvGroqBaseURL       = "GROQ_BASE_URL"
	EnvEmbeddingProvider = "DOCCHAT_EMBEDDING_PROVIDER"
	EnvLogLevel          = "DOCCHAT_LOG_LEVEL"
)

// LoadDotEnv loads KEY=VALUE pairs from the given .env files into the process environment.
// Variables already set are kept. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv overrides cfg fields from the environment.
func ApplyEnv(cfg *Config) {
	if v := env(EnvGroqAPIKey); v != "" {
		cfg.Generator.APIKey = v
	}
	if v := env(EnvGroqModel); v != "" {
		cfg.Generator.Model = v
	}
	if v := env(EnvGroqBaseURL); v != "" {
		cfg.Generator.BaseURL = v
	}
	if v := env(EnvEmbeddingProvider); v != "" {
		cfg.Embedding.Provider = strings.ToLower(v)
	}
	if v := env(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
}

// EmbeddingAPIKey returns the key named by Embedding.APIKeyEnv.
func (c *Config) EmbeddingAPIKey() string {
	return env(c.Embedding.APIKeyEnv)
}

func env(key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(key))
}
