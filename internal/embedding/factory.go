package embedding

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/docchat/internal/config"
)

// Provider names accepted in embedding.provider.
const (
	ProviderHashing = "hashing"
	ProviderONNX    = "onnx"
	ProviderOpenAI  = "openai"
	ProviderMock    = "mock"
	ProviderNone    = "none"
)

// New builds the configured embedder. Remote and model-backed providers are loaded lazily so a
// missing model or key degrades retrieval instead of failing startup. apiKey is only used by openai.
func New(cfg config.EmbeddingConfig, apiKey string, logger *zap.Logger) (Embedder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("provider", cfg.Provider))

	var emb Embedder
	switch strings.ToLower(cfg.Provider) {
	case ProviderHashing, "":
		emb = NewHashingEmbedder(cfg.Dimensions)
	case ProviderMock:
		return NewMockEmbedder(cfg.Dimensions), nil
	case ProviderNone:
		return NewDisabledEmbedder("embedding provider set to none"), nil
	case ProviderONNX:
		onnxCfg := ONNXConfig{ModelPath: cfg.ModelPath, Dimensions: cfg.Dimensions, MaxTokens: cfg.MaxTokens}
		emb = NewLazyEmbedder(func() (Embedder, error) {
			return NewONNXEmbedder(onnxCfg)
		}, cfg.Dimensions, logger)
	case ProviderOpenAI:
		openaiCfg := OpenAIConfig{
			BaseURL:   cfg.BaseURL,
			APIKey:    apiKey,
			Model:     cfg.Model,
			BatchSize: cfg.BatchSize,
			Timeout:   cfg.Timeout,
		}
		emb = NewLazyEmbedder(func() (Embedder, error) {
			return NewOpenAIEmbedder(openaiCfg)
		}, cfg.Dimensions, logger)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}

	if cfg.CacheSize > 0 {
		emb = NewCachedEmbedder(emb, cfg.CacheSize)
	}
	logger.Debug("embedder configured", zap.Int("dimensions", emb.Dimensions()), zap.Int("cache_size", cfg.CacheSize))
	return emb, nil
}
