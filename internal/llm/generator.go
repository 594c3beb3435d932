// Package llm provides the answer generators behind the chat service.
package llm

import (
	"context"

	"go.uber.org/zap"

	"github.com/hyperjump/docchat/internal/config"
	"github.com/hyperjump/docchat/internal/prompt"
)

// Generator turns a prompt into answer text. Failures are reported as models.ErrGeneratorTimeout,
// models.ErrGeneratorFailure or models.ErrGeneratorUnavailable so callers can fall back.
type Generator interface {
	Generate(ctx context.Context, p *prompt.Prompt) (string, error)
	Name() string
}

// New returns the OpenAI-compatible generator when an API key is configured, otherwise the
// offline generator.
func New(cfg config.GeneratorConfig, logger *zap.Logger) Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled() {
		logger.Warn("no generator API key configured, answers will be built from excerpts only")
		return NewOffline()
	}
	logger.Info("generator configured", zap.String("base_url", cfg.BaseURL), zap.String("model", cfg.Model))
	return NewOpenAIGenerator(cfg)
}
