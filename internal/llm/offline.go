package llm

import (
	"context"
	"fmt"

	"github.com/hyperjump/docchat/internal/models"
	"github.com/hyperjump/docchat/internal/prompt"
)

// Offline is the generator used without an API key. It always reports ErrGeneratorUnavailable.
type Offline struct{}

// NewOffline creates an offline generator.
func NewOffline() *Offline { return &Offline{} }

// Generate always fails.
func (o *Offline) Generate(context.Context, *prompt.Prompt) (string, error) {
	return "", fmt.Errorf("%w: no API key configured", models.ErrGeneratorUnavailable)
}

// Name returns "offline".
func (o *Offline) Name() string { return "offline" }
