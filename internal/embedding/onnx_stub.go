//go:build !cgo

package embedding

import (
	"context"
	"errors"
)

// ONNXConfig locates a sentence-embedding model exported to ONNX.
type ONNXConfig struct {
	ModelPath  string
	Dimensions int
	MaxTokens  int
}

// ONNXEmbedder is unavailable without cgo (see onnx.go).
type ONNXEmbedder struct{}

// NewONNXEmbedder always fails with ErrEmbeddingUnavailable when built without cgo.
func NewONNXEmbedder(_ ONNXConfig) (*ONNXEmbedder, error) {
	return nil, unavailable(errors.New("onnx embedder requires cgo; build with CGO_ENABLED=1 and onnxruntime"))
}

// Embed is never reachable: the constructor always fails.
func (e *ONNXEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, unavailable(errors.New("onnx embedder not built"))
}

// EmbedBatch is never reachable: the constructor always fails.
func (e *ONNXEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, unavailable(errors.New("onnx embedder not built"))
}

// Dimensions returns 0.
func (e *ONNXEmbedder) Dimensions() int { return 0 }

// Close is a no-op.
func (e *ONNXEmbedder) Close() error { return nil }
