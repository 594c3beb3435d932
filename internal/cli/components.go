// Package cli wires docchat's components and renders results for the command line.
package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/docchat/internal/chat"
	"github.com/hyperjump/docchat/internal/config"
	"github.com/hyperjump/docchat/internal/conversation"
	"github.com/hyperjump/docchat/internal/embedding"
	"github.com/hyperjump/docchat/internal/extract"
	"github.com/hyperjump/docchat/internal/indexer"
	"github.com/hyperjump/docchat/internal/llm"
	"github.com/hyperjump/docchat/internal/search"
)

// Components holds the initialized services behind the CLI and the HTTP server.
type Components struct {
	Store     *conversation.Store
	Embedder  embedding.Embedder
	Engine    *search.Engine
	Indexer   *indexer.Indexer
	Generator llm.Generator
	Service   *chat.Service
}

// NewComponents builds every component from cfg.
func NewComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	emb, err := embedding.New(cfg.Embedding, cfg.EmbeddingAPIKey(), logger)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}
	chunker, err := indexer.NewChunker(cfg.Chunking.MaxLen, cfg.Chunking.OverlapOrDefault())
	if err != nil {
		_ = emb.Close()
		return nil, fmt.Errorf("chunker: %w", err)
	}

	store := conversation.NewStore(conversation.WithLogger(logger))
	engine := search.NewEngine(store, emb, search.Options{MinSimilarity: cfg.Retrieval.MinSimilarity}, logger)
	idx := indexer.NewIndexer(extract.NewExtractor(cfg.Upload.Extensions...), chunker, emb, indexer.WithLogger(logger))
	gen := llm.New(cfg.Generator, logger)
	svc := chat.NewService(store, engine, idx, gen,
		chat.WithLogger(logger),
		chat.WithMaxUploadBytes(cfg.Upload.MaxBytes),
		chat.WithTuning(chat.TuningFromConfig(cfg.Retrieval)),
	)
	return &Components{
		Store:     store,
		Embedder:  emb,
		Engine:    engine,
		Indexer:   idx,
		Generator: gen,
		Service:   svc,
	}, nil
}

// Close releases the embedder.
func (c *Components) Close() error {
	if c.Embedder != nil {
		return c.Embedder.Close()
	}
	return nil
}
