package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
  read_timeout: 5s
retrieval:
  top_k: 6
generator:
  model: "llama3-8b-8192"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 6, cfg.Retrieval.TopK)
	assert.Equal(t, "llama3-8b-8192", cfg.Generator.Model)
	assert.False(t, cfg.Debug)
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultChunkMaxLen, cfg.Chunking.MaxLen)
	assert.Equal(t, DefaultChunkOverlap, cfg.Chunking.OverlapOrDefault())
	assert.Equal(t, DefaultTopK, cfg.Retrieval.TopK)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0600))
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_RejectsBadChunking(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunking:\n  max_len: 100\n  overlap: 100\n"), 0600))
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_ZeroOverlapIsKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunking:\n  overlap: 0\n"), 0600))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Chunking.OverlapOrDefault())
}

func TestLoad_ZeroMinSimilarityIsKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retrieval:\n  min_similarity: 0\n"), 0600))
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Retrieval.MinSimilarity)
	assert.Equal(t, 0.0, cfg.Retrieval.MinSimilarityOrDefault())
}

func TestValidate_MinSimilarityRange(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	ms := 1.5
	cfg.Retrieval.MinSimilarity = &ms
	assert.Error(t, cfg.Validate())
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "hashing", cfg.Embedding.Provider)
	assert.Equal(t, 512, cfg.Embedding.Dimensions)
	assert.Equal(t, DefaultMinSimilarity, cfg.Retrieval.MinSimilarityOrDefault())
	assert.Equal(t, DefaultHistoryTurns, cfg.Retrieval.HistoryTurns)
	assert.Equal(t, DefaultGeneratorModel, cfg.Generator.Model)
	assert.Equal(t, DefaultGeneratorBaseURL, cfg.Generator.BaseURL)
	assert.InDelta(t, 0.3, cfg.Generator.Temperature, 1e-6)
	assert.Equal(t, 1000, cfg.Generator.MaxTokens)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxBytes)
	assert.Contains(t, cfg.Upload.Extensions, ".pdf")
	assert.False(t, cfg.Generator.Enabled())
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvGroqAPIKey, "gsk-test")
	t.Setenv(EnvGroqModel, "mixtral")
	t.Setenv(EnvEmbeddingProvider, "NONE")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gsk-test", cfg.Generator.APIKey)
	assert.Equal(t, "mixtral", cfg.Generator.Model)
	assert.Equal(t, "none", cfg.Embedding.Provider)
	assert.True(t, cfg.Generator.Enabled())
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DOCCHAT_TEST_DOTENV=from-file\n"), 0600))
	t.Cleanup(func() { os.Unsetenv("DOCCHAT_TEST_DOTENV") })
	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("DOCCHAT_TEST_DOTENV"))
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retrieval:\n  top_k: 2\n"), 0600))

	var topK atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop, err := Watch(ctx, path, nil, func(cfg *Config) { topK.Store(int32(cfg.Retrieval.TopK)) })
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(path, []byte("retrieval:\n  top_k: 7\n"), 0600))
	assert.Eventually(t, func() bool { return topK.Load() == 7 }, 3*time.Second, 20*time.Millisecond)
}
