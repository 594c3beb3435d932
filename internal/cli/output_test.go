package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/docchat/internal/config"
	"github.com/hyperjump/docchat/internal/models"
)

func sampleChat() *models.ChatResponse {
	return &models.ChatResponse{
		ConversationID: "abc",
		Answer:         "Refunds take thirty days.",
		KeyPoints:      []string{"Refunds take thirty days."},
		Mode:           models.ModeVector,
		Sources: []models.SourceReference{
			{ChunkID: "d_0", DocumentID: "d", OrderIndex: 0, Score: 0.83, Snippet: "Refunds are\nissued within thirty days."},
			{ChunkID: "d_3", DocumentID: "d", OrderIndex: 3, Score: 0.12, Snippet: "Shipping", LowConfidence: true},
		},
	}
}

func TestWriteChatResponse_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteChatResponse(&buf, sampleChat(), OutputText))
	out := buf.String()
	assert.Contains(t, out, "Refunds take thirty days.\n")
	assert.Contains(t, out, "Sources (vector retrieval):")
	assert.Contains(t, out, "[1] chunk 0 | score 0.83\n")
	assert.Contains(t, out, "Refunds are issued within thirty days.")
	assert.Contains(t, out, "[2] chunk 3 | score 0.12 low confidence")
	assert.NotContains(t, out, "degraded")
}

func TestWriteChatResponse_Degraded(t *testing.T) {
	resp := &models.ChatResponse{Answer: "x", Degraded: true, DegradedReason: "generator_timeout", Notice: "heads up"}
	var buf bytes.Buffer
	require.NoError(t, WriteChatResponse(&buf, resp, OutputText))
	assert.Equal(t, "Note: heads up\n\nx\n\n(degraded: generator_timeout)\n", buf.String())
}

func TestWriteChatResponse_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteChatResponse(&buf, sampleChat(), OutputJSON))
	var got models.ChatResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "abc", got.ConversationID)
	assert.Len(t, got.Sources, 2)
}

func TestWriteUploadResponse(t *testing.T) {
	resp := &models.UploadResponse{
		Message:  "Document 'a.pdf' uploaded successfully. You can now ask questions about it.",
		Metadata: models.DocumentMetadata{Filename: "a.pdf", FileType: "pdf", Pages: 3, WordCount: 120, Chunks: 2},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteUploadResponse(&buf, resp, OutputText))
	assert.Contains(t, buf.String(), "type: pdf | words: 120 | chunks: 2 | pages: 3\n")
}

func TestParseOutputFormat(t *testing.T) {
	f, err := ParseOutputFormat("")
	require.NoError(t, err)
	assert.Equal(t, OutputText, f)
	f, err = ParseOutputFormat("json")
	require.NoError(t, err)
	assert.Equal(t, OutputJSON, f)
	_, err = ParseOutputFormat("yaml")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestNewComponents(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Embedding.Provider = "mock"
	cfg.Generator.APIKey = ""

	c, err := NewComponents(cfg, nil)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "offline", c.Generator.Name())
	assert.Equal(t, cfg.Retrieval.TopK, c.Service.Tuning().TopK)

	cfg.Embedding.Provider = "bogus"
	_, err = NewComponents(cfg, nil)
	assert.Error(t, err)
}
