package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/docchat/internal/config"
	"github.com/hyperjump/docchat/internal/models"
	"github.com/hyperjump/docchat/internal/prompt"
)

func testPrompt() *prompt.Prompt {
	return &prompt.Prompt{Messages: []prompt.Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "question"},
	}}
}

func completion(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "llama3-70b-8192",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	}
}

func TestOpenAIGenerator_Generate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completion("  The policy is 30 days.  "))
	}))
	defer srv.Close()

	g := NewOpenAIGenerator(config.GeneratorConfig{
		BaseURL: srv.URL, APIKey: "gsk-test", Model: "llama3-70b-8192",
		Temperature: 0.3, MaxTokens: 1000, Timeout: 5 * time.Second,
	})
	answer, err := g.Generate(context.Background(), testPrompt())
	require.NoError(t, err)
	assert.Equal(t, "The policy is 30 days.", answer)
	assert.Equal(t, "llama3-70b-8192", got["model"])
	assert.Len(t, got["messages"], 2)
	assert.Equal(t, "llama3-70b-8192", g.Name())
}

func TestOpenAIGenerator_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	g := NewOpenAIGenerator(config.GeneratorConfig{BaseURL: srv.URL, APIKey: "k", Model: "m", Timeout: 50 * time.Millisecond})
	_, err := g.Generate(context.Background(), testPrompt())
	assert.ErrorIs(t, err, models.ErrGeneratorTimeout)
}

func TestOpenAIGenerator_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	g := NewOpenAIGenerator(config.GeneratorConfig{BaseURL: srv.URL, APIKey: "k", Model: "m", Timeout: time.Second})
	_, err := g.Generate(context.Background(), testPrompt())
	assert.ErrorIs(t, err, models.ErrGeneratorFailure)
}

func TestOpenAIGenerator_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	g := NewOpenAIGenerator(config.GeneratorConfig{BaseURL: srv.URL, APIKey: "k", Model: "m", Timeout: time.Second})
	_, err := g.Generate(context.Background(), testPrompt())
	assert.ErrorIs(t, err, models.ErrGeneratorFailure)
}

func TestNew_SelectsOfflineWithoutKey(t *testing.T) {
	g := New(config.GeneratorConfig{}, nil)
	assert.Equal(t, "offline", g.Name())
	_, err := g.Generate(context.Background(), testPrompt())
	assert.ErrorIs(t, err, models.ErrGeneratorUnavailable)

	g = New(config.GeneratorConfig{APIKey: "k", Model: "m"}, nil)
	assert.Equal(t, "m", g.Name())
}
