package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasteal/internal/config"
)

func newTestGroq(t *testing.T, h http.HandlerFunc) *GroqClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c := NewGroqClient(&config.Config{GroqAPIKey: "gsk_test"})
	c.baseURL = srv.URL
	return c
}

func TestGroqClient_GenerateContent(t *testing.T) {
	c := newTestGroq(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk_test", r.Header.Get("Authorization"))

		var req groqRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, defaultGroqModel, req.Model)
		assert.Equal(t, "json_object", req.ResponseFormat["type"])
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "extract this", req.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"model": "llama-3.3-70b-versatile",
			"choices": [{"message": {"role": "assistant", "content": "{\"title\":\"Phở\"}"}}],
			"usage": {"prompt_tokens": 40, "completion_tokens": 8, "total_tokens": 48}
		}`))
	})

	resp, err := c.GenerateContent(context.Background(), "extract this")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Phở"}`, resp.Content)
	assert.Equal(t, 40, resp.Usage.PromptTokens)
	assert.Equal(t, 8, resp.Usage.CompletionTokens)
	assert.Equal(t, 48, resp.Usage.TotalTokens)
	assert.Equal(t, "llama-3.3-70b-versatile", resp.Usage.Model)
}

func TestGroqClient_Errors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		c := newTestGroq(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
		})
		_, err := c.GenerateContent(context.Background(), "p")
		assert.ErrorContains(t, err, "status=429")
		assert.ErrorContains(t, err, "rate limited")
	})

	t.Run("no choices", func(t *testing.T) {
		c := newTestGroq(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices": []}`))
		})
		_, err := c.GenerateContent(context.Background(), "p")
		assert.ErrorContains(t, err, "no content generated")
	})
}
