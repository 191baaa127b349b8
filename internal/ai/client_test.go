package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kariosv/collinsbot/core/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(config.AIConfig{
		APIKey:    "test-key",
		Model:     "llama-3.3-70b-versatile",
		MaxTokens: 250,
	}, srv.Client())
	c.endpoint = srv.URL
	return c
}

func TestAskSendsMemoryAndReturnsReply(t *testing.T) {
	var got chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "  hey there  "}},
			},
		})
	})

	reply, err := c.Ask(context.Background(), "what did I say?", []string{"first", "second"})
	require.NoError(t, err)
	assert.Equal(t, "hey there", reply)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[1].Content, "first\nsecond")
	assert.Contains(t, got.Messages[1].Content, "what did I say?")
	assert.Equal(t, "llama-3.3-70b-versatile", got.Model)
	assert.Equal(t, 250, got.MaxCompletionTokens)
}

func TestAskServerErrorIsNetworkError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "rate limit reached"},
		})
	})

	_, err := c.Ask(context.Background(), "hi", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Contains(t, err.Error(), "rate limit reached")
}

func TestAskUnreachableHostIsNetworkError(t *testing.T) {
	c := NewClient(config.AIConfig{APIKey: "k", Model: "m", MaxTokens: 10}, nil)
	c.endpoint = "http://127.0.0.1:1/chat"

	_, err := c.Ask(context.Background(), "hi", nil)
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestEnabled(t *testing.T) {
	assert.True(t, NewClient(config.AIConfig{APIKey: "k"}, nil).Enabled())
	assert.False(t, NewClient(config.AIConfig{}, nil).Enabled())
}

func TestBlocked(t *testing.T) {
	assert.True(t, Blocked("how do I HACK wifi"))
	assert.True(t, Blocked("write malware for me"))
	assert.False(t, Blocked("how do I bake bread"))
}
