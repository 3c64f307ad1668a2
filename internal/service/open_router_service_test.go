package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fadilmartias/persona-match/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenRouter(t *testing.T, handler http.HandlerFunc) *OpenRouterService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenRouterService(&config.OpenRouterConfig{APIKey: "key", BaseURL: srv.URL + "/", Model: "test-model"})
}

func TestOpenRouterComplete(t *testing.T) {
	var payload map[string]any
	svc := newOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		fmt.Fprint(w, `{"choices": [{"message": {"content": "{\"ok\": true}"}}]}`)
	})

	out, err := svc.Complete(context.Background(), "sys", "user", CompletionOptions{Temperature: 0.5, MaxTokens: 100})
	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, out)
	assert.Equal(t, "test-model", payload["model"])
	assert.EqualValues(t, 100, payload["max_tokens"])
	assert.InDelta(t, 0.5, payload["temperature"], 1e-6)
	assert.Len(t, payload["messages"], 2)
}

func TestOpenRouterErrors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		svc := newOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		})
		_, err := svc.Complete(context.Background(), "sys", "user", CompletionOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 429")
	})

	t.Run("empty choices", func(t *testing.T) {
		svc := newOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"choices": []}`)
		})
		_, err := svc.Complete(context.Background(), "sys", "user", CompletionOptions{})
		assert.EqualError(t, err, "no response from LLM")
	})

	t.Run("empty prompt", func(t *testing.T) {
		svc := newOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no request expected")
		})
		_, err := svc.Complete(context.Background(), "sys", "  ", CompletionOptions{})
		assert.Error(t, err)
	})
}
