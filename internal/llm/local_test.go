package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProviderComplete(t *testing.T) {
	var captured localChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(localChatResponse{
			Model:   captured.Model,
			Message: localMessage{Role: "assistant", Content: `{"severity": "green"}`},
			Done:    true,
		})
	}))
	defer server.Close()

	provider := NewLocalProvider(&ProviderConfig{Endpoint: server.URL, Model: "test-model"})

	resp, err := provider.Complete(context.Background(), &CompletionRequest{
		SystemPrompt: "You are a wellness assistant.",
		Messages: []Message{
			{Role: "user", Content: "How am I doing?", Images: []string{"aGVsbG8="}},
		},
		Temperature: 0.3,
		MaxTokens:   128,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"severity": "green"}`, resp.Content)
	assert.Equal(t, "test-model", resp.Model)

	// System prompt becomes the leading message; images ride along.
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "You are a wellness assistant.", captured.Messages[0].Content)
	assert.Equal(t, []string{"aGVsbG8="}, captured.Messages[1].Images)
	assert.False(t, captured.Stream)
	assert.Equal(t, 0.3, captured.Options.Temperature)
	assert.Equal(t, 128, captured.Options.NumPredict)
}

func TestLocalProviderCompleteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewLocalProvider(&ProviderConfig{Endpoint: server.URL})

	_, err := provider.Complete(context.Background(), &CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestLocalProviderAvailable(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
		want bool
	}{
		{"has models", `{"models": [{"name": "qwen2.5:1.5b"}]}`, http.StatusOK, true},
		{"no models pulled", `{"models": []}`, http.StatusOK, false},
		{"server error", `oops`, http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/api/tags", r.URL.Path)
				w.WriteHeader(tt.code)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			provider := NewLocalProvider(&ProviderConfig{Endpoint: server.URL})
			assert.Equal(t, tt.want, provider.Available())
		})
	}
}

func TestLocalProviderAvailableUnreachable(t *testing.T) {
	provider := NewLocalProvider(&ProviderConfig{Endpoint: "http://127.0.0.1:1"})
	assert.False(t, provider.Available())
}

func TestLocalProviderDefaults(t *testing.T) {
	provider := NewLocalProvider(nil)

	assert.Equal(t, "local", provider.Name())
	assert.Equal(t, "http://127.0.0.1:11434", provider.config.Endpoint)
	assert.Equal(t, "qwen2.5:1.5b", provider.config.Model)
}
