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

func geminiReply(texts ...string) string {
	parts := make([]geminiPart, 0, len(texts))
	for _, text := range texts {
		parts = append(parts, geminiPart{Text: text})
	}
	partsJSON, _ := json.Marshal(parts)
	return `{"candidates": [{"content": {"role": "model", "parts": ` + string(partsJSON) + `}, "finishReason": "STOP"}]}`
}

func TestGeminiProviderComplete(t *testing.T) {
	var captured geminiGenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Write([]byte(geminiReply(`{"tremorIndex"`, `: 1.2}`)))
	}))
	defer server.Close()

	provider := NewGeminiProvider(&ProviderConfig{
		Endpoint: server.URL,
		APIKey:   "test-key",
		Model:    "gemini-1.5-flash",
	})

	resp, err := provider.Complete(context.Background(), &CompletionRequest{
		SystemPrompt: "Assess tremor.",
		Messages: []Message{
			{Role: "user", Content: "data"},
			{Role: "assistant", Content: "ack"},
		},
	})
	require.NoError(t, err)

	// Candidate parts are concatenated.
	assert.Equal(t, `{"tremorIndex": 1.2}`, resp.Content)

	require.NotNil(t, captured.SystemInstruction)
	assert.Equal(t, "Assess tremor.", captured.SystemInstruction.Parts[0].Text)

	// Gemini's role vocabulary: assistant maps to model.
	require.Len(t, captured.Contents, 2)
	assert.Equal(t, "user", captured.Contents[0].Role)
	assert.Equal(t, "model", captured.Contents[1].Role)
}

func TestGeminiProviderCompleteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := NewGeminiProvider(&ProviderConfig{Endpoint: server.URL, APIKey: "k"})

	_, err := provider.Complete(context.Background(), &CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGeminiProviderCompleteNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	provider := NewGeminiProvider(&ProviderConfig{Endpoint: server.URL, APIKey: "k"})

	_, err := provider.Complete(context.Background(), &CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestGeminiProviderRequiresAPIKey(t *testing.T) {
	provider := NewGeminiProvider(&ProviderConfig{})
	assert.False(t, provider.Available())

	_, err := provider.Complete(context.Background(), &CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	assert.Error(t, err)

	provider = NewGeminiProvider(&ProviderConfig{APIKey: "k"})
	assert.True(t, provider.Available())
}
