package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// LocalProvider talks to an Ollama-compatible runtime on the device. It is
// the on-device tier: no payload ever leaves the host. Requests are
// non-streaming; a wellness prompt produces a short JSON verdict, so the
// simple request/response shape is enough.
type LocalProvider struct {
	baseProvider
}

// NewLocalProvider creates a provider for the local model runtime.
func NewLocalProvider(cfg *ProviderConfig) *LocalProvider {
	return &LocalProvider{
		baseProvider: newBaseProvider(cfg, "local"),
	}
}

// Available reports whether the runtime is up and has at least one model
// pulled. A runtime with zero models cannot serve any task.
func (p *LocalProvider) Available() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.Endpoint+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false
	}
	return len(result.Models) > 0
}

// Complete sends a chat request to the local runtime.
func (p *LocalProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	model := req.Model
	if model == "" {
		model = p.config.Model
	}

	chatReq := localChatRequest{
		Model:  model,
		Stream: false,
	}
	chatReq.Options.Temperature = req.Temperature
	if chatReq.Options.Temperature == 0 {
		chatReq.Options.Temperature = p.config.Temperature
	}
	chatReq.Options.NumPredict = req.MaxTokens
	if chatReq.Options.NumPredict == 0 {
		chatReq.Options.NumPredict = p.config.MaxTokens
	}

	if req.SystemPrompt != "" {
		chatReq.Messages = append(chatReq.Messages, localMessage{
			Role:    "system",
			Content: req.SystemPrompt,
		})
	}
	for _, msg := range req.Messages {
		chatReq.Messages = append(chatReq.Messages, localMessage{
			Role:    msg.Role,
			Content: msg.Content,
			Images:  msg.Images,
		})
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.Endpoint+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := readLimitedBody(resp.Body, MaxErrorBodySize)
		return nil, fmt.Errorf("local runtime error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var chatResp localChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &CompletionResponse{
		Content:  chatResp.Message.Content,
		Model:    chatResp.Model,
		Duration: time.Since(start),
	}, nil
}

// Ollama-compatible API types.
type localChatRequest struct {
	Model    string         `json:"model"`
	Messages []localMessage `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  struct {
		Temperature float64 `json:"temperature,omitempty"`
		NumPredict  int     `json:"num_predict,omitempty"`
	} `json:"options,omitempty"`
}

type localMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type localChatResponse struct {
	Model   string       `json:"model"`
	Message localMessage `json:"message"`
	Done    bool         `json:"done"`
}
