// Package llm provides the inference capability boundary for the wellness
// agents: an on-device Ollama-compatible runtime for local inference and
// Google Gemini for the cloud tier. Providers are opaque to callers: given
// messages they return text or fail. Tier selection lives in the fallback
// runner.
package llm

import (
	"context"
	"io"
	"net/http"
	"time"
)

// MaxErrorBodySize limits how much of an error response body is read, so a
// malformed endpoint cannot exhaust memory through an error path.
const MaxErrorBodySize = 1 * 1024 * 1024

func readLimitedBody(r io.Reader, maxBytes int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, maxBytes))
}

// Provider is an opaque text-generating capability.
type Provider interface {
	// Complete sends the request and returns the model's text response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider identifier.
	Name() string

	// Available reports whether the provider is configured and reachable.
	Available() bool
}

// CompletionRequest is a provider-agnostic text completion request.
type CompletionRequest struct {
	// Model overrides the provider's configured default.
	Model string `json:"model,omitempty"`

	// SystemPrompt sets task framing for the model.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// Messages in the conversation, oldest first.
	Messages []Message `json:"messages"`

	// MaxTokens bounds response length.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0-1.0).
	Temperature float64 `json:"temperature,omitempty"`
}

// Message is one conversation turn. Images are base64-encoded frames for
// multimodal local models; cloud providers in this app never receive images.
type Message struct {
	Role    string   `json:"role"` // "user", "assistant", "system"
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

// Transcriber is the opaque speech-to-text capability. It is optional: a
// device without an audio model simply has no local tier for audio tasks.
type Transcriber interface {
	// Transcribe converts the audio file to text or fails.
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// CompletionResponse carries the model's text output.
type CompletionResponse struct {
	Content  string        `json:"content"`
	Model    string        `json:"model"`
	Duration time.Duration `json:"duration"`
}

// ProviderConfig configures a single provider instance.
type ProviderConfig struct {
	// Name identifies the provider ("local" or "gemini").
	Name string

	// Endpoint is the API base URL.
	Endpoint string

	// APIKey authenticates cloud providers.
	APIKey string

	// Model is the default model.
	Model string

	// MaxTokens default for responses.
	MaxTokens int

	// Temperature default.
	Temperature float64

	// Timeout bounds each API call.
	Timeout time.Duration
}

// DefaultConfig returns defaults for a provider by name.
func DefaultConfig(name string) *ProviderConfig {
	switch name {
	case "local":
		return &ProviderConfig{
			Name:        "local",
			Endpoint:    "http://127.0.0.1:11434",
			Model:       "qwen2.5:1.5b",
			MaxTokens:   512,
			Temperature: 0.2,
			Timeout:     45 * time.Second,
		}
	case "gemini":
		return &ProviderConfig{
			Name:        "gemini",
			Endpoint:    "https://generativelanguage.googleapis.com/v1beta",
			Model:       "gemini-1.5-flash",
			MaxTokens:   512,
			Temperature: 0.2,
			Timeout:     20 * time.Second,
		}
	default:
		return &ProviderConfig{
			Name:        name,
			MaxTokens:   512,
			Temperature: 0.2,
			Timeout:     30 * time.Second,
		}
	}
}

// baseProvider holds the HTTP plumbing shared by providers.
type baseProvider struct {
	config *ProviderConfig
	client *http.Client
}

func newBaseProvider(cfg *ProviderConfig, providerName string) baseProvider {
	if cfg == nil {
		cfg = DefaultConfig(providerName)
	}

	defaults := DefaultConfig(providerName)
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaults.Endpoint
	}
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaults.MaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}
	cfg.Name = providerName

	return baseProvider{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name returns the provider identifier.
func (b *baseProvider) Name() string {
	return b.config.Name
}
