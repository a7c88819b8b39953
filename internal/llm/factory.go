package llm

import (
	"time"

	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/config"
)

// NewLocalFromConfig builds the on-device provider from app configuration.
func NewLocalFromConfig(cfg config.ProviderConfig) *LocalProvider {
	return NewLocalProvider(&ProviderConfig{
		Endpoint: cfg.Endpoint,
		Model:    cfg.Model,
		Timeout:  time.Duration(cfg.TimeoutSec) * time.Second,
	})
}

// NewCloudFromConfig builds the Gemini provider from app configuration.
func NewCloudFromConfig(cfg config.ProviderConfig) *GeminiProvider {
	return NewGeminiProvider(&ProviderConfig{
		Endpoint: cfg.Endpoint,
		APIKey:   cfg.APIKey,
		Model:    cfg.Model,
		Timeout:  time.Duration(cfg.TimeoutSec) * time.Second,
	})
}
