package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:11434", cfg.LLM.Local.Endpoint)
	assert.Equal(t, "qwen2.5:1.5b", cfg.LLM.Local.Model)
	assert.Equal(t, "gemini-1.5-flash", cfg.LLM.Cloud.Model)
	assert.Equal(t, 50, cfg.Storage.MaxSessions)
	assert.Equal(t, 40, cfg.Sensor.SampleIntervalMs)
	assert.Equal(t, 8, cfg.Sensor.CaptureSeconds)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  local:
    model: llama3.2:1b
storage:
  max_sessions: 10
logging:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "llama3.2:1b", cfg.LLM.Local.Model)
	assert.Equal(t, 10, cfg.Storage.MaxSessions)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Unset keys keep their defaults.
	assert.Equal(t, "http://127.0.0.1:11434", cfg.LLM.Local.Endpoint)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("WELLNESS_LOGGING_LEVEL", "warn")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadGeminiKeyFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.LLM.Cloud.APIKey)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().LLM.Local.Model, cfg.LLM.Local.Model)

	// Never clobbers an existing file.
	assert.Error(t, WriteDefault(path))
}
