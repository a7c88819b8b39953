// Package config holds application configuration for the wellness check-in
// companion. It is loaded from ~/.wellness/config.yaml and can be overridden
// by WELLNESS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	LLM     LLMConfig     `mapstructure:"llm" yaml:"llm"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Sensor  SensorConfig  `mapstructure:"sensor" yaml:"sensor"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// LLMConfig configures the two inference tiers.
type LLMConfig struct {
	// Local is the on-device Ollama-compatible runtime.
	Local ProviderConfig `mapstructure:"local" yaml:"local"`
	// Cloud is the Gemini endpoint used by tasks whose policy allows egress.
	Cloud ProviderConfig `mapstructure:"cloud" yaml:"cloud"`
}

// ProviderConfig configures one inference endpoint.
type ProviderConfig struct {
	// Endpoint is the API base URL.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	// APIKey authenticates cloud requests. Usually set via GEMINI_API_KEY.
	APIKey string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	// Model is the model identifier to request.
	Model string `mapstructure:"model" yaml:"model,omitempty"`
	// TimeoutSec bounds each API call.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec,omitempty"`
}

// StorageConfig configures session persistence.
type StorageConfig struct {
	// DBPath is the SQLite database file for session history.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
	// MaxSessions caps stored history; oldest sessions are evicted first.
	MaxSessions int `mapstructure:"max_sessions" yaml:"max_sessions"`
}

// SensorConfig configures accelerometer capture.
type SensorConfig struct {
	// SampleIntervalMs is the requested interval between samples.
	SampleIntervalMs int `mapstructure:"sample_interval_ms" yaml:"sample_interval_ms"`
	// CaptureSeconds is the length of one capture window.
	CaptureSeconds int `mapstructure:"capture_seconds" yaml:"capture_seconds"`
	// WebsocketURL, when set, streams samples from a companion device
	// instead of the synthetic source.
	WebsocketURL string `mapstructure:"websocket_url" yaml:"websocket_url,omitempty"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level"`
	// File, when set, mirrors logs to a file in addition to stderr.
	File string `mapstructure:"file" yaml:"file,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".wellness")

	return &Config{
		LLM: LLMConfig{
			Local: ProviderConfig{
				Endpoint:   "http://127.0.0.1:11434",
				Model:      "qwen2.5:1.5b",
				TimeoutSec: 45,
			},
			Cloud: ProviderConfig{
				Endpoint:   "https://generativelanguage.googleapis.com/v1beta",
				Model:      "gemini-1.5-flash",
				TimeoutSec: 20,
			},
		},
		Storage: StorageConfig{
			DBPath:      filepath.Join(base, "sessions.db"),
			MaxSessions: 50,
		},
		Sensor: SensorConfig{
			SampleIntervalMs: 40, // 25 Hz
			CaptureSeconds:   8,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from path (or the default location when path is
// empty), applying defaults and WELLNESS_* environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".wellness"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("WELLNESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Missing config file is fine; defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// The cloud key normally arrives via environment, not the config file.
	if cfg.LLM.Cloud.APIKey == "" {
		cfg.LLM.Cloud.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("llm.local.endpoint", def.LLM.Local.Endpoint)
	v.SetDefault("llm.local.model", def.LLM.Local.Model)
	v.SetDefault("llm.local.timeout_sec", def.LLM.Local.TimeoutSec)
	v.SetDefault("llm.cloud.endpoint", def.LLM.Cloud.Endpoint)
	v.SetDefault("llm.cloud.model", def.LLM.Cloud.Model)
	v.SetDefault("llm.cloud.timeout_sec", def.LLM.Cloud.TimeoutSec)
	v.SetDefault("storage.db_path", def.Storage.DBPath)
	v.SetDefault("storage.max_sessions", def.Storage.MaxSessions)
	v.SetDefault("sensor.sample_interval_ms", def.Sensor.SampleIntervalMs)
	v.SetDefault("sensor.capture_seconds", def.Sensor.CaptureSeconds)
	v.SetDefault("logging.level", def.Logging.Level)
}

// WriteDefault writes a starter config file to path, creating parent
// directories as needed. It refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
