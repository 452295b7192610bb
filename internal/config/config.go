// Package config loads tagloom configuration from YAML with environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all tagloom configuration.
type Config struct {
	// Provider configuration
	Provider ProviderConfig `yaml:"provider"`

	// Engine configuration
	Engine EngineConfig `yaml:"engine"`

	// Storage configuration
	Storage StorageConfig `yaml:"storage"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ProviderConfig configures the completion backend.
type ProviderConfig struct {
	Backend        string  `yaml:"backend"` // openai, gemini
	APIKey         string  `yaml:"api_key"`
	Model          string  `yaml:"model"`
	BaseURL        string  `yaml:"base_url"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	MaxRetries     int     `yaml:"max_retries"`
}

// EngineConfig configures the conversation engine.
type EngineConfig struct {
	SystemPromptFile string `yaml:"system_prompt_file"`
	MaxIterations    int    `yaml:"max_iterations"`
	OnExhausted      string `yaml:"on_exhausted"`   // silent, error
	OnUnknownTag     string `yaml:"on_unknown_tag"` // continue, fail
	MaxParallel      int    `yaml:"max_parallel"`
}

// StorageConfig configures conversation persistence.
type StorageConfig struct {
	Driver       string `yaml:"driver"` // sqlite, memory
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
	File   string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Backend:        "openai",
			Model:          "gpt-4o",
			BaseURL:        "https://api.openai.com/v1",
			MaxTokens:      4096,
			Temperature:    0.1,
			TimeoutSeconds: 120,
			MaxRetries:     3,
		},
		Engine: EngineConfig{
			MaxIterations: 25,
			OnExhausted:   "silent",
			OnUnknownTag:  "continue",
			MaxParallel:   4,
		},
		Storage: StorageConfig{
			Driver:       "sqlite",
			DatabasePath: "data/tagloom.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment variables override in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, cfg.Validate()
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	switch c.Provider.Backend {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unknown provider backend %q", c.Provider.Backend)
	}
	switch c.Engine.OnExhausted {
	case "silent", "error":
	default:
		return fmt.Errorf("unknown exhaustion policy %q", c.Engine.OnExhausted)
	}
	switch c.Engine.OnUnknownTag {
	case "continue", "fail":
	default:
		return fmt.Errorf("unknown unknown-tag policy %q", c.Engine.OnUnknownTag)
	}
	switch c.Storage.Driver {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Engine.MaxIterations <= 0 {
		return fmt.Errorf("max_iterations must be positive, got %d", c.Engine.MaxIterations)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("TAGLOOM_BACKEND"); v != "" {
		c.Provider.Backend = v
	}
	if v := os.Getenv("TAGLOOM_API_KEY"); v != "" {
		c.Provider.APIKey = v
	}
	if c.Provider.APIKey == "" {
		switch c.Provider.Backend {
		case "openai":
			c.Provider.APIKey = os.Getenv("OPENAI_API_KEY")
		case "gemini":
			c.Provider.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
	if v := os.Getenv("TAGLOOM_MODEL"); v != "" {
		c.Provider.Model = v
	}
	if v := os.Getenv("TAGLOOM_BASE_URL"); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv("TAGLOOM_MAX_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Engine.MaxIterations = n
		}
	}
	if v := os.Getenv("TAGLOOM_DB"); v != "" {
		c.Storage.DatabasePath = v
	}
	if v := os.Getenv("TAGLOOM_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}
