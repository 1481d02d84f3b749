package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigDir  = ".docuchat"
	DefaultConfigFile = "config.yaml"

	// DefaultKBDirName is the directory under the data dir that holds one
	// subdirectory per knowledge base.
	DefaultKBDirName = "knowledgebases"
)

// Config represents the application configuration
type Config struct {
	// OllamaURL is the base URL of the local Ollama server.
	OllamaURL string `yaml:"ollama_url"`

	// EmbedModel is the embedding model used both at index and query time.
	EmbedModel string `yaml:"embed_model"`

	// DataDir holds knowledge bases and logs. Empty means ~/.docuchat.
	DataDir string `yaml:"data_dir"`

	// Chain holds default generation parameters for newly compiled chains.
	Chain ChainDefaults `yaml:"chain"`
}

// ChainDefaults are the generation-side defaults applied when no override
// has been given.
type ChainDefaults struct {
	Model         string  `yaml:"model"`
	Temperature   float64 `yaml:"temperature"`
	ContextWindow int     `yaml:"context_window"`
	TopK          int     `yaml:"top_k"`
	MaxTokens     int     `yaml:"max_tokens"` // 0 means no cap
}

func DefaultConfig() *Config {
	return &Config{
		OllamaURL:  "http://localhost:11434",
		EmbedModel: "nomic-embed-text",
		Chain: ChainDefaults{
			Model:         "qwen3:4b",
			Temperature:   0.0,
			ContextWindow: 8192,
			TopK:          3,
			MaxTokens:     0,
		},
	}
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, DefaultConfigDir, DefaultConfigFile), nil
}

// ResolveDataDir returns the configured data directory, falling back to
// ~/.docuchat when unset.
func (c *Config) ResolveDataDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, DefaultConfigDir), nil
}

// KBRoot returns the directory that contains one subdirectory per
// knowledge base.
func (c *Config) KBRoot() (string, error) {
	dataDir, err := c.ResolveDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, DefaultKBDirName), nil
}

// Load loads the configuration from file, creating the default if absent
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		// Best effort: the app still works if the config cannot be written.
		_ = Save(cfg)
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Save saves the configuration to file
func Save(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("cannot save invalid config: %w", err)
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyDefaults fills zero-valued fields with the documented defaults so a
// partially written config file still yields a usable configuration.
func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.OllamaURL == "" {
		cfg.OllamaURL = def.OllamaURL
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = def.EmbedModel
	}
	if cfg.Chain.Model == "" {
		cfg.Chain.Model = def.Chain.Model
	}
	if cfg.Chain.ContextWindow == 0 {
		cfg.Chain.ContextWindow = def.Chain.ContextWindow
	}
	if cfg.Chain.TopK == 0 {
		cfg.Chain.TopK = def.Chain.TopK
	}
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.OllamaURL == "" {
		return fmt.Errorf("ollama_url must not be empty")
	}
	if c.EmbedModel == "" {
		return fmt.Errorf("embed_model must not be empty")
	}
	if c.Chain.Temperature < 0 || c.Chain.Temperature > 2 {
		return fmt.Errorf("chain.temperature must be between 0.0 and 2.0, got %f", c.Chain.Temperature)
	}
	if c.Chain.TopK < 1 {
		return fmt.Errorf("chain.top_k must be at least 1, got %d", c.Chain.TopK)
	}
	if c.Chain.ContextWindow < 1 {
		return fmt.Errorf("chain.context_window must be positive, got %d", c.Chain.ContextWindow)
	}
	if c.Chain.MaxTokens < 0 {
		return fmt.Errorf("chain.max_tokens must not be negative, got %d", c.Chain.MaxTokens)
	}
	return nil
}
