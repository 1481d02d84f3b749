package config

import (
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "Defaults",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "Empty URL",
			mutate:  func(c *Config) { c.OllamaURL = "" },
			wantErr: true,
		},
		{
			name:    "Empty embed model",
			mutate:  func(c *Config) { c.EmbedModel = "" },
			wantErr: true,
		},
		{
			name:    "Temperature too high",
			mutate:  func(c *Config) { c.Chain.Temperature = 2.5 },
			wantErr: true,
		},
		{
			name:    "Negative temperature",
			mutate:  func(c *Config) { c.Chain.Temperature = -0.1 },
			wantErr: true,
		},
		{
			name:    "Zero top K",
			mutate:  func(c *Config) { c.Chain.TopK = 0 },
			wantErr: true,
		},
		{
			name:    "Zero context window",
			mutate:  func(c *Config) { c.Chain.ContextWindow = 0 },
			wantErr: true,
		},
		{
			name:    "Negative max tokens",
			mutate:  func(c *Config) { c.Chain.MaxTokens = -1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected valid config, got %v", err)
			}
		})
	}
}

func TestApplyDefaultsFillsGaps(t *testing.T) {
	// A partial config file only sets what the user cared about
	partial := []byte("ollama_url: http://remote:11434\n")

	var cfg Config
	if err := yaml.Unmarshal(partial, &cfg); err != nil {
		t.Fatal(err)
	}
	applyDefaults(&cfg)

	if cfg.OllamaURL != "http://remote:11434" {
		t.Errorf("Expected user value kept, got %q", cfg.OllamaURL)
	}
	if cfg.EmbedModel != "nomic-embed-text" {
		t.Errorf("Expected default embed model, got %q", cfg.EmbedModel)
	}
	if cfg.Chain.Model != "qwen3:4b" {
		t.Errorf("Expected default chain model, got %q", cfg.Chain.Model)
	}
	if cfg.Chain.ContextWindow != 8192 {
		t.Errorf("Expected default context window, got %d", cfg.Chain.ContextWindow)
	}
	if cfg.Chain.TopK != 3 {
		t.Errorf("Expected default top K, got %d", cfg.Chain.TopK)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected filled config to validate, got %v", err)
	}
}

func TestResolveDataDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/var/lib/docuchat"

	dir, err := cfg.ResolveDataDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/var/lib/docuchat" {
		t.Errorf("Expected configured data dir, got %q", dir)
	}

	kbRoot, err := cfg.KBRoot()
	if err != nil {
		t.Fatal(err)
	}
	if kbRoot != filepath.Join("/var/lib/docuchat", DefaultKBDirName) {
		t.Errorf("Expected knowledge base root under data dir, got %q", kbRoot)
	}
}
