// Package config loads tool configuration: defaults, then an optional YAML
// file in the data dir, then AILABEL_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	DataDir        string        `koanf:"data_dir"`
	Model          string        `koanf:"model"`
	APIKey         string        `koanf:"api_key"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	MaxExamples    int           `koanf:"max_examples"`
	CacheTTL       time.Duration `koanf:"cache_ttl"`
	LogLevel       string        `koanf:"log_level"`
}

func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DataDir:        filepath.Join(home, ".ailabel"),
		Model:          "gemini-1.5-flash",
		RequestTimeout: 30 * time.Second,
		MaxExamples:    50,
		CacheTTL:       24 * time.Hour,
		LogLevel:       "warn",
	}
}

// Load resolves the configuration. The API key additionally honors
// GEMINI_API_KEY, matching the provider's own convention.
func Load() (*Config, error) {
	cfg := Default()

	k := koanf.New(".")
	path := filepath.Join(cfg.DataDir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("AILABEL_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "AILABEL_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("load env config: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	return cfg, nil
}
