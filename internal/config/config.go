// Package config provides configuration loading and structs for the Kontrakt server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Oracle  OracleConfig  `yaml:"oracle"`
	Parse   ParseConfig   `yaml:"parse"`
	Risk    RiskConfig    `yaml:"risk"`
	Batch   BatchConfig   `yaml:"batch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the storage backend choice and paths.
// Backend is "sqlite" or "file".
type StorageConfig struct {
	Backend        string `yaml:"backend"`
	DatabasePath   string `yaml:"database_path"`
	ContractsDir   string `yaml:"contracts_dir"`
	BleveIndexPath string `yaml:"bleve_index_path"`
}

// OracleConfig holds settings for the extraction model endpoint.
type OracleConfig struct {
	APIKey         string  `yaml:"api_key"`
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (o *OracleConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// ParseConfig holds parsing limits and section keyword overrides.
// SectionKeywords maps a facet name (metadata, payments, obligations, states)
// to the keywords used for paragraph selection.
type ParseConfig struct {
	MaxTextBytes    int                 `yaml:"max_text_bytes"`
	SectionKeywords map[string][]string `yaml:"section_keywords"`
}

// RiskConfig holds risk analysis cache settings.
type RiskConfig struct {
	CacheTTLMinutes int `yaml:"cache_ttl_minutes"`
}

// TTL returns the cache TTL as a duration.
func (r *RiskConfig) TTL() time.Duration {
	return time.Duration(r.CacheTTLMinutes) * time.Minute
}

// BatchConfig holds batch processing settings.
type BatchConfig struct {
	InputDir     string   `yaml:"input_dir"`
	OutputDir    string   `yaml:"output_dir"`
	DelaySeconds int      `yaml:"delay_seconds"`
	Extensions   []string `yaml:"extensions"`
	Watch        bool     `yaml:"watch"`
}

// Delay returns the pause between processed files as a duration.
func (b *BatchConfig) Delay() time.Duration {
	return time.Duration(b.DelaySeconds) * time.Second
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.ContractsDir = expandPath(cfg.Storage.ContractsDir, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	if cfg.Batch.InputDir != "" {
		cfg.Batch.InputDir = expandPath(cfg.Batch.InputDir, configDir)
	}
	if cfg.Batch.OutputDir != "" {
		cfg.Batch.OutputDir = expandPath(cfg.Batch.OutputDir, configDir)
	}

	if cfg.Oracle.APIKey == "" {
		cfg.Oracle.APIKey = os.Getenv("KONTRAKT_API_KEY")
	}

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
