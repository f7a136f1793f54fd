package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "test.db"
oracle:
  api_key: "sk-test"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Storage.DatabasePath == "" {
		t.Error("database_path should be set")
	}
	if cfg.Oracle.APIKey != "sk-test" {
		t.Errorf("api_key = %q", cfg.Oracle.APIKey)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_apiKeyFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "localhost"
  port: 8080
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("KONTRAKT_API_KEY", "sk-from-env")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Oracle.APIKey != "sk-from-env" {
		t.Errorf("api_key = %q, want sk-from-env", cfg.Oracle.APIKey)
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "localhost"
  port: 8080
storage:
  database_path: "./data/db/contracts.db"
batch:
  input_dir: "./incoming"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantDB := filepath.Join(dir, "data", "db", "contracts.db")
	if cfg.Storage.DatabasePath != wantDB {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, wantDB)
	}
	wantIn := filepath.Join(dir, "incoming")
	if cfg.Batch.InputDir != wantIn {
		t.Errorf("input_dir = %s, want %s", cfg.Batch.InputDir, wantIn)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("default backend: got %s", cfg.Storage.Backend)
	}
	if cfg.Oracle.Model == "" {
		t.Error("oracle model should have a default")
	}
	if cfg.Oracle.Timeout() != 120*time.Second {
		t.Errorf("default oracle timeout: got %v", cfg.Oracle.Timeout())
	}
	if cfg.Parse.MaxTextBytes != 512*1024 {
		t.Errorf("default max_text_bytes: got %d", cfg.Parse.MaxTextBytes)
	}
	if cfg.Risk.TTL() != 30*time.Minute {
		t.Errorf("default risk TTL: got %v", cfg.Risk.TTL())
	}
	if cfg.Batch.Extensions == nil {
		t.Error("batch extensions should be set by default")
	}
	if len(cfg.Batch.Extensions) != 5 || cfg.Batch.Extensions[0] != ".txt" {
		t.Errorf("batch extensions: got %v", cfg.Batch.Extensions)
	}
	if cfg.Batch.Delay() != 2*time.Second {
		t.Errorf("default batch delay: got %v", cfg.Batch.Delay())
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{
		Server:  ServerConfig{Host: "localhost", Port: 9090},
		Storage: StorageConfig{DatabasePath: "/tmp/db"},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
}
