package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/skriv/kontrakt/internal/config"
	"github.com/skriv/kontrakt/internal/section"
)

func TestLoadConfig_explicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9100
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, resolved, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if resolved != path {
		t.Errorf("resolved = %s, want %s", resolved, path)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want 9100", cfg.Server.Port)
	}
}

func TestLoadConfig_missingFile(t *testing.T) {
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config")
	}
}

func TestSectionTablesFromConfig(t *testing.T) {
	cfg := &config.Config{
		Parse: config.ParseConfig{
			SectionKeywords: map[string][]string{
				"payments": {"аванс", "предоплата"},
			},
		},
	}
	tables := sectionTablesFromConfig(cfg)

	if got := tables[section.FacetPayments]; len(got) != 2 || got[0] != "аванс" {
		t.Errorf("payments keywords = %v", got)
	}
	if len(tables[section.FacetMetadata]) == 0 {
		t.Error("non-overridden facets should keep defaults")
	}
}

func TestSectionTablesFromConfig_noOverrides(t *testing.T) {
	cfg := &config.Config{}
	tables := sectionTablesFromConfig(cfg)
	defaults := section.DefaultTables()
	for _, facet := range section.Facets {
		if len(tables[facet]) != len(defaults[facet]) {
			t.Errorf("facet %s: got %d keywords, want %d", facet, len(tables[facet]), len(defaults[facet]))
		}
	}
}
