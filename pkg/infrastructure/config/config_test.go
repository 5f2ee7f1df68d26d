package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bomcost.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "console" {
		t.Errorf("Expected info/console, got %s/%s", cfg.Log.Level, cfg.Log.Format)
	}
	if cfg.Database.Path != "bomcost.db" {
		t.Errorf("Expected bomcost.db, got %s", cfg.Database.Path)
	}
	if cfg.Costing.RecalcConcurrency != 4 {
		t.Errorf("Expected concurrency 4, got %d", cfg.Costing.RecalcConcurrency)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
database:
  path: /var/lib/bomcost/quotes.db
costing:
  recalc_concurrency: 2
`)
	t.Setenv("BOMCOST_DATABASE_PATH", "/tmp/override.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Expected debug/json, got %s/%s", cfg.Log.Level, cfg.Log.Format)
	}
	if cfg.Database.Path != "/tmp/override.db" {
		t.Errorf("Expected env override, got %s", cfg.Database.Path)
	}
	if cfg.Costing.RecalcConcurrency != 2 {
		t.Errorf("Expected concurrency 2, got %d", cfg.Costing.RecalcConcurrency)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad level", "log:\n  level: chatty\n"},
		{"bad format", "log:\n  format: xml\n"},
		{"negative concurrency", "costing:\n  recalc_concurrency: -1\n"},
		{"malformed yaml", "log: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for an explicit missing file")
	}
}
