package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if cfg.Source.Selector != "p.aqi-value__value" {
		t.Errorf("expected default selector, got %q", cfg.Source.Selector)
	}
	if cfg.Source.Marker != "US AQI" {
		t.Errorf("expected marker 'US AQI', got %q", cfg.Source.Marker)
	}
	if cfg.Source.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.Source.Timeout)
	}
	if cfg.Publish.Delay != 3*time.Second {
		t.Errorf("expected 3s delay, got %v", cfg.Publish.Delay)
	}
	if cfg.Render.Layout.Top != 200 || cfg.Render.Layout.LineGap != 80 || cfg.Render.Layout.LabelGap != 120 {
		t.Errorf("unexpected layout defaults: %+v", cfg.Render.Layout)
	}
	if cfg.Hosting.Provider != "github" {
		t.Errorf("expected provider 'github', got %q", cfg.Hosting.Provider)
	}
	if cfg.Hosting.GitHub.Repository != "" {
		t.Errorf("expected no default repository, got %q", cfg.Hosting.GitHub.Repository)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
render:
  title: Sarajevo
hosting:
  github:
    repository: someone/smog
server:
  port: 9000
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Render.Title != "Sarajevo" {
		t.Errorf("expected title 'Sarajevo', got %q", cfg.Render.Title)
	}
	if cfg.Hosting.GitHub.Repository != "someone/smog" {
		t.Errorf("expected repository 'someone/smog', got %q", cfg.Hosting.GitHub.Repository)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	// Defaults should still be set for unspecified fields
	if cfg.Hosting.GitHub.Branch != "main" {
		t.Errorf("expected default branch 'main', got %q", cfg.Hosting.GitHub.Branch)
	}
	if cfg.Render.OutputDir != "stories" {
		t.Errorf("expected default output dir, got %q", cfg.Render.OutputDir)
	}
}

func TestParseInvalidConfig(t *testing.T) {
	tests := map[string]string{
		"bad provider":   "hosting:\n  provider: ftp\n",
		"bad url":        "source:\n  url: not a url\n",
		"zero font size": "render:\n  fonts:\n    large_size: 0\n",
		"s3 no bucket":   "hosting:\n  provider: s3\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := parse([]byte(data)); err == nil {
				t.Error("expected validation error")
			} else if !strings.Contains(err.Error(), "invalid config") {
				t.Errorf("expected 'invalid config' in error, got %v", err)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("source:\n  city: Tuzla\n"), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Source.City != "Tuzla" {
		t.Errorf("expected city 'Tuzla', got %q", cfg.Source.City)
	}
}

func TestLoadEmbeddedDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("failed to load defaults: %v", err)
	}
	if cfg.Source.City != "Sarajevo" {
		t.Errorf("expected city 'Sarajevo', got %q", cfg.Source.City)
	}
}

func TestResolveConfigPathMissingExplicit(t *testing.T) {
	if _, err := ResolveConfigPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	defaultDir := cfg.GetDataDir()
	if defaultDir == "" {
		t.Error("expected non-empty default data dir")
	}

	cfg.Output.DataDir = "/custom/path"
	if cfg.GetDataDir() != "/custom/path" {
		t.Errorf("expected '/custom/path', got %q", cfg.GetDataDir())
	}
}
