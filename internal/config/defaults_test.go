package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFile(t *testing.T) {
	content := `
available_languages = ["en", "zh"]

[defaults]
language = "zh"
name = "Mia"
wrong_flash_ms = 500
`
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Defaults.Language != "zh" {
		t.Errorf("Language = %q, want zh", cfg.Defaults.Language)
	}
	if cfg.Defaults.Name != "Mia" {
		t.Errorf("Name = %q, want Mia", cfg.Defaults.Name)
	}
	if cfg.Defaults.WrongFlashMs != 500 {
		t.Errorf("WrongFlashMs = %d, want 500", cfg.Defaults.WrongFlashMs)
	}
	// Keys absent from the file keep their fallback values.
	if cfg.Defaults.WrongRevertMs != 1200 {
		t.Errorf("WrongRevertMs = %d, want 1200", cfg.Defaults.WrongRevertMs)
	}
	if cfg.Defaults.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.Defaults.LogLevel)
	}
	if len(cfg.AvailableLanguages) != 2 {
		t.Errorf("AvailableLanguages = %v, want [en zh]", cfg.AvailableLanguages)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("LoadFile(missing) error = nil, want error")
	}
}

func TestLoadFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[defaults\nlanguage ="), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile(invalid) error = nil, want error")
	}
}

func TestMillis(t *testing.T) {
	tests := []struct {
		ms, fallback int
		expected     time.Duration
	}{
		{900, 1200, 900 * time.Millisecond},
		{0, 1200, 1200 * time.Millisecond},
		{-5, 900, 900 * time.Millisecond},
	}

	for _, tt := range tests {
		if got := millis(tt.ms, tt.fallback); got != tt.expected {
			t.Errorf("millis(%d, %d) = %v, want %v", tt.ms, tt.fallback, got, tt.expected)
		}
	}
}
