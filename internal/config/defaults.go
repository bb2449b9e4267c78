// Package config provides centralized configuration defaults for lingoland.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ConfigFile represents the structure of config.toml
type ConfigFile struct {
	Defaults           Defaults `toml:"defaults"`
	AvailableLanguages []string `toml:"available_languages"`
}

// Defaults holds all default values
type Defaults struct {
	Language      string `toml:"language"`
	Name          string `toml:"name"`
	Lesson        string `toml:"lesson"`
	LogLevel      string `toml:"log_level"`
	LogDir        string `toml:"log_dir"`
	Metrics       bool   `toml:"metrics"`
	OutputDir     string `toml:"output_dir"`
	Speaker       string `toml:"speaker"`
	WrongFlashMs  int    `toml:"wrong_flash_ms"`
	WrongRevertMs int    `toml:"wrong_revert_ms"`
	Workers       int    `toml:"workers"`
	Quiet         bool   `toml:"quiet"`
}

// Hardcoded fallback defaults (used if config.toml not found)
var fallbackDefaults = Defaults{
	Language:      "en",
	Name:          "Alex",
	Lesson:        "",
	LogLevel:      "info",
	LogDir:        "logs",
	Metrics:       false,
	OutputDir:     "output",
	Speaker:       "espeak-ng",
	WrongFlashMs:  900,
	WrongRevertMs: 1200,
	Workers:       0,
	Quiet:         false,
}

var fallbackLanguages = []string{"en", "es", "zh"}

// loaded holds the parsed config (nil if not loaded yet)
var loaded *ConfigFile

// Load reads config.toml from the project root
func Load() *ConfigFile {
	if loaded != nil {
		return loaded
	}

	paths := []string{
		"config.toml",
		"../config.toml",
		"../../config.toml",
	}

	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(dir, "config.toml"),
			filepath.Join(dir, "..", "config.toml"),
		)
	}

	for _, path := range paths {
		if cfg, err := LoadFile(path); err == nil {
			loaded = cfg
			return loaded
		}
	}

	loaded = &ConfigFile{
		Defaults:           fallbackDefaults,
		AvailableLanguages: fallbackLanguages,
	}
	return loaded
}

// LoadFile decodes a single config file. Keys missing from the file keep
// their fallback values.
func LoadFile(path string) (*ConfigFile, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	cfg := ConfigFile{
		Defaults:           fallbackDefaults,
		AvailableLanguages: fallbackLanguages,
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Convenience accessors that load config on first access
var (
	DefaultLanguage  = func() string { return Load().Defaults.Language }
	DefaultName      = func() string { return Load().Defaults.Name }
	DefaultLesson    = func() string { return Load().Defaults.Lesson }
	DefaultLogLevel  = func() string { return Load().Defaults.LogLevel }
	DefaultLogDir    = func() string { return Load().Defaults.LogDir }
	DefaultMetrics   = func() bool { return Load().Defaults.Metrics }
	DefaultOutputDir = func() string { return Load().Defaults.OutputDir }
	DefaultSpeaker   = func() string { return Load().Defaults.Speaker }
	DefaultWorkers   = func() int { return Load().Defaults.Workers }
	DefaultQuiet     = func() bool { return Load().Defaults.Quiet }
)

// WrongFlash is how long a wrong pairing stays highlighted.
func WrongFlash() time.Duration {
	return millis(Load().Defaults.WrongFlashMs, fallbackDefaults.WrongFlashMs)
}

// WrongRevert is how long a rejected pronunciation stays in the wrong state.
func WrongRevert() time.Duration {
	return millis(Load().Defaults.WrongRevertMs, fallbackDefaults.WrongRevertMs)
}

func millis(ms, fallback int) time.Duration {
	if ms <= 0 {
		ms = fallback
	}
	return time.Duration(ms) * time.Millisecond
}

// MaxWorkers is the cap for parallel workers
const MaxWorkers = 8

// AvailableLanguagesStr returns available languages as comma-separated string.
func AvailableLanguagesStr() string {
	return strings.Join(Load().AvailableLanguages, ", ")
}
