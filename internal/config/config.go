// Package config provides configuration loading and validation for the
// idlparse command.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Imports ImportsConfig `yaml:"imports"`
	Logging LoggingConfig `yaml:"logging"`
}

// ImportsConfig configures import resolution.
type ImportsConfig struct {
	// Search paths tried after the importing file's directory.
	Paths []string `yaml:"paths"`
	// Imports of one file parsed concurrently. 1 is sequential.
	Parallelism int `yaml:"parallelism"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "text" or "json"
}

// Load reads configuration from a YAML file on fs.
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
//
// Environment variables:
//
//	IDLPARSE_IMPORT_PATHS  - Search paths, separated by the OS list separator
//	IDLPARSE_PARALLELISM   - Imports parsed concurrently (default: 1)
//	IDLPARSE_LOG_LEVEL     - Log level: debug, info, warn, error (default: warn)
//	IDLPARSE_LOG_FORMAT    - Log format: text or json (default: text)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// LoadWithFallback loads path when it is set, and the environment otherwise.
func LoadWithFallback(fs afero.Fs, path string) (*Config, error) {
	if path != "" {
		return Load(fs, path)
	}
	return LoadFromEnv()
}

// applyEnvOverrides applies IDLPARSE_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("IDLPARSE_IMPORT_PATHS"); v != "" {
		cfg.Imports.Paths = filepath.SplitList(v)
	}
	if v := os.Getenv("IDLPARSE_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Imports.Parallelism = n
		}
	}

	if v := os.Getenv("IDLPARSE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("IDLPARSE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Imports.Parallelism == 0 {
		cfg.Imports.Parallelism = 1
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "warn"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
}

func validate(cfg *Config) error {
	if cfg.Imports.Parallelism < 1 {
		return fmt.Errorf("imports.parallelism must be at least 1, got %d", cfg.Imports.Parallelism)
	}
	for _, p := range cfg.Imports.Paths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("imports.paths must not contain empty entries")
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}
	return nil
}
