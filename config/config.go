// Package config loads .cbres.yaml configuration.
//
// Settings are read from .cbres.yaml in the project root, then overridden
// by CBRES_* environment variables. A missing file means defaults.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = ".cbres.yaml"

// DefaultDatabase is the filter database path used when none is configured.
const DefaultDatabase = "filters.db"

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

// Config is the merged configuration.
type Config struct {
	// ResourcesDir is a directory of raw resources replacing the embedded
	// bundle. Empty means embedded.
	ResourcesDir string `yaml:"resources_dir,omitempty" env:"CBRES_RESOURCES_DIR"`
	// Database is the filter database path.
	Database string `yaml:"database,omitempty" env:"CBRES_DATABASE"`
	// Locale overrides the default locale (e.g. "de_DE"). Empty means detect.
	Locale string `yaml:"locale,omitempty" env:"CBRES_LOCALE"`
	// InputMethods is a YAML file listing the enabled input methods.
	InputMethods string `yaml:"input_methods,omitempty" env:"CBRES_INPUT_METHODS"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty" env:"CBRES_LOG_LEVEL"`

	// root is the directory relative paths are resolved against.
	root string
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads rootDir/.cbres.yaml (if present), applies environment
// overrides and defaults, and validates the result.
func Load(rootDir string) (*Config, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, err
	}
	cfg := &Config{root: absRoot}

	path := filepath.Join(absRoot, FileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// Defaults
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ---------------------------------------------------------------------------
// Resolved accessors
// ---------------------------------------------------------------------------

// Root returns the absolute project root.
func (c *Config) Root() string { return c.root }

// ResolvePath resolves p against the project root. Empty stays empty.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.root, p)
}

// DatabasePath returns the absolute filter database path.
func (c *Config) DatabasePath() string { return c.ResolvePath(c.Database) }

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	lvl, _ := ParseLevel(c.LogLevel)
	return lvl
}

// ParseLevel converts a level name into a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q (valid: debug, info, warn, error)", s)
}
