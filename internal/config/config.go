// Package config loads survey-charts settings from the environment.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sethvargo/go-envconfig"
)

const envPrefix = "SURVEY_CHARTS_"

// Config holds settings that command-line flags may override.
type Config struct {
	LogLevel  string `env:"LOG_LEVEL, default=warn"`
	LogFormat string `env:"LOG_FORMAT, default=text"`

	// CacheDir holds parsed data blocks. Empty means the user cache directory.
	CacheDir string `env:"CACHE_DIR"`
	NoCache  bool   `env:"NO_CACHE, default=false"`

	OutputDir string `env:"OUTPUT_DIR, default=."`
	Width     int    `env:"WIDTH, default=800"`
	Height    int    `env:"HEIGHT, default=400"`
	PageTitle string `env:"PAGE_TITLE, default=Mental Health in the Workplace"`
}

// Load reads the configuration from SURVEY_CHARTS_* environment variables.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.PrefixLookuper(envPrefix, lookuper),
	}); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid chart size %dx%d", cfg.Width, cfg.Height)
	}
	return &cfg, nil
}

// ResolveCacheDir returns the cache directory to use, or "" when caching is
// disabled.
func (c *Config) ResolveCacheDir() (string, error) {
	if c.NoCache {
		return "", nil
	}
	if c.CacheDir != "" {
		return c.CacheDir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user cache directory: %w", err)
	}
	return filepath.Join(base, "survey-charts"), nil
}
