package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the fields kosh needs to reach the moneta backend.
type Config struct {
	APIBase         string
	Currency        string
	CacheTTLSeconds int
}

const (
	defaultConfigPath = "~/.config/kosh/config.toml"
	defaultAPIBase    = "127.0.0.1:8741"
	defaultCurrency   = "INR"
	defaultCacheTTL   = 15
)

// Load locates and parses the kosh config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIBase:         defaultAPIBase,
		Currency:        defaultCurrency,
		CacheTTLSeconds: defaultCacheTTL,
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBase         string `toml:"api_base"`
		Currency        string `toml:"currency"`
		CacheTTLSeconds int    `toml:"cache_ttl_seconds"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.APIBase = strings.TrimSpace(raw.APIBase)
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}

	cfg.Currency = strings.ToUpper(strings.TrimSpace(raw.Currency))
	if cfg.Currency == "" {
		cfg.Currency = defaultCurrency
	}

	cfg.CacheTTLSeconds = raw.CacheTTLSeconds
	if cfg.CacheTTLSeconds <= 0 {
		cfg.CacheTTLSeconds = defaultCacheTTL
	}

	return cfg, nil
}

// CacheTTL returns the query cache freshness window.
func (c Config) CacheTTL() time.Duration {
	if c.CacheTTLSeconds <= 0 {
		return time.Duration(defaultCacheTTL) * time.Second
	}
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
