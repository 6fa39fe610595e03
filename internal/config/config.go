// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/morganforge/parlance/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete parlance configuration.
type Config struct {
	// Server settings
	Server ServerConfig `toml:"server"`

	// Session settings
	Session SessionConfig `toml:"session"`

	// Cache settings
	Cache CacheConfig `toml:"cache"`

	// Storage settings
	Storage StorageConfig `toml:"storage"`
}

// ServerConfig describes how to reach the platform API.
type ServerConfig struct {
	// BaseURL is the platform root, e.g. "https://chat.example.com"
	BaseURL string `toml:"base_url"`
	// TimeoutSecs bounds each non-streaming request (default: 30)
	TimeoutSecs int `toml:"timeout_secs"`
	// RateLimitRPS caps outgoing requests per second (0 = unlimited)
	RateLimitRPS float64 `toml:"rate_limit_rps"`
	// RateLimitBurst is the burst size for the rate limiter
	RateLimitBurst int `toml:"rate_limit_burst"`
}

// SessionConfig contains idle-timeout settings.
type SessionConfig struct {
	// IdleTimeoutSecs logs the user out locally after this much inactivity
	// (0 = disabled)
	IdleTimeoutSecs int `toml:"idle_timeout_secs"`
	// WarningSecs is how long before the idle timeout to warn the user
	WarningSecs int `toml:"warning_secs"`
}

// CacheConfig contains query-cache settings.
type CacheConfig struct {
	// TTLSecs is how long a cached read stays fresh without invalidation
	// (0 = no expiry, invalidation only)
	TTLSecs int `toml:"ttl_secs"`
}

// StorageConfig contains local persistence settings.
type StorageConfig struct {
	// CredentialsPath is the token database file
	// (empty = ~/.parlance/credentials.db)
	CredentialsPath string `toml:"credentials_path"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSecs:    30,
			RateLimitRPS:   0,
			RateLimitBurst: 1,
		},
		Session: SessionConfig{
			IdleTimeoutSecs: 900,
			WarningSecs:     120,
		},
		Cache: CacheConfig{
			TTLSecs: 0,
		},
		Storage: StorageConfig{
			CredentialsPath: "",
		},
	}
}

// Timeout returns the per-request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Server.TimeoutSecs) * time.Second
}

// IdleTimeout returns the session idle timeout as a duration.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Session.IdleTimeoutSecs) * time.Second
}

// IdleWarning returns the pre-timeout warning lead as a duration.
func (c *Config) IdleWarning() time.Duration {
	return time.Duration(c.Session.WarningSecs) * time.Second
}

// CacheTTL returns the cache freshness window as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSecs) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the parlance configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".parlance"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir ensures the config directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ResolveCredentialsPath resolves the token database location, falling back
// to the default inside the config directory.
func (c *Config) ResolveCredentialsPath() (string, error) {
	if c.Storage.CredentialsPath != "" {
		return c.Storage.CredentialsPath, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "credentials.db"), nil
}

// ensureSecurePermissions fixes permissions on the config file. The file
// never holds tokens, but keeping it 0600 avoids leaking server topology.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Mode().Perm() != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions: %w", err)
		}
	}
	return nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load loads configuration from the default config file location, then
// applies environment overrides and validation. A missing file is not an
// error; defaults are used.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file. A missing
// file yields defaults with environment overrides applied.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if err := ensureSecurePermissions(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
		}
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration to a TOML file.
// RELIABILITY: Atomic write with fsync prevents a torn config on crash.
// SECURITY: Written with 0600 permissions (owner read/write only).
func SaveToPath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# parlance configuration file")
	fmt.Fprintln(&buf, "# Generated by parlance - edit with care")
	fmt.Fprintln(&buf, "")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Server.BaseURL == "" {
		errs = append(errs, ValidationError{
			Field:   "server.base_url",
			Message: "must not be empty",
		})
	} else {
		u, err := url.Parse(c.Server.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "server.base_url",
				Message: fmt.Sprintf("invalid URL '%s'", c.Server.BaseURL),
			})
		}
	}

	if c.Server.TimeoutSecs < 1 || c.Server.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "server.timeout_secs",
			Message: fmt.Sprintf("must be 1-600, got %d", c.Server.TimeoutSecs),
		})
	}

	if c.Server.RateLimitRPS < 0 {
		errs = append(errs, ValidationError{
			Field:   "server.rate_limit_rps",
			Message: "cannot be negative",
		})
	}

	if c.Session.IdleTimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "session.idle_timeout_secs",
			Message: "cannot be negative",
		})
	}
	if c.Session.IdleTimeoutSecs > 0 && c.Session.WarningSecs >= c.Session.IdleTimeoutSecs {
		errs = append(errs, ValidationError{
			Field:   "session.warning_secs",
			Message: "must be shorter than the idle timeout",
		})
	}

	if c.Cache.TTLSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "cache.ttl_secs",
			Message: "cannot be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills in zero values that decoding may have left behind.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Server.BaseURL == "" {
		c.Server.BaseURL = defaults.Server.BaseURL
	}
	if c.Server.TimeoutSecs == 0 {
		c.Server.TimeoutSecs = defaults.Server.TimeoutSecs
	}
	if c.Server.RateLimitBurst == 0 {
		c.Server.RateLimitBurst = defaults.Server.RateLimitBurst
	}
	if c.Session.WarningSecs == 0 {
		c.Session.WarningSecs = defaults.Session.WarningSecs
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - PARLANCE_BASE_URL: overrides server.base_url
//   - PARLANCE_TIMEOUT_SECS: overrides server.timeout_secs
//   - PARLANCE_CREDENTIALS_PATH: overrides storage.credentials_path
//   - PARLANCE_IDLE_TIMEOUT_SECS: overrides session.idle_timeout_secs
func (c *Config) ApplyEnvOverrides() {
	if base := os.Getenv("PARLANCE_BASE_URL"); base != "" {
		c.Server.BaseURL = base
	}

	if secs := os.Getenv("PARLANCE_TIMEOUT_SECS"); secs != "" {
		if n, err := strconv.Atoi(secs); err == nil {
			c.Server.TimeoutSecs = n
		}
	}

	if path := os.Getenv("PARLANCE_CREDENTIALS_PATH"); path != "" {
		c.Storage.CredentialsPath = path
	}

	if secs := os.Getenv("PARLANCE_IDLE_TIMEOUT_SECS"); secs != "" {
		if n, err := strconv.Atoi(secs); err == nil {
			c.Session.IdleTimeoutSecs = n
		}
	}
}
