// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"

	"github.com/jeranaias/sessionchat/internal/util"
)

var httpURL = regexp.MustCompile(`^https?://[^\s/]+`)

// EnvHome overrides the configuration directory (default ~/.sessionchat).
const EnvHome = "SESSIONCHAT_HOME"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete sessionchat configuration.
type Config struct {
	Storage   StorageConfig   `toml:"storage"`
	Remote    RemoteConfig    `toml:"remote"`
	Stream    StreamConfig    `toml:"stream"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Log       LogConfig       `toml:"log"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Backend is "sqlite" or "file".
	Backend string `toml:"backend" json:"backend"`
	// Path is the database file (sqlite) or directory (file). Empty means
	// a default inside the config directory.
	Path string `toml:"path" json:"path"`
}

// RemoteConfig contains the completions endpoint settings.
type RemoteConfig struct {
	BaseURL           string  `toml:"base_url" json:"base_url"`
	Model             string  `toml:"model" json:"model"`
	MaxTokens         int     `toml:"max_tokens" json:"max_tokens"`
	Temperature       float64 `toml:"temperature" json:"temperature"`
	TimeoutSecs       int     `toml:"timeout_secs" json:"timeout_secs"`
	RequestsPerMinute int     `toml:"requests_per_minute" json:"requests_per_minute"`
	// Offline skips the remote call even when a credential is stored.
	Offline bool `toml:"offline" json:"offline"`

	// EnvCredential is seeded from OPENAI_API_KEY / SESSIONCHAT_API_KEY.
	// It is never written to the config file.
	EnvCredential string `toml:"-" json:"-"`
}

// StreamConfig controls the chunked reveal.
type StreamConfig struct {
	ChunkSize    int `toml:"chunk_size" json:"chunk_size"`
	ChunkDelayMs int `toml:"chunk_delay_ms" json:"chunk_delay_ms"`
}

// RetrievalConfig controls keyword retrieval.
type RetrievalConfig struct {
	MaxResults int `toml:"max_results" json:"max_results"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level" json:"level"`
	File  string `toml:"file" json:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: "sqlite",
		},
		Remote: RemoteConfig{
			BaseURL:           "https://api.openai.com/v1",
			Model:             "gpt-3.5-turbo",
			MaxTokens:         500,
			Temperature:       0.7,
			TimeoutSecs:       60,
			RequestsPerMinute: 20,
		},
		Stream: StreamConfig{
			ChunkSize:    40,
			ChunkDelayMs: 30,
		},
		Retrieval: RetrievalConfig{
			MaxResults: 5,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Timeout returns the request timeout as a duration.
func (r RemoteConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSecs) * time.Second
}

// ChunkDelay returns the reveal delay as a duration.
func (s StreamConfig) ChunkDelay() time.Duration {
	return time.Duration(s.ChunkDelayMs) * time.Millisecond
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the sessionchat configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".sessionchat"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// StoragePath resolves the storage location for the configured backend.
func (c *Config) StoragePath() (string, error) {
	if c.Storage.Path != "" {
		return expandHome(c.Storage.Path), nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if c.Storage.Backend == "file" {
		return filepath.Join(dir, "store"), nil
	}
	return filepath.Join(dir, "store.db"), nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// ensureSecurePermissions tightens the config file to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads .env files, the config file (when present) and environment
// overrides, then validates. A missing config file is not an error.
func Load() (*Config, error) {
	LoadEnvFiles()

	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr == nil {
		return LoadFromPath(path)
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific TOML file with env
// overrides and validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// LoadEnvFiles loads ./.env and <config dir>/.env. Variables already set in
// the environment win.
func LoadEnvFiles() {
	candidates := []string{".env"}
	if dir, err := ConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, ".env"))
	}
	for _, f := range candidates {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = defaults.Storage.Backend
	}
	if cfg.Remote.BaseURL == "" {
		cfg.Remote.BaseURL = defaults.Remote.BaseURL
	}
	if cfg.Remote.Model == "" {
		cfg.Remote.Model = defaults.Remote.Model
	}
	if cfg.Remote.MaxTokens <= 0 {
		cfg.Remote.MaxTokens = defaults.Remote.MaxTokens
	}
	if cfg.Remote.TimeoutSecs <= 0 {
		cfg.Remote.TimeoutSecs = defaults.Remote.TimeoutSecs
	}
	if cfg.Stream.ChunkSize <= 0 {
		cfg.Stream.ChunkSize = defaults.Stream.ChunkSize
	}
	if cfg.Retrieval.MaxResults <= 0 {
		cfg.Retrieval.MaxResults = defaults.Retrieval.MaxResults
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the default path.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# sessionchat configuration file\n")
	buf.WriteString("# Generated by sessionchat - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600, 0700); err != nil {
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
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	sections := []struct {
		name string
		err  error
	}{
		{"storage", validation.ValidateStruct(&c.Storage,
			validation.Field(&c.Storage.Backend, validation.Required, validation.In("sqlite", "file")),
		)},
		{"remote", validation.ValidateStruct(&c.Remote,
			validation.Field(&c.Remote.BaseURL, validation.Required, validation.Match(httpURL).Error("must be an http(s) URL")),
			validation.Field(&c.Remote.Model, validation.Required),
			validation.Field(&c.Remote.MaxTokens, validation.Min(1), validation.Max(32768)),
			validation.Field(&c.Remote.Temperature, validation.Min(0.0), validation.Max(2.0)),
			validation.Field(&c.Remote.TimeoutSecs, validation.Min(1), validation.Max(600)),
			validation.Field(&c.Remote.RequestsPerMinute, validation.Min(0)),
		)},
		{"stream", validation.ValidateStruct(&c.Stream,
			validation.Field(&c.Stream.ChunkSize, validation.Min(1)),
			validation.Field(&c.Stream.ChunkDelayMs, validation.Min(0), validation.Max(1000)),
		)},
		{"retrieval", validation.ValidateStruct(&c.Retrieval,
			validation.Field(&c.Retrieval.MaxResults, validation.Min(1), validation.Max(100)),
		)},
		{"log", validation.ValidateStruct(&c.Log,
			validation.Field(&c.Log.Level, validation.In("debug", "info", "warn", "warning", "error", "fatal")),
		)},
	}

	var errs ValidateErrors
	for _, s := range sections {
		if s.err == nil {
			continue
		}
		var fields validation.Errors
		if !errors.As(s.err, &fields) {
			errs = append(errs, ValidationError{Field: s.name, Message: s.err.Error()})
			continue
		}
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			errs = append(errs, ValidationError{Field: s.name + "." + k, Message: fields[k].Error()})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - SESSIONCHAT_STORAGE_BACKEND, SESSIONCHAT_STORAGE_PATH
//   - SESSIONCHAT_BASE_URL, SESSIONCHAT_MODEL, SESSIONCHAT_OFFLINE
//   - SESSIONCHAT_LOG_LEVEL, SESSIONCHAT_LOG_FILE
//   - SESSIONCHAT_API_KEY, then OPENAI_API_KEY, as a credential seed
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SESSIONCHAT_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("SESSIONCHAT_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("SESSIONCHAT_BASE_URL"); v != "" {
		c.Remote.BaseURL = v
	}
	if v := os.Getenv("SESSIONCHAT_MODEL"); v != "" {
		c.Remote.Model = v
	}
	if v := os.Getenv("SESSIONCHAT_OFFLINE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Remote.Offline = b
		}
	}
	if v := os.Getenv("SESSIONCHAT_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("SESSIONCHAT_LOG_FILE"); v != "" {
		c.Log.File = v
	}

	if v := os.Getenv("SESSIONCHAT_API_KEY"); v != "" {
		c.Remote.EnvCredential = strings.TrimSpace(v)
	} else if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Remote.EnvCredential = strings.TrimSpace(v)
	}
}

// String renders the configuration as TOML. The credential never appears
// because it is excluded from encoding.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return err.Error()
	}
	return buf.String()
}
