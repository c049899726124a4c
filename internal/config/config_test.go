// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points the config directory at a temp dir and clears env
// overrides for the duration of the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(EnvHome, dir)
	for _, k := range []string{
		"SESSIONCHAT_STORAGE_BACKEND", "SESSIONCHAT_STORAGE_PATH",
		"SESSIONCHAT_BASE_URL", "SESSIONCHAT_MODEL", "SESSIONCHAT_OFFLINE",
		"SESSIONCHAT_LOG_LEVEL", "SESSIONCHAT_LOG_FILE",
		"SESSIONCHAT_API_KEY", "OPENAI_API_KEY",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config invalid: %v", err)
	}
	if cfg.Stream.ChunkSize != 40 {
		t.Errorf("ChunkSize = %d, want 40", cfg.Stream.ChunkSize)
	}
	if cfg.Stream.ChunkDelay() != 30*time.Millisecond {
		t.Errorf("ChunkDelay = %v, want 30ms", cfg.Stream.ChunkDelay())
	}
	if cfg.Remote.Timeout() != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", cfg.Remote.Timeout())
	}
	if cfg.Retrieval.MaxResults != 5 {
		t.Errorf("MaxResults = %d, want 5", cfg.Retrieval.MaxResults)
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("Backend = %q, want sqlite", cfg.Storage.Backend)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := isolate(t)

	cfg := Default()
	cfg.Storage.Backend = "file"
	cfg.Remote.Model = "gpt-4o-mini"
	cfg.Remote.Offline = true
	cfg.Remote.EnvCredential = "sk-should-not-persist"
	cfg.Log.Level = "debug"

	if err := Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	path := filepath.Join(dir, "config.toml")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file missing: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config perm = %o, want 600", perm)
	}

	raw, _ := os.ReadFile(path)
	if strings.Contains(string(raw), "sk-should-not-persist") {
		t.Error("credential was written to the config file")
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Storage.Backend != "file" || loaded.Remote.Model != "gpt-4o-mini" || !loaded.Remote.Offline {
		t.Errorf("loaded config mismatch: %+v", loaded)
	}
	if loaded.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", loaded.Log.Level)
	}
}

func TestLoadFromPath_FillsMissingSections(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "partial.toml")
	if err := os.WriteFile(path, []byte("[remote]\nmodel = \"gpt-4o\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Remote.Model != "gpt-4o" {
		t.Errorf("Model = %q", cfg.Remote.Model)
	}
	if cfg.Remote.MaxTokens != 500 || cfg.Stream.ChunkSize != 40 {
		t.Errorf("defaults not filled: %+v", cfg)
	}
}

func TestLoadFromPath_UnknownKeyRejected(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[remote]\nmodle = \"typo\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFromPath(path)
	if err == nil || !strings.Contains(err.Error(), "remote.modle") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Storage.Backend = "redis"
	cfg.Remote.BaseURL = "not a url"
	cfg.Remote.Temperature = 3.5
	cfg.Log.Level = "verbose"

	err := cfg.Validate()
	var verrs ValidateErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidateErrors, got %T: %v", err, err)
	}

	fields := map[string]bool{}
	for _, e := range verrs {
		fields[e.Field] = true
	}
	for _, want := range []string{"storage.backend", "remote.base_url", "remote.temperature", "log.level"} {
		if !fields[want] {
			t.Errorf("missing validation error for %s (got %v)", want, verrs)
		}
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("SESSIONCHAT_STORAGE_BACKEND", "FILE")
	t.Setenv("SESSIONCHAT_MODEL", "gpt-4o")
	t.Setenv("SESSIONCHAT_OFFLINE", "true")
	t.Setenv("OPENAI_API_KEY", "  sk-from-openai  ")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Storage.Backend != "file" {
		t.Errorf("Backend = %q, want file", cfg.Storage.Backend)
	}
	if cfg.Remote.Model != "gpt-4o" || !cfg.Remote.Offline {
		t.Errorf("remote overrides not applied: %+v", cfg.Remote)
	}
	if cfg.Remote.EnvCredential != "sk-from-openai" {
		t.Errorf("EnvCredential = %q", cfg.Remote.EnvCredential)
	}

	t.Setenv("SESSIONCHAT_API_KEY", "sk-preferred")
	cfg.ApplyEnvOverrides()
	if cfg.Remote.EnvCredential != "sk-preferred" {
		t.Errorf("SESSIONCHAT_API_KEY should win, got %q", cfg.Remote.EnvCredential)
	}
}

func TestLoadEnvFiles_DoesNotOverrideEnvironment(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SESSIONCHAT_MODEL=from-dotenv\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SESSIONCHAT_MODEL", "from-env")

	LoadEnvFiles()
	if got := os.Getenv("SESSIONCHAT_MODEL"); got != "from-env" {
		t.Errorf("SESSIONCHAT_MODEL = %q, want from-env", got)
	}
}

func TestStoragePath(t *testing.T) {
	dir := isolate(t)

	cfg := Default()
	got, err := cfg.StoragePath()
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(dir, "store.db") {
		t.Errorf("sqlite path = %q", got)
	}

	cfg.Storage.Backend = "file"
	got, _ = cfg.StoragePath()
	if got != filepath.Join(dir, "store") {
		t.Errorf("file path = %q", got)
	}

	cfg.Storage.Path = "/tmp/custom.db"
	got, _ = cfg.StoragePath()
	if got != "/tmp/custom.db" {
		t.Errorf("explicit path = %q", got)
	}
}

func TestString_OmitsCredential(t *testing.T) {
	cfg := Default()
	cfg.Remote.EnvCredential = "sk-secret-value"
	out := cfg.String()
	if strings.Contains(out, "sk-secret-value") {
		t.Error("String leaked credential")
	}
	if !strings.Contains(out, "[remote]") {
		t.Errorf("String missing remote section:\n%s", out)
	}
}
