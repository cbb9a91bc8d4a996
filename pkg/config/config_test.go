package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	errs "github.com/matzehuels/thankstars/pkg/errors"
)

// clearEnv unsets every variable that could leak into Load from the
// developer's shell.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvToken, EnvPrefix + "_TOKEN", EnvPrefix + "_API_BASE", EnvPrefix + "_CACHE_TTL",
		EnvPrefix + "_CACHE_REDIS_URL", EnvPrefix + "_HISTORY_MONGO_URI", EnvPrefix + "_WORKERS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	m := NewManagerAt(t.TempDir())

	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.HasToken() {
		t.Errorf("Token = %q, want empty", cfg.Token)
	}
	if cfg.APIBase != DefaultAPIBase {
		t.Errorf("APIBase = %q, want %q", cfg.APIBase, DefaultAPIBase)
	}
	if cfg.CacheTTL != DefaultCacheTTL {
		t.Errorf("CacheTTL = %v, want %v", cfg.CacheTTL, DefaultCacheTTL)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled should default to true")
	}
	if want := filepath.Join(m.Dir(), "history"); cfg.History.Dir != want {
		t.Errorf("History.Dir = %q, want %q", cfg.History.Dir, want)
	}
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	content := `token = "file-token"
api_base = "https://ghe.example.com/api/v3/"
cache_ttl = "2h"

[cache]
redis_url = "redis://localhost:6379/0"

[history]
enabled = false
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	m := NewManagerAt(dir)

	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Token != "file-token" {
		t.Errorf("Token = %q, want file-token", cfg.Token)
	}
	if cfg.APIBase != "https://ghe.example.com/api/v3" {
		t.Errorf("APIBase = %q", cfg.APIBase)
	}
	if cfg.CacheTTL != 2*time.Hour {
		t.Errorf("CacheTTL = %v, want 2h", cfg.CacheTTL)
	}
	if cfg.Cache.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("Cache.RedisURL = %q", cfg.Cache.RedisURL)
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled = true, want false")
	}

	t.Setenv(EnvToken, "env-token")
	t.Setenv(EnvPrefix+"_API_BASE", "http://127.0.0.1:9999")
	cfg, err = m.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Token != "env-token" {
		t.Errorf("Token = %q, want env-token (GITHUB_TOKEN wins)", cfg.Token)
	}
	if cfg.APIBase != "http://127.0.0.1:9999" {
		t.Errorf("APIBase = %q, want env override", cfg.APIBase)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("token = "), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := NewManagerAt(dir).Load()
	if !errs.Is(err, errs.ErrCodeConfig) {
		t.Errorf("error = %v, want CONFIG_ERROR", err)
	}
}

func TestSaveToken(t *testing.T) {
	clearEnv(t)
	dir := filepath.Join(t.TempDir(), "nested")
	m := NewManagerAt(dir)

	if err := m.SaveToken("abc123"); err != nil {
		t.Fatalf("SaveToken() error: %v", err)
	}
	token, err := m.FileToken()
	if err != nil || token != "abc123" {
		t.Fatalf("FileToken() = %q, %v; want abc123", token, err)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(m.Path())
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("config mode = %o, want 600", perm)
		}
	}
}

func TestSaveTokenPreservesOtherKeys(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	content := "token = \"old\"\napi_base = \"https://ghe.example.com\"\n\n[history]\nenabled = false\n"
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	m := NewManagerAt(dir)

	if err := m.SaveToken("new"); err != nil {
		t.Fatalf("SaveToken() error: %v", err)
	}
	data, err := os.ReadFile(m.Path())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`token = "new"`, `api_base = "https://ghe.example.com"`, "[history]", "enabled = false"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("config.toml missing %q:\n%s", want, data)
		}
	}
}

func TestClearToken(t *testing.T) {
	clearEnv(t)
	m := NewManagerAt(t.TempDir())

	if err := m.ClearToken(); err != nil {
		t.Fatalf("ClearToken() on missing file: %v", err)
	}
	if err := m.SaveToken("abc"); err != nil {
		t.Fatal(err)
	}
	if err := m.ClearToken(); err != nil {
		t.Fatalf("ClearToken() error: %v", err)
	}
	if token, _ := m.FileToken(); token != "" {
		t.Errorf("FileToken() = %q after ClearToken", token)
	}
}

func TestDirOverride(t *testing.T) {
	t.Setenv(EnvConfigDir, "/tmp/thankstars-test")
	dir, err := Dir()
	if err != nil || dir != "/tmp/thankstars-test" {
		t.Errorf("Dir() = %q, %v", dir, err)
	}
}
