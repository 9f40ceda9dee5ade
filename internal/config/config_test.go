package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBase != defaultAPIBase {
		t.Fatalf("APIBase = %q, want %q", cfg.APIBase, defaultAPIBase)
	}
	if cfg.ProxyBind != defaultProxyBind {
		t.Fatalf("ProxyBind = %q, want %q", cfg.ProxyBind, defaultProxyBind)
	}
	if cfg.ProxyURL != "" {
		t.Fatalf("ProxyURL = %q, want empty", cfg.ProxyURL)
	}
	if cfg.Storage != "file" || cfg.LogLevel != "info" {
		t.Fatalf("Storage/LogLevel = %q/%q, want file/info", cfg.Storage, cfg.LogLevel)
	}

	wantDataDir, err := expandPath(defaultDataDir)
	if err != nil {
		t.Fatalf("expandPath(defaultDataDir) returned error: %v", err)
	}
	if cfg.DataDir != wantDataDir {
		t.Fatalf("DataDir = %q, want %q", cfg.DataDir, wantDataDir)
	}
	if cfg.StoragePath() != filepath.Join(wantDataDir, "state") {
		t.Fatalf("StoragePath = %q", cfg.StoragePath())
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_base = "  http://10.0.0.5:9999/api/v2/  "
proxy_url = " http://127.0.0.1:7488/api/pokemon/ "
proxy_bind = "0.0.0.0:8080"
data_dir = "  ~/.dex  "
storage = "Badger"
log_level = "DEBUG"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBase != "http://10.0.0.5:9999/api/v2/" {
		t.Fatalf("APIBase = %q", cfg.APIBase)
	}
	if cfg.ProxyURL != "http://127.0.0.1:7488/api/pokemon/" {
		t.Fatalf("ProxyURL = %q", cfg.ProxyURL)
	}
	if cfg.ProxyBind != "0.0.0.0:8080" {
		t.Fatalf("ProxyBind = %q", cfg.ProxyBind)
	}
	if cfg.DataDir != filepath.Join(home, ".dex") {
		t.Fatalf("DataDir = %q, want it under HOME %q", cfg.DataDir, home)
	}
	if cfg.Storage != "badger" || cfg.LogLevel != "debug" {
		t.Fatalf("Storage/LogLevel = %q/%q", cfg.Storage, cfg.LogLevel)
	}
	if cfg.StoragePath() != filepath.Join(cfg.DataDir, "badger") {
		t.Fatalf("StoragePath = %q", cfg.StoragePath())
	}
	if cfg.LogPath() != filepath.Join(cfg.DataDir, "shinyhunt.log") {
		t.Fatalf("LogPath = %q", cfg.LogPath())
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_base = "   "
data_dir = ""
storage = ""
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBase != defaultAPIBase {
		t.Fatalf("APIBase = %q, want %q", cfg.APIBase, defaultAPIBase)
	}
	wantDataDir, err := expandPath(defaultDataDir)
	if err != nil {
		t.Fatalf("expandPath(defaultDataDir) returned error: %v", err)
	}
	if cfg.DataDir != wantDataDir {
		t.Fatalf("DataDir = %q, want %q", cfg.DataDir, wantDataDir)
	}
	if cfg.Storage != defaultStorage {
		t.Fatalf("Storage = %q, want %q", cfg.Storage, defaultStorage)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`api_base = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/a/b")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("ExpandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

func TestLogPath_DefaultsWhenDataDirEmpty(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var cfg Config
	got := cfg.LogPath()
	if !strings.HasPrefix(got, home) {
		t.Fatalf("LogPath = %q, want it under HOME %q", got, home)
	}
	if !strings.HasSuffix(got, filepath.FromSlash("/shinyhunt.log")) {
		t.Fatalf("LogPath = %q, want it to end with /shinyhunt.log", got)
	}
}
