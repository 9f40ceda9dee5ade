package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the settings shinyhunt reads from config.toml.
type Config struct {
	// APIBase is the upstream PokeAPI root.
	APIBase string
	// ProxyURL, when set, routes the TUI through a running proxy.
	ProxyURL string
	// ProxyBind is the address `shinyhunt serve` listens on.
	ProxyBind string
	DataDir   string
	Storage   string
	LogLevel  string
}

const (
	defaultConfigPath = "~/.config/shinyhunt/config.toml"
	defaultDataDir    = "~/.local/share/shinyhunt"
	defaultAPIBase    = "https://pokeapi.co/api/v2/"
	defaultProxyBind  = "127.0.0.1:7488"
	defaultStorage    = "file"
	defaultLogLevel   = "info"
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Load parses the config file, falling back to defaults when it is missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := defaults()

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
		APIBase   string `toml:"api_base"`
		ProxyURL  string `toml:"proxy_url"`
		ProxyBind string `toml:"proxy_bind"`
		DataDir   string `toml:"data_dir"`
		Storage   string `toml:"storage"`
		LogLevel  string `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.APIBase = orDefault(raw.APIBase, defaultAPIBase)
	cfg.ProxyURL = strings.TrimSpace(raw.ProxyURL)
	cfg.ProxyBind = orDefault(raw.ProxyBind, defaultProxyBind)
	cfg.DataDir = mustExpand(orDefault(raw.DataDir, defaultDataDir))
	cfg.Storage = strings.ToLower(orDefault(raw.Storage, defaultStorage))
	cfg.LogLevel = strings.ToLower(orDefault(raw.LogLevel, defaultLogLevel))

	return cfg, nil
}

func defaults() Config {
	return Config{
		APIBase:   defaultAPIBase,
		ProxyBind: defaultProxyBind,
		DataDir:   mustExpand(defaultDataDir),
		Storage:   defaultStorage,
		LogLevel:  defaultLogLevel,
	}
}

// StoragePath returns where the configured backend keeps its data.
func (c Config) StoragePath() string {
	dir := c.DataDir
	if strings.TrimSpace(dir) == "" {
		dir = mustExpand(defaultDataDir)
	}
	if c.Storage == "badger" {
		return filepath.Join(dir, "badger")
	}
	return filepath.Join(dir, "state")
}

// LogPath returns the path of the application log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir + "/shinyhunt.log")
	}
	return filepath.Join(c.DataDir, "shinyhunt.log")
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading tilde and returns an absolute path.
func ExpandPath(path string) (string, error) {
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
