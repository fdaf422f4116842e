package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
	BackendMemory = "memory"
	BackendNone   = "none"

	DefaultPageSize = 5

	jsonBackendFileName = "topics.json"
)

type Config struct {
	// Backend selects persistence: sqlite (default), json, memory or none.
	// "none" behaves like a context without local storage: defaults are used
	// and nothing is written.
	Backend string `json:"backend,omitempty"`

	// DataDir holds the backend files. Default: <ConfigDir>/data.
	DataDir string `json:"dataDir,omitempty"`

	PageSize int `json:"pageSize,omitempty"`

	// LogLevel enables file logging under <ConfigDir>/logs when set
	// (debug|info|warn|error).
	LogLevel string `json:"logLevel,omitempty"`

	// TUI holds optional user preferences for the interactive TUI.
	TUI *TUIConfig `json:"tui,omitempty"`
}

type TUIConfig struct {
	// Glyphs selects the glyph set ("unicode" or "ascii").
	Glyphs string `json:"glyphs,omitempty"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.topics).
	if v := strings.TrimSpace(os.Getenv("TOPICS_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".topics"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func LoadConfig() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// Keep a copy of the previous config to make recovery from accidental
	// overwrites easier. Errors are ignored.
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.json.bak.*.tmp", path+".bak", prev, 0o644)
	}

	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}

func (c *Config) ResolvedBackend() string {
	v := strings.ToLower(strings.TrimSpace(c.Backend))
	if v == "" {
		return BackendSQLite
	}
	return v
}

func (c *Config) ResolvedPageSize() int {
	if c.PageSize <= 0 {
		return DefaultPageSize
	}
	return c.PageSize
}

func (c *Config) ResolvedDataDir() (string, error) {
	if v := strings.TrimSpace(c.DataDir); v != "" {
		return filepath.Clean(v), nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

func (c *Config) ResolvedGlyphs() string {
	if c.TUI == nil || strings.TrimSpace(c.TUI.Glyphs) == "" {
		return "unicode"
	}
	return strings.ToLower(strings.TrimSpace(c.TUI.Glyphs))
}

// Set assigns a config field by its JSON name.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "backend":
		switch strings.ToLower(value) {
		case BackendSQLite, BackendJSON, BackendMemory, BackendNone, "":
			c.Backend = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid backend %q (expected sqlite|json|memory|none)", value)
		}
	case "dataDir":
		c.DataDir = value
	case "pageSize":
		if value == "" {
			c.PageSize = 0
			return nil
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid pageSize %q", value)
		}
		c.PageSize = n
	case "logLevel":
		switch strings.ToLower(value) {
		case "", "off", "none", "debug", "info", "warn", "warning", "error":
		default:
			return fmt.Errorf("invalid logLevel %q (expected debug|info|warn|error|off)", value)
		}
		c.LogLevel = strings.ToLower(value)
	case "tui.glyphs":
		switch strings.ToLower(value) {
		case "unicode", "ascii", "":
		default:
			return fmt.Errorf("invalid tui.glyphs %q (expected unicode|ascii)", value)
		}
		if c.TUI == nil {
			c.TUI = &TUIConfig{}
		}
		c.TUI.Glyphs = strings.ToLower(value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// OpenBackend resolves the configured backend. It returns a nil Backend for
// "none".
func OpenBackend(cfg *Config) (Backend, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	switch cfg.ResolvedBackend() {
	case BackendNone:
		return nil, nil
	case BackendMemory:
		return NewMemoryBackend(), nil
	}
	dir, err := cfg.ResolvedDataDir()
	if err != nil {
		return nil, err
	}
	switch cfg.ResolvedBackend() {
	case BackendSQLite:
		return NewSQLiteBackend(dir), nil
	case BackendJSON:
		return FileBackend{Path: filepath.Join(dir, jsonBackendFileName)}, nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
}
