package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	dirName        = ".shoplist"
	configFileName = "config.yaml"
	sqliteFileName = "shoplist.db"
	jsonFileName   = "shoplist.json"
)

const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

var (
	validBackends  = []string{BackendSQLite, BackendJSON}
	validThemes    = []string{"classic", "neon", "mono"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

// Config is the resolved runtime configuration.
// Precedence, lowest first: defaults, config file, environment, flags.
type Config struct {
	DBPath   string `yaml:"db_path"`
	Backend  string `yaml:"backend"`
	Theme    string `yaml:"theme"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// DataDir is ~/.shoplist, or the working directory when home is unknown.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, dirName)
}

// DefaultPath is where Load looks when no config path is given.
func DefaultPath() string {
	return filepath.Join(DataDir(), configFileName)
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Backend:  BackendSQLite,
		Theme:    "classic",
		LogLevel: "warn",
	}
}

// Load reads the YAML file at path (DefaultPath if empty) and applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnv()
	cfg.Normalize()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("SHOPLIST_DB")); v != "" {
		c.DBPath = v
	}
	if v := strings.TrimSpace(os.Getenv("SHOPLIST_BACKEND")); v != "" {
		c.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv("SHOPLIST_THEME")); v != "" {
		c.Theme = v
	}
	if v := strings.TrimSpace(os.Getenv("SHOPLIST_LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}
}

// Normalize lowercases the backend, theme and log level so every layer
// (file, environment, flags) matches names the same way.
func (c *Config) Normalize() {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	c.Theme = strings.ToLower(strings.TrimSpace(c.Theme))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

// StorePath is DBPath, or the backend's default file under DataDir.
func (c Config) StorePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	if c.Backend == BackendJSON {
		return filepath.Join(DataDir(), jsonFileName)
	}
	return filepath.Join(DataDir(), sqliteFileName)
}

// Validate rejects unknown backends, themes and log levels. Names are
// matched case-insensitively.
func (c Config) Validate() error {
	if !contains(validBackends, strings.ToLower(c.Backend)) {
		return fmt.Errorf("invalid backend %q: must be one of %v", c.Backend, validBackends)
	}
	if !contains(validThemes, strings.ToLower(c.Theme)) {
		return fmt.Errorf("invalid theme %q: must be one of %v", c.Theme, validThemes)
	}
	if !contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("invalid log level %q: must be one of %v", c.LogLevel, validLogLevels)
	}
	return nil
}

// Level maps LogLevel to a slog level. Unknown values fall back to warn.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	}
	return slog.LevelWarn
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
