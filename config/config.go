// Package config loads pagecheck preferences from a JSON file in the user's
// home directory, overlaid with environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// FileName is the preferences file kept in the home directory.
const FileName = ".pagecheck.json"

type Config struct {
	// PopplerPath is the directory holding pdfinfo and pdftoppm.
	PopplerPath string `json:"poppler_path,omitempty"`
	LogLevel    string `json:"log_level,omitempty"`
	DBPath      string `json:"db_path,omitempty"`
	Addr        string `json:"addr,omitempty"`
	UploadDir   string `json:"upload_dir,omitempty"`
	Locale      string `json:"locale,omitempty"`
	Workers     int    `json:"workers,omitempty"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		DBPath:    "pagecheck.db",
		Addr:      ":8080",
		UploadDir: filepath.Join(os.TempDir(), "pagecheck-uploads"),
		Locale:    "en",
		Workers:   1,
	}
}

// DefaultPath returns $HOME/.pagecheck.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, FileName), nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// ReadFile returns the defaults overlaid with the file at path. A missing
// file is not an error.
func ReadFile(path string) (*Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return c, nil
}

// Load reads the file at path and applies environment overrides.
func Load(path string) (*Config, error) {
	c, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv()
	return c, nil
}

// ApplyEnv overrides fields from PAGECHECK_* environment variables.
func (c *Config) ApplyEnv() {
	c.PopplerPath = getEnv("PAGECHECK_POPPLER_PATH", c.PopplerPath)
	c.LogLevel = getEnv("PAGECHECK_LOG_LEVEL", c.LogLevel)
	c.DBPath = getEnv("PAGECHECK_DB", c.DBPath)
	c.Addr = getEnv("PAGECHECK_ADDR", c.Addr)
	c.UploadDir = getEnv("PAGECHECK_UPLOAD_DIR", c.UploadDir)
	c.Locale = getEnv("PAGECHECK_LOCALE", c.Locale)
	if n, err := strconv.Atoi(getEnv("PAGECHECK_WORKERS", "")); err == nil && n > 0 {
		c.Workers = n
	}
}

// Save writes c to path, creating parent directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Level returns the configured log level, defaulting to Info.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// NewLogger returns a logrus logger at the configured level.
func (c *Config) NewLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(c.Level())
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}
