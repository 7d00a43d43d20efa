// Package config loads and validates YAML configuration for the
// html2png CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-html2png/internal/fileutil"
	"github.com/alnah/go-html2png/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
)

// Config holds all configuration for chart snapshot capture.
type Config struct {
	Input    InputConfig    `yaml:"input"`
	Output   OutputConfig   `yaml:"output"`
	Server   ServerConfig   `yaml:"server"`
	Viewport ViewportConfig `yaml:"viewport"`
	Browser  BrowserConfig  `yaml:"browser"`
	Timing   TimingConfig   `yaml:"timing"`
	Workers  int            `yaml:"workers"` // parallel renders (0 = auto)
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default document directory (empty = must specify)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default image directory (empty = same as source)
}

// ServerConfig defines content server options.
type ServerConfig struct {
	Root string `yaml:"root"` // Served root directory (empty = document's directory)
	Port int    `yaml:"port"` // Preferred port (0 = auto-assign)
}

// ViewportConfig defines capture dimensions.
type ViewportConfig struct {
	Width int     `yaml:"width"` // CSS pixels (0 = default)
	Scale float64 `yaml:"scale"` // device scale factor (0 = default)
}

// BrowserConfig defines browser launch options.
type BrowserConfig struct {
	Bin string `yaml:"bin"` // Chrome/Chromium binary (empty = auto-detect)
}

// TimingConfig defines the readiness delays. Zero values keep the
// library defaults; durations use Go syntax ("3s", "500ms").
type TimingConfig struct {
	InitialSettle    time.Duration `yaml:"initialSettle"`
	EscalationSettle time.Duration `yaml:"escalationSettle"`
	ContainerTimeout time.Duration `yaml:"containerTimeout"`
	LibraryTimeout   time.Duration `yaml:"libraryTimeout"`
	FinalSettle      time.Duration `yaml:"finalSettle"`
	ImageWait        time.Duration `yaml:"imageWait"`
	Navigation       time.Duration `yaml:"navigation"`
}

// Validate checks value ranges. Called automatically by LoadConfig, but
// available for consumers who construct Config manually.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port: must be in 0-65535, got %d", c.Server.Port)
	}
	if c.Viewport.Width < 0 {
		return fmt.Errorf("viewport.width: must not be negative, got %d", c.Viewport.Width)
	}
	if c.Viewport.Scale < 0 {
		return fmt.Errorf("viewport.scale: must not be negative, got %.2f", c.Viewport.Scale)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers: must not be negative, got %d", c.Workers)
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"timing.initialSettle", c.Timing.InitialSettle},
		{"timing.escalationSettle", c.Timing.EscalationSettle},
		{"timing.containerTimeout", c.Timing.ContainerTimeout},
		{"timing.libraryTimeout", c.Timing.LibraryTimeout},
		{"timing.finalSettle", c.Timing.FinalSettle},
		{"timing.imageWait", c.Timing.ImageWait},
		{"timing.navigation", c.Timing.Navigation},
	}
	for _, d := range durations {
		if d.value < 0 {
			return fmt.Errorf("%s: must not be negative, got %s", d.name, d.value)
		}
	}
	return nil
}

// DefaultConfig returns a neutral configuration; zero values defer to
// the library defaults.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard
// locations. Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// resolveConfigPath searches for a config file by name in standard
// locations. Tries extensions in order: .yaml, .yml.
// Tries locations in order: current directory, ~/.config/go-html2png/.
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-html2png", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
