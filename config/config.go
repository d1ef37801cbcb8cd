package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Background names the two supported canvas colors.
type Background string

const (
	BackgroundBlack Background = "black"
	BackgroundWhite Background = "white"
)

// Config is the main configuration structure
type Config struct {
	Colormap   string     `json:"colormap,omitempty"`
	Background Background `json:"background,omitempty"`
	AutoRange  bool       `json:"autoRange"`
	Downsample int        `json:"downsample,omitempty"` // ticks per time bin
	LastPath   string     `json:"lastPath,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Colormap:   "Channel",
		Background: BackgroundBlack,
		AutoRange:  true,
		Downsample: 10,
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "midi-roll"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Downsample <= 0 {
		cfg.Downsample = 10
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
