// Package config handles TOML-based configuration loading and validation.
// The file is parsed as data only; nothing in it is executed.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const appName = "tuner"

// Config holds all application configuration.
type Config struct {
	Player       string `toml:"player"`
	StationsFile string `toml:"stations_file"`
	Volume       int    `toml:"volume"`
	History      bool   `toml:"history"`
	UI           string `toml:"ui"`
	LogFile      string `toml:"log_file"`
	Debug        bool   `toml:"debug"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Player:  "mpv",
		Volume:  70,
		History: true,
		UI:      "auto",
		Debug:   false,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	validPlayers := map[string]bool{
		"mpv": true,
	}
	if !validPlayers[strings.ToLower(c.Player)] {
		return fmt.Errorf("unsupported player %q (valid: mpv)", c.Player)
	}

	validUIs := map[string]bool{
		"auto": true, "tui": true, "plain": true,
	}
	if !validUIs[strings.ToLower(c.UI)] {
		return fmt.Errorf("unsupported ui %q (valid: auto, tui, plain)", c.UI)
	}

	if c.Volume < 0 || c.Volume > 100 {
		return fmt.Errorf("volume %d out of range (valid: 0-100)", c.Volume)
	}

	return nil
}

// StationsPath resolves the station catalog file. An explicit stations_file
// wins; otherwise stations.toml next to the config file is used.
func (c *Config) StationsPath() (string, error) {
	if c.StationsFile != "" {
		return expandHome(c.StationsFile)
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "stations.toml"), nil
}

// LogPath resolves where diagnostics go while the terminal UI owns the screen.
func (c *Config) LogPath() (string, error) {
	if c.LogFile != "" {
		return expandHome(c.LogFile)
	}
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, appName, appName+".log"), nil
}

// HistoryPath returns the path to the listening log database.
func HistoryPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, appName, "history.db"), nil
}

func expandHome(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(path)
}
