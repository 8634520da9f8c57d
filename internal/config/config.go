// Package config loads the front-end's own settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Theme values accepted by Config.Theme.
const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)

type Config struct {
	JJBin        string        `yaml:"jj_bin"`
	IdleInterval time.Duration `yaml:"idle_interval"`
	NotifyDelay  time.Duration `yaml:"notify_delay"`
	Watch        bool          `yaml:"watch"`
	Syntax       bool          `yaml:"syntax"`
	Theme        string        `yaml:"theme"`
	Revset       string        `yaml:"revset"`
	LogFile      string        `yaml:"log_file"`
}

func Default() *Config {
	return &Config{
		JJBin:        "jj",
		IdleInterval: time.Second,
		NotifyDelay:  100 * time.Millisecond,
		Watch:        true,
		Syntax:       true,
		Theme:        ThemeAuto,
	}
}

// DefaultPath is `$XDG_CONFIG_HOME/jjk/config.yaml` or the platform
// equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "jjk", "config.yaml"), nil
}

// Load reads path on top of the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Theme {
	case ThemeAuto, ThemeLight, ThemeDark:
	default:
		return fmt.Errorf("invalid theme %q (want auto, light or dark)", c.Theme)
	}
	if c.IdleInterval <= 0 {
		return fmt.Errorf("idle_interval must be positive, got %s", c.IdleInterval)
	}
	if c.NotifyDelay <= 0 {
		return fmt.Errorf("notify_delay must be positive, got %s", c.NotifyDelay)
	}
	return nil
}

// DefaultLogFile is where logs go when no log file is configured.
func DefaultLogFile() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "jjk", "jjk.log")
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "jjk", "jjk.log")
	}
	return filepath.Join(os.TempDir(), "jjk.log")
}
