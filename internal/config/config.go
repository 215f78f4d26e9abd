package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the config file is absent or fields are unset.
const (
	DefaultHostTitle      = "tabdock"
	DefaultPollIntervalMS = 2000
	DefaultTabBarHeight   = 28
	DefaultStatusHeight   = 20
	DefaultInitialWidth   = 1024
	DefaultInitialHeight  = 720
)

// Config holds the tabdock host configuration.
type Config struct {
	// HostTitle is the host window's title (also used to exclude the host
	// from enumeration on backends that can't compare window IDs early).
	HostTitle string `yaml:"host_title"`

	// PollIntervalMS is the window re-enumeration interval in milliseconds.
	PollIntervalMS int `yaml:"poll_interval_ms"`

	// TabBarHeight is the tab strip height in pixels.
	TabBarHeight int `yaml:"tab_bar_height"`

	// StatusBarHeight is the bottom status line height in pixels.
	StatusBarHeight int `yaml:"status_bar_height"`

	// InitialWidth/InitialHeight size the host window at startup.
	InitialWidth  int `yaml:"initial_width"`
	InitialHeight int `yaml:"initial_height"`

	// ExcludeTitles hides windows whose title contains one of these
	// substrings (case-insensitive) from the capture menu.
	ExcludeTitles []string `yaml:"exclude_titles,omitempty"`

	// CaptureHotkey captures the currently focused window into the host
	// (X11 only, xgbutil keybind syntax, e.g. "Mod4-grave"). Empty disables.
	CaptureHotkey string `yaml:"capture_hotkey,omitempty"`

	// ReleaseHotkey releases the selected tab back to the desktop
	// (X11 only). Empty disables.
	ReleaseHotkey string `yaml:"release_hotkey,omitempty"`
}

// Default returns a config with all defaults applied.
func Default() *Config {
	return &Config{
		HostTitle:       DefaultHostTitle,
		PollIntervalMS:  DefaultPollIntervalMS,
		TabBarHeight:    DefaultTabBarHeight,
		StatusBarHeight: DefaultStatusHeight,
		InitialWidth:    DefaultInitialWidth,
		InitialHeight:   DefaultInitialHeight,
	}
}

// PollInterval returns the enumeration interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// DefaultConfigPath returns ~/.config/tabdock/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "tabdock", "config.yaml"), nil
}

// Load reads the config from the standard location. A missing file is not
// an error: defaults are returned.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromFile(path)
}

// LoadFromFile reads and validates a config file. A missing file yields the
// defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills zero-valued fields so a partial file works.
func (c *Config) applyDefaults() {
	if c.HostTitle == "" {
		c.HostTitle = DefaultHostTitle
	}
	if c.PollIntervalMS == 0 {
		c.PollIntervalMS = DefaultPollIntervalMS
	}
	if c.TabBarHeight == 0 {
		c.TabBarHeight = DefaultTabBarHeight
	}
	if c.StatusBarHeight == 0 {
		c.StatusBarHeight = DefaultStatusHeight
	}
	if c.InitialWidth == 0 {
		c.InitialWidth = DefaultInitialWidth
	}
	if c.InitialHeight == 0 {
		c.InitialHeight = DefaultInitialHeight
	}
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.PollIntervalMS < 100 || c.PollIntervalMS > 60000 {
		return fmt.Errorf("poll_interval_ms must be between 100 and 60000, got %d", c.PollIntervalMS)
	}
	if c.TabBarHeight < 16 || c.TabBarHeight > 100 {
		return fmt.Errorf("tab_bar_height must be between 16 and 100, got %d", c.TabBarHeight)
	}
	if c.StatusBarHeight < 0 || c.StatusBarHeight > 100 {
		return fmt.Errorf("status_bar_height must be between 0 and 100, got %d", c.StatusBarHeight)
	}
	if c.InitialWidth < 200 || c.InitialHeight < 200 {
		return fmt.Errorf("initial window size must be at least 200x200, got %dx%d", c.InitialWidth, c.InitialHeight)
	}
	return nil
}

// Print writes the effective config as YAML.
func (c *Config) Print(w *os.File) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = w.Write(data)
	return err
}
