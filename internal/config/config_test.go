package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromFileMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HostTitle != DefaultHostTitle {
		t.Fatalf("expected default host title, got %q", cfg.HostTitle)
	}
	if cfg.PollInterval() != 2*time.Second {
		t.Fatalf("expected 2s poll interval, got %v", cfg.PollInterval())
	}
}

func TestLoadFromFilePartialFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "poll_interval_ms: 500\nexclude_titles:\n  - secret\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PollIntervalMS != 500 {
		t.Fatalf("expected poll interval 500, got %d", cfg.PollIntervalMS)
	}
	if cfg.TabBarHeight != DefaultTabBarHeight {
		t.Fatalf("expected default tab bar height, got %d", cfg.TabBarHeight)
	}
	if len(cfg.ExcludeTitles) != 1 || cfg.ExcludeTitles[0] != "secret" {
		t.Fatalf("expected exclude_titles [secret], got %v", cfg.ExcludeTitles)
	}
}

func TestLoadFromFileRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("poll_interval_ms: 5\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Fatalf("expected validation error for tiny poll interval")
	}
}

func TestLoadFromFileRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("host_title: [unclosed\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidateRanges(t *testing.T) {
	cfg := Default()
	cfg.TabBarHeight = 4
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for tab_bar_height below minimum")
	}

	cfg = Default()
	cfg.InitialWidth = 100
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for tiny initial size")
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}
