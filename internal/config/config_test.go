package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[account]
email = "listener@example.com"

[discovery]
timeout = 2
soundtouch = false

[defaults]
device = "Living Room"
volume_step = 5

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Account.Email != "listener@example.com" {
		t.Errorf("Account.Email = %q", cfg.Account.Email)
	}
	if cfg.Discovery.Timeout != 2 {
		t.Errorf("Discovery.Timeout = %d, want 2", cfg.Discovery.Timeout)
	}
	if cfg.Discovery.SoundTouch {
		t.Error("Discovery.SoundTouch = true, want false from file")
	}
	if !cfg.Discovery.Smart {
		t.Error("Discovery.Smart = false, want default true")
	}
	if cfg.Defaults.Device != "Living Room" {
		t.Errorf("Defaults.Device = %q", cfg.Defaults.Device)
	}
	if cfg.Defaults.VolumeStep != 5 {
		t.Errorf("Defaults.VolumeStep = %d, want 5", cfg.Defaults.VolumeStep)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}

	// Unset sections fall back to defaults.
	if cfg.Tail.Interval != 1000 {
		t.Errorf("Tail.Interval = %d, want default 1000", cfg.Tail.Interval)
	}
	if cfg.TUI.Theme != "auto" {
		t.Errorf("TUI.Theme = %q, want default auto", cfg.TUI.Theme)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CHIME_ACCOUNT_EMAIL", "env@example.com")
	t.Setenv("CHIME_DISCOVERY_TIMEOUT", "9")
	t.Setenv("CHIME_LOG_LEVEL", "warn")

	cfg := Default()
	applyEnvOverrides(cfg)

	if cfg.Account.Email != "env@example.com" {
		t.Errorf("Account.Email = %q", cfg.Account.Email)
	}
	if cfg.Discovery.Timeout != 9 {
		t.Errorf("Discovery.Timeout = %d, want 9", cfg.Discovery.Timeout)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"bad email", func(c *Config) { c.Account.Email = "not-an-email" }, true},
		{"negative timeout", func(c *Config) { c.Discovery.Timeout = -1 }, true},
		{"no families", func(c *Config) { c.Discovery.Smart = false; c.Discovery.SoundTouch = false }, true},
		{"bad volume step", func(c *Config) { c.Defaults.VolumeStep = 0 }, true},
		{"bad theme", func(c *Config) { c.TUI.Theme = "sepia" }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
