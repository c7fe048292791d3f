package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Discovery: DiscoveryConfig{
			Timeout:    5,
			Smart:      true,
			SoundTouch: true,
		},
		Defaults: DefaultsConfig{
			VolumeStep: 10,
		},
		Tail: TailConfig{
			Interval: 1000,
		},
		TUI: TUIConfig{
			Theme:           "auto",
			RefreshInterval: 1000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Discovery. The family toggles default to on; TOML cannot distinguish
	// "absent" from "false", so an explicit false requires the section to be
	// present, which loaders handle by pre-seeding from Default().
	if c.Discovery.Timeout == 0 {
		c.Discovery.Timeout = d.Discovery.Timeout
	}

	// Defaults
	if c.Defaults.VolumeStep == 0 {
		c.Defaults.VolumeStep = d.Defaults.VolumeStep
	}

	// Tail
	if c.Tail.Interval == 0 {
		c.Tail.Interval = d.Tail.Interval
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = d.TUI.RefreshInterval
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
