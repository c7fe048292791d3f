package config

// Config is the root configuration structure.
type Config struct {
	Account   AccountConfig   `toml:"account"`
	Discovery DiscoveryConfig `toml:"discovery"`
	Defaults  DefaultsConfig  `toml:"defaults"`
	Tail      TailConfig      `toml:"tail"`
	TUI       TUIConfig       `toml:"tui"`
	Log       LogConfig       `toml:"log"`
}

// AccountConfig holds Bose account settings for the smart speaker family.
type AccountConfig struct {
	Email string `toml:"email"`
}

// DiscoveryConfig holds mDNS discovery settings.
type DiscoveryConfig struct {
	Timeout    int  `toml:"timeout"`
	Smart      bool `toml:"smart"`
	SoundTouch bool `toml:"soundtouch"`
}

// DefaultsConfig holds default device and volume settings.
type DefaultsConfig struct {
	Device     string `toml:"device"`
	VolumeStep int    `toml:"volume_step"`
}

// TailConfig holds settings for tail/follow mode.
type TailConfig struct {
	Interval int `toml:"interval"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme"`
	RefreshInterval int    `toml:"refresh_interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}
