// Package config handles all the user-configuration for the auto-splitter
// runtime. Fields are PascalCase here but camelCase in your actual
// config.yml. You can view the defaults with `wasmsplit --config`.
package config

// UserConfig holds all of the user-configurable options
type UserConfig struct {
	// TickRate is the number of guest update() calls per second requested
	// at startup, before the guest ever calls set_tick_rate. Must be > 0.
	TickRate float64 `yaml:"tickRate,omitempty"`

	// LogLevel is one of logrus's level names (debug, info, warn, error).
	// Only consulted when Debug is enabled.
	LogLevel string `yaml:"logLevel,omitempty"`

	// GuestPath is the default path to the guest module to load when none
	// is given on the command line.
	GuestPath string `yaml:"guestPath,omitempty"`
}

// GetDefaultConfig returns the default configuration
func GetDefaultConfig() UserConfig {
	return UserConfig{
		TickRate: 60.0,
		LogLevel: "info",
	}
}
