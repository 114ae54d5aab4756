package config

import "fmt"

// Validate validates the user config
func (config *UserConfig) Validate() error {
	if config.TickRate <= 0 {
		return fmt.Errorf("tickRate must be greater than zero, got %v", config.TickRate)
	}
	return nil
}
