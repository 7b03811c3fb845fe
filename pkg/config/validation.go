package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks a Config against its struct tags and a few cross-field
// rules the validator package can't express on its own.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return fmt.Errorf("config validation: telemetry.endpoint is required when telemetry.enabled is true")
	}

	return nil
}
