// Package config provides configuration management for panetree with Viper integration.
package config

import (
	"fmt"
	"strings"
)

// validateConfig performs comprehensive validation of configuration values.
// Invalid values fail the load; they are never silently corrected.
func validateConfig(config *Config) error {
	var validationErrors []string

	if config.Workspace.Gap < 0 {
		validationErrors = append(validationErrors, "workspace.gap must be non-negative")
	}

	switch config.Workspace.DefaultLayout {
	case "splith", "splitv", "tabbed", "stacked":
		// Valid
	default:
		validationErrors = append(validationErrors, fmt.Sprintf("workspace.default_layout must be one of: splith, splitv, tabbed, stacked (got: %s)", config.Workspace.DefaultLayout))
	}

	if config.Workspace.MinWeight <= 0 || config.Workspace.MinWeight >= 1 {
		validationErrors = append(validationErrors, "workspace.min_weight must be between 0 and 1 exclusive")
	}

	if config.Workspace.IndicatorStrip < 0 {
		validationErrors = append(validationErrors, "workspace.indicator_strip must be non-negative")
	}

	if config.Workspace.ResizeStep <= 0 || config.Workspace.ResizeStep >= 1 {
		validationErrors = append(validationErrors, "workspace.resize_step must be between 0 and 1 exclusive")
	}

	switch config.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
		// Valid
	default:
		validationErrors = append(validationErrors, fmt.Sprintf("logging.level must be one of: trace, debug, info, warn, error (got: %s)", config.Logging.Level))
	}

	switch config.Logging.Format {
	case "console", "json":
		// Valid
	default:
		validationErrors = append(validationErrors, fmt.Sprintf("logging.format must be 'console' or 'json' (got: %s)", config.Logging.Format))
	}

	if config.Snapshots.Keep < 0 {
		validationErrors = append(validationErrors, "snapshots.keep must be non-negative")
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(validationErrors, "\n  - "))
	}

	return nil
}
