package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
)

// Config represents the complete configuration for panetree.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database" toml:"database"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging" toml:"logging"`
	// Workspace defines how the container tree splits, sizes, and decorates panes.
	Workspace WorkspaceConfig `mapstructure:"workspace" yaml:"workspace" toml:"workspace"`
	// Snapshots controls retention of saved layouts.
	Snapshots SnapshotsConfig `mapstructure:"snapshots" yaml:"snapshots" toml:"snapshots"`
}

// DatabaseConfig holds the saved-layout store configuration.
type DatabaseConfig struct {
	// Path to the SQLite file. Resolved to the XDG data dir when empty.
	Path string `mapstructure:"path" yaml:"path" toml:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" toml:"level"`
	Format string `mapstructure:"format" yaml:"format" toml:"format"`
}

// WorkspaceConfig holds tiling behavior configuration.
type WorkspaceConfig struct {
	// Gap is the spacing in pixels between adjacent panes of a split.
	Gap int `mapstructure:"gap" yaml:"gap" toml:"gap"`
	// DefaultLayout is the mode of containers created implicitly: one of
	// splith, splitv, tabbed, stacked.
	DefaultLayout string `mapstructure:"default_layout" yaml:"default_layout" toml:"default_layout"`
	// MinWeight is the smallest share of its parent a pane can be resized to.
	MinWeight float64 `mapstructure:"min_weight" yaml:"min_weight" toml:"min_weight"`
	// IndicatorStrip is the height in pixels reserved for the tab or stack
	// title bar at the top of tabbed and stacked containers.
	IndicatorStrip int `mapstructure:"indicator_strip" yaml:"indicator_strip" toml:"indicator_strip"`
	// ResizeStep is the weight delta applied per resize keystroke.
	ResizeStep float64 `mapstructure:"resize_step" yaml:"resize_step" toml:"resize_step"`
}

// SnapshotsConfig holds saved-layout retention configuration.
type SnapshotsConfig struct {
	// Keep is how many snapshots prune retains, newest first.
	Keep int `mapstructure:"keep" yaml:"keep" toml:"keep"`
}

// GenerateSchemaFile generates a JSON schema file for the configuration.
// This is called when a default config is created and by the schema command.
func GenerateSchemaFile() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	schemaFile := filepath.Join(configDir, "config.schema.json")

	r := new(jsonschema.Reflector)
	schema := r.Reflect(&Config{})

	schema.ID = "https://github.com/bnema/panetree/config.schema.json"
	schema.Title = "Panetree Configuration"
	schema.Description = "Configuration schema for panetree, a tiling container tree library and toolkit"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	if err := os.WriteFile(schemaFile, data, filePerm); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}

	return nil
}
