package config

// Default configuration constants
const (
	// Workspace defaults
	defaultGap            = 0      // px
	defaultLayout         = "splith"
	defaultMinWeight      = 0.05   // share of the parent
	defaultIndicatorStrip = 24     // px
	defaultResizeStep     = 0.05   // share of the parent

	// Logging defaults
	defaultLogLevel  = "info"
	defaultLogFormat = "console"

	// Snapshot defaults
	defaultSnapshotsKeep = 20
)

// DefaultConfig returns the default configuration for panetree.
// Database.Path is left empty and resolved against XDG_DATA_HOME at load time.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Workspace: WorkspaceConfig{
			Gap:            defaultGap,
			DefaultLayout:  defaultLayout,
			MinWeight:      defaultMinWeight,
			IndicatorStrip: defaultIndicatorStrip,
			ResizeStep:     defaultResizeStep,
		},
		Snapshots: SnapshotsConfig{
			Keep: defaultSnapshotsKeep,
		},
	}
}
