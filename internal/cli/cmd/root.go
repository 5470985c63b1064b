// Package cmd provides Cobra CLI commands for panetree.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/panetree/internal/cli"
	"github.com/bnema/panetree/internal/domain/build"
)

var (
	app       *cli.App
	buildInfo build.Info
	rootCmd   = &cobra.Command{
		Use:   "panetree",
		Short: "An i3-style container tree for tiling compositors",
		Long: `Panetree - the container tree of a tiling window manager, as a library and CLI.

Windows live in the leaves of a tree of containers; every container splits
horizontally or vertically, or shows one child at a time as tabs or a stack.
Sibling sizes are weights that always sum to one, so a workspace keeps its
proportions through resizes, moves, and restores.

Features:
  - Horizontal and vertical splits with weighted sibling sizing
  - Tabbed and stacked containers with per-container focus memory
  - Directional focus and move with i3-style escape to the nearest ancestor
  - Deterministic geometry solving with gaps, scaling, and rounding hooks
  - Layout snapshots saved to SQLite and restored by name

Use 'panetree inspect' for the interactive workspace playground, or explore
the subcommands for scripted runs and snapshot management.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip initialization for commands that don't need app context
			switch cmd.Name() {
			case "help", "completion":
				return nil
			}

			var err error
			app, err = cli.NewApp()
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			// Set build info from main.go
			app.BuildInfo = buildInfo
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app != nil {
				_ = app.Close()
			}
		},
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GetApp returns the initialized app (for use by subcommands).
func GetApp() *cli.App {
	return app
}

// SetBuildInfo sets the build information (called from main.go before Execute).
func SetBuildInfo(info build.Info) {
	buildInfo = info
}
