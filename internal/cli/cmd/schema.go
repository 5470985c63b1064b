package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bnema/panetree/internal/cli/styles"
	"github.com/bnema/panetree/internal/infrastructure/config"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Write the config JSON schema",
	Long: `Generate a JSON schema describing the configuration file and write it
next to the config as config.schema.json, for editor completion and
validation tooling.`,
	RunE: runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	if err := config.GenerateSchemaFile(); err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}

	configDir, err := config.GetConfigDir()
	if err != nil {
		return fmt.Errorf("resolve config directory: %w", err)
	}

	schemaFile := filepath.Join(configDir, "config.schema.json")
	fmt.Printf("%s Schema written to %s\n",
		app.Theme.SuccessStyle.Render(styles.IconConfig),
		app.Theme.Highlight.Render(schemaFile),
	)
	return nil
}
