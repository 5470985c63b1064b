package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bnema/panetree/internal/cli"
	"github.com/bnema/panetree/internal/cli/model"
	"github.com/bnema/panetree/internal/domain/entity"
)

var (
	inspectName string
	inspectSeed int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Interactive workspace playground",
	Long: `Open an interactive terminal playground for the container tree.

Windows are synthetic; every key drives the same use-case API a
compositor would call. Arrow keys move focus, shift+arrows move the
focused window, s/v/t/k re-split it into the four layout modes, enter
inserts, x closes, w saves the layout to the snapshot store and r
restores it.`,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectName, "name", "inspector", "snapshot name used by the save key")
	inspectCmd.Flags().IntVar(&inspectSeed, "windows", 3, "windows to pre-insert")
}

func runInspect(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	m := model.NewInspectorModel(app.Ctx(), app.Theme, model.InspectorModelConfig{
		TreeUC:         app.TreeUC,
		Store:          lazyStore{app: app},
		SaveName:       inspectName,
		Gap:            app.Config.Workspace.Gap,
		IndicatorStrip: app.Config.Workspace.IndicatorStrip,
		SeedWindows:    inspectSeed,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// lazyStore opens the snapshot store on first use, so browsing the
// playground never touches the database.
type lazyStore struct {
	app *cli.App
}

func (s lazyStore) Save(ctx context.Context, name string, snapshot *entity.TreeSnapshot) error {
	repo, err := s.app.Snapshots(ctx)
	if err != nil {
		return err
	}
	return repo.Save(ctx, name, snapshot)
}

func (s lazyStore) Get(ctx context.Context, name string) (*entity.TreeSnapshot, error) {
	repo, err := s.app.Snapshots(ctx)
	if err != nil {
		return nil, err
	}
	return repo.Get(ctx, name)
}
