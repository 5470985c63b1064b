// Package cli provides CLI commands using Bubble Tea TUI.
package cli

import (
	"context"
	"fmt"

	"github.com/bnema/panetree/internal/application/usecase"
	"github.com/bnema/panetree/internal/cli/styles"
	"github.com/bnema/panetree/internal/domain/build"
	"github.com/bnema/panetree/internal/domain/entity"
	"github.com/bnema/panetree/internal/domain/repository"
	"github.com/bnema/panetree/internal/infrastructure/config"
	"github.com/bnema/panetree/internal/infrastructure/persistence/sqlite"
	"github.com/bnema/panetree/internal/logging"
)

// Window is the synthetic window surface the CLI plants in the trees it
// builds: a stable identity and nothing else.
type Window entity.WindowID

// ID implements entity.Window.
func (w Window) ID() entity.WindowID {
	return entity.WindowID(w)
}

// ResolveWindow rebinds snapshot window identities when a layout is
// restored outside a compositor.
func ResolveWindow(id entity.WindowID) entity.Window {
	return Window(id)
}

// App holds CLI dependencies.
type App struct {
	Config    *config.Config
	Theme     *styles.Theme
	BuildInfo build.Info

	// Use cases
	TreeUC *usecase.ManageTreeUseCase

	lazyDB    *sqlite.LazyDB
	snapshots repository.LayoutSnapshotRepository

	// Context with logger
	ctx context.Context
}

// NewApp creates a new CLI application with all dependencies. The
// snapshot database is opened lazily; commands that never touch it pay
// nothing for it.
func NewApp() (*App, error) {
	mgr, err := config.NewManager()
	if err != nil {
		return nil, fmt.Errorf("create config manager: %w", err)
	}
	if err := mgr.Load(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := mgr.Get()

	logger := logging.NewFromConfigValues(cfg.Logging.Level, cfg.Logging.Format)
	ctx := logging.WithContext(context.Background(), logger)

	mode, ok := entity.ParseLayoutMode(cfg.Workspace.DefaultLayout)
	if !ok {
		mode = entity.LayoutSplitH
	}
	treeUC := usecase.NewManageTreeUseCase(usecase.Settings{
		DefaultMode: mode,
		MinWeight:   cfg.Workspace.MinWeight,
		ResizeStep:  cfg.Workspace.ResizeStep,
	})

	return &App{
		Config: cfg,
		Theme:  styles.NewTheme(),
		TreeUC: treeUC,
		lazyDB: sqlite.NewLazyDB(cfg.Database.Path),
		ctx:    ctx,
	}, nil
}

// Snapshots returns the layout snapshot repository, opening the
// database on first use.
func (a *App) Snapshots(ctx context.Context) (repository.LayoutSnapshotRepository, error) {
	if a.snapshots != nil {
		return a.snapshots, nil
	}
	db, err := a.lazyDB.DB(ctx)
	if err != nil {
		return nil, err
	}
	a.snapshots = sqlite.NewLayoutSnapshotRepository(db)
	return a.snapshots, nil
}

// DatabasePath returns the snapshot database location.
func (a *App) DatabasePath() string {
	return a.lazyDB.Path()
}

// Close releases all resources.
func (a *App) Close() error {
	return a.lazyDB.Close()
}

// Ctx returns the application context with logger.
func (a *App) Ctx() context.Context {
	return a.ctx
}
