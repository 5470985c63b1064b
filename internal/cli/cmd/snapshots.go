package cmd

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/panetree/internal/cli"
	"github.com/bnema/panetree/internal/cli/styles"
)

var (
	snapshotsJSON bool
	snapshotsKeep int
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Manage saved layouts",
	Long: `View and manage named layout snapshots.

Layouts are saved from the inspector ('w' key) and stored in a local
SQLite database. A snapshot records the container structure, layout
modes, weights, and the focus chain; window identities are re-bound
when the layout is restored.

Run without arguments to list the saved layouts.`,
	RunE: runSnapshotsList,
}

func init() {
	rootCmd.AddCommand(snapshotsCmd)
}

// snapshots list
var snapshotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved layouts",
	RunE:  runSnapshotsList,
}

func init() {
	snapshotsCmd.AddCommand(snapshotsListCmd)
	snapshotsListCmd.Flags().BoolVar(&snapshotsJSON, "json", false, "output as JSON")
}

func runSnapshotsList(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	repo, err := app.Snapshots(app.Ctx())
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}

	items, err := repo.List(app.Ctx())
	if err != nil {
		return fmt.Errorf("list layouts: %w", err)
	}

	if snapshotsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	renderer := styles.NewSnapshotsCLIRenderer(app.Theme)
	fmt.Println(renderer.RenderList(items, app.DatabasePath()))
	return nil
}

// snapshots show <name>
var snapshotsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a saved layout's tree",
	Long: `Restore a saved layout into an in-memory tree and print it.

The stored window identities are re-bound to synthetic windows, so the
printed tree matches what a compositor would rebuild from the snapshot.`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshotsShow,
}

func init() {
	snapshotsCmd.AddCommand(snapshotsShowCmd)
}

func runSnapshotsShow(_ *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	name := args[0]

	repo, err := app.Snapshots(app.Ctx())
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}

	snap, err := repo.Get(app.Ctx(), name)
	if err != nil {
		return fmt.Errorf("load layout: %w", err)
	}
	if snap == nil {
		return fmt.Errorf("no layout named %q", name)
	}

	t, err := app.TreeUC.Restore(app.Ctx(), snap, cli.ResolveWindow)
	if err != nil {
		return fmt.Errorf("restore layout: %w", err)
	}

	dump, err := app.TreeUC.DebugTree(app.Ctx(), t)
	if err != nil {
		return fmt.Errorf("dump tree: %w", err)
	}

	renderer := styles.NewSnapshotsCLIRenderer(app.Theme)
	fmt.Println(renderer.RenderShowHeader(name))
	fmt.Print(dump)
	fmt.Println()

	const boxesWidth, boxesHeight = 76, 19
	treeRenderer := styles.NewTreeRenderer(app.Theme)
	fmt.Println(treeRenderer.Render(t, boxesWidth, boxesHeight))

	saved := app.Theme.Subtle.Render(fmt.Sprintf("saved %s", snap.SavedAt.Format("2006-01-02 15:04:05")))
	windows := app.Theme.BadgeMuted.Render(fmt.Sprintf("%d windows", snap.CountLeaves()))
	fmt.Printf("\n%s  %s\n", windows, saved)
	return nil
}

// snapshots rm <name>
var snapshotsRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a saved layout",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotsRm,
}

func init() {
	snapshotsCmd.AddCommand(snapshotsRmCmd)
}

func runSnapshotsRm(_ *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	name := args[0]

	repo, err := app.Snapshots(app.Ctx())
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}

	if err := repo.Delete(app.Ctx(), name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("no layout named %q", name)
		}
		return fmt.Errorf("delete layout: %w", err)
	}

	renderer := styles.NewSnapshotsCLIRenderer(app.Theme)
	fmt.Println(renderer.RenderDeleted(name))
	return nil
}

// snapshots prune
var snapshotsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop all but the most recent layouts",
	Long: `Delete saved layouts beyond the retention count, keeping the most
recently updated ones. The default count comes from snapshots.keep in
the config.`,
	RunE: runSnapshotsPrune,
}

func init() {
	snapshotsCmd.AddCommand(snapshotsPruneCmd)
	snapshotsPruneCmd.Flags().IntVar(&snapshotsKeep, "keep", -1, "layouts to keep (default from config)")
}

func runSnapshotsPrune(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	keep := snapshotsKeep
	if keep < 0 {
		keep = app.Config.Snapshots.Keep
	}

	repo, err := app.Snapshots(app.Ctx())
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}

	removed, err := repo.Prune(app.Ctx(), keep)
	if err != nil {
		return fmt.Errorf("prune layouts: %w", err)
	}

	renderer := styles.NewSnapshotsCLIRenderer(app.Theme)
	fmt.Println(renderer.RenderPruned(removed, keep))
	return nil
}
