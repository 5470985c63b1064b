package cmd

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bnema/panetree/internal/application/usecase"
	"github.com/bnema/panetree/internal/cli"
	"github.com/bnema/panetree/internal/cli/styles"
	"github.com/bnema/panetree/internal/domain/entity"
)

var (
	demoWidth  float64
	demoHeight float64
	demoGap    float64
	demoStrip  float64
	demoScale  float64
	demoBoxes  bool
)

var demoCmd = &cobra.Command{
	Use:   "demo [op...]",
	Short: "Build a tree from an op script and print its geometry",
	Long: `Apply a short operation script to an empty workspace tree, then print
the tree dump and the computed geometry.

Operations:
  insert               insert a new window after the focused one
  insert:ID            insert a window with an explicit numeric identity
  splith splitv tabbed stacked
                       split the focused window into a container of that mode
  focus:DIR            move focus left, right, up, or down
  move:DIR             move the focused window left, right, up, or down
  parent, child        retarget focus one level up or back down
  remove               close the focused window
  grow, shrink         resize the focused window wider or narrower
  growv, shrinkv       resize the focused window taller or shorter
  equalize             reset every container to equal child shares

Without arguments a small showcase script runs.

Examples:
  panetree demo
  panetree demo insert insert splitv insert tabbed insert insert
  panetree demo insert insert focus:left grow grow --gap 12`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().Float64Var(&demoWidth, "width", 1920, "viewport width")
	demoCmd.Flags().Float64Var(&demoHeight, "height", 1080, "viewport height")
	demoCmd.Flags().Float64Var(&demoGap, "gap", -1, "gap between split siblings (default from config)")
	demoCmd.Flags().Float64Var(&demoStrip, "strip", -1, "tab indicator strip height (default from config)")
	demoCmd.Flags().Float64Var(&demoScale, "scale", 1.0, "device scale for pixel-grid rounding")
	demoCmd.Flags().BoolVar(&demoBoxes, "boxes", false, "draw the tree as nested boxes")
}

const defaultDemoScript = "insert insert splitv insert tabbed insert insert focus:left grow"

func runDemo(_ *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	ctx := app.Ctx()

	script := args
	if len(script) == 0 {
		script = strings.Fields(defaultDemoScript)
	}

	t := entity.NewTree()
	next := entity.WindowID(1)
	for _, op := range script {
		if err := applyDemoOp(app, t, op, &next); err != nil {
			return fmt.Errorf("op %q: %w", op, err)
		}
	}

	gap := demoGap
	if gap < 0 {
		gap = float64(app.Config.Workspace.Gap)
	}
	strip := demoStrip
	if strip < 0 {
		strip = float64(app.Config.Workspace.IndicatorStrip)
	}

	out, err := app.TreeUC.Layout(ctx, usecase.LayoutInput{
		Tree:           t,
		Viewport:       entity.Rect{W: demoWidth, H: demoHeight},
		Gap:            gap,
		IndicatorStrip: strip,
		Scale:          demoScale,
		Round:          roundToPixelGrid,
	})
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	if _, err := app.TreeUC.ApplyPendingLayout(ctx, t); err != nil {
		return fmt.Errorf("apply layout: %w", err)
	}

	dump, err := app.TreeUC.DebugTree(ctx, t)
	if err != nil {
		return fmt.Errorf("dump tree: %w", err)
	}

	fmt.Println(app.Theme.Title.Render("Tree"))
	fmt.Print(dump)
	fmt.Println()

	if demoBoxes {
		const boxesWidth, boxesHeight = 76, 19
		renderer := styles.NewTreeRenderer(app.Theme)
		fmt.Println(renderer.Render(t, boxesWidth, boxesHeight))
		fmt.Println()
	}

	return outputGeometryTable(t, out.Geometries)
}

// roundToPixelGrid snaps a logical length to the device pixel grid, the
// way a compositor would before handing sizes to clients.
func roundToPixelGrid(scale, length float64) float64 {
	if scale <= 0 {
		return length
	}
	return math.Round(length*scale) / scale
}

func applyDemoOp(app *cli.App, t *entity.Tree, op string, next *entity.WindowID) error {
	ctx := app.Ctx()
	uc := app.TreeUC

	verb, arg, _ := strings.Cut(op, ":")
	switch verb {
	case "insert":
		id := *next
		if arg != "" {
			parsed, err := strconv.ParseUint(arg, 10, 64)
			if err != nil {
				return fmt.Errorf("bad window id %q", arg)
			}
			id = entity.WindowID(parsed)
		}
		if _, err := uc.Insert(ctx, usecase.InsertInput{Tree: t, Window: cli.Window(id)}); err != nil {
			return err
		}
		if id >= *next {
			*next = id + 1
		}
		return nil
	case "splith", "splitv", "tabbed", "stacked":
		mode, _ := entity.ParseLayoutMode(verb)
		_, err := uc.SplitFocused(ctx, usecase.SplitInput{Tree: t, Mode: mode})
		return err
	case "focus":
		dir, ok := entity.ParseDirection(arg)
		if !ok {
			return fmt.Errorf("bad direction %q", arg)
		}
		_, err := uc.FocusInDirection(ctx, usecase.FocusInput{Tree: t, Direction: dir})
		return err
	case "move":
		dir, ok := entity.ParseDirection(arg)
		if !ok {
			return fmt.Errorf("bad direction %q", arg)
		}
		_, err := uc.MoveInDirection(ctx, usecase.MoveInput{Tree: t, Direction: dir})
		return err
	case "parent":
		_, err := uc.FocusParent(ctx, t)
		return err
	case "child":
		_, err := uc.FocusChild(ctx, t)
		return err
	case "remove":
		if t.Empty() {
			return usecase.ErrEmptyTree
		}
		n, _ := t.Node(t.Focused)
		_, err := uc.Remove(ctx, usecase.RemoveInput{Tree: t, Window: n.Window.ID()})
		return err
	case "grow":
		return uc.Resize(ctx, usecase.ResizeInput{Tree: t, Direction: usecase.ResizeGrowWidth})
	case "shrink":
		return uc.Resize(ctx, usecase.ResizeInput{Tree: t, Direction: usecase.ResizeShrinkWidth})
	case "growv":
		return uc.Resize(ctx, usecase.ResizeInput{Tree: t, Direction: usecase.ResizeGrowHeight})
	case "shrinkv":
		return uc.Resize(ctx, usecase.ResizeInput{Tree: t, Direction: usecase.ResizeShrinkHeight})
	case "equalize":
		_, err := uc.Equalize(ctx, usecase.EqualizeInput{Tree: t, Path: entity.Path{}, Recursive: true})
		return err
	default:
		return fmt.Errorf("unknown operation")
	}
}

func outputGeometryTable(t *entity.Tree, geoms []entity.Geometry) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PATH\tNODE\tX\tY\tW\tH\tVISIBLE")

	for _, g := range geoms {
		visible := "yes"
		if !g.Visible {
			visible = "no"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.1f\t%.1f\t%.1f\t%.1f\t%s\n",
			pathLabel(g.Path),
			nodeLabel(t, g),
			g.Rect.X,
			g.Rect.Y,
			g.Rect.W,
			g.Rect.H,
			visible,
		)
	}

	return w.Flush()
}

func pathLabel(p entity.Path) string {
	if len(p) == 0 {
		return "(root)"
	}
	return p.String()
}

func nodeLabel(t *entity.Tree, g entity.Geometry) string {
	if g.Window != nil {
		return fmt.Sprintf("window %d", g.Window.ID())
	}
	if id, ok := t.Resolve(g.Path); ok {
		if n, ok := t.Node(id); ok {
			return string(n.Mode)
		}
	}
	return "?"
}
