package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/bnema/panetree/internal/domain/entity"
)

// Long random operation sequences, with the structural invariants checked
// after every single step. Fixed seeds keep failures reproducible.

func TestRandomOperationSequencesKeepInvariants(t *testing.T) {
	for _, seed := range []int64{1, 7, 4242} {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			runRandomSequence(t, seed, 400)
		})
	}
}

func runRandomSequence(t *testing.T, seed int64, steps int) {
	t.Helper()
	uc := newUC()
	ctx := context.Background()
	tr := entity.NewTree()
	r := rand.New(rand.NewSource(seed))
	viewport := entity.Rect{W: 1280, H: 800}

	modes := []entity.LayoutMode{
		entity.LayoutSplitH, entity.LayoutSplitV,
		entity.LayoutTabbed, entity.LayoutStacked,
	}
	dirs := []entity.Direction{
		entity.DirLeft, entity.DirRight, entity.DirUp, entity.DirDown,
	}

	var windows []uint64
	nextWindow := uint64(1)

	fail := func(step int, op string, err error) {
		dump, _ := uc.DebugTree(ctx, tr)
		t.Fatalf("step %d, %s: %v\ntree:\n%s", step, op, err, dump)
	}

	for step := 0; step < steps; step++ {
		op := "insert"
		switch {
		case len(windows) == 0:
			// Keep inserting until there is something to mutate.
		case len(windows) >= 14:
			op = "remove"
		default:
			op = []string{
				"insert", "insert", "insert",
				"remove",
				"split", "set_mode",
				"move", "move",
				"focus_dir", "focus_window", "focus_parent", "focus_child",
				"resize", "equalize",
			}[r.Intn(14)]
		}

		switch op {
		case "insert":
			id := nextWindow
			nextWindow++
			input := InsertInput{Tree: tr, Window: stubWindow(id)}
			switch r.Intn(5) {
			case 0:
				input.Position = InsertAtEnd
			case 1:
				if paths := containerPaths(tr); len(paths) > 0 {
					input.Position = InsertFirstChild
					input.Path = paths[r.Intn(len(paths))]
				}
			}
			if _, err := uc.Insert(ctx, input); err != nil {
				fail(step, op, err)
			}
			windows = append(windows, id)

		case "remove":
			i := r.Intn(len(windows))
			id := windows[i]
			if _, err := uc.Remove(ctx, RemoveInput{Tree: tr, Window: entity.WindowID(id)}); err != nil {
				fail(step, op, err)
			}
			windows = append(windows[:i], windows[i+1:]...)

		case "split":
			mode := modes[r.Intn(len(modes))]
			if _, err := uc.SplitFocused(ctx, SplitInput{Tree: tr, Mode: mode}); err != nil {
				fail(step, op, err)
			}

		case "set_mode":
			paths := containerPaths(tr)
			if len(paths) == 0 {
				continue
			}
			_, err := uc.SetLayoutMode(ctx, SetLayoutModeInput{
				Tree: tr,
				Path: paths[r.Intn(len(paths))],
				Mode: modes[r.Intn(len(modes))],
			})
			if err != nil {
				fail(step, op, err)
			}

		case "move":
			if _, err := uc.MoveInDirection(ctx, MoveInput{Tree: tr, Direction: dirs[r.Intn(4)]}); err != nil {
				fail(step, op, err)
			}

		case "focus_dir":
			if _, err := uc.FocusInDirection(ctx, FocusInput{Tree: tr, Direction: dirs[r.Intn(4)]}); err != nil {
				fail(step, op, err)
			}

		case "focus_window":
			id := windows[r.Intn(len(windows))]
			if _, err := uc.FocusWindow(ctx, tr, entity.WindowID(id)); err != nil {
				fail(step, op, err)
			}

		case "focus_parent":
			if _, err := uc.FocusParent(ctx, tr); err != nil {
				fail(step, op, err)
			}

		case "focus_child":
			if _, err := uc.FocusChild(ctx, tr); err != nil {
				fail(step, op, err)
			}

		case "resize":
			resizes := []ResizeDirection{ResizeGrowWidth, ResizeShrinkWidth, ResizeGrowHeight, ResizeShrinkHeight}
			err := uc.Resize(ctx, ResizeInput{Tree: tr, Direction: resizes[r.Intn(4)]})
			if err != nil && !errors.Is(err, ErrNothingToResize) {
				fail(step, op, err)
			}

		case "equalize":
			paths := containerPaths(tr)
			if len(paths) == 0 {
				continue
			}
			_, err := uc.Equalize(ctx, EqualizeInput{
				Tree:      tr,
				Path:      paths[r.Intn(len(paths))],
				Recursive: r.Intn(2) == 0,
			})
			if err != nil {
				fail(step, op, err)
			}
		}

		if err := tr.Check(); err != nil {
			fail(step, op, err)
		}
		if tr.Empty() != (len(windows) == 0) {
			fail(step, op, fmt.Errorf("tree empty = %v with %d windows tracked", tr.Empty(), len(windows)))
		}
		if !tr.Empty() && tr.Focused == entity.NoNode {
			fail(step, op, fmt.Errorf("non-empty tree lost its focus"))
		}
		if got := tr.LeafCount(); got != len(windows) {
			fail(step, op, fmt.Errorf("tree holds %d leaves, %d windows tracked", got, len(windows)))
		}
		for _, id := range windows {
			if _, ok := tr.FindWindow(entity.WindowID(id)); !ok {
				fail(step, op, fmt.Errorf("window %d disappeared", id))
			}
		}

		if tr.Empty() {
			continue
		}

		switch step % 10 {
		case 3:
			// Layout twice with unchanged input; the output must be
			// byte-identical.
			first, err := uc.Layout(ctx, LayoutInput{Tree: tr, Viewport: viewport, Gap: 4, IndicatorStrip: 20})
			if err != nil {
				fail(step, "layout", err)
			}
			second, err := uc.Layout(ctx, LayoutInput{Tree: tr, Viewport: viewport, Gap: 4, IndicatorStrip: 20})
			if err != nil {
				fail(step, "layout", err)
			}
			if !reflect.DeepEqual(first.Geometries, second.Geometries) {
				fail(step, "layout", fmt.Errorf("repeated layout output differs"))
			}

		case 7:
			checkDetachRoundTrip(t, uc, tr, r, viewport, step)
		}
	}
}

// checkDetachRoundTrip detaches a random subtree and puts it straight
// back; the layout must come out the same, save for float noise from the
// sibling weight renormalization. Nodes whose parent would die with them
// are skipped, since their spot does not survive the detach.
func checkDetachRoundTrip(t *testing.T, uc *ManageTreeUseCase, tr *entity.Tree, r *rand.Rand, viewport entity.Rect, step int) {
	t.Helper()
	ctx := context.Background()

	var candidates []entity.NodeID
	tr.Walk(tr.Root, func(id entity.NodeID, n *entity.Node) bool {
		if id == tr.Root {
			candidates = append(candidates, id)
			return true
		}
		parent, ok := tr.Node(n.Parent)
		if ok && len(parent.Children) >= 2 {
			candidates = append(candidates, id)
		}
		return true
	})
	if len(candidates) == 0 {
		return
	}
	id := candidates[r.Intn(len(candidates))]
	path, ok := tr.PathOf(id)
	if !ok {
		t.Fatalf("step %d: no path for node %d", step, id)
	}

	before, err := uc.Layout(ctx, LayoutInput{Tree: tr, Viewport: viewport})
	if err != nil {
		t.Fatalf("step %d: layout before detach: %v", step, err)
	}

	out, err := uc.TakeSubtree(ctx, TakeSubtreeInput{Tree: tr, Path: path})
	if err != nil {
		t.Fatalf("step %d: TakeSubtree(%s): %v", step, path.String(), err)
	}
	if err := tr.Check(); err != nil {
		t.Fatalf("step %d: tree invalid after detach: %v", step, err)
	}
	err = uc.InsertSubtree(ctx, InsertSubtreeInput{
		Tree:   tr,
		Path:   path,
		Node:   out.Node,
		Weight: out.Weight,
		Focus:  out.Focused,
	})
	if err != nil {
		t.Fatalf("step %d: InsertSubtree(%s): %v", step, path.String(), err)
	}
	if err := tr.Check(); err != nil {
		t.Fatalf("step %d: tree invalid after re-attach: %v", step, err)
	}

	after, err := uc.Layout(ctx, LayoutInput{Tree: tr, Viewport: viewport})
	if err != nil {
		t.Fatalf("step %d: layout after re-attach: %v", step, err)
	}
	if !geometriesMatch(before.Geometries, after.Geometries) {
		dump, _ := uc.DebugTree(ctx, tr)
		t.Fatalf("step %d: detach round trip changed the layout at %s\ntree:\n%s", step, path.String(), dump)
	}
}

// geometriesMatch compares two layout outputs record by record, with a
// tolerance far below a pixel on the rectangles.
func geometriesMatch(a, b []entity.Geometry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Window != b[i].Window || a[i].Visible != b[i].Visible {
			return false
		}
		if a[i].Path.String() != b[i].Path.String() {
			return false
		}
		if !rectsClose(a[i].Rect, b[i].Rect) {
			return false
		}
	}
	return true
}

func rectsClose(a, b entity.Rect) bool {
	const eps = 1e-9
	return math.Abs(a.X-b.X) < eps &&
		math.Abs(a.Y-b.Y) < eps &&
		math.Abs(a.W-b.W) < eps &&
		math.Abs(a.H-b.H) < eps
}

// containerPaths lists the path of every container in the tree.
func containerPaths(tr *entity.Tree) []entity.Path {
	if tr.Empty() {
		return nil
	}
	var paths []entity.Path
	tr.Walk(tr.Root, func(id entity.NodeID, n *entity.Node) bool {
		if n.IsContainer() {
			if p, ok := tr.PathOf(id); ok {
				paths = append(paths, p)
			}
		}
		return true
	})
	return paths
}
