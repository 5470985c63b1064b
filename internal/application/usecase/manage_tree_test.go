package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/bnema/panetree/internal/domain/entity"
)

func TestInsertIntoEmptyTreeCreatesRoot(t *testing.T) {
	uc := newUC()
	ctx := context.Background()
	tr := entity.NewTree()

	out, err := uc.Insert(ctx, InsertInput{Tree: tr, Window: stubWindow(7)})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if out.Path.String() != "0" {
		t.Fatalf("path = %q, want %q", out.Path.String(), "0")
	}
	assertTree(t, tr, con(entity.LayoutSplitH, weighted(win(7), 1.0)))
	if got := focusedWindow(t, tr); got != 7 {
		t.Fatalf("focus = window %d, want 7", got)
	}
}

func TestInsertUsesConfiguredDefaultMode(t *testing.T) {
	uc := NewManageTreeUseCase(Settings{DefaultMode: entity.LayoutTabbed})
	tr := entity.NewTree()

	insertWindow(t, uc, tr, 1)
	assertTree(t, tr, con(entity.LayoutTabbed, win(1)))
}

func TestInsertPositions(t *testing.T) {
	uc := newUC()
	ctx := context.Background()

	t.Run("at end ignores focus", func(t *testing.T) {
		tr := makeTree(t, con(entity.LayoutSplitH, win(1), win(2)), 1)
		_, err := uc.Insert(ctx, InsertInput{Tree: tr, Window: stubWindow(3), Position: InsertAtEnd})
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		assertTree(t, tr, con(entity.LayoutSplitH, win(1), win(2), win(3)))
	})

	t.Run("after a path", func(t *testing.T) {
		tr := makeTree(t, con(entity.LayoutSplitH, win(1), win(2), win(3)), 3)
		_, err := uc.Insert(ctx, InsertInput{
			Tree:     tr,
			Window:   stubWindow(4),
			Position: InsertAfter,
			Path:     entity.Path{0},
		})
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		assertTree(t, tr, con(entity.LayoutSplitH, win(1), win(4), win(2), win(3)))
	})

	t.Run("first child of a container", func(t *testing.T) {
		tr := makeTree(t, con(entity.LayoutSplitH,
			win(1),
			con(entity.LayoutSplitV, win(2), win(3)),
		), 1)
		_, err := uc.Insert(ctx, InsertInput{
			Tree:     tr,
			Window:   stubWindow(5),
			Position: InsertFirstChild,
			Path:     entity.Path{1},
		})
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		assertTree(t, tr, con(entity.LayoutSplitH,
			win(1),
			con(entity.LayoutSplitV, win(5), win(2), win(3)),
		))
		if got := focusedWindow(t, tr); got != 5 {
			t.Fatalf("focus = window %d, want 5", got)
		}
	})

	t.Run("first child of a leaf fails", func(t *testing.T) {
		tr := makeTree(t, con(entity.LayoutSplitH, win(1), win(2)), 1)
		_, err := uc.Insert(ctx, InsertInput{
			Tree:     tr,
			Window:   stubWindow(5),
			Position: InsertFirstChild,
			Path:     entity.Path{0},
		})
		if !errors.Is(err, ErrNotAContainer) {
			t.Fatalf("err = %v, want ErrNotAContainer", err)
		}
	})

	t.Run("after a dangling path fails", func(t *testing.T) {
		tr := makeTree(t, con(entity.LayoutSplitH, win(1), win(2)), 1)
		_, err := uc.Insert(ctx, InsertInput{
			Tree:     tr,
			Window:   stubWindow(5),
			Position: InsertAfter,
			Path:     entity.Path{9},
		})
		if !errors.Is(err, ErrInvalidPath) {
			t.Fatalf("err = %v, want ErrInvalidPath", err)
		}
	})
}

func TestInsertWithExplicitWeight(t *testing.T) {
	uc := newUC()
	ctx := context.Background()
	tr := makeTree(t, con(entity.LayoutSplitH, win(1), win(2)), 2)

	_, err := uc.Insert(ctx, InsertInput{Tree: tr, Window: stubWindow(3), Weight: 0.5})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	assertTree(t, tr, con(entity.LayoutSplitH,
		weighted(win(1), 0.25),
		weighted(win(2), 0.25),
		weighted(win(3), 0.5),
	))
}

func TestInsertRejectsBadInput(t *testing.T) {
	uc := newUC()
	ctx := context.Background()
	tr := entity.NewTree()

	if _, err := uc.Insert(ctx, InsertInput{Window: stubWindow(1)}); err == nil {
		t.Fatal("expected error for missing tree")
	}
	if _, err := uc.Insert(ctx, InsertInput{Tree: tr}); err == nil {
		t.Fatal("expected error for missing window")
	}
	if _, err := uc.Insert(ctx, InsertInput{Tree: tr, Window: stubWindow(1), Weight: 1.0}); err == nil {
		t.Fatal("expected error for weight 1.0")
	}
	if _, err := uc.Insert(ctx, InsertInput{Tree: tr, Window: stubWindow(1), Weight: -0.2}); err == nil {
		t.Fatal("expected error for negative weight")
	}
}

func TestRemoveLastWindowEmptiesTree(t *testing.T) {
	uc := newUC()
	ctx := context.Background()
	tr := entity.NewTree()
	insertWindow(t, uc, tr, 1)

	out, err := uc.Remove(ctx, RemoveInput{Tree: tr, Window: 1})
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if out.Window == nil || out.Window.ID() != 1 {
		t.Fatalf("removed window = %v, want 1", out.Window)
	}
	if !tr.Empty() {
		t.Fatal("tree should be empty after the last window leaves")
	}
	if tr.Focused != entity.NoNode {
		t.Fatalf("focus = %d, want none", tr.Focused)
	}
	if err := tr.Check(); err != nil {
		t.Fatalf("empty tree invalid: %v", err)
	}
}

func TestRemoveMissingWindow(t *testing.T) {
	uc := newUC()
	ctx := context.Background()
	tr := makeTree(t, con(entity.LayoutSplitH, win(1), win(2)), 1)

	if _, err := uc.Remove(ctx, RemoveInput{Tree: tr, Window: 99}); !errors.Is(err, ErrWindowNotFound) {
		t.Fatalf("err = %v, want ErrWindowNotFound", err)
	}
}

func TestRemoveFocusFallsToNextSibling(t *testing.T) {
	uc := newUC()
	ctx := context.Background()
	tr := makeTree(t, con(entity.LayoutSplitH, win(1), win(2), win(3)), 2)

	if _, err := uc.Remove(ctx, RemoveInput{Tree: tr, Window: 2}); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	assertTree(t, tr, con(entity.LayoutSplitH,
		weighted(win(1), 0.5),
		weighted(win(3), 0.5),
	))
	if got := focusedWindow(t, tr); got != 3 {
		t.Fatalf("focus = window %d, want 3 (next sibling)", got)
	}

	// With no later sibling left, the previous one takes the focus.
	if _, err := uc.Remove(ctx, RemoveInput{Tree: tr, Window: 3}); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got := focusedWindow(t, tr); got != 1 {
		t.Fatalf("focus = window %d, want 1 (previous sibling)", got)
	}
}

func TestRemoveUnfocusedKeepsFocus(t *testing.T) {
	uc := newUC()
	ctx := context.Background()
	tr := makeTree(t, con(entity.LayoutSplitH, win(1), win(2), win(3)), 2)

	if _, err := uc.Remove(ctx, RemoveInput{Tree: tr, Window: 1}); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got := focusedWindow(t, tr); got != 2 {
		t.Fatalf("focus = window %d, want 2", got)
	}
}

func TestSplitFocusedNoopCases(t *testing.T) {
	uc := newUC()
	ctx := context.Background()

	t.Run("empty tree", func(t *testing.T) {
		tr := entity.NewTree()
		ok, err := uc.SplitFocused(ctx, SplitInput{Tree: tr, Mode: entity.LayoutSplitV})
		if err != nil || ok {
			t.Fatalf("SplitFocused on empty tree = %v, %v, want false, nil", ok, err)
		}
	})

	t.Run("parent already in that mode", func(t *testing.T) {
		tr := makeTree(t, con(entity.LayoutSplitH, win(1), win(2)), 1)
		ok, err := uc.SplitFocused(ctx, SplitInput{Tree: tr, Mode: entity.LayoutSplitH})
		if err != nil || !ok {
			t.Fatalf("SplitFocused = %v, %v", ok, err)
		}
		// A same-mode wrapper would immediately dissolve again, so the
		// shape must stay flat.
		assertTree(t, tr, con(entity.LayoutSplitH, win(1), win(2)))
	})

	t.Run("unknown mode", func(t *testing.T) {
		tr := makeTree(t, con(entity.LayoutSplitH, win(1), win(2)), 1)
		if _, err := uc.SplitFocused(ctx, SplitInput{Tree: tr, Mode: "diagonal"}); err == nil {
			t.Fatal("expected error for unknown mode")
		}
	})
}

func TestSplitFocusedWrapKeepsWeight(t *testing.T) {
	uc := newUC()
	ctx := context.Background()
	tr := makeTree(t, con(entity.LayoutSplitH,
		weighted(win(1), 0.7),
		weighted(win(2), 0.3),
	), 1)

	ok, err := uc.SplitFocused(ctx, SplitInput{Tree: tr, Mode: entity.LayoutStacked})
	if err != nil || !ok {
		t.Fatalf("SplitFocused = %v, %v", ok, err)
	}

	// The wrapper takes over the leaf's share; inside it the leaf fills
	// the whole container.
	assertTree(t, tr, con(entity.LayoutSplitH,
		weighted(con(entity.LayoutStacked, weighted(win(1), 1.0)), 0.7),
		weighted(win(2), 0.3),
	))
	if got := focusedWindow(t, tr); got != 1 {
		t.Fatalf("focus = window %d, want 1", got)
	}
}

func TestSplitFocusedOnSelectedContainer(t *testing.T) {
	uc := newUC()
	ctx := context.Background()
	tr := makeTree(t, con(entity.LayoutSplitH,
		win(1),
		con(entity.LayoutSplitV, win(2), win(3)),
	), 2)

	// Raise the selection to the vertical container, then split it.
	if ok, err := uc.FocusParent(ctx, tr); err != nil || !ok {
		t.Fatalf("FocusParent = %v, %v", ok, err)
	}
	if ok, err := uc.SplitFocused(ctx, SplitInput{Tree: tr, Mode: entity.LayoutTabbed}); err != nil || !ok {
		t.Fatalf("SplitFocused = %v, %v", ok, err)
	}

	assertTree(t, tr, con(entity.LayoutSplitH,
		win(1),
		con(entity.LayoutTabbed, con(entity.LayoutSplitV, win(2), win(3))),
	))
}

func TestSetLayoutModeSquashesSameModeChildren(t *testing.T) {
	uc := newUC()
	ctx := context.Background()
	tr := makeTree(t, con(entity.LayoutSplitH,
		win(1),
		con(entity.LayoutSplitV, win(2), win(3)),
	), 1)

	// Retagging the root to splitv makes the nested splitv redundant; its
	// children fold into the root.
	ok, err := uc.SetLayoutMode(ctx, SetLayoutModeInput{Tree: tr, Path: entity.Path{}, Mode: entity.LayoutSplitV})
	if err != nil || !ok {
		t.Fatalf("SetLayoutMode = %v, %v", ok, err)
	}
	assertTree(t, tr, con(entity.LayoutSplitV,
		weighted(win(1), 0.5),
		weighted(win(2), 0.25),
		weighted(win(3), 0.25),
	))
}

func TestSetLayoutModeSquashesIntoSameModeParent(t *testing.T) {
	uc := newUC()
	ctx := context.Background()
	tr := makeTree(t, con(entity.LayoutSplitH,
		win(1),
		con(entity.LayoutSplitV, win(2), win(3)),
	), 1)

	// Retagging the nested container to the parent's own mode dissolves it
	// upward instead of leaving splith-in-splith.
	ok, err := uc.SetLayoutMode(ctx, SetLayoutModeInput{Tree: tr, Path: entity.Path{1}, Mode: entity.LayoutSplitH})
	if err != nil || !ok {
		t.Fatalf("SetLayoutMode = %v, %v", ok, err)
	}
	assertTree(t, tr, con(entity.LayoutSplitH,
		weighted(win(1), 0.5),
		weighted(win(2), 0.25),
		weighted(win(3), 0.25),
	))
}

func TestSetLayoutModeTargets(t *testing.T) {
	uc := newUC()
	ctx := context.Background()
	tr := makeTree(t, con(entity.LayoutSplitH, win(1), win(2)), 1)

	t.Run("dangling path", func(t *testing.T) {
		ok, err := uc.SetLayoutMode(ctx, SetLayoutModeInput{Tree: tr, Path: entity.Path{5}, Mode: entity.LayoutTabbed})
		if err != nil || ok {
			t.Fatalf("SetLayoutMode = %v, %v, want false, nil", ok, err)
		}
	})

	t.Run("leaf target", func(t *testing.T) {
		_, err := uc.SetLayoutMode(ctx, SetLayoutModeInput{Tree: tr, Path: entity.Path{0}, Mode: entity.LayoutTabbed})
		if !errors.Is(err, ErrNotAContainer) {
			t.Fatalf("err = %v, want ErrNotAContainer", err)
		}
	})
}

func TestTakeInsertRoundTripRestoresLayout(t *testing.T) {
	uc := newUC()
	ctx := context.Background()
	tr := makeTree(t, con(entity.LayoutSplitH,
		win(1),
		con(entity.LayoutSplitV, win(2), win(3)),
	), 3)
	viewport := entity.Rect{W: 1000, H: 600}

	before, err := uc.Layout(ctx, LayoutInput{Tree: tr, Viewport: viewport})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	out, err := uc.TakeSubtree(ctx, TakeSubtreeInput{Tree: tr, Path: entity.Path{1}})
	if err != nil {
		t.Fatalf("TakeSubtree: %v", err)
	}
	if out.Weight != 0.5 {
		t.Fatalf("detached weight = %g, want 0.5", out.Weight)
	}
	if !out.Focused {
		t.Fatal("detached subtree held the focus, output should say so")
	}

	// The hole is tidied but the detached nodes stay alive.
	assertTree(t, tr, con(entity.LayoutSplitH, weighted(win(1), 1.0)))
	if _, ok := tr.Node(out.Node); !ok {
		t.Fatal("detached subtree should stay resident")
	}
	if got := focusedWindow(t, tr); got != 1 {
		t.Fatalf("focus = window %d, want 1 while the subtree is out", got)
	}

	err = uc.InsertSubtree(ctx, InsertSubtreeInput{
		Tree:   tr,
		Path:   entity.Path{1},
		Node:   out.Node,
		Weight: out.Weight,
		Focus:  out.Focused,
	})
	if err != nil {
		t.Fatalf("InsertSubtree: %v", err)
	}

	assertTree(t, tr, con(entity.LayoutSplitH,
		weighted(win(1), 0.5),
		weighted(con(entity.LayoutSplitV, win(2), win(3)), 0.5),
	))
	if got := focusedWindow(t, tr); got != 3 {
		t.Fatalf("focus = window %d, want 3 restored", got)
	}

	after, err := uc.Layout(ctx, LayoutInput{Tree: tr, Viewport: viewport})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if !reflect.DeepEqual(before.Geometries, after.Geometries) {
		t.Fatalf("layout changed across the round trip:\nbefore %v\nafter  %v",
			before.Geometries, after.Geometries)
	}
}

func TestTakeSubtreeRoot(t *testing.T) {
	uc := newUC()
	ctx := context.Background()
	tr := makeTree(t, con(entity.LayoutSplitH, win(1), win(2)), 2)

	out, err := uc.TakeSubtree(ctx, TakeSubtreeInput{Tree: tr, Path: entity.Path{}})
	if err != nil {
		t.Fatalf("TakeSubtree: %v", err)
	}
	if !tr.Empty() {
		t.Fatal("tree should be empty after detaching the root")
	}
	if out.Weight != 1.0 || !out.Focused {
		t.Fatalf("out = %+v, want weight 1 and focused", out)
	}

	if err := uc.InsertSubtree(ctx, InsertSubtreeInput{Tree: tr, Node: out.Node, Focus: true}); err != nil {
		t.Fatalf("InsertSubtree: %v", err)
	}
	assertTree(t, tr, con(entity.LayoutSplitH, win(1), win(2)))
	if got := focusedWindow(t, tr); got != 2 {
		t.Fatalf("focus = window %d, want 2", got)
	}
}

func TestInsertSubtreeLeafIntoEmptyTree(t *testing.T) {
	uc := newUC()
	ctx := context.Background()
	tr := makeTree(t, con(entity.LayoutSplitH, win(1), win(2)), 1)

	// Detach a bare leaf, empty the tree, then bring the leaf back.
	out, err := uc.TakeSubtree(ctx, TakeSubtreeInput{Tree: tr, Path: entity.Path{0}})
	if err != nil {
		t.Fatalf("TakeSubtree: %v", err)
	}
	if _, err := uc.TakeSubtree(ctx, TakeSubtreeInput{Tree: tr, Path: entity.Path{}}); err != nil {
		t.Fatalf("TakeSubtree root: %v", err)
	}

	if err := uc.InsertSubtree(ctx, InsertSubtreeInput{Tree: tr, Node: out.Node, Focus: true}); err != nil {
		t.Fatalf("InsertSubtree: %v", err)
	}

	// A lone leaf cannot be the root; it gets a fresh container.
	assertTree(t, tr, con(entity.LayoutSplitH, weighted(win(1), 1.0)))
	if got := focusedWindow(t, tr); got != 1 {
		t.Fatalf("focus = window %d, want 1", got)
	}
}

func TestInsertSubtreeRejectsAttachedNode(t *testing.T) {
	uc := newUC()
	ctx := context.Background()
	tr := makeTree(t, con(entity.LayoutSplitH, win(1), win(2)), 1)

	root := tr.Root
	rootNode, _ := tr.Node(root)
	attached := rootNode.Children[0]

	if err := uc.InsertSubtree(ctx, InsertSubtreeInput{Tree: tr, Path: entity.Path{1}, Node: attached}); err == nil {
		t.Fatal("expected error when the node is still attached")
	}
}

func TestResizeGrowAndShrink(t *testing.T) {
	uc := newUC()
	ctx := context.Background()
	tr := makeTree(t, con(entity.LayoutSplitH, win(1), win(2)), 1)

	if err := uc.Resize(ctx, ResizeInput{Tree: tr, Direction: ResizeGrowWidth, Step: 0.1}); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	assertTree(t, tr, con(entity.LayoutSplitH,
		weighted(win(1), 0.6),
		weighted(win(2), 0.4),
	))

	if err := uc.Resize(ctx, ResizeInput{Tree: tr, Direction: ResizeShrinkWidth, Step: 0.1}); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	assertTree(t, tr, con(entity.LayoutSplitH,
		weighted(win(1), 0.5),
		weighted(win(2), 0.5),
	))
}

func TestResizeClampsToMinimumShare(t *testing.T) {
	uc := NewManageTreeUseCase(Settings{MinWeight: 0.1})
	ctx := context.Background()
	tr := makeTree(t, con(entity.LayoutSplitH, win(1), win(2)), 1)

	// A huge shrink step bottoms out at the configured minimum.
	if err := uc.Resize(ctx, ResizeInput{Tree: tr, Direction: ResizeShrinkWidth, Step: 0.9}); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	assertTree(t, tr, con(entity.LayoutSplitH,
		weighted(win(1), 0.1),
		weighted(win(2), 0.9),
	))

	// And a huge grow step leaves the sibling its minimum.
	if err := uc.Resize(ctx, ResizeInput{Tree: tr, Direction: ResizeGrowWidth, Step: 5}); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	assertTree(t, tr, con(entity.LayoutSplitH,
		weighted(win(1), 0.9),
		weighted(win(2), 0.1),
	))
}

func TestResizeClimbsToMatchingAxis(t *testing.T) {
	uc := newUC()
	ctx := context.Background()
	tr := makeTree(t, con(entity.LayoutSplitH,
		win(1),
		con(entity.LayoutSplitV, win(2), win(3)),
	), 2)

	// Window 2 sits in a vertical split; growing its width resizes the
	// whole vertical container inside the horizontal root.
	if err := uc.Resize(ctx, ResizeInput{Tree: tr, Direction: ResizeGrowWidth, Step: 0.2}); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	assertTree(t, tr, con(entity.LayoutSplitH,
		weighted(win(1), 0.3),
		weighted(con(entity.LayoutSplitV,
			weighted(win(2), 0.5),
			weighted(win(3), 0.5),
		), 0.7),
	))
}

func TestResizeWithoutMatchingAxis(t *testing.T) {
	uc := newUC()
	ctx := context.Background()
	tr := makeTree(t, con(entity.LayoutSplitH, win(1), win(2)), 1)

	err := uc.Resize(ctx, ResizeInput{Tree: tr, Direction: ResizeGrowHeight, Step: 0.1})
	if !errors.Is(err, ErrNothingToResize) {
		t.Fatalf("err = %v, want ErrNothingToResize", err)
	}
}

func TestEqualize(t *testing.T) {
	uc := newUC()
	ctx := context.Background()
	tr := makeTree(t, con(entity.LayoutSplitH,
		weighted(win(1), 0.7),
		weighted(win(2), 0.2),
		weighted(win(3), 0.1),
	), 1)

	ok, err := uc.Equalize(ctx, EqualizeInput{Tree: tr})
	if err != nil || !ok {
		t.Fatalf("Equalize = %v, %v", ok, err)
	}
	third := 1.0 / 3.0
	assertTree(t, tr, con(entity.LayoutSplitH,
		weighted(win(1), third),
		weighted(win(2), third),
		weighted(win(3), third),
	))
}

func TestEqualizeRecursive(t *testing.T) {
	uc := newUC()
	ctx := context.Background()
	tr := makeTree(t, con(entity.LayoutSplitH,
		weighted(win(1), 0.6),
		weighted(con(entity.LayoutSplitV,
			weighted(win(2), 0.8),
			weighted(win(3), 0.2),
		), 0.4),
	), 1)

	ok, err := uc.Equalize(ctx, EqualizeInput{Tree: tr, Recursive: true})
	if err != nil || !ok {
		t.Fatalf("Equalize = %v, %v", ok, err)
	}
	assertTree(t, tr, con(entity.LayoutSplitH,
		weighted(win(1), 0.5),
		weighted(con(entity.LayoutSplitV,
			weighted(win(2), 0.5),
			weighted(win(3), 0.5),
		), 0.5),
	))
}
