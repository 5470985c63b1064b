package usecase

import (
	"context"
	"testing"

	"github.com/bnema/panetree/internal/domain/entity"
)

// stubWindow is a minimal window handle for tests.
type stubWindow uint64

func (w stubWindow) ID() entity.WindowID { return entity.WindowID(w) }

// testNode describes a tree shape, both for building fixtures and for
// asserting results.
type testNode struct {
	win      uint64
	mode     entity.LayoutMode
	weight   float64
	children []testNode
}

// win describes a leaf holding the given window identity.
func win(id uint64) testNode { return testNode{win: id} }

// con describes a container; children get equal weights unless wrapped
// with weighted.
func con(mode entity.LayoutMode, children ...testNode) testNode {
	return testNode{mode: mode, children: children}
}

// weighted pins the share the node takes in its parent.
func weighted(n testNode, w float64) testNode {
	n.weight = w
	return n
}

func (n testNode) isLeaf() bool {
	return n.mode == "" && len(n.children) == 0
}

// makeTree builds the described tree and focuses the leaf holding focus.
func makeTree(t *testing.T, root testNode, focus uint64) *entity.Tree {
	t.Helper()
	tr := entity.NewTree()
	tr.Root = buildNode(t, tr, root, entity.NoNode, 1.0)
	leaf, ok := tr.FindWindow(entity.WindowID(focus))
	if !ok {
		t.Fatalf("focus window %d not in tree", focus)
	}
	applyFocus(tr, leaf)
	if err := tr.Check(); err != nil {
		t.Fatalf("built tree is invalid: %v", err)
	}
	return tr
}

func buildNode(t *testing.T, tr *entity.Tree, shape testNode, parent entity.NodeID, weight float64) entity.NodeID {
	t.Helper()
	if shape.weight > 0 {
		weight = shape.weight
	}
	if shape.isLeaf() {
		return tr.Arena.Alloc(entity.Node{Parent: parent, Window: stubWindow(shape.win), Weight: weight})
	}
	if len(shape.children) == 0 {
		t.Fatalf("container %s has no children", shape.mode)
	}
	id := tr.Arena.Alloc(entity.Node{Parent: parent, Mode: shape.mode, Weight: weight})
	n, _ := tr.Node(id)
	share := 1.0 / float64(len(shape.children))
	for _, child := range shape.children {
		n.Children = append(n.Children, buildNode(t, tr, child, id, share))
	}
	n.Active = n.Children[0]
	return id
}

// assertTree verifies the whole tree matches the described shape and that
// the structural invariants hold.
func assertTree(t *testing.T, tr *entity.Tree, want testNode) {
	t.Helper()
	if err := tr.Check(); err != nil {
		t.Fatalf("tree invalid: %v", err)
	}
	assertShape(t, tr, tr.Root, want)
}

func assertShape(t *testing.T, tr *entity.Tree, id entity.NodeID, want testNode) {
	t.Helper()
	n, ok := tr.Node(id)
	if !ok {
		t.Fatalf("node %d does not resolve", id)
	}
	if want.isLeaf() {
		if !n.IsLeaf() {
			t.Fatalf("want window %d, got %s container", want.win, n.Mode)
		}
		if got := uint64(n.Window.ID()); got != want.win {
			t.Fatalf("window = %d, want %d", got, want.win)
		}
	} else {
		if !n.IsContainer() {
			t.Fatalf("want %s container, got window %d", want.mode, n.Window.ID())
		}
		if n.Mode != want.mode {
			t.Fatalf("mode = %s, want %s", n.Mode, want.mode)
		}
		if len(n.Children) != len(want.children) {
			t.Fatalf("%s has %d children, want %d", n.Mode, len(n.Children), len(want.children))
		}
		for i, child := range want.children {
			assertShape(t, tr, n.Children[i], child)
		}
	}
	if want.weight > 0 {
		if diff := n.Weight - want.weight; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("weight of node %d = %g, want %g", id, n.Weight, want.weight)
		}
	}
}

// focusedWindow returns the identity of the currently focused window.
func focusedWindow(t *testing.T, tr *entity.Tree) uint64 {
	t.Helper()
	n, ok := tr.Node(tr.Focused)
	if !ok || !n.IsLeaf() {
		t.Fatalf("focused node %d is not a leaf", tr.Focused)
	}
	return uint64(n.Window.ID())
}

// insertWindow appends a window through the public operation and fails
// the test on error.
func insertWindow(t *testing.T, uc *ManageTreeUseCase, tr *entity.Tree, id uint64) {
	t.Helper()
	if _, err := uc.Insert(context.Background(), InsertInput{Tree: tr, Window: stubWindow(id)}); err != nil {
		t.Fatalf("insert window %d: %v", id, err)
	}
}

func newUC() *ManageTreeUseCase {
	return NewManageTreeUseCase(Settings{})
}
