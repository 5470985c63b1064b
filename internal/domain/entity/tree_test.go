package entity

import "testing"

type testWindow WindowID

func (w testWindow) ID() WindowID { return WindowID(w) }

func addContainer(tr *Tree, parent NodeID, mode LayoutMode, weight float64) NodeID {
	id := tr.Arena.Alloc(Node{Parent: parent, Mode: mode, Weight: weight})
	attachChild(tr, parent, id)
	return id
}

func addLeaf(tr *Tree, parent NodeID, win WindowID, weight float64) NodeID {
	id := tr.Arena.Alloc(Node{Parent: parent, Window: testWindow(win), Weight: weight})
	attachChild(tr, parent, id)
	return id
}

func attachChild(tr *Tree, parent, child NodeID) {
	if parent == NoNode {
		return
	}
	p, _ := tr.Arena.Get(parent)
	p.Children = append(p.Children, child)
	if p.Active == NoNode {
		p.Active = child
	}
}

// sampleTree builds:
//
//	splith
//	├── window 1
//	└── splitv
//	    ├── window 2
//	    └── window 3
func sampleTree(t *testing.T) (*Tree, map[string]NodeID) {
	t.Helper()
	tr := NewTree()
	root := addContainer(tr, NoNode, LayoutSplitH, 1.0)
	tr.Root = root
	a := addLeaf(tr, root, 1, 0.5)
	inner := addContainer(tr, root, LayoutSplitV, 0.5)
	b := addLeaf(tr, inner, 2, 0.5)
	c := addLeaf(tr, inner, 3, 0.5)
	tr.Focused = a

	if err := tr.Check(); err != nil {
		t.Fatalf("sample tree is invalid: %v", err)
	}
	return tr, map[string]NodeID{"root": root, "a": a, "inner": inner, "b": b, "c": c}
}

func TestTree_Resolve(t *testing.T) {
	tr, ids := sampleTree(t)

	tests := []struct {
		name string
		path Path
		want NodeID
		ok   bool
	}{
		{name: "root", path: Path{}, want: ids["root"], ok: true},
		{name: "first leaf", path: Path{0}, want: ids["a"], ok: true},
		{name: "nested container", path: Path{1}, want: ids["inner"], ok: true},
		{name: "nested leaf", path: Path{1, 1}, want: ids["c"], ok: true},
		{name: "index out of range", path: Path{2}, ok: false},
		{name: "descends into leaf", path: Path{0, 0}, ok: false},
		{name: "negative index", path: Path{-1}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tr.Resolve(tt.path)
			if ok != tt.ok {
				t.Fatalf("Resolve(%v) ok = %v, want %v", tt.path, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("Resolve(%v) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestTree_ResolveEmpty(t *testing.T) {
	tr := NewTree()
	if _, ok := tr.Resolve(Path{}); ok {
		t.Error("Resolve on empty tree succeeded")
	}
}

func TestTree_PathOf(t *testing.T) {
	tr, ids := sampleTree(t)

	for name, id := range ids {
		path, ok := tr.PathOf(id)
		if !ok {
			t.Fatalf("PathOf(%s) failed", name)
		}
		back, ok := tr.Resolve(path)
		if !ok || back != id {
			t.Errorf("Resolve(PathOf(%s)) = %v, want %v", name, back, id)
		}
	}
}

func TestTree_PathOfDetached(t *testing.T) {
	tr, _ := sampleTree(t)

	orphan := tr.Arena.Alloc(Node{Window: testWindow(99), Weight: 1.0})
	if _, ok := tr.PathOf(orphan); ok {
		t.Error("PathOf succeeded for a node outside the tree")
	}

	stale := tr.Arena.Alloc(Node{Window: testWindow(100), Weight: 1.0})
	tr.Arena.Free(stale)
	if _, ok := tr.PathOf(stale); ok {
		t.Error("PathOf succeeded for a freed node")
	}
}

func TestTree_FindWindow(t *testing.T) {
	tr, ids := sampleTree(t)

	got, ok := tr.FindWindow(2)
	if !ok || got != ids["b"] {
		t.Errorf("FindWindow(2) = %v, %v; want %v, true", got, ok, ids["b"])
	}
	if _, ok := tr.FindWindow(42); ok {
		t.Error("FindWindow(42) succeeded for absent window")
	}
}

func TestTree_ActiveLeaf(t *testing.T) {
	tr, ids := sampleTree(t)

	inner, _ := tr.Node(ids["inner"])
	inner.Active = ids["c"]
	root, _ := tr.Node(ids["root"])
	root.Active = ids["inner"]

	got, ok := tr.ActiveLeaf(tr.Root)
	if !ok || got != ids["c"] {
		t.Errorf("ActiveLeaf(root) = %v, want %v", got, ids["c"])
	}

	// A stale active falls back to the first child.
	inner.Active = NoNode
	got, ok = tr.ActiveLeaf(tr.Root)
	if !ok || got != ids["b"] {
		t.Errorf("ActiveLeaf with cleared active = %v, want %v", got, ids["b"])
	}
}

func TestTree_LeafCount(t *testing.T) {
	tr, _ := sampleTree(t)
	if got := tr.LeafCount(); got != 3 {
		t.Errorf("LeafCount() = %d, want 3", got)
	}
	if got := NewTree().LeafCount(); got != 0 {
		t.Errorf("LeafCount() on empty tree = %d, want 0", got)
	}
}

func TestTree_WalkStopsEarly(t *testing.T) {
	tr, _ := sampleTree(t)

	visited := 0
	tr.Walk(tr.Root, func(_ NodeID, _ *Node) bool {
		visited++
		return visited < 2
	})
	if visited != 2 {
		t.Errorf("visited %d nodes after stop, want 2", visited)
	}
}

func TestTree_Check(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		tr, _ := sampleTree(t)
		if err := tr.Check(); err != nil {
			t.Errorf("Check() = %v", err)
		}
	})

	t.Run("empty tree", func(t *testing.T) {
		if err := NewTree().Check(); err != nil {
			t.Errorf("Check() on empty tree = %v", err)
		}
	})

	t.Run("weights out of balance", func(t *testing.T) {
		tr, ids := sampleTree(t)
		n, _ := tr.Node(ids["a"])
		n.Weight = 0.9
		if err := tr.Check(); err == nil {
			t.Error("Check() passed with sibling weights summing to 1.4")
		}
	})

	t.Run("same-mode nesting", func(t *testing.T) {
		tr, ids := sampleTree(t)
		n, _ := tr.Node(ids["inner"])
		n.Mode = LayoutSplitH
		if err := tr.Check(); err == nil {
			t.Error("Check() passed with same-mode child container")
		}
	})

	t.Run("broken parent link", func(t *testing.T) {
		tr, ids := sampleTree(t)
		n, _ := tr.Node(ids["b"])
		n.Parent = ids["root"]
		if err := tr.Check(); err == nil {
			t.Error("Check() passed with wrong parent back-reference")
		}
	})

	t.Run("focus on container", func(t *testing.T) {
		tr, ids := sampleTree(t)
		tr.Focused = ids["inner"]
		if err := tr.Check(); err == nil {
			t.Error("Check() passed with a container focused")
		}
	})
}
