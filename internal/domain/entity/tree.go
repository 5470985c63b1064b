package entity

import (
	"fmt"
	"math"
)

// WeightTolerance is the float slack allowed when sibling weights are
// checked against 1.0.
const WeightTolerance = 1e-6

// Tree is the container tree of one workspace: an arena of nodes, the root
// container, the focused leaf, and the computed geometry snapshots.
//
// The tree is owned by a single control thread and holds no locks; every
// operation runs to completion before returning. Pending holds a geometry
// snapshot computed but not yet promoted to Live (deferred until external
// clients acknowledge their new sizes); it is nil when nothing is staged.
type Tree struct {
	Arena    *Arena
	Root     NodeID // NoNode when the tree is empty
	Focused  NodeID // focused leaf; NoNode when the tree is empty
	Selected NodeID // selection for parent/child focus targeting; NoNode when cleared

	Live    []Geometry
	Pending []Geometry
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{Arena: NewArena()}
}

// Empty reports whether the tree has no nodes.
func (t *Tree) Empty() bool {
	return t.Root == NoNode
}

// Node resolves an ID through the arena.
func (t *Tree) Node(id NodeID) (*Node, bool) {
	return t.Arena.Get(id)
}

// Resolve walks child indices from the root and returns the addressed node.
func (t *Tree) Resolve(path Path) (NodeID, bool) {
	if t.Root == NoNode {
		return NoNode, false
	}
	id := t.Root
	for _, idx := range path {
		n, ok := t.Arena.Get(id)
		if !ok || idx < 0 || idx >= len(n.Children) {
			return NoNode, false
		}
		id = n.Children[idx]
	}
	return id, true
}

// PathOf walks parent links up to the root and returns the node's path.
// Returns false for stale IDs and for nodes detached from the tree.
func (t *Tree) PathOf(id NodeID) (Path, bool) {
	if _, ok := t.Arena.Get(id); !ok {
		return nil, false
	}
	var rev []int
	cur := id
	for cur != t.Root {
		n, ok := t.Arena.Get(cur)
		if !ok || n.Parent == NoNode {
			return nil, false
		}
		parent, ok := t.Arena.Get(n.Parent)
		if !ok {
			return nil, false
		}
		idx := parent.ChildIndex(cur)
		if idx < 0 {
			return nil, false
		}
		rev = append(rev, idx)
		cur = n.Parent
	}
	path := make(Path, len(rev))
	for i := range rev {
		path[i] = rev[len(rev)-1-i]
	}
	return path, true
}

// Walk visits the subtree under id depth-first. The visitor returns false
// to stop the walk.
func (t *Tree) Walk(id NodeID, visit func(NodeID, *Node) bool) bool {
	n, ok := t.Arena.Get(id)
	if !ok {
		return true
	}
	if !visit(id, n) {
		return false
	}
	for _, child := range n.Children {
		if !t.Walk(child, visit) {
			return false
		}
	}
	return true
}

// FindWindow returns the leaf holding the window with the given identity.
func (t *Tree) FindWindow(id WindowID) (NodeID, bool) {
	if t.Root == NoNode {
		return NoNode, false
	}
	found := NoNode
	t.Walk(t.Root, func(nid NodeID, n *Node) bool {
		if n.IsLeaf() && n.Window.ID() == id {
			found = nid
			return false
		}
		return true
	})
	return found, found != NoNode
}

// ActiveLeaf descends the active-child chain from id down to a leaf. For a
// container whose Active no longer resolves, the first child is used.
func (t *Tree) ActiveLeaf(id NodeID) (NodeID, bool) {
	cur := id
	for {
		n, ok := t.Arena.Get(cur)
		if !ok {
			return NoNode, false
		}
		if n.IsLeaf() {
			return cur, true
		}
		if len(n.Children) == 0 {
			return NoNode, false
		}
		next := n.Active
		if next == NoNode || n.ChildIndex(next) < 0 {
			next = n.Children[0]
		}
		cur = next
	}
}

// LeafCount returns the number of leaves reachable from the root.
func (t *Tree) LeafCount() int {
	count := 0
	if t.Root == NoNode {
		return 0
	}
	t.Walk(t.Root, func(_ NodeID, n *Node) bool {
		if n.IsLeaf() {
			count++
		}
		return true
	})
	return count
}

// Check verifies the structural invariants of the tree. It is exercised
// from tests after every mutation step; no release code path calls it.
func (t *Tree) Check() error {
	if t.Root == NoNode {
		if t.Focused != NoNode {
			return fmt.Errorf("empty tree holds focus %d", t.Focused)
		}
		return nil
	}

	root, ok := t.Arena.Get(t.Root)
	if !ok {
		return fmt.Errorf("root %d does not resolve", t.Root)
	}
	if !root.IsContainer() {
		return fmt.Errorf("root %d is not a container", t.Root)
	}
	if root.Parent != NoNode {
		return fmt.Errorf("root %d has parent %d", t.Root, root.Parent)
	}

	var walk func(id NodeID) error
	walk = func(id NodeID) error {
		n, ok := t.Arena.Get(id)
		if !ok {
			return fmt.Errorf("node %d does not resolve", id)
		}
		if n.IsLeaf() {
			if len(n.Children) != 0 {
				return fmt.Errorf("leaf %d has children", id)
			}
			return nil
		}
		if len(n.Children) == 0 {
			return fmt.Errorf("container %d has no children", id)
		}
		sum := 0.0
		for _, cid := range n.Children {
			child, ok := t.Arena.Get(cid)
			if !ok {
				return fmt.Errorf("child %d of %d does not resolve", cid, id)
			}
			if child.Parent != id {
				return fmt.Errorf("child %d of %d has parent %d", cid, id, child.Parent)
			}
			if child.Weight <= 0 || child.Weight > 1+WeightTolerance {
				return fmt.Errorf("child %d of %d has weight %g", cid, id, child.Weight)
			}
			if child.IsContainer() && child.Mode == n.Mode {
				return fmt.Errorf("container %d nests same-mode container %d (%s)", id, cid, n.Mode)
			}
			sum += child.Weight
		}
		if math.Abs(sum-1.0) > WeightTolerance {
			return fmt.Errorf("children of %d weigh %.9f", id, sum)
		}
		if n.Active != NoNode && n.ChildIndex(n.Active) < 0 {
			return fmt.Errorf("container %d active child %d is not a child", id, n.Active)
		}
		for _, cid := range n.Children {
			if err := walk(cid); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(t.Root); err != nil {
		return err
	}

	focused, ok := t.Arena.Get(t.Focused)
	if !ok {
		return fmt.Errorf("focused %d does not resolve", t.Focused)
	}
	if !focused.IsLeaf() {
		return fmt.Errorf("focused %d is not a leaf", t.Focused)
	}
	if _, ok := t.PathOf(t.Focused); !ok {
		return fmt.Errorf("focused %d is detached from the tree", t.Focused)
	}
	return nil
}
