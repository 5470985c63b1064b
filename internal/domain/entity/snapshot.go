package entity

import (
	"fmt"
	"time"
)

// LayoutSnapshotVersion is the current schema version for layout snapshots.
// Increment when making breaking changes to the serialization format.
const LayoutSnapshotVersion = 1

// TreeSnapshot is the structured export of a container tree: plain data,
// serializable to JSON, consumable by IPC layers and the snapshot store.
type TreeSnapshot struct {
	Version int           `json:"version"`
	Root    *NodeSnapshot `json:"root,omitempty"`
	SavedAt time.Time     `json:"saved_at"`
}

// NodeSnapshot captures one node of the tree.
type NodeSnapshot struct {
	Window   WindowID        `json:"window,omitempty"` // non-zero for leaf nodes
	Mode     LayoutMode      `json:"mode,omitempty"`   // set for containers
	Weight   float64         `json:"weight"`
	Active   int             `json:"active,omitempty"`   // index of the active child
	Children []*NodeSnapshot `json:"children,omitempty"` // non-nil for containers
}

// IsLeaf reports whether this snapshot node wraps a window.
func (s *NodeSnapshot) IsLeaf() bool {
	return len(s.Children) == 0 && s.Mode == ""
}

// SnapshotFromTree exports the live tree. The inverse is TreeFromSnapshot.
func SnapshotFromTree(t *Tree) *TreeSnapshot {
	snap := &TreeSnapshot{
		Version: LayoutSnapshotVersion,
		SavedAt: time.Now(),
	}
	if t == nil || t.Root == NoNode {
		return snap
	}
	snap.Root = snapshotNode(t, t.Root)
	return snap
}

func snapshotNode(t *Tree, id NodeID) *NodeSnapshot {
	n, ok := t.Arena.Get(id)
	if !ok {
		return nil
	}

	snap := &NodeSnapshot{Weight: n.Weight}

	if n.IsLeaf() {
		snap.Window = n.Window.ID()
		return snap
	}

	snap.Mode = n.Mode
	if idx := n.ChildIndex(n.Active); idx > 0 {
		snap.Active = idx
	}
	snap.Children = make([]*NodeSnapshot, 0, len(n.Children))
	for _, child := range n.Children {
		if childSnap := snapshotNode(t, child); childSnap != nil {
			snap.Children = append(snap.Children, childSnap)
		}
	}
	return snap
}

// CountLeaves returns the number of windows captured in the snapshot.
func (s *TreeSnapshot) CountLeaves() int {
	return countLeavesInNode(s.Root)
}

func countLeavesInNode(node *NodeSnapshot) int {
	if node == nil {
		return 0
	}
	if node.IsLeaf() {
		return 1
	}
	count := 0
	for _, child := range node.Children {
		count += countLeavesInNode(child)
	}
	return count
}

// CountNodes returns the total number of nodes captured in the snapshot.
func (s *TreeSnapshot) CountNodes() int {
	return countNodesInNode(s.Root)
}

func countNodesInNode(node *NodeSnapshot) int {
	if node == nil {
		return 0
	}
	count := 1
	for _, child := range node.Children {
		count += countNodesInNode(child)
	}
	return count
}

// WindowResolver maps a snapshot's window identity back to a live window
// handle. Handles are opaque capabilities, so the caller owns the mapping.
type WindowResolver func(WindowID) Window

// TreeFromSnapshot rebuilds a tree from a snapshot, re-binding windows
// through the resolver. This is the inverse of SnapshotFromTree: the
// rebuilt tree produces identical layout geometry. Sibling weights are
// renormalized on import so hand-edited snapshots heal instead of failing.
func TreeFromSnapshot(snap *TreeSnapshot, resolve WindowResolver) (*Tree, error) {
	t := NewTree()
	if snap == nil || snap.Root == nil {
		return t, nil
	}
	if snap.Version > LayoutSnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d is newer than supported %d", snap.Version, LayoutSnapshotVersion)
	}

	root, err := nodeFromSnapshot(t, snap.Root, NoNode, resolve)
	if err != nil {
		return nil, err
	}

	rootNode, _ := t.Arena.Get(root)
	if rootNode.IsLeaf() {
		// The root is always a container; wrap a bare leaf.
		wrapped := t.Arena.Alloc(Node{
			Mode:     LayoutSplitH,
			Children: []NodeID{root},
			Active:   root,
		})
		rootNode.Parent = wrapped
		rootNode.Weight = 1.0
		root = wrapped
	}

	t.Root = root
	if focused, ok := t.ActiveLeaf(root); ok {
		t.Focused = focused
	}
	return t, nil
}

func nodeFromSnapshot(t *Tree, snap *NodeSnapshot, parent NodeID, resolve WindowResolver) (NodeID, error) {
	weight := snap.Weight
	if weight <= 0 {
		weight = 1.0
	}

	if snap.IsLeaf() {
		win := resolve(snap.Window)
		if win == nil {
			return NoNode, fmt.Errorf("window %d cannot be resolved", snap.Window)
		}
		return t.Arena.Alloc(Node{Parent: parent, Window: win, Weight: weight}), nil
	}

	mode := snap.Mode
	if _, ok := ParseLayoutMode(string(mode)); !ok {
		return NoNode, fmt.Errorf("unknown layout mode %q", snap.Mode)
	}
	if len(snap.Children) == 0 {
		return NoNode, fmt.Errorf("container snapshot with no children")
	}

	id := t.Arena.Alloc(Node{Parent: parent, Mode: mode, Weight: weight})

	children := make([]NodeID, 0, len(snap.Children))
	sum := 0.0
	for _, childSnap := range snap.Children {
		child, err := nodeFromSnapshot(t, childSnap, id, resolve)
		if err != nil {
			return NoNode, err
		}
		children = append(children, child)
		childNode, _ := t.Arena.Get(child)
		sum += childNode.Weight
	}
	for _, child := range children {
		childNode, _ := t.Arena.Get(child)
		childNode.Weight /= sum
	}

	n, _ := t.Arena.Get(id)
	n.Children = children
	active := snap.Active
	if active < 0 || active >= len(children) {
		active = 0
	}
	n.Active = children[active]
	return id, nil
}
