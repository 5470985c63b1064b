package usecase

import (
	"github.com/bnema/panetree/internal/domain/entity"
)

// cleanupStrength selects how aggressively container cleanup rewrites the
// tree. Removal collapses single-child containers; detach and move keep
// them so a later re-attach at the same spot restores the original shape.
type cleanupStrength int

const (
	cleanupStructural cleanupStrength = iota // drop empties, merge same-mode nesting
	cleanupFull                              // also hoist a lone leaf out of its container
)

// freeNode releases a node and drops any selection pointing at it.
func freeNode(t *entity.Tree, id entity.NodeID) {
	if t.Selected == id {
		t.Selected = entity.NoNode
	}
	t.Arena.Free(id)
}

// insertChildAt splices child into parent's children at idx. A weight of 0
// picks the default share 1/(n+1); existing siblings shrink proportionally
// to make room.
func insertChildAt(t *entity.Tree, parentID, childID entity.NodeID, idx int, weight float64) {
	parent, _ := t.Node(parentID)
	n := len(parent.Children)
	if weight <= 0 {
		weight = 1.0 / float64(n+1)
	}
	if n == 0 {
		weight = 1.0
	}
	scale := 1.0 - weight
	for _, sib := range parent.Children {
		sn, _ := t.Node(sib)
		sn.Weight *= scale
	}

	if idx < 0 {
		idx = 0
	}
	if idx > n {
		idx = n
	}
	parent.Children = append(parent.Children, entity.NoNode)
	copy(parent.Children[idx+1:], parent.Children[idx:])
	parent.Children[idx] = childID

	child, _ := t.Node(childID)
	child.Parent = parentID
	child.Weight = weight
	if parent.Active == entity.NoNode {
		parent.Active = childID
	}
}

// removeChild splices child out of parent's children and rescales the
// remaining siblings back to a unit sum. Returns the child's old index.
func removeChild(t *entity.Tree, parentID, childID entity.NodeID) int {
	parent, _ := t.Node(parentID)
	idx := parent.ChildIndex(childID)
	if idx < 0 {
		return -1
	}
	child, _ := t.Node(childID)
	freed := child.Weight

	parent.Children = append(parent.Children[:idx], parent.Children[idx+1:]...)
	if parent.Active == childID {
		parent.Active = entity.NoNode
	}
	if rest := 1.0 - freed; rest > entity.WeightTolerance {
		for _, sib := range parent.Children {
			sn, _ := t.Node(sib)
			sn.Weight /= rest
		}
	} else if len(parent.Children) > 0 {
		equalizeChildren(t, parent)
	}
	return idx
}

// replaceChild puts newChild into oldChild's slot, inheriting its weight.
func replaceChild(t *entity.Tree, parentID, oldChild, newChild entity.NodeID) {
	parent, _ := t.Node(parentID)
	idx := parent.ChildIndex(oldChild)
	if idx < 0 {
		return
	}
	old, _ := t.Node(oldChild)
	repl, _ := t.Node(newChild)
	repl.Parent = parentID
	repl.Weight = old.Weight
	parent.Children[idx] = newChild
	if parent.Active == oldChild {
		parent.Active = newChild
	}
}

// flattenIntoParent merges a container's children into its parent at the
// container's own slot, scaling their weights by the container's share.
// The container itself is freed.
func flattenIntoParent(t *entity.Tree, parentID, containerID entity.NodeID) {
	parent, _ := t.Node(parentID)
	container, _ := t.Node(containerID)
	idx := parent.ChildIndex(containerID)
	if idx < 0 {
		return
	}

	grandchildren := container.Children
	for _, gc := range grandchildren {
		gn, _ := t.Node(gc)
		gn.Parent = parentID
		gn.Weight *= container.Weight
	}

	merged := make([]entity.NodeID, 0, len(parent.Children)-1+len(grandchildren))
	merged = append(merged, parent.Children[:idx]...)
	merged = append(merged, grandchildren...)
	merged = append(merged, parent.Children[idx+1:]...)
	parent.Children = merged

	if parent.Active == containerID {
		parent.Active = container.Active
		if parent.Active == entity.NoNode && len(grandchildren) > 0 {
			parent.Active = grandchildren[0]
		}
	}
	freeNode(t, containerID)
}

// equalizeChildren resets the container's children to equal shares.
func equalizeChildren(t *entity.Tree, parent *entity.Node) {
	n := len(parent.Children)
	if n == 0 {
		return
	}
	share := 1.0 / float64(n)
	for _, child := range parent.Children {
		cn, _ := t.Node(child)
		cn.Weight = share
	}
}

// attachSubtree inserts a detached node under parent at idx. A container
// that shares the parent's mode dissolves into it on the spot, keeping the
// no-same-mode-nesting shape without a separate cleanup pass.
func attachSubtree(t *entity.Tree, parentID, nodeID entity.NodeID, idx int, weight float64) {
	parent, _ := t.Node(parentID)
	node, _ := t.Node(nodeID)

	if !node.IsContainer() || node.Mode != parent.Mode {
		insertChildAt(t, parentID, nodeID, idx, weight)
		return
	}

	n := len(parent.Children)
	if weight <= 0 {
		weight = 1.0 / float64(n+1)
	}
	if n == 0 {
		weight = 1.0
	}
	scale := 1.0 - weight
	for _, sib := range parent.Children {
		sn, _ := t.Node(sib)
		sn.Weight *= scale
	}
	if idx < 0 {
		idx = 0
	}
	if idx > n {
		idx = n
	}

	children := node.Children
	for _, child := range children {
		cn, _ := t.Node(child)
		cn.Parent = parentID
		cn.Weight *= weight
	}
	merged := make([]entity.NodeID, 0, n+len(children))
	merged = append(merged, parent.Children[:idx]...)
	merged = append(merged, children...)
	merged = append(merged, parent.Children[idx:]...)
	parent.Children = merged

	if parent.Active == entity.NoNode && len(children) > 0 {
		parent.Active = children[0]
	}
	freeNode(t, nodeID)
}

// cleanup walks from the given container up to the root, dropping empty
// containers, merging same-mode parent/child pairs, and (at full strength)
// hoisting a lone leaf out of its non-root container.
func cleanup(t *entity.Tree, fromID entity.NodeID, strength cleanupStrength) {
	cur := fromID
	for cur != entity.NoNode {
		n, ok := t.Node(cur)
		if !ok {
			return
		}
		parentID := n.Parent

		if n.IsContainer() {
			if len(n.Children) == 0 {
				if cur == t.Root {
					t.Root = entity.NoNode
					t.Focused = entity.NoNode
					t.Selected = entity.NoNode
					freeNode(t, cur)
					return
				}
				removeChild(t, parentID, cur)
				freeNode(t, cur)
				cur = parentID
				continue
			}

			if strength == cleanupFull && len(n.Children) == 1 && cur != t.Root {
				child := n.Children[0]
				cn, _ := t.Node(child)
				if cn.IsLeaf() {
					replaceChild(t, parentID, cur, child)
					freeNode(t, cur)
					cur = parentID
					continue
				}
				if cn.Mode == n.Mode {
					flattenIntoParent(t, cur, child)
					continue
				}
				// A lone container child with a different mode is an
				// explicit nesting choice; keep it.
			}

			if parentID != entity.NoNode {
				pn, ok := t.Node(parentID)
				if ok && pn.IsContainer() && pn.Mode == n.Mode {
					flattenIntoParent(t, parentID, cur)
					cur = parentID
					continue
				}
			}
		}
		cur = parentID
	}
}

// isInSubtree reports whether node lies in the subtree rooted at root.
func isInSubtree(t *entity.Tree, root, node entity.NodeID) bool {
	cur := node
	for cur != entity.NoNode {
		if cur == root {
			return true
		}
		n, ok := t.Node(cur)
		if !ok {
			return false
		}
		cur = n.Parent
	}
	return false
}

// applyFocus makes leaf the focused leaf and records it in the
// active-child history of every ancestor. A selection made with
// FocusParent is dropped as soon as the focused leaf changes.
func applyFocus(t *entity.Tree, leaf entity.NodeID) {
	if leaf == entity.NoNode {
		t.Focused = entity.NoNode
		t.Selected = entity.NoNode
		return
	}
	changed := t.Focused != leaf
	t.Focused = leaf
	cur := leaf
	for {
		n, ok := t.Node(cur)
		if !ok || n.Parent == entity.NoNode {
			break
		}
		parent, ok := t.Node(n.Parent)
		if !ok {
			break
		}
		parent.Active = cur
		cur = n.Parent
	}
	if changed {
		t.Selected = entity.NoNode
	}
}

// focusAfterDetach picks the leaf to focus after the child at idx left
// parentID: the next sibling first, then the previous, then the focus
// history of the ancestors.
func focusAfterDetach(t *entity.Tree, parentID entity.NodeID, idx int) entity.NodeID {
	cur := parentID
	avoid := entity.NoNode
	hint := idx
	for cur != entity.NoNode {
		n, ok := t.Node(cur)
		if !ok {
			return entity.NoNode
		}
		if leaf := descendAround(t, n, hint, avoid); leaf != entity.NoNode {
			return leaf
		}
		if n.Parent == entity.NoNode {
			return entity.NoNode
		}
		pn, ok := t.Node(n.Parent)
		if !ok {
			return entity.NoNode
		}
		avoid = cur
		hint = pn.ChildIndex(cur)
		cur = n.Parent
	}
	return entity.NoNode
}

// descendAround tries the child at hint, then later siblings, then earlier
// ones, skipping avoid, and returns the first reachable leaf.
func descendAround(t *entity.Tree, n *entity.Node, hint int, avoid entity.NodeID) entity.NodeID {
	count := len(n.Children)
	if count == 0 {
		return entity.NoNode
	}
	if hint < 0 {
		hint = 0
	}
	if hint >= count {
		hint = count - 1
	}
	for i := hint; i < count; i++ {
		if leaf := focusableLeaf(t, n.Children[i], avoid); leaf != entity.NoNode {
			return leaf
		}
	}
	for i := hint - 1; i >= 0; i-- {
		if leaf := focusableLeaf(t, n.Children[i], avoid); leaf != entity.NoNode {
			return leaf
		}
	}
	return entity.NoNode
}

func focusableLeaf(t *entity.Tree, child, avoid entity.NodeID) entity.NodeID {
	if child == avoid {
		return entity.NoNode
	}
	leaf, ok := t.ActiveLeaf(child)
	if !ok {
		return entity.NoNode
	}
	return leaf
}
