package usecase

import (
	"context"
	"fmt"

	"github.com/bnema/panetree/internal/domain/entity"
	"github.com/bnema/panetree/internal/logging"
)

// FocusInput contains parameters for directional focus movement.
type FocusInput struct {
	Tree      *entity.Tree
	Direction entity.Direction
}

// FocusInDirection moves the focus to the neighboring leaf in the given
// direction. The search starts at the focused leaf and climbs: at each
// ancestor whose layout runs along the direction's axis the adjacent
// sibling is taken and descended into via its focus history. Returns
// false when the edge of the tree is reached.
func (uc *ManageTreeUseCase) FocusInDirection(ctx context.Context, input FocusInput) (bool, error) {
	log := logging.FromContext(ctx)
	if input.Tree == nil {
		return false, fmt.Errorf("tree is required")
	}
	if _, ok := entity.ParseDirection(string(input.Direction)); !ok {
		return false, fmt.Errorf("unknown direction %q", input.Direction)
	}
	t := input.Tree
	if t.Empty() {
		return false, nil
	}

	cur := t.Selected
	if _, ok := t.Node(cur); !ok {
		cur = t.Focused
	}

	for {
		n, ok := t.Node(cur)
		if !ok || n.Parent == entity.NoNode {
			return false, nil
		}
		parent, _ := t.Node(n.Parent)

		if parent.Mode.Axis() == input.Direction.Axis() {
			idx := parent.ChildIndex(cur)
			next := idx - 1
			if input.Direction.Forward() {
				next = idx + 1
			}
			if next >= 0 && next < len(parent.Children) {
				leaf, ok := t.ActiveLeaf(parent.Children[next])
				if !ok {
					return false, nil
				}
				applyFocus(t, leaf)
				log.Debug().
					Str("direction", string(input.Direction)).
					Uint64("leaf", uint64(leaf)).
					Msg("focus moved")
				return true, nil
			}
		}
		cur = n.Parent
	}
}

// MoveInput contains parameters for directional window movement.
type MoveInput struct {
	Tree      *entity.Tree
	Direction entity.Direction
}

// MoveInDirection relocates the focused leaf (or the selected container)
// one step in the given direction. Three placements are tried in order:
// swap with the adjacent sibling when the parent's axis matches; slide
// into an adjacent sibling container laid out along the direction's axis;
// re-parent next to an ancestor once one of them matches the axis.
// Returns false when no placement applies.
func (uc *ManageTreeUseCase) MoveInDirection(ctx context.Context, input MoveInput) (bool, error) {
	log := logging.FromContext(ctx)
	if input.Tree == nil {
		return false, fmt.Errorf("tree is required")
	}
	if _, ok := entity.ParseDirection(string(input.Direction)); !ok {
		return false, fmt.Errorf("unknown direction %q", input.Direction)
	}
	t := input.Tree
	if t.Empty() {
		return false, nil
	}
	dir := input.Direction

	moving := t.Selected
	if _, ok := t.Node(moving); !ok {
		moving = t.Focused
	}
	if moving == t.Root {
		return false, nil
	}
	node, ok := t.Node(moving)
	if !ok {
		return false, nil
	}
	parentID := node.Parent
	parent, _ := t.Node(parentID)
	idx := parent.ChildIndex(moving)
	focusInside := isInSubtree(t, moving, t.Focused)

	if parent.Mode.Axis() == dir.Axis() {
		next := idx - 1
		if dir.Forward() {
			next = idx + 1
		}
		if next >= 0 && next < len(parent.Children) {
			// Swap places with the sibling; the weights stay with the
			// slots, so both subtrees take over each other's share.
			sib := parent.Children[next]
			sn, _ := t.Node(sib)
			parent.Children[idx], parent.Children[next] = sib, moving
			node.Weight, sn.Weight = sn.Weight, node.Weight
			if focusInside {
				applyFocus(t, t.Focused)
			}
			log.Info().
				Str("direction", string(dir)).
				Uint64("node", uint64(moving)).
				Msg("node swapped with sibling")
			return true, nil
		}
	} else {
		// Slide into a neighboring container that runs along the
		// direction's axis, entering at the side the node came from.
		for _, next := range []int{idx + 1, idx - 1} {
			if next < 0 || next >= len(parent.Children) {
				continue
			}
			sib := parent.Children[next]
			sn, _ := t.Node(sib)
			if !sn.IsContainer() || sn.Mode.Axis() != dir.Axis() {
				continue
			}
			removeChild(t, parentID, moving)
			at := len(sn.Children)
			if dir.Forward() {
				at = 0
			}
			attachSubtree(t, sib, moving, at, 0)
			cleanup(t, parentID, cleanupStructural)
			if focusInside {
				applyFocus(t, t.Focused)
			}
			log.Info().
				Str("direction", string(dir)).
				Uint64("node", uint64(moving)).
				Uint64("into", uint64(sib)).
				Msg("node moved into neighboring container")
			return true, nil
		}
	}

	// Escape upward: re-parent next to the first ancestor laid out along
	// the direction's axis.
	anc := parentID
	for {
		an, ok := t.Node(anc)
		if !ok || an.Parent == entity.NoNode {
			return false, nil
		}
		grand := an.Parent
		gn, _ := t.Node(grand)
		if gn.Mode.Axis() != dir.Axis() {
			anc = grand
			continue
		}

		at := gn.ChildIndex(anc)
		if dir.Forward() {
			at++
		}
		removeChild(t, parentID, moving)
		attachSubtree(t, grand, moving, at, 0)
		cleanup(t, parentID, cleanupStructural)
		if focusInside {
			applyFocus(t, t.Focused)
		}
		log.Info().
			Str("direction", string(dir)).
			Uint64("node", uint64(moving)).
			Uint64("ancestor", uint64(grand)).
			Msg("node escaped to ancestor")
		return true, nil
	}
}

// FocusParent moves the selection up to the nearest ancestor container,
// so a following split or layout command targets the whole container.
// The focused leaf itself does not change. Returns false at the root.
func (uc *ManageTreeUseCase) FocusParent(ctx context.Context, t *entity.Tree) (bool, error) {
	log := logging.FromContext(ctx)
	if t == nil {
		return false, fmt.Errorf("tree is required")
	}
	if t.Empty() {
		return false, nil
	}

	base := t.Selected
	if _, ok := t.Node(base); !ok {
		base = t.Focused
	}
	n, ok := t.Node(base)
	if !ok || n.Parent == entity.NoNode {
		return false, nil
	}
	t.Selected = n.Parent
	log.Debug().Uint64("selected", uint64(t.Selected)).Msg("selection moved to parent")
	return true, nil
}

// FocusChild moves the selection back down one level, following the path
// to the focused leaf when it runs through the selection, or the focus
// history otherwise. Reaching a leaf focuses it and clears the selection.
// Returns false when no selection is active.
func (uc *ManageTreeUseCase) FocusChild(ctx context.Context, t *entity.Tree) (bool, error) {
	log := logging.FromContext(ctx)
	if t == nil {
		return false, fmt.Errorf("tree is required")
	}
	if t.Empty() {
		return false, nil
	}
	sel, ok := t.Node(t.Selected)
	if !ok || len(sel.Children) == 0 {
		return false, nil
	}

	child := entity.NoNode
	if isInSubtree(t, t.Selected, t.Focused) {
		cur := t.Focused
		for {
			n, ok := t.Node(cur)
			if !ok {
				break
			}
			if n.Parent == t.Selected {
				child = cur
				break
			}
			cur = n.Parent
		}
	}
	if child == entity.NoNode {
		child = sel.Active
	}
	if _, ok := t.Node(child); !ok || sel.ChildIndex(child) < 0 {
		child = sel.Children[0]
	}

	cn, _ := t.Node(child)
	if cn.IsLeaf() {
		t.Selected = entity.NoNode
		applyFocus(t, child)
		log.Debug().Uint64("leaf", uint64(child)).Msg("selection descended to leaf")
	} else {
		t.Selected = child
		log.Debug().Uint64("selected", uint64(child)).Msg("selection moved to child")
	}
	return true, nil
}

// FocusAt focuses the visible leaf whose live rectangle contains the
// point, as hit-testing does for pointer input. Returns false when the
// point lands on no visible leaf.
func (uc *ManageTreeUseCase) FocusAt(ctx context.Context, t *entity.Tree, x, y float64) (bool, error) {
	log := logging.FromContext(ctx)
	if t == nil {
		return false, fmt.Errorf("tree is required")
	}

	for _, g := range t.Live {
		if g.Window == nil || !g.Visible || !g.Rect.Contains(x, y) {
			continue
		}
		id, ok := t.Resolve(g.Path)
		if !ok {
			continue
		}
		n, _ := t.Node(id)
		if !n.IsLeaf() {
			continue
		}
		applyFocus(t, id)
		log.Debug().
			Float64("x", x).
			Float64("y", y).
			Uint64("leaf", uint64(id)).
			Msg("focus set by hit test")
		return true, nil
	}
	return false, nil
}

// FocusWindow focuses the leaf holding the given window. Returns false
// when the window is not in the tree.
func (uc *ManageTreeUseCase) FocusWindow(ctx context.Context, t *entity.Tree, window entity.WindowID) (bool, error) {
	if t == nil {
		return false, fmt.Errorf("tree is required")
	}
	leaf, ok := t.FindWindow(window)
	if !ok {
		return false, nil
	}
	applyFocus(t, leaf)
	return true, nil
}
