package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/bnema/panetree/internal/domain/entity"
	"github.com/bnema/panetree/internal/logging"
)

var (
	ErrEmptyTree       = errors.New("tree is empty")
	ErrWindowNotFound  = errors.New("window not found")
	ErrInvalidPath     = errors.New("invalid path")
	ErrNotAContainer   = errors.New("not a container")
	ErrNothingToResize = errors.New("nothing to resize")
)

// InsertPosition selects where a new leaf lands in the tree.
type InsertPosition string

const (
	// InsertAfterFocused splices the leaf in right after the focused
	// leaf, as the next sibling. This is the default.
	InsertAfterFocused InsertPosition = "after_focused"
	// InsertAtEnd appends the leaf as the last child of the root.
	InsertAtEnd InsertPosition = "end"
	// InsertAfter splices the leaf in after the node at Path.
	InsertAfter InsertPosition = "after"
	// InsertFirstChild prepends the leaf inside the container at Path.
	InsertFirstChild InsertPosition = "first_child"
)

// Settings carries the workspace tuning shared by tree operations.
type Settings struct {
	DefaultMode entity.LayoutMode // mode of the root container created on first insert
	MinWeight   float64           // smallest share a sibling can be squeezed to
	ResizeStep  float64           // weight delta per resize keystroke
}

func (s Settings) withDefaults() Settings {
	if s.DefaultMode == "" {
		s.DefaultMode = entity.LayoutSplitH
	}
	if s.MinWeight <= 0 {
		s.MinWeight = 0.05
	}
	if s.ResizeStep <= 0 {
		s.ResizeStep = 0.05
	}
	return s
}

// ManageTreeUseCase handles container tree operations.
type ManageTreeUseCase struct {
	settings Settings
}

// NewManageTreeUseCase creates a new tree management use case.
func NewManageTreeUseCase(settings Settings) *ManageTreeUseCase {
	return &ManageTreeUseCase{settings: settings.withDefaults()}
}

// InsertInput contains parameters for inserting a window.
type InsertInput struct {
	Tree     *entity.Tree
	Window   entity.Window
	Position InsertPosition // default: after the focused leaf
	Path     entity.Path    // target for InsertAfter / InsertFirstChild
	Weight   float64        // share in (0, 1); 0 picks 1/(n+1)
}

// InsertOutput contains the result of an insert operation.
type InsertOutput struct {
	Node entity.NodeID
	Path entity.Path
}

// Insert wraps the window in a new leaf and splices it into the tree.
// Siblings shrink proportionally to make room; the new leaf takes focus.
// On an empty tree a root container of the default mode is created first.
func (uc *ManageTreeUseCase) Insert(ctx context.Context, input InsertInput) (*InsertOutput, error) {
	log := logging.FromContext(ctx)
	if input.Tree == nil {
		return nil, fmt.Errorf("tree is required")
	}
	if input.Window == nil {
		return nil, fmt.Errorf("window is required")
	}
	if input.Weight < 0 || input.Weight >= 1 {
		return nil, fmt.Errorf("weight %g out of range (0, 1)", input.Weight)
	}
	t := input.Tree

	if t.Empty() {
		root := t.Arena.Alloc(entity.Node{Mode: uc.settings.DefaultMode, Weight: 1.0})
		leaf := t.Arena.Alloc(entity.Node{Parent: root, Window: input.Window, Weight: 1.0})
		rootNode, _ := t.Node(root)
		rootNode.Children = []entity.NodeID{leaf}
		rootNode.Active = leaf
		t.Root = root
		applyFocus(t, leaf)

		log.Info().
			Uint64("window", uint64(input.Window.ID())).
			Str("mode", string(uc.settings.DefaultMode)).
			Msg("window inserted into fresh tree")
		return &InsertOutput{Node: leaf, Path: entity.Path{0}}, nil
	}

	parentID, idx, err := uc.insertSlot(t, input)
	if err != nil {
		return nil, err
	}

	leaf := t.Arena.Alloc(entity.Node{Window: input.Window})
	insertChildAt(t, parentID, leaf, idx, input.Weight)
	applyFocus(t, leaf)

	path, _ := t.PathOf(leaf)
	log.Info().
		Uint64("window", uint64(input.Window.ID())).
		Str("path", path.String()).
		Msg("window inserted")
	return &InsertOutput{Node: leaf, Path: path}, nil
}

// insertSlot resolves the parent container and child index for an insert.
func (uc *ManageTreeUseCase) insertSlot(t *entity.Tree, input InsertInput) (entity.NodeID, int, error) {
	pos := input.Position
	if pos == "" {
		pos = InsertAfterFocused
	}

	switch pos {
	case InsertAtEnd:
		root, _ := t.Node(t.Root)
		return t.Root, len(root.Children), nil

	case InsertAfterFocused:
		target := t.Focused
		if _, ok := t.Node(target); !ok {
			root, _ := t.Node(t.Root)
			return t.Root, len(root.Children), nil
		}
		return slotAfter(t, target)

	case InsertAfter:
		target, ok := t.Resolve(input.Path)
		if !ok {
			return entity.NoNode, 0, ErrInvalidPath
		}
		if target == t.Root {
			root, _ := t.Node(t.Root)
			return t.Root, len(root.Children), nil
		}
		return slotAfter(t, target)

	case InsertFirstChild:
		target, ok := t.Resolve(input.Path)
		if !ok {
			return entity.NoNode, 0, ErrInvalidPath
		}
		n, _ := t.Node(target)
		if !n.IsContainer() {
			return entity.NoNode, 0, ErrNotAContainer
		}
		return target, 0, nil
	}
	return entity.NoNode, 0, fmt.Errorf("unknown insert position %q", pos)
}

func slotAfter(t *entity.Tree, target entity.NodeID) (entity.NodeID, int, error) {
	n, _ := t.Node(target)
	parent, _ := t.Node(n.Parent)
	return n.Parent, parent.ChildIndex(target) + 1, nil
}

// RemoveInput identifies the window to remove.
type RemoveInput struct {
	Tree   *entity.Tree
	Window entity.WindowID
}

// RemoveOutput carries the handle of the removed window.
type RemoveOutput struct {
	Window entity.Window
}

// Remove takes the window's leaf out of the tree, renormalizes the
// remaining sibling weights, and collapses containers the leaf left
// behind. If the removed leaf held the focus, the next sibling takes it,
// then the previous, then the ancestors' focus history.
func (uc *ManageTreeUseCase) Remove(ctx context.Context, input RemoveInput) (*RemoveOutput, error) {
	log := logging.FromContext(ctx)
	if input.Tree == nil {
		return nil, fmt.Errorf("tree is required")
	}
	t := input.Tree

	leafID, ok := t.FindWindow(input.Window)
	if !ok {
		return nil, ErrWindowNotFound
	}
	leaf, _ := t.Node(leafID)
	win := leaf.Window
	parentID := leaf.Parent
	wasFocused := isInSubtree(t, leafID, t.Focused)

	idx := removeChild(t, parentID, leafID)
	freeNode(t, leafID)

	var next entity.NodeID
	if wasFocused {
		next = focusAfterDetach(t, parentID, idx)
	}
	cleanup(t, parentID, cleanupFull)
	if wasFocused {
		applyFocus(t, next)
	}

	log.Info().
		Uint64("window", uint64(input.Window)).
		Bool("was_focused", wasFocused).
		Msg("window removed")
	return &RemoveOutput{Window: win}, nil
}

// SplitInput contains parameters for splitting the focused node.
type SplitInput struct {
	Tree *entity.Tree
	Mode entity.LayoutMode
}

// SplitFocused introduces a new layout boundary at the focused leaf, or at
// the selected container when FocusParent moved the selection up. When the
// target is already the only child of its parent the parent's mode is
// rewritten in place instead of nesting a fresh container. Returns false
// on an empty tree.
func (uc *ManageTreeUseCase) SplitFocused(ctx context.Context, input SplitInput) (bool, error) {
	log := logging.FromContext(ctx)
	if input.Tree == nil {
		return false, fmt.Errorf("tree is required")
	}
	if _, ok := entity.ParseLayoutMode(string(input.Mode)); !ok {
		return false, fmt.Errorf("unknown layout mode %q", input.Mode)
	}
	t := input.Tree
	if t.Empty() {
		return false, nil
	}

	target := t.Selected
	if _, ok := t.Node(target); !ok {
		target = t.Focused
	}
	node, ok := t.Node(target)
	if !ok {
		return false, nil
	}

	// Re-splitting a container in its own mode changes nothing.
	if node.IsContainer() && node.Mode == input.Mode {
		return true, nil
	}

	parentID := node.Parent
	if parentID == entity.NoNode {
		// The target is the root container itself.
		rewriteMode(t, target, input.Mode)
		log.Info().Str("mode", string(input.Mode)).Msg("root layout rewritten")
		return true, nil
	}

	parent, _ := t.Node(parentID)
	if len(parent.Children) == 1 {
		// The target fills its container, so no new nesting level is
		// needed; retag the container instead.
		rewriteMode(t, parentID, input.Mode)
		log.Info().Str("mode", string(input.Mode)).Msg("container layout rewritten")
		return true, nil
	}

	if parent.Mode == input.Mode {
		// A same-mode wrapper would dissolve straight back into the
		// parent, so the tree shape cannot change.
		return true, nil
	}

	wrap := t.Arena.Alloc(entity.Node{
		Parent:   parentID,
		Mode:     input.Mode,
		Children: []entity.NodeID{target},
		Weight:   node.Weight,
		Active:   target,
	})
	idx := parent.ChildIndex(target)
	parent.Children[idx] = wrap
	if parent.Active == target {
		parent.Active = wrap
	}
	node.Parent = wrap
	node.Weight = 1.0

	log.Info().
		Str("mode", string(input.Mode)).
		Uint64("node", uint64(target)).
		Msg("split container created")
	return true, nil
}

// SetLayoutModeInput addresses a container and its new mode.
type SetLayoutModeInput struct {
	Tree *entity.Tree
	Path entity.Path
	Mode entity.LayoutMode
}

// SetLayoutMode rewrites the mode of the container at Path. Same-mode
// nesting created by the rewrite is squashed immediately, in both
// directions. Returns false when the path does not resolve.
func (uc *ManageTreeUseCase) SetLayoutMode(ctx context.Context, input SetLayoutModeInput) (bool, error) {
	log := logging.FromContext(ctx)
	if input.Tree == nil {
		return false, fmt.Errorf("tree is required")
	}
	if _, ok := entity.ParseLayoutMode(string(input.Mode)); !ok {
		return false, fmt.Errorf("unknown layout mode %q", input.Mode)
	}
	t := input.Tree

	id, ok := t.Resolve(input.Path)
	if !ok {
		return false, nil
	}
	n, _ := t.Node(id)
	if !n.IsContainer() {
		return false, ErrNotAContainer
	}
	if n.Mode == input.Mode {
		return true, nil
	}

	rewriteMode(t, id, input.Mode)
	log.Info().
		Str("path", input.Path.String()).
		Str("mode", string(input.Mode)).
		Msg("layout mode set")
	return true, nil
}

// rewriteMode retags a container and squashes any same-mode nesting this
// creates: child containers dissolve into it, and it dissolves into a
// same-mode parent.
func rewriteMode(t *entity.Tree, id entity.NodeID, mode entity.LayoutMode) {
	n, _ := t.Node(id)
	n.Mode = mode

	children := make([]entity.NodeID, len(n.Children))
	copy(children, n.Children)
	for _, child := range children {
		cn, ok := t.Node(child)
		if ok && cn.IsContainer() && cn.Mode == mode {
			flattenIntoParent(t, id, child)
		}
	}

	if n.Parent != entity.NoNode {
		parent, ok := t.Node(n.Parent)
		if ok && parent.Mode == mode {
			flattenIntoParent(t, n.Parent, id)
		}
	}
}

// TakeSubtreeInput addresses the subtree to detach.
type TakeSubtreeInput struct {
	Tree *entity.Tree
	Path entity.Path
}

// TakeSubtreeOutput describes a detached subtree. The nodes stay resident
// in the arena; Weight and Focused carry what InsertSubtree needs to put
// the subtree back exactly as it was.
type TakeSubtreeOutput struct {
	Node    entity.NodeID
	Weight  float64
	Focused bool
}

// TakeSubtree detaches the node at Path without discarding it, so a group
// of windows can travel between trees or into the floating space. The
// spot it leaves behind is tidied only structurally; re-attaching at the
// same path with the same weight restores the identical tree.
func (uc *ManageTreeUseCase) TakeSubtree(ctx context.Context, input TakeSubtreeInput) (*TakeSubtreeOutput, error) {
	log := logging.FromContext(ctx)
	if input.Tree == nil {
		return nil, fmt.Errorf("tree is required")
	}
	t := input.Tree

	id, ok := t.Resolve(input.Path)
	if !ok {
		return nil, ErrInvalidPath
	}
	n, _ := t.Node(id)
	wasFocused := isInSubtree(t, id, t.Focused)

	if id == t.Root {
		t.Root = entity.NoNode
		t.Focused = entity.NoNode
		t.Selected = entity.NoNode
		log.Info().Msg("whole tree detached")
		return &TakeSubtreeOutput{Node: id, Weight: 1.0, Focused: wasFocused}, nil
	}

	parentID := n.Parent
	weight := n.Weight
	idx := removeChild(t, parentID, id)
	n.Parent = entity.NoNode
	if t.Selected != entity.NoNode && isInSubtree(t, id, t.Selected) {
		t.Selected = entity.NoNode
	}

	var next entity.NodeID
	if wasFocused {
		next = focusAfterDetach(t, parentID, idx)
	}
	cleanup(t, parentID, cleanupStructural)
	if wasFocused {
		applyFocus(t, next)
	}

	log.Info().
		Str("path", input.Path.String()).
		Uint64("node", uint64(id)).
		Msg("subtree detached")
	return &TakeSubtreeOutput{Node: id, Weight: weight, Focused: wasFocused}, nil
}

// InsertSubtreeInput re-attaches a detached subtree so it ends up at Path.
type InsertSubtreeInput struct {
	Tree   *entity.Tree
	Path   entity.Path
	Node   entity.NodeID
	Weight float64 // share in (0, 1); 0 picks 1/(n+1)
	Focus  bool    // move focus into the subtree after attaching
}

// InsertSubtree is the inverse of TakeSubtree.
func (uc *ManageTreeUseCase) InsertSubtree(ctx context.Context, input InsertSubtreeInput) error {
	log := logging.FromContext(ctx)
	if input.Tree == nil {
		return fmt.Errorf("tree is required")
	}
	t := input.Tree

	node, ok := t.Node(input.Node)
	if !ok {
		return fmt.Errorf("detached node %d does not resolve", input.Node)
	}
	if node.Parent != entity.NoNode {
		return fmt.Errorf("node %d is still attached", input.Node)
	}

	// The leaf focus should land on, captured before any flattening.
	leafToFocus, hasLeaf := t.ActiveLeaf(input.Node)

	if t.Empty() {
		root := input.Node
		if node.IsLeaf() {
			root = t.Arena.Alloc(entity.Node{
				Mode:     uc.settings.DefaultMode,
				Weight:   1.0,
				Children: []entity.NodeID{input.Node},
				Active:   input.Node,
			})
			node.Parent = root
			node.Weight = 1.0
		} else {
			node.Weight = 1.0
		}
		t.Root = root
		if hasLeaf {
			applyFocus(t, leafToFocus)
		}
		log.Info().Msg("subtree attached as new root")
		return nil
	}

	if len(input.Path) == 0 {
		return ErrInvalidPath
	}
	parentID, ok := t.Resolve(input.Path[:len(input.Path)-1])
	if !ok {
		return ErrInvalidPath
	}
	parent, _ := t.Node(parentID)
	if !parent.IsContainer() {
		return ErrNotAContainer
	}
	idx := input.Path[len(input.Path)-1]

	attachSubtree(t, parentID, input.Node, idx, input.Weight)
	if input.Focus && hasLeaf {
		applyFocus(t, leafToFocus)
	}

	log.Info().
		Str("path", input.Path.String()).
		Uint64("node", uint64(input.Node)).
		Msg("subtree attached")
	return nil
}

// ResizeDirection names a weight adjustment for the focused node.
type ResizeDirection string

const (
	ResizeGrowWidth    ResizeDirection = "grow_width"
	ResizeShrinkWidth  ResizeDirection = "shrink_width"
	ResizeGrowHeight   ResizeDirection = "grow_height"
	ResizeShrinkHeight ResizeDirection = "shrink_height"
)

// ResizeInput contains parameters for resizing the focused node.
type ResizeInput struct {
	Tree      *entity.Tree
	Direction ResizeDirection
	Step      float64 // weight delta; 0 uses the configured step
}

// Resize grows or shrinks the focused node's share along one axis. The
// adjustment lands on the nearest ancestor whose split matches the axis;
// that ancestor's other children rescale proportionally, each floored at
// the configured minimum share.
func (uc *ManageTreeUseCase) Resize(ctx context.Context, input ResizeInput) error {
	log := logging.FromContext(ctx)
	if input.Tree == nil {
		return fmt.Errorf("tree is required")
	}
	t := input.Tree
	if t.Empty() {
		return ErrNothingToResize
	}

	var axis entity.Axis
	var grow bool
	switch input.Direction {
	case ResizeGrowWidth:
		axis, grow = entity.AxisHorizontal, true
	case ResizeShrinkWidth:
		axis, grow = entity.AxisHorizontal, false
	case ResizeGrowHeight:
		axis, grow = entity.AxisVertical, true
	case ResizeShrinkHeight:
		axis, grow = entity.AxisVertical, false
	default:
		return fmt.Errorf("unknown resize direction %q", input.Direction)
	}

	step := input.Step
	if step <= 0 {
		step = uc.settings.ResizeStep
	}

	target := t.Selected
	if _, ok := t.Node(target); !ok {
		target = t.Focused
	}

	// Find the nearest ancestor splitting along the requested axis.
	cur := target
	for {
		n, ok := t.Node(cur)
		if !ok || n.Parent == entity.NoNode {
			return ErrNothingToResize
		}
		parent, _ := t.Node(n.Parent)
		if parent.Mode.IsSplit() && parent.Mode.Axis() == axis && len(parent.Children) > 1 {
			break
		}
		cur = n.Parent
	}

	n, _ := t.Node(cur)
	parent, _ := t.Node(n.Parent)
	oldW := n.Weight
	delta := step
	if !grow {
		delta = -step
	}

	// Siblings rescale by (1-new)/(1-old); cap the new share so none of
	// them lands under the minimum.
	minSib := math.Inf(1)
	for _, sib := range parent.Children {
		if sib == cur {
			continue
		}
		sn, _ := t.Node(sib)
		if sn.Weight < minSib {
			minSib = sn.Weight
		}
	}
	maxW := 1.0 - (1.0-oldW)*uc.settings.MinWeight/minSib
	newW := oldW + delta
	if newW < uc.settings.MinWeight {
		newW = uc.settings.MinWeight
	}
	if newW > maxW {
		newW = maxW
	}
	if math.Abs(newW-oldW) < entity.WeightTolerance {
		return nil
	}

	scale := (1.0 - newW) / (1.0 - oldW)
	for _, sib := range parent.Children {
		if sib == cur {
			continue
		}
		sn, _ := t.Node(sib)
		sn.Weight *= scale
	}
	n.Weight = newW

	log.Debug().
		Str("direction", string(input.Direction)).
		Float64("old_weight", oldW).
		Float64("new_weight", newW).
		Msg("node resized")
	return nil
}

// EqualizeInput addresses the container whose children get equal shares.
type EqualizeInput struct {
	Tree      *entity.Tree
	Path      entity.Path // nil or empty addresses the root
	Recursive bool
}

// Equalize resets the children of the container at Path to equal shares,
// and of every nested container when Recursive is set. Returns false when
// the path does not resolve.
func (uc *ManageTreeUseCase) Equalize(ctx context.Context, input EqualizeInput) (bool, error) {
	log := logging.FromContext(ctx)
	if input.Tree == nil {
		return false, fmt.Errorf("tree is required")
	}
	t := input.Tree
	if t.Empty() {
		return false, nil
	}

	id, ok := t.Resolve(input.Path)
	if !ok {
		return false, nil
	}
	n, _ := t.Node(id)
	if !n.IsContainer() {
		return false, ErrNotAContainer
	}

	if input.Recursive {
		t.Walk(id, func(_ entity.NodeID, node *entity.Node) bool {
			if node.IsContainer() {
				equalizeChildren(t, node)
			}
			return true
		})
	} else {
		equalizeChildren(t, n)
	}

	log.Debug().
		Str("path", input.Path.String()).
		Bool("recursive", input.Recursive).
		Msg("weights equalized")
	return true, nil
}
