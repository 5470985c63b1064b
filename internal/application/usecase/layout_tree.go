package usecase

import (
	"context"
	"fmt"

	"github.com/bnema/panetree/internal/domain/entity"
	"github.com/bnema/panetree/internal/logging"
)

// LayoutInput contains parameters for computing tree geometry.
type LayoutInput struct {
	Tree           *entity.Tree
	Viewport       entity.Rect
	Gap            float64           // space between split siblings
	IndicatorStrip float64           // strip reserved for tab/stack titles
	Scale          float64           // device scale passed through to Round
	Round          entity.RoundFunc  // pixel-grid rounding; nil keeps logical values
}

// LayoutOutput carries the computed geometry records in depth-first order.
type LayoutOutput struct {
	Geometries []entity.Geometry
}

type layoutParams struct {
	gap   float64
	strip float64
	scale float64
	round entity.RoundFunc
}

// Layout computes a rectangle for every node and stages the result as the
// tree's pending snapshot; ApplyPendingLayout promotes it once external
// clients have acknowledged their new sizes. Splits partition their axis
// proportionally to the child weights. Rounding is applied to cumulative
// offsets rather than to individual sizes, so adjacent rectangles share
// exact boundaries instead of drifting apart by a pixel.
func (uc *ManageTreeUseCase) Layout(ctx context.Context, input LayoutInput) (*LayoutOutput, error) {
	log := logging.FromContext(ctx)
	if input.Tree == nil {
		return nil, fmt.Errorf("tree is required")
	}
	t := input.Tree

	p := layoutParams{
		gap:   input.Gap,
		strip: input.IndicatorStrip,
		scale: input.Scale,
		round: input.Round,
	}
	if p.round == nil {
		p.round = entity.RoundIdentity
	}
	if p.scale <= 0 {
		p.scale = 1.0
	}
	if p.gap < 0 {
		p.gap = 0
	}

	geoms := make([]entity.Geometry, 0, t.Arena.Len())
	if !t.Empty() {
		layoutNode(t, t.Root, entity.Path{}, input.Viewport, true, &geoms, p)
	}
	t.Pending = geoms

	log.Debug().
		Int("records", len(geoms)).
		Float64("width", input.Viewport.W).
		Float64("height", input.Viewport.H).
		Msg("layout staged")
	return &LayoutOutput{Geometries: geoms}, nil
}

func layoutNode(t *entity.Tree, id entity.NodeID, path entity.Path, rect entity.Rect, visible bool, out *[]entity.Geometry, p layoutParams) {
	n, ok := t.Node(id)
	if !ok {
		return
	}

	if n.IsLeaf() {
		*out = append(*out, entity.Geometry{
			Path:    path.Clone(),
			Rect:    rect,
			Visible: visible,
			Window:  n.Window,
		})
		return
	}

	*out = append(*out, entity.Geometry{
		Path:    path.Clone(),
		Rect:    rect,
		Visible: visible,
	})

	switch n.Mode {
	case entity.LayoutSplitH, entity.LayoutSplitV:
		layoutSplit(t, n, path, rect, visible, out, p)
	case entity.LayoutTabbed, entity.LayoutStacked:
		layoutTabs(t, n, path, rect, visible, out, p)
	}
}

func layoutSplit(t *entity.Tree, n *entity.Node, path entity.Path, rect entity.Rect, visible bool, out *[]entity.Geometry, p layoutParams) {
	count := len(n.Children)
	length := rect.W
	if n.Mode == entity.LayoutSplitV {
		length = rect.H
	}
	usable := length - p.gap*float64(count-1)
	if usable < 0 {
		usable = 0
	}

	off := 0.0
	for i, child := range n.Children {
		cn, ok := t.Node(child)
		if !ok {
			continue
		}
		start := off
		end := off + usable*cn.Weight
		if i == count-1 {
			end = length
		}
		rs := p.round(p.scale, start)
		re := p.round(p.scale, end)

		var childRect entity.Rect
		if n.Mode == entity.LayoutSplitH {
			childRect = entity.Rect{X: rect.X + rs, Y: rect.Y, W: re - rs, H: rect.H}
		} else {
			childRect = entity.Rect{X: rect.X, Y: rect.Y + rs, W: rect.W, H: re - rs}
		}
		layoutNode(t, child, append(path, i), childRect, visible, out, p)
		off = end + p.gap
	}
}

// layoutTabs gives every child the full container rectangle below the
// indicator strip; only the active child is visible, the rest keep their
// rectangle for cross-fade and quick-show rendering.
func layoutTabs(t *entity.Tree, n *entity.Node, path entity.Path, rect entity.Rect, visible bool, out *[]entity.Geometry, p layoutParams) {
	content := rect
	if p.strip > 0 {
		content.Y += p.strip
		content.H -= p.strip
		if content.H < 0 {
			content.H = 0
		}
	}

	activeIdx := 0
	if idx := n.ChildIndex(n.Active); idx >= 0 {
		activeIdx = idx
	}
	for i, child := range n.Children {
		layoutNode(t, child, append(path, i), content, visible && i == activeIdx, out, p)
	}
}

// ApplyPendingLayout promotes the staged geometry snapshot to the live
// one. Returns false when nothing is pending.
func (uc *ManageTreeUseCase) ApplyPendingLayout(ctx context.Context, t *entity.Tree) (bool, error) {
	log := logging.FromContext(ctx)
	if t == nil {
		return false, fmt.Errorf("tree is required")
	}
	if t.Pending == nil {
		return false, nil
	}
	t.Live = t.Pending
	t.Pending = nil
	log.Debug().Int("records", len(t.Live)).Msg("pending layout applied")
	return true, nil
}

// LeafLayouts returns the live geometry of every leaf, in layout order,
// for the renderer.
func (uc *ManageTreeUseCase) LeafLayouts(ctx context.Context, t *entity.Tree) ([]entity.Geometry, error) {
	if t == nil {
		return nil, fmt.Errorf("tree is required")
	}
	leaves := make([]entity.Geometry, 0, len(t.Live))
	for _, g := range t.Live {
		if g.Window != nil {
			leaves = append(leaves, g)
		}
	}
	return leaves, nil
}
