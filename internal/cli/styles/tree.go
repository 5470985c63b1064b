package styles

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/panetree/internal/domain/entity"
)

// TreeRenderer draws a container tree as nested boxes sized by weight.
// The drawing is proportional rather than pixel-faithful: splits divide
// the available cells among their children by weight, and tabbed or
// stacked containers show a selector strip above the raised child.
type TreeRenderer struct {
	theme *Theme
}

// NewTreeRenderer creates a renderer bound to a theme.
func NewTreeRenderer(theme *Theme) *TreeRenderer {
	return &TreeRenderer{theme: theme}
}

// Render draws the tree into a width by height cell area.
func (r *TreeRenderer) Render(t *entity.Tree, width, height int) string {
	if t == nil || t.Empty() {
		return r.theme.Pane.
			Width(maxInt(width-2, 1)).
			Height(maxInt(height-2, 1)).
			Render(r.theme.Subtle.Render("empty workspace"))
	}
	return r.renderNode(t, t.Root, width, height)
}

func (r *TreeRenderer) renderNode(t *entity.Tree, id entity.NodeID, width, height int) string {
	n, ok := t.Node(id)
	if !ok {
		return ""
	}
	if n.IsLeaf() {
		return r.renderLeaf(t, id, n, width, height)
	}
	switch n.Mode {
	case entity.LayoutSplitH:
		return r.renderSplit(t, n, width, height, true)
	case entity.LayoutSplitV:
		return r.renderSplit(t, n, width, height, false)
	default:
		return r.renderDeck(t, n, width, height)
	}
}

func (r *TreeRenderer) renderLeaf(t *entity.Tree, id entity.NodeID, n *entity.Node, width, height int) string {
	style := r.theme.Pane
	if id == t.Focused {
		style = r.theme.PaneFocused
	}
	label := fmt.Sprintf("%d", n.Window.ID())
	return style.
		Width(maxInt(width-2, 1)).
		Height(maxInt(height-2, 1)).
		Render(label)
}

func (r *TreeRenderer) renderSplit(t *entity.Tree, n *entity.Node, width, height int, horizontal bool) string {
	total := height
	if horizontal {
		total = width
	}
	parts := allocate(total, childWeights(t, n))

	cells := make([]string, 0, len(n.Children))
	for i, child := range n.Children {
		if horizontal {
			cells = append(cells, r.renderNode(t, child, parts[i], height))
		} else {
			cells = append(cells, r.renderNode(t, child, width, parts[i]))
		}
	}
	if horizontal {
		return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, cells...)
}

// renderDeck draws a tabbed or stacked container: a selector strip naming
// every child, then the raised child filling the remaining space.
func (r *TreeRenderer) renderDeck(t *entity.Tree, n *entity.Node, width, height int) string {
	active := n.Active
	if active == entity.NoNode || n.ChildIndex(active) < 0 {
		active = n.Children[0]
	}

	var bar string
	if n.Mode == entity.LayoutTabbed {
		bar = r.renderTabBar(t, n, active, width)
	} else {
		bar = r.renderStackBar(t, n, active, width)
	}
	body := r.renderNode(t, active, width, maxInt(height-lipgloss.Height(bar), 3))
	return lipgloss.JoinVertical(lipgloss.Left, bar, body)
}

func (r *TreeRenderer) renderTabBar(t *entity.Tree, n *entity.Node, active entity.NodeID, width int) string {
	tabs := make([]string, 0, len(n.Children))
	for _, child := range n.Children {
		style := r.theme.InactiveTab
		if child == active {
			style = r.theme.ActiveTab
		}
		tabs = append(tabs, style.Render(r.deckLabel(t, child)))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	return r.theme.TabBar.Width(maxInt(width, 1)).Render(row)
}

func (r *TreeRenderer) renderStackBar(t *entity.Tree, n *entity.Node, active entity.NodeID, width int) string {
	rows := make([]string, 0, len(n.Children))
	for _, child := range n.Children {
		style := r.theme.InactiveTab
		if child == active {
			style = r.theme.ActiveTab
		}
		rows = append(rows, style.Width(maxInt(width, 1)).Render(r.deckLabel(t, child)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// deckLabel names a selector entry after the window its subtree raises.
func (r *TreeRenderer) deckLabel(t *entity.Tree, id entity.NodeID) string {
	leaf, ok := t.ActiveLeaf(id)
	if !ok {
		return "?"
	}
	ln, _ := t.Node(leaf)
	return fmt.Sprintf("%d", ln.Window.ID())
}

func childWeights(t *entity.Tree, n *entity.Node) []float64 {
	weights := make([]float64, 0, len(n.Children))
	for _, child := range n.Children {
		w := 0.0
		if cn, ok := t.Node(child); ok {
			w = cn.Weight
		}
		weights = append(weights, w)
	}
	return weights
}

// allocate splits total cells among weights so the parts sum exactly to
// total. Cumulative rounding keeps every part within one cell of its
// ideal share.
func allocate(total int, weights []float64) []int {
	parts := make([]int, len(weights))
	if len(weights) == 0 {
		return parts
	}
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	acc := 0.0
	prev := 0
	for i, w := range weights {
		share := 1.0 / float64(len(weights))
		if sum > 0 {
			share = w / sum
		}
		acc += share * float64(total)
		next := int(math.Round(acc))
		parts[i] = next - prev
		prev = next
	}
	return parts
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
