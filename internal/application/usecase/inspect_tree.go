package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/panetree/internal/domain/entity"
	"github.com/bnema/panetree/internal/logging"
)

// DebugTree renders the tree as an indented text dump for diagnostics:
// one line per node, container lines showing the layout mode, leaf lines
// the window identity, and the focused leaf marked with a star.
func (uc *ManageTreeUseCase) DebugTree(ctx context.Context, t *entity.Tree) (string, error) {
	if t == nil {
		return "", fmt.Errorf("tree is required")
	}
	if t.Empty() {
		return "empty\n", nil
	}

	var b strings.Builder
	root, _ := t.Node(t.Root)
	b.WriteString(string(root.Mode))
	b.WriteByte('\n')
	renderChildren(t, &b, t.Root, "")
	return b.String(), nil
}

func renderChildren(t *entity.Tree, b *strings.Builder, id entity.NodeID, prefix string) {
	n, ok := t.Node(id)
	if !ok {
		return
	}
	for i, child := range n.Children {
		glyph, cont := "├── ", "│   "
		if i == len(n.Children)-1 {
			glyph, cont = "└── ", "    "
		}
		b.WriteString(prefix)
		b.WriteString(glyph)
		b.WriteString(describeNode(t, child))
		b.WriteByte('\n')

		if cn, ok := t.Node(child); ok && cn.IsContainer() {
			renderChildren(t, b, child, prefix+cont)
		}
	}
}

func describeNode(t *entity.Tree, id entity.NodeID) string {
	n, ok := t.Node(id)
	if !ok {
		return "?"
	}
	if n.IsLeaf() {
		s := fmt.Sprintf("window %d (%.2f)", n.Window.ID(), n.Weight)
		if t.Focused == id {
			s += " *"
		}
		return s
	}
	return fmt.Sprintf("%s (%.2f)", n.Mode, n.Weight)
}

// Export captures the tree as a structured snapshot for the IPC layer and
// the snapshot store.
func (uc *ManageTreeUseCase) Export(ctx context.Context, t *entity.Tree) (*entity.TreeSnapshot, error) {
	if t == nil {
		return nil, fmt.Errorf("tree is required")
	}
	return entity.SnapshotFromTree(t), nil
}

// Restore rebuilds a tree from a snapshot, re-binding each stored window
// identity through the resolver.
func (uc *ManageTreeUseCase) Restore(ctx context.Context, snap *entity.TreeSnapshot, resolve entity.WindowResolver) (*entity.Tree, error) {
	log := logging.FromContext(ctx)
	t, err := entity.TreeFromSnapshot(snap, resolve)
	if err != nil {
		return nil, fmt.Errorf("restore tree: %w", err)
	}
	log.Info().
		Int("leaves", t.LeafCount()).
		Msg("tree restored from snapshot")
	return t, nil
}

// FindWindowPath returns the path of the leaf holding the window.
func (uc *ManageTreeUseCase) FindWindowPath(ctx context.Context, t *entity.Tree, window entity.WindowID) (entity.Path, error) {
	if t == nil {
		return nil, fmt.Errorf("tree is required")
	}
	leaf, ok := t.FindWindow(window)
	if !ok {
		return nil, ErrWindowNotFound
	}
	path, ok := t.PathOf(leaf)
	if !ok {
		return nil, ErrWindowNotFound
	}
	return path, nil
}

// TileInfo describes one node for hit-testing and introspection.
type TileInfo struct {
	Node     entity.NodeID
	Path     entity.Path
	Mode     entity.LayoutMode // empty for leaves
	Weight   float64
	Window   entity.Window // nil for containers
	Children int
	Rect     entity.Rect // live rectangle, zero before the first layout
	Visible  bool
}

// TileAtPath returns the node addressed by the path together with its
// live rectangle from the last applied layout.
func (uc *ManageTreeUseCase) TileAtPath(ctx context.Context, t *entity.Tree, path entity.Path) (*TileInfo, error) {
	if t == nil {
		return nil, fmt.Errorf("tree is required")
	}
	id, ok := t.Resolve(path)
	if !ok {
		return nil, ErrInvalidPath
	}
	n, _ := t.Node(id)

	info := &TileInfo{
		Node:     id,
		Path:     path.Clone(),
		Weight:   n.Weight,
		Window:   n.Window,
		Children: len(n.Children),
	}
	if n.IsContainer() {
		info.Mode = n.Mode
	}
	for _, g := range t.Live {
		if pathEqual(g.Path, path) {
			info.Rect = g.Rect
			info.Visible = g.Visible
			break
		}
	}
	return info, nil
}

// WindowForTab returns the window shown when the tab or stack entry at
// the given child index of the container is raised.
func (uc *ManageTreeUseCase) WindowForTab(ctx context.Context, t *entity.Tree, path entity.Path, index int) (entity.Window, error) {
	if t == nil {
		return nil, fmt.Errorf("tree is required")
	}
	id, ok := t.Resolve(path)
	if !ok {
		return nil, ErrInvalidPath
	}
	n, _ := t.Node(id)
	if !n.IsContainer() {
		return nil, ErrNotAContainer
	}
	if index < 0 || index >= len(n.Children) {
		return nil, ErrInvalidPath
	}
	leaf, ok := t.ActiveLeaf(n.Children[index])
	if !ok {
		return nil, ErrWindowNotFound
	}
	ln, _ := t.Node(leaf)
	return ln.Window, nil
}

func pathEqual(a, b entity.Path) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
