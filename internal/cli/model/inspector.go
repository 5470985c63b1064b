// Package model provides Bubble Tea models for CLI commands.
package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/panetree/internal/application/usecase"
	"github.com/bnema/panetree/internal/cli"
	"github.com/bnema/panetree/internal/cli/styles"
	"github.com/bnema/panetree/internal/domain/entity"
	"github.com/bnema/panetree/internal/logging"
)

// The inspector lays the tree out in a fixed logical viewport; the box
// diagram scales it to the terminal, so the exact numbers only matter
// for the geometry pane.
const (
	logicalWidth  = 1920
	logicalHeight = 1080
)

// InspectorModel is the Bubble Tea model for the interactive workspace
// playground: an in-memory tree driven through the public use-case API.
type InspectorModel struct {
	// UI components
	help     help.Model
	keys     inspectorKeyMap
	renderer *styles.TreeRenderer

	// State
	tree          *entity.Tree
	windowSeq     entity.WindowID
	width         int
	height        int
	err           error
	statusMessage string

	// Config
	saveName string
	gap      float64
	strip    float64

	// Dependencies
	ctx    context.Context
	treeUC *usecase.ManageTreeUseCase
	store  interface {
		Save(ctx context.Context, name string, snapshot *entity.TreeSnapshot) error
		Get(ctx context.Context, name string) (*entity.TreeSnapshot, error)
	}
	theme *styles.Theme
}

// inspectorKeyMap defines keybindings for the inspector.
type inspectorKeyMap struct {
	Focus    key.Binding
	Move     key.Binding
	SplitH   key.Binding
	SplitV   key.Binding
	Tabbed   key.Binding
	Stacked  key.Binding
	Insert   key.Binding
	Remove   key.Binding
	Parent   key.Binding
	Child    key.Binding
	Grow     key.Binding
	Shrink   key.Binding
	Equalize key.Binding
	Save     key.Binding
	Restore  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings for the short help view.
func (k inspectorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Move, k.Insert, k.Remove, k.Save, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k inspectorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Focus, k.Move, k.Parent, k.Child},
		{k.SplitH, k.SplitV, k.Tabbed, k.Stacked},
		{k.Insert, k.Remove, k.Grow, k.Shrink},
		{k.Equalize, k.Save, k.Restore, k.Help, k.Quit},
	}
}

func defaultInspectorKeyMap() inspectorKeyMap {
	return inspectorKeyMap{
		Focus: key.NewBinding(
			key.WithKeys("left", "right", "up", "down"),
			key.WithHelp("←↓↑→", "focus"),
		),
		Move: key.NewBinding(
			key.WithKeys("shift+left", "shift+right", "shift+up", "shift+down"),
			key.WithHelp("shift+←↓↑→", "move window"),
		),
		SplitH: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "split horizontal"),
		),
		SplitV: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "split vertical"),
		),
		Tabbed: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "tabbed"),
		),
		Stacked: key.NewBinding(
			key.WithKeys("k"),
			key.WithHelp("k", "stacked"),
		),
		Insert: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "insert window"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "close window"),
		),
		Parent: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "focus parent"),
		),
		Child: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "focus child"),
		),
		Grow: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "grow"),
		),
		Shrink: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "shrink"),
		),
		Equalize: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "equalize"),
		),
		Save: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "save layout"),
		),
		Restore: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restore layout"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// InspectorModelConfig holds configuration for the inspector model.
type InspectorModelConfig struct {
	TreeUC *usecase.ManageTreeUseCase
	Store  interface {
		Save(ctx context.Context, name string, snapshot *entity.TreeSnapshot) error
		Get(ctx context.Context, name string) (*entity.TreeSnapshot, error)
	}

	SaveName       string
	Gap            int
	IndicatorStrip int
	SeedWindows    int
}

// NewInspectorModel creates a new inspector model.
func NewInspectorModel(ctx context.Context, theme *styles.Theme, cfg InspectorModelConfig) InspectorModel {
	h := help.New()
	h.Styles.ShortKey = theme.HelpKey
	h.Styles.ShortDesc = theme.HelpDesc
	h.Styles.FullKey = theme.HelpKey
	h.Styles.FullDesc = theme.HelpDesc

	saveName := cfg.SaveName
	if saveName == "" {
		saveName = "inspector"
	}

	m := InspectorModel{
		help:      h,
		keys:      defaultInspectorKeyMap(),
		renderer:  styles.NewTreeRenderer(theme),
		tree:      entity.NewTree(),
		windowSeq: 1,
		width:     80,
		height:    24,
		saveName:  saveName,
		gap:       float64(cfg.Gap),
		strip:     float64(cfg.IndicatorStrip),
		ctx:       ctx,
		treeUC:    cfg.TreeUC,
		store:     cfg.Store,
		theme:     theme,
	}

	for i := 0; i < cfg.SeedWindows; i++ {
		m.insertWindow()
	}
	m.statusMessage = "enter inserts a window, ? shows all keys"
	return m
}

// Init implements tea.Model.
func (m InspectorModel) Init() tea.Cmd {
	return nil
}

// layoutSavedMsg is sent when the current layout was written to the store.
type layoutSavedMsg struct {
	name string
	err  error
}

// layoutRestoredMsg carries a snapshot fetched from the store; snap is nil
// when no layout is saved under that name.
type layoutRestoredMsg struct {
	name string
	snap *entity.TreeSnapshot
	err  error
}

// Update implements tea.Model.
func (m InspectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case layoutSavedMsg:
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("save: %v", msg.err)
		} else {
			m.statusMessage = fmt.Sprintf("Layout saved as %q", msg.name)
		}
		return m, nil

	case layoutRestoredMsg:
		m.applyRestored(msg)
		return m, nil
	}

	return m, nil
}

func (m InspectorModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Focus):
		dir := directionForKey(msg.String())
		m.runOp("focus", func() (bool, error) {
			return m.treeUC.FocusInDirection(m.ctx, usecase.FocusInput{Tree: m.tree, Direction: dir})
		})
		return m, nil

	case key.Matches(msg, m.keys.Move):
		dir := directionForKey(msg.String())
		m.runOp("move", func() (bool, error) {
			return m.treeUC.MoveInDirection(m.ctx, usecase.MoveInput{Tree: m.tree, Direction: dir})
		})
		return m, nil

	case key.Matches(msg, m.keys.SplitH):
		m.splitFocused(entity.LayoutSplitH)
		return m, nil

	case key.Matches(msg, m.keys.SplitV):
		m.splitFocused(entity.LayoutSplitV)
		return m, nil

	case key.Matches(msg, m.keys.Tabbed):
		m.splitFocused(entity.LayoutTabbed)
		return m, nil

	case key.Matches(msg, m.keys.Stacked):
		m.splitFocused(entity.LayoutStacked)
		return m, nil

	case key.Matches(msg, m.keys.Insert):
		m.insertWindow()
		return m, nil

	case key.Matches(msg, m.keys.Remove):
		m.removeFocused()
		return m, nil

	case key.Matches(msg, m.keys.Parent):
		m.runOp("parent", func() (bool, error) {
			return m.treeUC.FocusParent(m.ctx, m.tree)
		})
		return m, nil

	case key.Matches(msg, m.keys.Child):
		m.runOp("child", func() (bool, error) {
			return m.treeUC.FocusChild(m.ctx, m.tree)
		})
		return m, nil

	case key.Matches(msg, m.keys.Grow):
		m.resizeFocused(usecase.ResizeGrowWidth)
		return m, nil

	case key.Matches(msg, m.keys.Shrink):
		m.resizeFocused(usecase.ResizeShrinkWidth)
		return m, nil

	case key.Matches(msg, m.keys.Equalize):
		m.runOp("equalize", func() (bool, error) {
			return m.treeUC.Equalize(m.ctx, usecase.EqualizeInput{Tree: m.tree, Path: entity.Path{}, Recursive: true})
		})
		return m, nil

	case key.Matches(msg, m.keys.Save):
		return m, m.saveLayout()

	case key.Matches(msg, m.keys.Restore):
		return m, m.restoreLayout()
	}

	return m, nil
}

// runOp executes a tree operation and reflects the outcome in the status
// line; the layout is recomputed after every change so directional focus
// keeps working against current geometry.
func (m *InspectorModel) runOp(name string, op func() (bool, error)) {
	changed, err := op()
	if err != nil {
		m.statusMessage = fmt.Sprintf("%s: %v", name, err)
		return
	}
	if !changed {
		m.statusMessage = fmt.Sprintf("%s: nothing to do", name)
		return
	}
	m.statusMessage = ""
	m.relayout()
}

func (m *InspectorModel) insertWindow() {
	_, err := m.treeUC.Insert(m.ctx, usecase.InsertInput{Tree: m.tree, Window: cli.Window(m.windowSeq)})
	if err != nil {
		m.statusMessage = fmt.Sprintf("insert: %v", err)
		return
	}
	m.windowSeq++
	m.statusMessage = ""
	m.relayout()
}

func (m *InspectorModel) removeFocused() {
	if m.tree.Empty() {
		m.statusMessage = "remove: tree is empty"
		return
	}
	n, _ := m.tree.Node(m.tree.Focused)
	window := n.Window.ID()
	m.runOp("remove", func() (bool, error) {
		_, err := m.treeUC.Remove(m.ctx, usecase.RemoveInput{Tree: m.tree, Window: window})
		return err == nil, err
	})
}

func (m *InspectorModel) splitFocused(mode entity.LayoutMode) {
	m.runOp(string(mode), func() (bool, error) {
		return m.treeUC.SplitFocused(m.ctx, usecase.SplitInput{Tree: m.tree, Mode: mode})
	})
}

func (m *InspectorModel) resizeFocused(dir usecase.ResizeDirection) {
	m.runOp("resize", func() (bool, error) {
		err := m.treeUC.Resize(m.ctx, usecase.ResizeInput{Tree: m.tree, Direction: dir})
		return err == nil, err
	})
}

func (m *InspectorModel) relayout() {
	_, err := m.treeUC.Layout(m.ctx, usecase.LayoutInput{
		Tree:           m.tree,
		Viewport:       entity.Rect{W: logicalWidth, H: logicalHeight},
		Gap:            m.gap,
		IndicatorStrip: m.strip,
		Round:          entity.RoundIdentity,
	})
	if err != nil {
		m.err = err
		return
	}
	if _, err := m.treeUC.ApplyPendingLayout(m.ctx, m.tree); err != nil {
		m.err = err
		return
	}
	m.err = nil
}

// saveLayout exports the tree now, on the update loop, and hands only the
// store write to the returned command.
func (m InspectorModel) saveLayout() tea.Cmd {
	name := m.saveName
	snap, err := m.treeUC.Export(m.ctx, m.tree)
	return func() tea.Msg {
		log := logging.FromContext(m.ctx)
		log.Info().Str("name", name).Msg("saving layout")

		if err != nil {
			return layoutSavedMsg{name: name, err: err}
		}
		if m.store == nil {
			return layoutSavedMsg{name: name, err: fmt.Errorf("snapshot store not available")}
		}
		return layoutSavedMsg{name: name, err: m.store.Save(m.ctx, name, snap)}
	}
}

func (m InspectorModel) restoreLayout() tea.Cmd {
	name := m.saveName
	return func() tea.Msg {
		log := logging.FromContext(m.ctx)
		log.Info().Str("name", name).Msg("restoring layout")

		if m.store == nil {
			return layoutRestoredMsg{name: name, err: fmt.Errorf("snapshot store not available")}
		}
		snap, err := m.store.Get(m.ctx, name)
		return layoutRestoredMsg{name: name, snap: snap, err: err}
	}
}

// applyRestored swaps the working tree for the snapshot's and moves the
// window sequence past the highest identity it carries, so later inserts
// cannot collide.
func (m *InspectorModel) applyRestored(msg layoutRestoredMsg) {
	if msg.err != nil {
		m.statusMessage = fmt.Sprintf("restore: %v", msg.err)
		return
	}
	if msg.snap == nil {
		m.statusMessage = fmt.Sprintf("no layout saved as %q", msg.name)
		return
	}
	tree, err := m.treeUC.Restore(m.ctx, msg.snap, cli.ResolveWindow)
	if err != nil {
		m.statusMessage = fmt.Sprintf("restore: %v", err)
		return
	}
	m.tree = tree
	m.windowSeq = 1
	tree.Walk(tree.Root, func(_ entity.NodeID, n *entity.Node) bool {
		if n.IsLeaf() {
			if id := n.Window.ID(); id >= m.windowSeq {
				m.windowSeq = id + 1
			}
		}
		return true
	})
	m.statusMessage = fmt.Sprintf("Layout %q restored", msg.name)
	m.relayout()
}

// View implements tea.Model.
func (m InspectorModel) View() string {
	t := m.theme
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(t.ErrorStyle.Render(fmt.Sprintf("%s Error: %v", styles.IconX, m.err)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderBody())
	b.WriteString("\n")

	if m.statusMessage != "" {
		b.WriteString(t.Subtle.Render(m.statusMessage))
	}
	b.WriteString("\n")

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m InspectorModel) renderHeader() string {
	t := m.theme

	iconStyle := lipgloss.NewStyle().Foreground(t.Accent)
	icon := iconStyle.Render(styles.IconTree)
	title := t.Title.MarginLeft(1).Render("Workspace inspector")

	stats := t.Subtle.Render(fmt.Sprintf("  %s %d windows", styles.IconPane, m.tree.LeafCount()))
	return icon + title + stats
}

// renderBody joins the box diagram of the tree with the structural dump.
func (m InspectorModel) renderBody() string {
	const helpReserve = 7
	bodyHeight := maxInt(m.height-helpReserve, 8)
	leftWidth := maxInt(m.width*3/5, 24)
	rightWidth := maxInt(m.width-leftWidth-4, 20)

	boxes := m.renderer.Render(m.tree, leftWidth, bodyHeight)

	dump, err := m.treeUC.DebugTree(m.ctx, m.tree)
	if err != nil {
		dump = err.Error()
	}
	right := m.theme.Box.
		Width(rightWidth).
		Height(maxInt(bodyHeight-2, 1)).
		Render(strings.TrimRight(dump, "\n"))

	return lipgloss.JoinHorizontal(lipgloss.Top, boxes, "  ", right)
}

// directionForKey maps an arrow key name, shifted or not, to a direction.
func directionForKey(k string) entity.Direction {
	switch strings.TrimPrefix(k, "shift+") {
	case "left":
		return entity.DirLeft
	case "right":
		return entity.DirRight
	case "up":
		return entity.DirUp
	default:
		return entity.DirDown
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Ensure interface compliance at compile time.
var _ tea.Model = (*InspectorModel)(nil)
