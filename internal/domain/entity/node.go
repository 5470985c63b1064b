// Package entity contains domain entities representing the container tree.
// These entities are pure Go types with no infrastructure dependencies.
package entity

// WindowID uniquely identifies a mapped window surface.
type WindowID uint64

// Window is the capability the tree needs from a window: a stable identity.
// Everything else about the surface (buffers, sizes, protocol state) belongs
// to the compositor layers around the tree.
type Window interface {
	ID() WindowID
}

// LayoutMode indicates how a container arranges its children.
type LayoutMode string

const (
	LayoutSplitH  LayoutMode = "splith"
	LayoutSplitV  LayoutMode = "splitv"
	LayoutTabbed  LayoutMode = "tabbed"
	LayoutStacked LayoutMode = "stacked"
)

// ParseLayoutMode converts a config or snapshot string to a LayoutMode.
func ParseLayoutMode(s string) (LayoutMode, bool) {
	switch LayoutMode(s) {
	case LayoutSplitH, LayoutSplitV, LayoutTabbed, LayoutStacked:
		return LayoutMode(s), true
	}
	return "", false
}

// IsSplit returns true for the two proportional split modes.
func (m LayoutMode) IsSplit() bool {
	return m == LayoutSplitH || m == LayoutSplitV
}

// Axis is the orientation a layout mode or direction operates along.
type Axis int

const (
	AxisHorizontal Axis = iota
	AxisVertical
)

// Axis returns the orientation of the mode. Tabbed containers are a
// horizontal list of tabs, stacked containers a vertical list of titles,
// so they navigate like SplitH and SplitV respectively.
func (m LayoutMode) Axis() Axis {
	switch m {
	case LayoutSplitV, LayoutStacked:
		return AxisVertical
	default:
		return AxisHorizontal
	}
}

// Direction is a cardinal movement direction for focus and move operations.
type Direction string

const (
	DirLeft  Direction = "left"
	DirRight Direction = "right"
	DirUp    Direction = "up"
	DirDown  Direction = "down"
)

// ParseDirection converts a command argument to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case DirLeft, DirRight, DirUp, DirDown:
		return Direction(s), true
	}
	return "", false
}

// Axis returns the axis the direction moves along.
func (d Direction) Axis() Axis {
	switch d {
	case DirUp, DirDown:
		return AxisVertical
	default:
		return AxisHorizontal
	}
}

// Forward reports whether the direction points toward higher child indices.
func (d Direction) Forward() bool {
	return d == DirRight || d == DirDown
}

// Node is one slot of the container tree: either a leaf wrapping a window,
// or a container with ordered weighted children.
//
// Weight is the node's share of its parent's split axis, in (0, 1]; sibling
// weights sum to 1. Active is a container's most recently focused child and
// drives tab visibility, descend-on-focus, and focus reassignment after a
// removal.
type Node struct {
	Parent   NodeID
	Window   Window // non-nil for leaves
	Mode     LayoutMode
	Children []NodeID
	Weight   float64
	Active   NodeID
}

// IsLeaf returns true if this node wraps a window.
func (n *Node) IsLeaf() bool {
	return n.Window != nil
}

// IsContainer returns true if this node holds children.
func (n *Node) IsContainer() bool {
	return n.Window == nil
}

// ChildIndex returns the position of child in n's children, or -1.
func (n *Node) ChildIndex(child NodeID) int {
	for i, id := range n.Children {
		if id == child {
			return i
		}
	}
	return -1
}
