package entity

import (
	"strconv"
	"strings"
)

// Rect is a node's position and size in logical coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether the point (x, y) falls inside the rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Center returns the center point of the rectangle.
func (r Rect) Center() (cx, cy float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// RoundFunc aligns a logical length to the device pixel grid for the given
// scale factor. It is supplied by the rendering layer; the tree never
// assumes a scale itself.
type RoundFunc func(scale, length float64) float64

// RoundIdentity is the no-op rounding used when no renderer is attached.
func RoundIdentity(_, length float64) float64 {
	return length
}

// Geometry is one computed leaf rectangle. Visible is false for leaves
// hidden behind an inactive tab or stack entry; they still carry a rect so
// the renderer can cross-fade or quick-show them.
type Geometry struct {
	Path    Path
	Rect    Rect
	Visible bool
	Window  Window
}

// Path names a node as the sequence of child indices from the root.
// It is recomputed on demand and never stored on a node, since sibling
// insertion and removal shift the indices.
type Path []int

// String renders the path in dotted form ("0.1.0"); the root is "".
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	parts := make([]string, len(p))
	for i, idx := range p {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ".")
}

// ParsePath parses a dotted child-index path. The empty string is the root.
func ParsePath(s string) (Path, bool) {
	if s == "" {
		return Path{}, true
	}
	parts := strings.Split(s, ".")
	p := make(Path, len(parts))
	for i, part := range parts {
		idx, err := strconv.Atoi(part)
		if err != nil || idx < 0 {
			return nil, false
		}
		p[i] = idx
	}
	return p, true
}

// Clone returns an independent copy of the path.
func (p Path) Clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}
