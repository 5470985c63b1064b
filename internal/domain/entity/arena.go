package entity

// NodeID is a stable handle to a node slot in the arena. The low 32 bits
// address the slot, the high 32 bits carry the slot's generation, so an ID
// kept across a free/realloc cycle stops resolving instead of aliasing the
// new occupant.
type NodeID uint64

// NoNode is the zero NodeID; it never resolves.
const NoNode NodeID = 0

func (id NodeID) slot() uint32       { return uint32(id) }
func (id NodeID) generation() uint32 { return uint32(id >> 32) }

func makeNodeID(slot, gen uint32) NodeID {
	return NodeID(uint64(gen)<<32 | uint64(slot))
}

type arenaSlot struct {
	node Node
	gen  uint32
	live bool
}

// Arena owns every node of a tree. Nodes are addressed only by NodeID;
// nothing outside the arena holds a structural pointer across operations.
type Arena struct {
	slots []*arenaSlot
	free  []uint32
	count int
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Alloc stores node in a fresh or recycled slot and returns its ID.
func (a *Arena) Alloc(node Node) NodeID {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := a.slots[idx]
		s.gen++
		s.node = node
		s.live = true
		a.count++
		return makeNodeID(idx, s.gen)
	}
	idx := uint32(len(a.slots))
	// Generation starts at 1 so no valid ID ever equals NoNode.
	a.slots = append(a.slots, &arenaSlot{node: node, gen: 1, live: true})
	a.count++
	return makeNodeID(idx, 1)
}

// Get returns the node for id, or (nil, false) when the ID is stale, freed,
// or out of range. The pointer stays valid until the slot is freed.
func (a *Arena) Get(id NodeID) (*Node, bool) {
	idx := id.slot()
	if int(idx) >= len(a.slots) {
		return nil, false
	}
	s := a.slots[idx]
	if !s.live || s.gen != id.generation() {
		return nil, false
	}
	return &s.node, true
}

// Free releases the slot behind id for reuse. Returns false when the ID does
// not resolve. The caller is responsible for unlinking the node first.
func (a *Arena) Free(id NodeID) bool {
	idx := id.slot()
	if int(idx) >= len(a.slots) {
		return false
	}
	s := a.slots[idx]
	if !s.live || s.gen != id.generation() {
		return false
	}
	s.live = false
	s.node = Node{}
	a.free = append(a.free, idx)
	a.count--
	return true
}

// Len returns the number of live nodes, including detached subtrees.
func (a *Arena) Len() int {
	return a.count
}
