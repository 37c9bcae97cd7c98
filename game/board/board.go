package board

import (
	"fmt"
)

// Topology is the static board graph. It is built once at startup and
// must never be mutated afterwards; all rooms share one instance.
type Topology struct {
	layout    string
	vertices  map[Position]struct{}
	adjacency map[Position][]Position
	edgeCount int
}

// Build constructs a topology from a layout. Base vertices are inserted
// first, then each declared chain is laid down with dual edge inserts so
// the graph is traversable in both directions. Any duplicate vertex is a
// fatal configuration error.
func Build(layout *Layout) (*Topology, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	t := &Topology{
		layout:    layout.Name,
		vertices:  make(map[Position]struct{}, layout.VertexCount()),
		adjacency: make(map[Position][]Position, layout.VertexCount()),
	}

	// The base vertices (junctions, corners) need to be preinserted so the
	// chain terminals have something to connect to.
	for _, base := range layout.BaseVertices {
		if err := t.addVertex(BasePosition(base)); err != nil {
			return nil, err
		}
	}

	for i, chains := range layout.Edges {
		base := layout.BaseVertices[i]
		for _, chain := range chains {
			if err := t.layChain(base, chain); err != nil {
				return nil, fmt.Errorf("chain %d->%d: %w", base, chain.Peer, err)
			}
		}
	}

	return t, nil
}

// layChain inserts the stop vertices of one chain and connects
// base, stop 1 .. stop L, peer in sequence.
func (t *Topology) layChain(base int16, chain Chain) error {
	prev := BasePosition(base)
	for stop := int16(1); stop <= chain.Length; stop++ {
		pos := Position{Base: base, Stop: stop, Peer: chain.Peer}
		if err := t.addVertex(pos); err != nil {
			return err
		}
		if err := t.connect(prev, pos); err != nil {
			return err
		}
		prev = pos
	}
	return t.connect(prev, BasePosition(chain.Peer))
}

func (t *Topology) addVertex(pos Position) error {
	if _, exists := t.vertices[pos]; exists {
		return fmt.Errorf("%w: %s", ErrCannotAddVertex, pos)
	}
	t.vertices[pos] = struct{}{}
	return nil
}

// connect inserts the directed edges a->b and b->a.
func (t *Topology) connect(a, b Position) error {
	for _, pos := range [2]Position{a, b} {
		if _, exists := t.vertices[pos]; !exists {
			return fmt.Errorf("%w: %s", ErrCannotAddEdge, pos)
		}
	}
	t.adjacency[a] = append(t.adjacency[a], b)
	t.adjacency[b] = append(t.adjacency[b], a)
	t.edgeCount += 2
	return nil
}

// LayoutName returns the name of the layout the topology was built from.
func (t *Topology) LayoutName() string {
	return t.layout
}

// Contains reports whether pos is a vertex of the board.
func (t *Topology) Contains(pos Position) bool {
	_, ok := t.vertices[pos]
	return ok
}

// Fetch resolves pos, returning ErrNoSuchVertex for anything outside the
// static topology.
func (t *Topology) Fetch(pos Position) (Position, error) {
	if !t.Contains(pos) {
		return Position{}, fmt.Errorf("%w: %s", ErrNoSuchVertex, pos)
	}
	return pos, nil
}

// Neighbors returns the adjacency list of pos. The returned slice is
// owned by the topology and must not be modified.
func (t *Topology) Neighbors(pos Position) []Position {
	return t.adjacency[pos]
}

// VertexCount returns the total number of vertices.
func (t *Topology) VertexCount() int {
	return len(t.vertices)
}

// EdgeCount returns the total number of directed edges.
func (t *Topology) EdgeCount() int {
	return t.edgeCount
}

// Vertices returns every position on the board. The order is unspecified.
func (t *Topology) Vertices() []Position {
	out := make([]Position, 0, len(t.vertices))
	for pos := range t.vertices {
		out = append(out, pos)
	}
	return out
}
