package board

import (
	"fmt"
)

// Chain declares a run of intermediate stop vertices from one base vertex
// toward a peer base vertex.
type Chain struct {
	Peer   int16 `json:"peer"`
	Length int16 `json:"length"`
}

// Layout declares a board: its base vertices and, per base vertex, the
// chains leading away from it. Chains are declared once; the built
// topology is traversable in both directions regardless of which side
// declared the chain.
type Layout struct {
	Name         string    `json:"name"`
	BaseVertices []int16   `json:"base_vertices"`
	Edges        [][]Chain `json:"edges"`
}

// DefaultLayout returns the standard Pentagame board: 5 corners (0-4),
// 5 junctions (5-9), corner-corner chains of length 3 and corner-junction
// chains of length 6, for a total of 100 vertices.
func DefaultLayout() *Layout {
	return &Layout{
		Name:         "pentagame",
		BaseVertices: []int16{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		Edges: [][]Chain{
			{{Peer: 1, Length: 3}, {Peer: 4, Length: 3}, {Peer: 5, Length: 6}, {Peer: 6, Length: 6}},
			{{Peer: 2, Length: 3}, {Peer: 6, Length: 6}, {Peer: 7, Length: 6}},
			{{Peer: 3, Length: 3}, {Peer: 8, Length: 6}, {Peer: 7, Length: 6}},
			{{Peer: 4, Length: 3}, {Peer: 8, Length: 6}},
			{{Peer: 6, Length: 6}, {Peer: 9, Length: 6}},
			{{Peer: 9, Length: 3}, {Peer: 6, Length: 3}},
			{{Peer: 7, Length: 3}},
			{{Peer: 8, Length: 3}},
			{{Peer: 9, Length: 3}},
			{{Peer: 6, Length: 6}},
		},
	}
}

// Validate checks that the layout can produce a well-formed board.
func (l *Layout) Validate() error {
	if len(l.BaseVertices) == 0 {
		return fmt.Errorf("%w: no base vertices", ErrInvalidLayout)
	}
	if len(l.Edges) != len(l.BaseVertices) {
		return fmt.Errorf("%w: %d edge rows for %d base vertices",
			ErrInvalidLayout, len(l.Edges), len(l.BaseVertices))
	}

	bases := make(map[int16]bool, len(l.BaseVertices))
	for _, base := range l.BaseVertices {
		if base < 0 {
			return fmt.Errorf("%w: negative base vertex %d", ErrInvalidLayout, base)
		}
		if bases[base] {
			return fmt.Errorf("%w: duplicate base vertex %d", ErrInvalidLayout, base)
		}
		bases[base] = true
	}

	for i, chains := range l.Edges {
		base := l.BaseVertices[i]
		seen := make(map[int16]bool, len(chains))
		for _, chain := range chains {
			if chain.Length < 1 {
				return fmt.Errorf("%w: chain %d->%d has length %d",
					ErrInvalidLayout, base, chain.Peer, chain.Length)
			}
			if !bases[chain.Peer] {
				return fmt.Errorf("%w: chain %d->%d targets undeclared base vertex",
					ErrInvalidLayout, base, chain.Peer)
			}
			if chain.Peer == base {
				return fmt.Errorf("%w: chain %d->%d is a self loop", ErrInvalidLayout, base, chain.Peer)
			}
			if seen[chain.Peer] {
				return fmt.Errorf("%w: duplicate chain %d->%d", ErrInvalidLayout, base, chain.Peer)
			}
			seen[chain.Peer] = true
		}
	}

	return nil
}

// StopCount returns the total number of declared intermediate vertices.
func (l *Layout) StopCount() int {
	total := 0
	for _, chains := range l.Edges {
		for _, chain := range chains {
			total += int(chain.Length)
		}
	}
	return total
}

// VertexCount returns the number of vertices the built topology will have.
func (l *Layout) VertexCount() int {
	return len(l.BaseVertices) + l.StopCount()
}
