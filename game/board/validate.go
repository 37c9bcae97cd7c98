package board

import (
	"fmt"
)

// View is a per-room occupancy overlay on a shared read-only Topology.
// Placing figures on a view never touches the topology, so concurrent
// rooms can validate moves against the same board.
type View struct {
	topo     *Topology
	occupied map[Position]Figure
}

// NewView creates an empty occupancy overlay for topo.
func NewView(topo *Topology) *View {
	return &View{
		topo:     topo,
		occupied: make(map[Position]Figure, FigureCount),
	}
}

// Place marks pos as occupied by figure. Off-board figures occupy
// nothing and are silently skipped.
func (v *View) Place(figure Figure, pos Position) error {
	if pos.IsOffBoard() {
		return nil
	}
	if !v.topo.Contains(pos) {
		return fmt.Errorf("%w: %s", ErrNoSuchVertex, pos)
	}
	if owner, taken := v.occupied[pos]; taken {
		return fmt.Errorf("%w: %s held by figure %d", ErrFieldOccupied, pos, owner)
	}
	v.occupied[pos] = figure
	return nil
}

// Owner returns the figure occupying pos, if any.
func (v *View) Owner(pos Position) (Figure, bool) {
	figure, ok := v.occupied[pos]
	return figure, ok
}

// Field returns the occupancy of pos.
func (v *View) Field(pos Position) (Field, error) {
	if !v.topo.Contains(pos) {
		return Field{}, fmt.Errorf("%w: %s", ErrNoSuchVertex, pos)
	}
	if figure, ok := v.occupied[pos]; ok {
		return Field{Occupied: true, Owner: figure}, nil
	}
	return Field{}, nil
}

// MoveResult is the outcome of a legality check. Collider is only
// meaningful while Collision is true.
type MoveResult struct {
	Legal     bool
	Collision bool
	Collider  Figure
}

// Validate decides whether a figure standing on src can reach dest.
//
// The check is a breadth-first search in which every occupied vertex is
// pre-marked visited, so occupied intermediate fields are never expanded
// through; src itself is exempt because a figure always starts from its
// own occupied field. The first time the frontier touches dest the move
// is legal, and the occupant of dest (if any) is reported as the
// collision target. An empty queue means no unoccupied path exists.
func (v *View) Validate(src, dest Position) (MoveResult, error) {
	if _, err := v.topo.Fetch(src); err != nil {
		return MoveResult{}, err
	}
	if _, err := v.topo.Fetch(dest); err != nil {
		return MoveResult{}, err
	}
	if src == dest {
		return MoveResult{}, nil
	}

	visited := make(map[Position]bool, v.topo.VertexCount())
	for pos := range v.occupied {
		visited[pos] = true
	}
	visited[src] = true

	queue := make([]Position, 0, v.topo.VertexCount())
	queue = append(queue, src)

	for len(queue) > 0 {
		pos := queue[0]
		queue = queue[1:]

		for _, next := range v.topo.Neighbors(pos) {
			if next == dest {
				if owner, taken := v.occupied[dest]; taken {
					return MoveResult{Legal: true, Collision: true, Collider: owner}, nil
				}
				return MoveResult{Legal: true}, nil
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	return MoveResult{}, nil
}
