// Package board implements the static Pentagame board graph and the
// move validator that runs against it.
//
// The board package implements:
//   - Position addressing for base vertices and chain stops
//   - Deterministic topology construction from a declared layout
//   - Figure identity for player pieces and neutral stoppers
//   - Occupancy overlays that never mutate the shared topology
//   - Breadth-first move validation with collision detection
//
// Board Shape:
//
// The board is a graph of 10 base vertices (corners and junctions)
// connected by chains of intermediate stop vertices. A Position is the
// triple (base, stop, peer): base vertices are (b, 0, 0) and the i-th
// stop on the chain from base b toward peer p is (b, i, p). The default
// layout yields exactly 100 vertices.
//
// Topology vs. Occupancy:
//
// A Topology is built once at startup and shared read-only between all
// rooms. Per-room occupancy is expressed as a View overlay, so validating
// a move in one room can never leak state into another.
//
// Movement Rules:
//
// A figure travels through empty fields only and captures whatever sits
// on the field it lands on. Validate therefore runs a BFS in which every
// occupied vertex except the source is a barrier; the collision owner is
// only ever reported for the destination.
//
// Usage:
//
//	topo, err := board.Build(board.DefaultLayout())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	view := board.NewView(topo)
//	view.Place(figure, pos)
//	res, err := view.Validate(src, dest)
package board
