package board

import "errors"

var (
	// ErrNoSuchVertex reports a position outside the static topology.
	// Referencing one at runtime is a programming or payload error, not a
	// reachable game state.
	ErrNoSuchVertex = errors.New("no such vertex")

	// ErrCannotAddVertex reports a duplicate vertex id during construction.
	ErrCannotAddVertex = errors.New("cannot add vertex")

	// ErrCannotAddEdge reports an edge whose endpoint was never inserted.
	ErrCannotAddEdge = errors.New("cannot add edge")

	// ErrFieldOccupied reports an overlay placing two figures on one field.
	ErrFieldOccupied = errors.New("field already occupied")

	// ErrInvalidLayout reports a layout that cannot produce a board.
	ErrInvalidLayout = errors.New("invalid layout")
)
