package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/NikkyAI/pentagame-server/game/board"
	"github.com/NikkyAI/pentagame-server/game/store"
)

// ErrCannotConstructState reports persisted move history that contradicts
// the board: unknown figures, destinations outside the topology, or two
// figures on one field.
var ErrCannotConstructState = errors.New("cannot construct state")

// GraphState holds the most recent known location of every figure in one
// room. The zero figure index is figure 0; off-board figures carry the
// off-board sentinel.
type GraphState struct {
	positions [board.FigureCount]board.Position
}

// Starting returns the canonical pre-game state: black stoppers on the
// five junction base vertices, everything else off-board awaiting
// placement.
func Starting() *GraphState {
	s := &GraphState{}
	for f := board.Figure(0); f < board.FigureCount; f++ {
		s.positions[f] = board.OffBoard
	}
	for k := int16(0); k < board.PlayerCount; k++ {
		s.positions[board.BlackStopperOffset+board.Figure(k)] = board.BasePosition(5 + k)
	}
	return s
}

// StartingPosition returns the canonical starting position of a figure.
func StartingPosition(figure board.Figure) board.Position {
	if figure.IsBlackStopper() {
		return board.BasePosition(5 + int16(figure-board.BlackStopperOffset))
	}
	return board.OffBoard
}

// Position returns the current location of figure.
func (s *GraphState) Position(figure board.Figure) (board.Position, error) {
	if !figure.Valid() {
		return board.Position{}, fmt.Errorf("figure %d outside id space", figure)
	}
	return s.positions[figure], nil
}

// Set records a validated move of figure to pos. This is the incremental
// update path; it performs no legality checking of its own.
func (s *GraphState) Set(figure board.Figure, pos board.Position) error {
	if !figure.Valid() {
		return fmt.Errorf("figure %d outside id space", figure)
	}
	s.positions[figure] = pos
	return nil
}

// Occupy overlays the state onto a fresh view of the static topology.
// The topology itself is never touched, so concurrent rooms cannot
// interfere with each other. Conflicting occupancy is a corrupted state.
func (s *GraphState) Occupy(topo *board.Topology) (*board.View, error) {
	view := board.NewView(topo)
	for f := board.Figure(0); f < board.FigureCount; f++ {
		if err := view.Place(f, s.positions[f]); err != nil {
			return nil, fmt.Errorf("%w: figure %d at %s: %v", ErrCannotConstructState, f, s.positions[f], err)
		}
	}
	return view, nil
}

// BuildFromHistory assembles a room's state from persisted moves: the
// latest recorded destination per figure, falling back to the canonical
// starting position for figures that were never moved.
//
// The store is queried per figure over the 35-figure id space, so a
// corrupt record naming a figure outside that space can never be
// returned and stays undetected here. Records that ARE returned get
// checked: a mismatched figure id, a destination off the topology, or
// two figures sharing a field all fail with ErrCannotConstructState.
func BuildFromHistory(ctx context.Context, st store.Store, topo *board.Topology, roomID int64) (*GraphState, error) {
	s := Starting()

	for f := board.Figure(0); f < board.FigureCount; f++ {
		rec, err := st.LatestFigureMove(ctx, roomID, f)
		if errors.Is(err, store.ErrNoMove) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("room %d figure %d: %w", roomID, f, err)
		}

		if rec.Figure != f {
			return nil, fmt.Errorf("%w: record for figure %d names figure %d", ErrCannotConstructState, f, rec.Figure)
		}
		if !rec.Dest.IsOffBoard() && !topo.Contains(rec.Dest) {
			return nil, fmt.Errorf("%w: figure %d moved to %s which is not on the board", ErrCannotConstructState, f, rec.Dest)
		}
		s.positions[f] = rec.Dest
	}

	// Surface occupancy conflicts now instead of at first validation.
	if _, err := s.Occupy(topo); err != nil {
		return nil, err
	}

	return s, nil
}
