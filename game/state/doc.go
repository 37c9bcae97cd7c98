// Package state tracks where every figure of one room currently stands.
//
// A GraphState is the room-local snapshot of all 35 figure locations.
// It is rebuilt from persisted move history on the first connection to a
// room (latest recorded destination per figure, canonical starting
// position otherwise) and updated incrementally as moves are validated,
// never rebuilt mid-game.
//
// Canonical Starting Positions:
//
// Black stoppers begin on the five junction base vertices. Player
// figures and gray stoppers begin off-board and enter play through
// placement moves, which are recorded with the off-board sentinel as
// their source.
//
// Corruption Handling:
//
// A history that names a figure outside the id space, moves a figure to
// a vertex outside the topology, or puts two figures on one field is
// rejected with ErrCannotConstructState instead of being silently
// clamped; the caller decides whether to surface or retry.
package state
