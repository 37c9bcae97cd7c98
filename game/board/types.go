package board

import (
	"fmt"
	"strconv"
	"strings"
)

// Figure identifies one of the 35 movable pieces.
//
// The id space is exhaustive and non-overlapping:
//   - 0-24  player figures (player = f/5, piece = f%5)
//   - 25-29 gray stoppers
//   - 30-34 black stoppers
type Figure uint8

const (
	PlayerCount      = 5
	FiguresPerPlayer = 5

	// GrayStopperOffset is the first gray stopper id.
	GrayStopperOffset Figure = 25
	// BlackStopperOffset is the first black stopper id.
	BlackStopperOffset Figure = 30
	// FigureCount is the total number of movable pieces on the board.
	FigureCount = 35
)

// IsPlayerFigure reports whether f belongs to one of the five players.
func (f Figure) IsPlayerFigure() bool {
	return f < GrayStopperOffset
}

// IsGrayStopper reports whether f is one of the five gray stoppers.
func (f Figure) IsGrayStopper() bool {
	return f >= GrayStopperOffset && f < BlackStopperOffset
}

// IsBlackStopper reports whether f is one of the five black stoppers.
func (f Figure) IsBlackStopper() bool {
	return f >= BlackStopperOffset && f < FigureCount
}

// Player returns the owning player index for a player figure, and -1 for
// neutral stoppers.
func (f Figure) Player() int {
	if !f.IsPlayerFigure() {
		return -1
	}
	return int(f) / FiguresPerPlayer
}

// Valid reports whether f is inside the figure id space.
func (f Figure) Valid() bool {
	return f < FigureCount
}

// Position uniquely identifies a board vertex as the triple
// (base, stop, peer). Base vertices use (b, 0, 0); the i-th stop on the
// chain from base b toward peer p uses (b, i, p) with i >= 1.
type Position struct {
	Base int16 `json:"base"`
	Stop int16 `json:"stop"`
	Peer int16 `json:"peer"`
}

// OffBoard is the sentinel position of a figure awaiting placement.
// It never appears in a topology.
var OffBoard = Position{Base: -1}

// BasePosition returns the position of a base vertex.
func BasePosition(base int16) Position {
	return Position{Base: base}
}

// IsBase reports whether p addresses a base vertex (corner or junction).
func (p Position) IsBase() bool {
	return p.Stop == 0 && p.Base >= 0
}

// IsOffBoard reports whether p is the off-board sentinel.
func (p Position) IsOffBoard() bool {
	return p.Base < 0
}

// String renders p in the wire format "base,stop,peer".
func (p Position) String() string {
	return fmt.Sprintf("%d,%d,%d", p.Base, p.Stop, p.Peer)
}

// ParsePosition parses the wire format produced by Position.String.
func ParsePosition(s string) (Position, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Position{}, fmt.Errorf("position %q: want three comma-separated values", s)
	}

	var vals [3]int16
	for i, part := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 16)
		if err != nil {
			return Position{}, fmt.Errorf("position %q: %w", s, err)
		}
		vals[i] = int16(n)
	}

	return Position{Base: vals[0], Stop: vals[1], Peer: vals[2]}, nil
}

// Field is the occupancy of a single vertex. Owner is only meaningful
// while Occupied is true.
type Field struct {
	Occupied bool   `json:"occupied"`
	Owner    Figure `json:"owner,omitempty"`
}
