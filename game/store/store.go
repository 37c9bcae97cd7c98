package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/NikkyAI/pentagame-server/game/board"
)

var (
	// ErrRoomNotFound reports a room id unknown to the backing storage.
	ErrRoomNotFound = errors.New("room not found")

	// ErrNoMove reports that a figure has no recorded move yet.
	ErrNoMove = errors.New("no recorded move")
)

// Room lifecycle states. Rooms in the lobby state accept new players;
// stopped rooms reject further moves.
const (
	RoomStateLobby   = 0
	RoomStateRunning = 1
	RoomStateStopped = 2
)

// MoveRecord is one validated move as it is persisted. Src is the
// off-board sentinel for placement moves.
type MoveRecord struct {
	RoomID   int64          `json:"room_id"`
	UserID   uuid.UUID      `json:"user_id"`
	Figure   board.Figure   `json:"figure"`
	Src      board.Position `json:"src"`
	Dest     board.Position `json:"dest"`
	Recorded time.Time      `json:"recorded"`
}

// RoomSummary is the slim metadata of one room.
type RoomSummary struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	State       int       `json:"state"`
	HostID      uuid.UUID `json:"host_id"`
}

// Player is one room member as known to persistence.
type Player struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Store is the narrow persistence interface consumed by the coordinator.
//
// Latest-move lookups return ErrNoMove when the figure has never been
// moved in the room; callers fall back to the figure's canonical
// starting position.
type Store interface {
	// CurrentRoom resolves the room a user is currently joined to.
	// ok is false when the user is not in any room.
	CurrentRoom(ctx context.Context, userID uuid.UUID) (roomID int64, ok bool, err error)

	// LatestMove returns the most recent move of figure made by userID
	// within the room.
	LatestMove(ctx context.Context, roomID int64, userID uuid.UUID, figure board.Figure) (*MoveRecord, error)

	// LatestFigureMove returns the most recent move of figure within the
	// room regardless of who made it. Room state rebuilds use this.
	LatestFigureMove(ctx context.Context, roomID int64, figure board.Figure) (*MoveRecord, error)

	// RecordMove appends a validated move to the room's history.
	RecordMove(ctx context.Context, rec MoveRecord) error

	// RoomSummary returns the room's metadata.
	RoomSummary(ctx context.Context, roomID int64) (RoomSummary, error)

	// RoomPlayers lists the room's members.
	RoomPlayers(ctx context.Context, roomID int64) ([]Player, error)

	// SetRoomState transitions the room's lifecycle state.
	SetRoomState(ctx context.Context, roomID int64, state int) error
}
