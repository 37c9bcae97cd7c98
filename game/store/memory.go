package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NikkyAI/pentagame-server/game/board"
)

// MemoryStore is an in-process Store used by tests and by the server's
// standalone mode. It is safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	rooms     map[int64]*memoryRoom
	userRooms map[uuid.UUID]int64
}

type memoryRoom struct {
	summary RoomSummary
	players []Player
	// moves holds every recorded move, oldest first.
	moves []MoveRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:     make(map[int64]*memoryRoom),
		userRooms: make(map[uuid.UUID]int64),
	}
}

// CreateRoom registers a room. Seeding helper for tests and standalone mode.
func (m *MemoryStore) CreateRoom(roomID int64, summary RoomSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[roomID] = &memoryRoom{summary: summary}
}

// JoinRoom binds a user to a room as its current game.
func (m *MemoryStore) JoinRoom(roomID int64, player Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return fmt.Errorf("join room %d: %w", roomID, ErrRoomNotFound)
	}

	for _, existing := range room.players {
		if existing.ID == player.ID {
			m.userRooms[player.ID] = roomID
			return nil
		}
	}
	room.players = append(room.players, player)
	m.userRooms[player.ID] = roomID
	return nil
}

// LeaveRoom drops the user's current-room binding.
func (m *MemoryStore) LeaveRoom(userID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.userRooms, userID)
}

// CurrentRoom implements Store.
func (m *MemoryStore) CurrentRoom(_ context.Context, userID uuid.UUID) (int64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	roomID, ok := m.userRooms[userID]
	return roomID, ok, nil
}

// LatestMove implements Store.
func (m *MemoryStore) LatestMove(_ context.Context, roomID int64, userID uuid.UUID, figure board.Figure) (*MoveRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("room %d: %w", roomID, ErrRoomNotFound)
	}

	for i := len(room.moves) - 1; i >= 0; i-- {
		rec := room.moves[i]
		if rec.Figure == figure && rec.UserID == userID {
			return &rec, nil
		}
	}
	return nil, ErrNoMove
}

// LatestFigureMove implements Store.
func (m *MemoryStore) LatestFigureMove(_ context.Context, roomID int64, figure board.Figure) (*MoveRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("room %d: %w", roomID, ErrRoomNotFound)
	}

	for i := len(room.moves) - 1; i >= 0; i-- {
		if room.moves[i].Figure == figure {
			rec := room.moves[i]
			return &rec, nil
		}
	}
	return nil, ErrNoMove
}

// RecordMove implements Store.
func (m *MemoryStore) RecordMove(_ context.Context, rec MoveRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[rec.RoomID]
	if !ok {
		return fmt.Errorf("room %d: %w", rec.RoomID, ErrRoomNotFound)
	}

	if rec.Recorded.IsZero() {
		rec.Recorded = time.Now()
	}
	room.moves = append(room.moves, rec)
	return nil
}

// RoomSummary implements Store.
func (m *MemoryStore) RoomSummary(_ context.Context, roomID int64) (RoomSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return RoomSummary{}, fmt.Errorf("room %d: %w", roomID, ErrRoomNotFound)
	}
	return room.summary, nil
}

// RoomPlayers implements Store.
func (m *MemoryStore) RoomPlayers(_ context.Context, roomID int64) ([]Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("room %d: %w", roomID, ErrRoomNotFound)
	}

	players := make([]Player, len(room.players))
	copy(players, room.players)
	return players, nil
}

// SetRoomState implements Store.
func (m *MemoryStore) SetRoomState(_ context.Context, roomID int64, state int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return fmt.Errorf("room %d: %w", roomID, ErrRoomNotFound)
	}
	room.summary.State = state
	return nil
}

// MoveCount returns the number of recorded moves in a room. Test helper.
func (m *MemoryStore) MoveCount(roomID int64) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return 0
	}
	return len(room.moves)
}
