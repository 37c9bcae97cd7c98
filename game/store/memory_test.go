package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikkyAI/pentagame-server/game/board"
)

func TestMemoryStoreCurrentRoom(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	user := uuid.New()

	_, ok, err := s.CurrentRoom(ctx, user)
	require.NoError(t, err)
	assert.False(t, ok, "user without a room must resolve to none")

	s.CreateRoom(1, RoomSummary{Name: "first"})
	require.NoError(t, s.JoinRoom(1, Player{ID: user, Name: "alice"}))

	roomID, ok, err := s.CurrentRoom(ctx, user)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), roomID)

	s.LeaveRoom(user)
	_, ok, err = s.CurrentRoom(ctx, user)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreJoinUnknownRoom(t *testing.T) {
	s := NewMemoryStore()
	err := s.JoinRoom(99, Player{ID: uuid.New(), Name: "bob"})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestMemoryStoreLatestMove(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.CreateRoom(7, RoomSummary{Name: "moves"})

	alice := uuid.New()
	bob := uuid.New()
	figure := board.Figure(3)

	_, err := s.LatestMove(ctx, 7, alice, figure)
	assert.ErrorIs(t, err, ErrNoMove)

	first := MoveRecord{
		RoomID: 7, UserID: alice, Figure: figure,
		Src: board.BasePosition(0), Dest: board.BasePosition(1),
	}
	second := MoveRecord{
		RoomID: 7, UserID: alice, Figure: figure,
		Src: board.BasePosition(1), Dest: board.BasePosition(2),
	}
	other := MoveRecord{
		RoomID: 7, UserID: bob, Figure: board.Figure(8),
		Src: board.BasePosition(4), Dest: board.BasePosition(9),
	}

	require.NoError(t, s.RecordMove(ctx, first))
	require.NoError(t, s.RecordMove(ctx, other))
	require.NoError(t, s.RecordMove(ctx, second))

	rec, err := s.LatestMove(ctx, 7, alice, figure)
	require.NoError(t, err)
	assert.Equal(t, board.BasePosition(2), rec.Dest, "latest move must win")
	assert.False(t, rec.Recorded.IsZero(), "recorded timestamp must be stamped")

	rec, err = s.LatestFigureMove(ctx, 7, board.Figure(8))
	require.NoError(t, err)
	assert.Equal(t, bob, rec.UserID)

	// Moves of one user are invisible through another user's lookup.
	_, err = s.LatestMove(ctx, 7, bob, figure)
	assert.ErrorIs(t, err, ErrNoMove)
}

func TestMemoryStoreRoomMetadata(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	host := uuid.New()
	s.CreateRoom(3, RoomSummary{Name: "meta", Description: "a room", HostID: host})

	summary, err := s.RoomSummary(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "meta", summary.Name)
	assert.Equal(t, RoomStateLobby, summary.State)
	assert.Equal(t, host, summary.HostID)

	require.NoError(t, s.SetRoomState(ctx, 3, RoomStateRunning))
	summary, err = s.RoomSummary(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, RoomStateRunning, summary.State)

	_, err = s.RoomSummary(ctx, 99)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.ErrorIs(t, s.SetRoomState(ctx, 99, RoomStateStopped), ErrRoomNotFound)
}

func TestMemoryStoreRoomPlayers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.CreateRoom(5, RoomSummary{Name: "players"})

	alice := Player{ID: uuid.New(), Name: "alice"}
	bob := Player{ID: uuid.New(), Name: "bob"}
	require.NoError(t, s.JoinRoom(5, alice))
	require.NoError(t, s.JoinRoom(5, bob))
	// Joining twice must not duplicate the membership.
	require.NoError(t, s.JoinRoom(5, alice))

	players, err := s.RoomPlayers(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, players, 2)
}
