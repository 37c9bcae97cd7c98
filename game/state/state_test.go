package state

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/NikkyAI/pentagame-server/game/board"
	"github.com/NikkyAI/pentagame-server/game/store"
)

func buildTopology(t *testing.T) *board.Topology {
	t.Helper()

	topo, err := board.Build(board.DefaultLayout())
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	return topo
}

func TestStartingState(t *testing.T) {
	s := Starting()

	for k := board.Figure(0); k < board.PlayerCount; k++ {
		figure := board.BlackStopperOffset + k
		pos, err := s.Position(figure)
		if err != nil {
			t.Fatalf("Position(%d) failed: %v", figure, err)
		}
		want := board.BasePosition(5 + int16(k))
		if pos != want {
			t.Errorf("black stopper %d starts at %s, want %s", figure, pos, want)
		}
	}

	for _, figure := range []board.Figure{0, 12, 24, 25, 29} {
		pos, err := s.Position(figure)
		if err != nil {
			t.Fatalf("Position(%d) failed: %v", figure, err)
		}
		if !pos.IsOffBoard() {
			t.Errorf("figure %d starts at %s, want off-board", figure, pos)
		}
	}
}

func TestBuildFromHistoryEmptyRoom(t *testing.T) {
	topo := buildTopology(t)
	st := store.NewMemoryStore()
	st.CreateRoom(1, store.RoomSummary{Name: "fresh"})

	s, err := BuildFromHistory(context.Background(), st, topo, 1)
	if err != nil {
		t.Fatalf("BuildFromHistory() failed: %v", err)
	}

	pos, _ := s.Position(board.BlackStopperOffset)
	if pos != board.BasePosition(5) {
		t.Errorf("unmoved black stopper at %s, want %s", pos, board.BasePosition(5))
	}
}

func TestBuildFromHistoryLatestMoveWins(t *testing.T) {
	ctx := context.Background()
	topo := buildTopology(t)
	st := store.NewMemoryStore()
	st.CreateRoom(2, store.RoomSummary{Name: "history"})
	user := uuid.New()

	figure := board.Figure(0)
	moves := []store.MoveRecord{
		{RoomID: 2, UserID: user, Figure: figure, Src: board.OffBoard, Dest: board.BasePosition(0)},
		{RoomID: 2, UserID: user, Figure: figure, Src: board.BasePosition(0), Dest: board.BasePosition(1)},
		{RoomID: 2, UserID: user, Figure: figure, Src: board.BasePosition(1), Dest: board.BasePosition(2)},
	}
	for _, rec := range moves {
		if err := st.RecordMove(ctx, rec); err != nil {
			t.Fatalf("RecordMove() failed: %v", err)
		}
	}

	s, err := BuildFromHistory(ctx, st, topo, 2)
	if err != nil {
		t.Fatalf("BuildFromHistory() failed: %v", err)
	}

	pos, _ := s.Position(figure)
	if pos != board.BasePosition(2) {
		t.Errorf("figure 0 at %s, want latest destination %s", pos, board.BasePosition(2))
	}
}

func TestBuildFromHistoryCorruptDestination(t *testing.T) {
	ctx := context.Background()
	topo := buildTopology(t)
	st := store.NewMemoryStore()
	st.CreateRoom(3, store.RoomSummary{Name: "corrupt"})

	rec := store.MoveRecord{
		RoomID: 3, UserID: uuid.New(), Figure: 4,
		Src: board.OffBoard, Dest: board.Position{Base: 77},
	}
	if err := st.RecordMove(ctx, rec); err != nil {
		t.Fatalf("RecordMove() failed: %v", err)
	}

	if _, err := BuildFromHistory(ctx, st, topo, 3); !errors.Is(err, ErrCannotConstructState) {
		t.Errorf("BuildFromHistory() error = %v, want ErrCannotConstructState", err)
	}
}

func TestBuildFromHistoryConflictingOccupancy(t *testing.T) {
	ctx := context.Background()
	topo := buildTopology(t)
	st := store.NewMemoryStore()
	st.CreateRoom(4, store.RoomSummary{Name: "conflict"})
	user := uuid.New()

	// Two figures recorded on the same field.
	for _, figure := range []board.Figure{0, 1} {
		rec := store.MoveRecord{
			RoomID: 4, UserID: user, Figure: figure,
			Src: board.OffBoard, Dest: board.BasePosition(0),
		}
		if err := st.RecordMove(ctx, rec); err != nil {
			t.Fatalf("RecordMove() failed: %v", err)
		}
	}

	if _, err := BuildFromHistory(ctx, st, topo, 4); !errors.Is(err, ErrCannotConstructState) {
		t.Errorf("BuildFromHistory() error = %v, want ErrCannotConstructState", err)
	}
}

func TestOccupyOverlay(t *testing.T) {
	topo := buildTopology(t)
	s := Starting()
	if err := s.Set(board.Figure(2), board.BasePosition(0)); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	view, err := s.Occupy(topo)
	if err != nil {
		t.Fatalf("Occupy() failed: %v", err)
	}

	owner, occupied := view.Owner(board.BasePosition(0))
	if !occupied || owner != board.Figure(2) {
		t.Errorf("corner 0 owner = (%d, %v), want (2, true)", owner, occupied)
	}

	// Junctions carry their black stoppers.
	if _, occupied := view.Owner(board.BasePosition(7)); !occupied {
		t.Error("junction 7 should hold a black stopper at game start")
	}
}

func TestSetRejectsUnknownFigure(t *testing.T) {
	s := Starting()
	if err := s.Set(board.Figure(35), board.BasePosition(0)); err == nil {
		t.Error("Set() accepted a figure outside the id space")
	}
	if _, err := s.Position(board.Figure(200)); err == nil {
		t.Error("Position() accepted a figure outside the id space")
	}
}
