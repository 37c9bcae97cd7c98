package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/NikkyAI/pentagame-server/game/store"
)

func dialSession(t *testing.T, h *Handler, userID uuid.UUID) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeWS(w, r, userID)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("ReadJSON() failed: %v", err)
	}
	return env
}

func TestSessionRoomInfoRoundTrip(t *testing.T) {
	st := store.NewMemoryStore()
	alice := store.Player{ID: uuid.New(), Name: "alice"}
	seedRoom(t, st, 7, alice)
	c := newTestCoordinator(t, st, Options{})
	h := NewHandler(c, 100*time.Millisecond, time.Second)

	conn := dialSession(t, h, alice.ID)

	if err := conn.WriteJSON(Envelope{Action: RequestRoomInfo}); err != nil {
		t.Fatalf("WriteJSON() failed: %v", err)
	}

	env := readEnvelope(t, conn)
	if env.Action != RequestRoomInfo {
		t.Fatalf("action = %d, want RequestRoomInfo", env.Action)
	}
	if env.Data["name"] != "test room" {
		t.Errorf("room name = %q, want test room", env.Data["name"])
	}
}

func TestSessionMalformedFrameKeepsConnection(t *testing.T) {
	st := store.NewMemoryStore()
	alice := store.Player{ID: uuid.New(), Name: "alice"}
	seedRoom(t, st, 7, alice)
	c := newTestCoordinator(t, st, Options{})
	h := NewHandler(c, 100*time.Millisecond, time.Second)

	conn := dialSession(t, h, alice.ID)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("WriteMessage() failed: %v", err)
	}

	env := readEnvelope(t, conn)
	if env.Action != ActionError {
		t.Fatalf("action = %d, want ActionError", env.Action)
	}
	if env.Data["code"] != "1" {
		t.Errorf("error code = %q, want 1 (bad message)", env.Data["code"])
	}

	// The connection survives a garbled frame.
	if err := conn.WriteJSON(Envelope{Action: RequestListUsers}); err != nil {
		t.Fatalf("WriteJSON() after error failed: %v", err)
	}
	if env := readEnvelope(t, conn); env.Action != RequestListUsers {
		t.Errorf("action = %d, want RequestListUsers", env.Action)
	}
}

func TestSessionRejectsUserWithoutRoom(t *testing.T) {
	c := newTestCoordinator(t, store.NewMemoryStore(), Options{})
	h := NewHandler(c, 100*time.Millisecond, time.Second)

	conn := dialSession(t, h, uuid.New())

	env := readEnvelope(t, conn)
	if env.Action != ActionError {
		t.Fatalf("action = %d, want ActionError", env.Action)
	}
	if env.Data["code"] != "3" {
		t.Errorf("error code = %q, want 3 (unauthorized)", env.Data["code"])
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("connection stayed open after rejection")
	}
}

func TestSessionHeartbeatTimeout(t *testing.T) {
	st := store.NewMemoryStore()
	alice := store.Player{ID: uuid.New(), Name: "alice"}
	seedRoom(t, st, 7, alice)
	c := newTestCoordinator(t, st, Options{})
	h := NewHandler(c, 20*time.Millisecond, 80*time.Millisecond)

	conn := dialSession(t, h, alice.ID)

	// A client that never answers pings and never sends frames must be
	// torn down once the timeout elapses.
	conn.SetPingHandler(func(string) error { return nil })

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("server kept a silent connection alive")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		sessions, _, err := c.Stats()
		if err != nil {
			t.Fatalf("Stats() failed: %v", err)
		}
		if sessions == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("session still registered after timeout: %d", sessions)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSessionLeaveRoom(t *testing.T) {
	st := store.NewMemoryStore()
	alice := store.Player{ID: uuid.New(), Name: "alice"}
	bob := store.Player{ID: uuid.New(), Name: "bob"}
	seedRoom(t, st, 7, alice, bob)
	c := newTestCoordinator(t, st, Options{})
	h := NewHandler(c, 100*time.Millisecond, time.Second)

	observer := newFakeClient()
	if _, _, err := c.Connect(bob.ID, observer); err != nil {
		t.Fatalf("Connect(bob) failed: %v", err)
	}

	conn := dialSession(t, h, alice.ID)
	observer.next(t) // alice joined

	if err := conn.WriteJSON(Envelope{Action: RequestLeaveRoom}); err != nil {
		t.Fatalf("WriteJSON() failed: %v", err)
	}

	env := readEnvelope(t, conn)
	if env.Action != RequestLeaveRoom || env.Data["status"] != "ok" {
		t.Fatalf("leave reply = action %d data %v, want ack", env.Action, env.Data)
	}

	if env := observer.next(t); env.Action != ActionUserLeft {
		t.Errorf("observer saw action %d, want ActionUserLeft", env.Action)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("connection stayed open after leaving")
	}
}
