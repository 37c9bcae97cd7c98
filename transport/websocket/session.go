package websocket

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Outbound frame buffer per session.
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// Handler upgrades HTTP requests into supervised game sessions.
type Handler struct {
	coord *Coordinator

	// heartbeat is the ping period; timeout closes a client that stayed
	// silent for that long. timeout must exceed heartbeat.
	heartbeat time.Duration
	timeout   time.Duration
}

// NewHandler wires a websocket handler to a running coordinator.
func NewHandler(coord *Coordinator, heartbeat, timeout time.Duration) *Handler {
	return &Handler{coord: coord, heartbeat: heartbeat, timeout: timeout}
}

// Session is one live client connection. Inbound frames are handled on
// the read pump; outbound frames are queued through send and written by
// the write pump.
type Session struct {
	handler *Handler
	conn    *websocket.Conn
	send    chan Envelope

	id     uint64
	userID uuid.UUID
	roomID int64

	closeOnce sync.Once
}

// deliver queues an outbound frame without blocking the coordinator.
func (s *Session) deliver(env Envelope) bool {
	select {
	case s.send <- env:
		return true
	default:
		return false
	}
}

// ServeWS upgrades the request and registers the session for the given
// authenticated user.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	s := &Session{
		handler: h,
		conn:    conn,
		send:    make(chan Envelope, sendBuffer),
		userID:  userID,
	}

	sessionID, roomID, err := h.coord.Connect(userID, s)
	if err != nil {
		log.Printf("rejecting connection for user %s: %v", userID, err)
		s.writeDirect(errorFrame(err))
		conn.Close()
		return
	}
	s.id = sessionID
	s.roomID = roomID

	log.Printf("user %s connected to room %d (session %d)", userID, roomID, sessionID)

	go s.writePump()
	go s.readPump()
}

// teardown deregisters the session exactly once and closes the socket.
func (s *Session) teardown() {
	s.closeOnce.Do(func() {
		s.handler.coord.Disconnect(s.id)
		s.conn.Close()
	})
}

// writeDirect writes one frame synchronously, bypassing the send queue.
// Only used before the pumps are running.
func (s *Session) writeDirect(env Envelope) {
	raw, err := encodeEnvelope(env)
	if err != nil {
		return
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	s.conn.WriteMessage(websocket.TextMessage, raw)
}

// readPump pumps frames from the connection into the coordinator. Any
// inbound frame counts as a sign of life and refreshes the deadline.
func (s *Session) readPump() {
	// On a voluntary leave the write pump drains the ack and the close
	// frame before tearing the connection down; every other exit path
	// tears down immediately.
	graceful := false
	defer func() {
		if !graceful {
			s.teardown()
		}
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(s.handler.timeout))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(s.handler.timeout))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("session %d read error: %v", s.id, err)
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(s.handler.timeout))

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			// A garbled frame gets an error reply, not a disconnect.
			s.deliver(errorEnvelope(CodeBadMessage, "malformed frame"))
			continue
		}

		if done := s.handleRequest(env); done {
			graceful = true
			return
		}
	}
}

// handleRequest processes one client frame. It reports true when the
// session asked to leave and the connection should close.
func (s *Session) handleRequest(env Envelope) bool {
	coord := s.handler.coord

	switch env.Action {
	case RequestListUsers:
		players, err := coord.ListUsers(s.roomID)
		if err != nil {
			s.deliver(errorFrame(err))
			return false
		}
		entries := make([]playerEntry, 0, len(players))
		for _, p := range players {
			entries = append(entries, playerEntry{ID: p.ID.String(), Name: p.Name})
		}
		raw, err := playersJSON(entries)
		if err != nil {
			s.deliver(errorFrame(err))
			return false
		}
		s.deliver(Envelope{Action: RequestListUsers, Data: map[string]string{"players": raw}})

	case RequestRoomInfo:
		info, err := coord.RoomInfo(s.roomID)
		if err != nil {
			s.deliver(errorFrame(err))
			return false
		}
		entries := make([]playerEntry, 0, len(info.Players))
		for _, p := range info.Players {
			entries = append(entries, playerEntry{ID: p.ID.String(), Name: p.Name})
		}
		raw, err := playersJSON(entries)
		if err != nil {
			s.deliver(errorFrame(err))
			return false
		}
		s.deliver(Envelope{Action: RequestRoomInfo, Data: map[string]string{
			"name":        info.Name,
			"description": info.Description,
			"state":       itoa(info.State),
			"players":     raw,
		}})

	case RequestMakeMove, RequestPlaceFigure:
		placement := env.Action == RequestPlaceFigure
		req, err := parseMoveRequest(env.Data, placement)
		if err != nil {
			s.deliver(errorEnvelope(CodeBadMessage, err.Error()))
			return false
		}
		if placement {
			err = coord.PlaceFigure(s.id, req)
		} else {
			err = coord.MakeMove(s.id, req)
		}
		if err != nil {
			s.deliver(errorFrame(err))
			return false
		}
		// The move broadcast reaches this session too; the echo just
		// acknowledges the request itself.
		s.deliver(Envelope{Action: env.Action, Data: map[string]string{"status": "ok"}})

	case RequestLeaveRoom:
		if err := coord.LeaveRoom(s.id); err != nil {
			s.deliver(errorFrame(err))
			return false
		}
		s.deliver(Envelope{Action: RequestLeaveRoom, Data: map[string]string{"status": "ok"}})
		// The session is already deregistered, so nothing delivers into
		// send anymore; closing it lets the write pump flush and finish.
		close(s.send)
		return true

	case RequestStartRoom, RequestStopRoom:
		err := coord.SetRoomRunning(s.id, env.Action == RequestStartRoom, env.Data["message"])
		if err != nil {
			s.deliver(errorFrame(err))
			return false
		}

	default:
		s.deliver(errorEnvelope(CodeUnimplemented, "unknown action"))
	}

	return false
}

// writePump pumps queued frames to the connection and keeps the
// heartbeat going.
func (s *Session) writePump() {
	ticker := time.NewTicker(s.handler.heartbeat)
	defer func() {
		ticker.Stop()
		s.teardown()
	}()

	for {
		select {
		case env, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			raw, err := encodeEnvelope(env)
			if err != nil {
				log.Printf("session %d: failed to encode frame: %v", s.id, err)
				continue
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// errorFrame maps coordinator errors onto wire error codes.
func errorFrame(err error) Envelope {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return errorEnvelope(CodeValidation, verr.Reason)
	case errors.Is(err, ErrStoreBusy):
		return errorEnvelope(CodeStoreBusy, err.Error())
	case errors.Is(err, ErrNotHost), errors.Is(err, ErrNotInRoom):
		return errorEnvelope(CodeUnauthorized, err.Error())
	default:
		return errorEnvelope(CodeInternal, err.Error())
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
