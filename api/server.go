package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/NikkyAI/pentagame-server/game/board"
	"github.com/NikkyAI/pentagame-server/game/store"
	"github.com/NikkyAI/pentagame-server/transport/websocket"
)

// Server is the HTTP front of the game server.
type Server struct {
	coord  *websocket.Coordinator
	ws     *websocket.Handler
	topo   *board.Topology
	router *mux.Router
}

// NewServer wires the HTTP routes to a running coordinator.
func NewServer(coord *websocket.Coordinator, ws *websocket.Handler, topo *board.Topology) *Server {
	s := &Server{
		coord:  coord,
		ws:     ws,
		topo:   topo,
		router: mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/board", s.handleBoard).Methods("GET")
	api.HandleFunc("/rooms/{id}", s.handleRoom).Methods("GET")
	api.HandleFunc("/rooms/{id}/players", s.handleRoomPlayers).Methods("GET")
	api.HandleFunc("/rooms/{id}/moves", s.handleSubmitMove).Methods("POST")
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondCoordinatorError maps coordinator errors to HTTP statuses.
func respondCoordinatorError(w http.ResponseWriter, err error) {
	var verr *websocket.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusUnprocessableEntity, verr.Reason)
	case errors.Is(err, websocket.ErrNotInRoom), errors.Is(err, websocket.ErrNotHost):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrRoomNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, websocket.ErrStoreBusy):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func roomID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// Handlers

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"layout":   s.topo.LayoutName(),
		"vertices": s.topo.VertexCount(),
		"edges":    s.topo.EdgeCount(),
	})
}

func (s *Server) handleRoom(w http.ResponseWriter, r *http.Request) {
	id, err := roomID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid room id")
		return
	}

	info, err := s.coord.RoomInfo(id)
	if err != nil {
		respondCoordinatorError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"name":        info.Name,
		"description": info.Description,
		"state":       info.State,
		"players":     playerList(info.Players),
	})
}

func (s *Server) handleRoomPlayers(w http.ResponseWriter, r *http.Request) {
	id, err := roomID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid room id")
		return
	}

	players, err := s.coord.ListUsers(id)
	if err != nil {
		respondCoordinatorError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, playerList(players))
}

type playerJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func playerList(players []store.Player) []playerJSON {
	out := make([]playerJSON, 0, len(players))
	for _, p := range players {
		out = append(out, playerJSON{ID: p.ID.String(), Name: p.Name})
	}
	return out
}

func (s *Server) handleSubmitMove(w http.ResponseWriter, r *http.Request) {
	id, err := roomID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid room id")
		return
	}

	var req struct {
		User      string `json:"user"`
		Figure    int    `json:"figure"`
		To        string `json:"to"`
		Placement bool   `json:"placement"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, err := uuid.Parse(req.User)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if req.Figure < 0 || req.Figure >= board.FigureCount {
		respondError(w, http.StatusBadRequest, "figure outside id space")
		return
	}
	to, err := board.ParsePosition(req.To)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	move := websocket.MoveRequest{Figure: board.Figure(req.Figure), To: to}
	if err := s.coord.SubmitMove(userID, id, move, req.Placement); err != nil {
		respondCoordinatorError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sessions, rooms, err := s.coord.Stats()
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": sessions,
		"rooms":    rooms,
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// TODO: Replace the query parameter with real session auth once the
	// account system is wired in.
	userID, err := uuid.Parse(r.URL.Query().Get("user"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing or invalid user parameter")
		return
	}

	s.ws.ServeWS(w, r, userID)
}
