package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/NikkyAI/pentagame-server/game/board"
)

// Envelope is the wire frame exchanged with clients in both directions.
type Envelope struct {
	Action int               `json:"action"`
	Data   map[string]string `json:"data"`
}

// Server-initiated action codes.
const (
	ActionUserJoined        = 0
	ActionMoveMade          = 1
	ActionPlacementRequired = 2
	ActionPlacementDone     = 3
	ActionUserLeft          = 4

	// ActionError carries an error reply; data holds "code" and "message".
	ActionError = 255
)

// Client request action codes. Replies echo the request code.
const (
	RequestListUsers   = 0
	RequestRoomInfo    = 1
	RequestMakeMove    = 2
	RequestPlaceFigure = 3
	RequestLeaveRoom   = 4
	RequestStartRoom   = 5
	RequestStopRoom    = 6
)

// Error codes carried inside ActionError frames.
const (
	CodeInternal      = 0
	CodeBadMessage    = 1
	CodeValidation    = 2
	CodeUnauthorized  = 3
	CodeStoreBusy     = 4
	CodeUnimplemented = 255
)

// errorEnvelope builds an ActionError frame.
func errorEnvelope(code int, message string) Envelope {
	return Envelope{
		Action: ActionError,
		Data: map[string]string{
			"code":    fmt.Sprintf("%d", code),
			"message": message,
		},
	}
}

// MoveRequest is a parsed make-move or place-figure payload.
type MoveRequest struct {
	Figure board.Figure
	From   board.Position
	To     board.Position
}

// parseMoveRequest extracts figure and destination (and, for regular
// moves, the client's claimed source) from an envelope's data map. The
// claimed source is informational; the coordinator trusts persistence.
func parseMoveRequest(data map[string]string, placement bool) (MoveRequest, error) {
	var req MoveRequest

	rawFigure, ok := data["figure"]
	if !ok {
		return req, fmt.Errorf("missing figure")
	}
	var figure int
	if _, err := fmt.Sscanf(rawFigure, "%d", &figure); err != nil {
		return req, fmt.Errorf("figure %q: %w", rawFigure, err)
	}
	if figure < 0 || figure >= board.FigureCount {
		return req, fmt.Errorf("figure %d outside id space", figure)
	}
	req.Figure = board.Figure(figure)

	rawTo, ok := data["to"]
	if !ok {
		return req, fmt.Errorf("missing destination")
	}
	to, err := board.ParsePosition(rawTo)
	if err != nil {
		return req, err
	}
	req.To = to

	if placement {
		req.From = board.OffBoard
		return req, nil
	}

	if rawFrom, ok := data["from"]; ok {
		from, err := board.ParsePosition(rawFrom)
		if err != nil {
			return req, err
		}
		req.From = from
	}

	return req, nil
}

// encodeEnvelope marshals an envelope for the wire.
func encodeEnvelope(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}

// playersJSON renders a player list as a JSON string for the data map.
func playersJSON(players []playerEntry) (string, error) {
	raw, err := json.Marshal(players)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

type playerEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
