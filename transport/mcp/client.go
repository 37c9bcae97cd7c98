package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Pentagame Server",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Pentagame - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Pentagame is played on a five-pointed star graph. Vertices are written
as "base,stop,peer": corners are bases 0-4, junctions are bases 5-9,
and the fields between them are the numbered stops of a chain. A figure
may move to any vertex reachable over unoccupied fields.

AVAILABLE TOOLS:
- board_info: Board layout summary (vertex and edge counts)
- room_info: Room metadata and player list
- room_players: Player list of a room
- make_move: Submit a move or placement for a user
- game_rules: Position format and movement rules`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "board_info",
		Description: "Get the board layout summary",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleBoardInfo)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "room_info",
		Description: "Get a room's metadata and player list",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "number",
					"description": "Room ID",
				},
			},
			Required: []string{"room_id"},
		},
	}, c.handleRoomInfo)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "room_players",
		Description: "List the players of a room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "number",
					"description": "Room ID",
				},
			},
			Required: []string{"room_id"},
		},
	}, c.handleRoomPlayers)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "make_move",
		Description: "Submit a move or placement for a user in their room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "number",
					"description": "Room ID",
				},
				"user": map[string]interface{}{
					"type":        "string",
					"description": "UUID of the acting user",
				},
				"figure": map[string]interface{}{
					"type":        "number",
					"description": "Figure id (0-24 player figures, 25-29 gray stoppers, 30-34 black stoppers)",
				},
				"to": map[string]interface{}{
					"type":        "string",
					"description": "Destination vertex as base,stop,peer",
				},
				"placement": map[string]interface{}{
					"type":        "boolean",
					"description": "True to place an off-board figure instead of moving one",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"room_id", "user", "figure", "to"},
		},
	}, c.handleMakeMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_rules",
		Description: "Get the position format and movement rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameRules)
}

// GetMCPServer returns the underlying MCP server, for mounting on stdio
// or an HTTP endpoint.
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleBoardInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var board struct {
		Layout   string `json:"layout"`
		Vertices int    `json:"vertices"`
		Edges    int    `json:"edges"`
	}
	if err := c.apiCall("GET", "/api/board", nil, &board); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Board layout %q: %d vertices, %d directed edges",
		board.Layout, board.Vertices, board.Edges)
	return mcp.NewToolResultText(result), nil
}

type roomResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	State       int    `json:"state"`
	Players     []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"players"`
}

func roomStateName(state int) string {
	switch state {
	case 0:
		return "lobby"
	case 1:
		return "running"
	case 2:
		return "stopped"
	default:
		return fmt.Sprintf("unknown (%d)", state)
	}
}

func (c *Client) handleRoomInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	roomID, ok := args["room_id"].(float64)
	if !ok {
		return mcp.NewToolResultError("room_id is required"), nil
	}

	var room roomResponse
	if err := c.apiCall("GET", fmt.Sprintf("/api/rooms/%d", int64(roomID)), nil, &room); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Room %d: %s (%s)\n", int64(roomID), room.Name, roomStateName(room.State))
	if room.Description != "" {
		fmt.Fprintf(&b, "%s\n", room.Description)
	}
	fmt.Fprintf(&b, "\nPlayers (%d):\n", len(room.Players))
	for _, p := range room.Players {
		fmt.Fprintf(&b, "• %s (%s)\n", p.Name, p.ID)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleRoomPlayers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	roomID, ok := args["room_id"].(float64)
	if !ok {
		return mcp.NewToolResultError("room_id is required"), nil
	}

	var players []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := c.apiCall("GET", fmt.Sprintf("/api/rooms/%d/players", int64(roomID)), nil, &players); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Players (%d):\n", len(players))
	for _, p := range players {
		fmt.Fprintf(&b, "• %s (%s)\n", p.Name, p.ID)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleMakeMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	roomID, ok := args["room_id"].(float64)
	if !ok {
		return mcp.NewToolResultError("room_id is required"), nil
	}
	user, _ := args["user"].(string)
	figure, ok := args["figure"].(float64)
	if !ok {
		return mcp.NewToolResultError("figure is required"), nil
	}
	to, _ := args["to"].(string)
	placement, _ := args["placement"].(bool)
	intent, _ := args["intent"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	body := map[string]interface{}{
		"user":      user,
		"figure":    int(figure),
		"to":        to,
		"placement": placement,
	}

	if err := c.apiCall("POST", fmt.Sprintf("/api/rooms/%d/moves", int64(roomID)), body, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	verb := "moved to"
	if placement {
		verb = "placed on"
	}
	return mcp.NewToolResultText(fmt.Sprintf("Figure %d %s %s", int(figure), verb, to)), nil
}

func (c *Client) handleGameRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rules := `Pentagame - Movement Rules

BOARD:
The board is a five-pointed star graph with 100 vertices. Every vertex
is written as "base,stop,peer":
• Corners: bases 0-4, written "0,0,0" through "4,0,0"
• Junctions: bases 5-9, written "5,0,0" through "9,0,0"
• Fields between them: stop s on the chain from base b to peer p,
  written "b,s,p" (stops count from 1 next to the base)

FIGURES:
• 0-24: player figures (player = figure / 5)
• 25-29: gray stoppers
• 30-34: black stoppers (start on the five junctions)

MOVEMENT:
A figure may move to any vertex reachable from its current field over
unoccupied fields; distance does not matter. The destination may hold
another figure (a collision), but every field in between must be empty.
Moving a figure to the field it already stands on is not a move, and
repeating the previous destination of the same figure is rejected.

PLACEMENT:
Figures start off-board and enter via placement onto an empty vertex.
When a player figure leaves a junction, the server asks its owner to
place a gray stopper.`
	return mcp.NewToolResultText(rules), nil
}
