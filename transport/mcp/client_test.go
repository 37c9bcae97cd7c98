package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.mcpServer == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	expectedResponse := map[string]interface{}{
		"layout":   "pentagame",
		"vertices": 100,
		"edges":    220,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(expectedResponse)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	err := client.apiCall("GET", "/api/board", nil, &response)
	if err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	if response["layout"] != expectedResponse["layout"] {
		t.Errorf("Expected layout %v, got %v", expectedResponse["layout"], response["layout"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	err := client.apiCall("GET", "/api/board", nil, nil)
	if err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_ErrorMessagePassthrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"error": "no unoccupied path"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall("POST", "/api/rooms/1/moves", map[string]string{}, nil)
	if err == nil {
		t.Fatal("Expected error for HTTP 422 response")
	}
	if err.Error() != "no unoccupied path" {
		t.Errorf("Expected API error message to pass through, got: %v", err)
	}
}

func TestClient_handleBoardInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" || r.URL.Path != "/api/board" {
			t.Errorf("Expected GET /api/board, got %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"layout":   "pentagame",
			"vertices": 100,
			"edges":    220,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "board_info",
			Arguments: map[string]interface{}{},
		},
	}

	result, err := client.handleBoardInfo(context.Background(), request)
	if err != nil {
		t.Fatalf("handleBoardInfo failed: %v", err)
	}

	resultStr, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	if !strings.Contains(resultStr.Text, "100 vertices") {
		t.Errorf("Expected vertex count in result, got: %s", resultStr.Text)
	}
}

func TestClient_handleRoomInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" || r.URL.Path != "/api/rooms/7" {
			t.Errorf("Expected GET /api/rooms/7, got %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"name":        "friday night",
			"description": "weekly round",
			"state":       1,
			"players": []map[string]string{
				{"id": "8e9f0d5c-0000-0000-0000-000000000001", "name": "alice"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "room_info",
			Arguments: map[string]interface{}{"room_id": float64(7)},
		},
	}

	result, err := client.handleRoomInfo(context.Background(), request)
	if err != nil {
		t.Fatalf("handleRoomInfo failed: %v", err)
	}

	resultStr, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}

	for _, want := range []string{"friday night", "running", "alice"} {
		if !strings.Contains(resultStr.Text, want) {
			t.Errorf("Expected '%s' in result, got: %s", want, resultStr.Text)
		}
	}
}

func TestClient_handleRoomInfo_MissingRoomID(t *testing.T) {
	client := NewClient("http://localhost:8080")
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "room_info",
			Arguments: map[string]interface{}{},
		},
	}

	result, err := client.handleRoomInfo(context.Background(), request)
	if err != nil {
		t.Fatalf("handleRoomInfo failed: %v", err)
	}
	if !result.IsError {
		t.Error("Expected error result for missing room_id")
	}
}

func TestClient_handleMakeMove(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/rooms/3/moves" {
			t.Errorf("Expected POST /api/rooms/3/moves, got %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name: "make_move",
			Arguments: map[string]interface{}{
				"room_id":   float64(3),
				"user":      "8e9f0d5c-0000-0000-0000-000000000001",
				"figure":    float64(12),
				"to":        "0,1,1",
				"placement": false,
				"intent":    "advance toward the corner",
			},
		},
	}

	result, err := client.handleMakeMove(context.Background(), request)
	if err != nil {
		t.Fatalf("handleMakeMove failed: %v", err)
	}

	resultStr, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	if !strings.Contains(resultStr.Text, "moved to 0,1,1") {
		t.Errorf("Expected move confirmation, got: %s", resultStr.Text)
	}

	if received["figure"] != float64(12) {
		t.Errorf("Expected figure 12 forwarded to API, got %v", received["figure"])
	}
	if _, ok := received["intent"]; ok {
		t.Error("Intent must not be forwarded to the API")
	}
}

func TestClient_handleGameRules(t *testing.T) {
	client := NewClient("http://localhost:8080")
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "game_rules",
			Arguments: map[string]interface{}{},
		},
	}

	result, err := client.handleGameRules(context.Background(), request)
	if err != nil {
		t.Fatalf("handleGameRules failed: %v", err)
	}

	resultStr, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}

	expectedContent := []string{
		"Pentagame - Movement Rules",
		"BOARD:",
		"FIGURES:",
		"MOVEMENT:",
		"PLACEMENT:",
	}
	for _, content := range expectedContent {
		if !strings.Contains(resultStr.Text, content) {
			t.Errorf("Expected '%s' in rules, got: %s", content, resultStr.Text)
		}
	}
}
