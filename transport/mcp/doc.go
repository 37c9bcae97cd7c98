// Package mcp exposes the Pentagame server to MCP-speaking agents.
//
// The package is a thin client that proxies every tool call to the REST
// API, so the coordinator stays the single authority over rooms and
// moves regardless of which transport a request came in on.
//
// Tools:
//
//   - board_info:    board layout summary
//   - room_info:     room metadata and player list
//   - room_players:  player list only
//   - make_move:     submit a move or placement for a user
//   - game_rules:    position format and movement rules
//
// The MCP server can be served over stdio or mounted as an HTTP
// endpoint; both use the same underlying tool set.
package mcp
