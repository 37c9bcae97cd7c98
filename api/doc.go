// Package api provides the HTTP surface of the Pentagame server.
//
// The api package implements:
//   - The WebSocket upgrade endpoint for game sessions
//   - Read endpoints for board topology and room metadata
//   - A move submission endpoint for clients without a live session
//   - A health endpoint with session and room counts
//
// Endpoints:
//
//   - GET  /ws?user={uuid}            - upgrade to a game session
//   - GET  /api/board                 - board layout summary
//   - GET  /api/rooms/{id}            - room metadata and players
//   - GET  /api/rooms/{id}/players    - player list only
//   - POST /api/rooms/{id}/moves      - submit a move or placement
//   - GET  /api/health                - liveness and coordinator stats
//
// All endpoints accept and return JSON. Moves are sent as POST with a
// JSON body:
//
//	{
//	  "user": "uuid",
//	  "figure": 12,
//	  "to": "0,1,1",
//	  "placement": false
//	}
//
// Move submissions are answered with 202 once the move was validated
// and persisted; illegal moves yield 422 with an error message.
package api
