// Package websocket provides the WebSocket transport and the room
// coordinator of the Pentagame server.
//
// The package implements:
//   - A single-goroutine Coordinator owning all room and session state
//   - Per-connection Session handlers with heartbeat supervision
//   - The JSON frame protocol between clients and the server
//   - Off-loop persistence dispatch with bounded backpressure
//
// Architecture:
//
// The Coordinator is a mailbox actor: every mutation of the room table,
// the session table, or a room's cached figure state runs on one
// goroutine consuming one command channel. Sessions interact with it
// through request/response calls and suspend until their reply arrives,
// so requests from a single session are processed in the order sent.
//
// Persistence calls never run on the coordinator loop. They are handed
// to a bounded worker pool and their results are posted back onto the
// mailbox as completions; when the pool is saturated the caller gets a
// typed busy error instead of an unbounded wait. Moves within one room
// are serialized through a per-room queue, so a slow persistence call
// for one room never delays validation in another.
//
// Message Protocol:
//
// Frames are JSON envelopes {action: int, data: map[string]string}.
// Server-initiated actions: 0 user joined, 1 move made, 2 placement
// required, 3 placement completed, 4 user disconnected; replies to
// client requests echo the request's action code, and errors use
// action 255 with a code/message pair.
//
// Connection Lifecycle:
//
// 1. The transport upgrades the connection with an authenticated user id
// 2. The session registers with the coordinator (resolving the room)
// 3. Frames flow in both directions; any inbound frame refreshes the
// heartbeat deadline
// 4. Heartbeat timeout, close frames, and transport errors tear the
// session down with exactly one Disconnect notification
package websocket
