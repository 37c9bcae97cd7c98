// Package store is the persistence collaborator of the game core.
//
// The coordinator only ever talks to persistence through the Store
// interface: resolving which room a user currently plays in, reading the
// latest recorded move of a figure, appending validated moves, and
// reading room metadata. Accounts, lobbies, and all other CRUD live
// outside this repository and feed the same backing storage.
//
// Implementations:
//
// MemoryStore keeps everything in process memory behind a mutex. It is
// the default for tests and for running the server without external
// infrastructure.
//
// RedisStore persists to Redis: per-figure move lists (newest first),
// room metadata hashes, and user-to-room bindings. All operations take a
// context and honor its cancellation.
//
// Neither implementation is consulted on the coordinator loop itself;
// calls are dispatched through a bounded worker pool so a slow backend
// can only ever stall the room that issued the call.
package store
