// Package config loads the server configuration and board layouts.
//
// Server settings come from environment variables (optionally seeded
// from a .env file by the entrypoint) and can be overridden by CLI
// flags. Sensible defaults keep the server runnable with no
// configuration at all: in-memory persistence, the standard board, and
// the protocol heartbeat timings.
//
// Board layouts are JSON files describing base vertices and chains; the
// standard Pentagame layout is compiled in and used when no file is
// given. Layout validation failures abort startup: the board is static
// configuration, and a broken declaration is a programming error, not a
// runtime condition.
package config
