package websocket

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInRoom rejects a connection whose user is not joined to any
	// game.
	ErrNotInRoom = errors.New("not joined any game")

	// ErrStoreBusy reports that the persistence worker pool is saturated.
	// The request was not processed and may be retried.
	ErrStoreBusy = errors.New("persistence pool busy")

	// ErrShuttingDown reports that the coordinator no longer accepts
	// requests.
	ErrShuttingDown = errors.New("coordinator shutting down")

	// ErrNoSuchSession reports a request for a session the coordinator
	// does not know, e.g. after its disconnect was already processed.
	ErrNoSuchSession = errors.New("no such session")

	// ErrNotHost rejects host-only room controls from non-hosts.
	ErrNotHost = errors.New("only the host may do that")
)

// ValidationError reports an illegal, repetitive, or malformed move. It
// is delivered to the requesting session only and never mutates room
// state.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
