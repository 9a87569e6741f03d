package models

import "errors"

// Domain errors surfaced to clients. Handlers and the event router map
// these to HTTP status codes / error events via errors.Is.
var (
	// Validation
	ErrInvalidCapacity = errors.New("capacity must be between 2 and 8")
	ErrValueOutOfRange = errors.New("value out of range for this round")

	// Not found
	ErrSessionNotFound = errors.New("session not found")

	// Conflicts
	ErrSessionFull      = errors.New("session is full")
	ErrAlreadyJoined    = errors.New("already in this session")
	ErrAlreadyCompleted = errors.New("session is already completed")

	// Authorization
	ErrSessionCompleted = errors.New("session is completed")
	ErrNotHost          = errors.New("only the host can do this")
	ErrNotYourSlot      = errors.New("players may only update their own column")
	ErrRoundLocked      = errors.New("round is not editable")
	ErrBidsIncomplete   = errors.New("all players must bid before outcomes are entered")
	ErrNotJoined        = errors.New("join a session first")
)
