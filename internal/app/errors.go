package service

import "errors"

// Sentinel error kinds for this package. These allow errors.Is checks by callers.
var (
	// ErrInvalidPayload means the event data failed to decode or validate.
	// Nothing was mutated and the event is not marked as seen.
	ErrInvalidPayload = errors.New("invalid event payload")
	// ErrUnknownKind means no handler is registered for the event kind.
	ErrUnknownKind = errors.New("no handler for event kind")
	// ErrUnknownBoard means a leaderboard name could not be parsed.
	ErrUnknownBoard = errors.New("unknown leaderboard")
)
