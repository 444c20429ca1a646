package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnknownBoard = errors.New("unknown leaderboard")
	ErrNotFound     = errors.New("player not found")
)
