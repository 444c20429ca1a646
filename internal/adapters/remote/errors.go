package remote

import "errors"

// Sentinel error kinds for this package. These allow errors.Is checks by callers.
var (
	// ErrNotFound means the remote log does not exist (yet).
	ErrNotFound = errors.New("remote file not found")
	// ErrTransport wraps every other remote failure; the read is retried next cycle.
	ErrTransport = errors.New("remote transport failure")
)
