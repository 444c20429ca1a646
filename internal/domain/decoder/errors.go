package decoder

import "errors"

// Sentinel error kinds for this package. These allow errors.Is checks by callers.
var (
	ErrMalformed   = errors.New("malformed event line")
	ErrUnknownKind = errors.New("unknown event kind")
)
