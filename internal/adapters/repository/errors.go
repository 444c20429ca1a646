package repository

import "errors"

// Sentinel kinds for snapshot errors.
var (
	// ErrCorruptSnapshot means the snapshot exists but cannot be parsed.
	// Callers must not overwrite it.
	ErrCorruptSnapshot = errors.New("corrupt state snapshot")
	ErrSaveSnapshot    = errors.New("save state snapshot failed")
)
