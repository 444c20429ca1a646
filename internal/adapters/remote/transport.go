// Package remote reads newly appended bytes from a remote, append-only log.
package remote

import (
	"context"
	"io"
)

// Session is one connection to the remote file store.
type Session interface {
	// Size returns the current size of path, or ErrNotFound.
	Size(ctx context.Context, path string) (uint64, error)
	// ReadFrom streams path starting at byte offset.
	ReadFrom(ctx context.Context, path string, offset uint64) (io.ReadCloser, error)
	Close() error
}

// Dialer opens sessions.
type Dialer interface {
	Dial(ctx context.Context) (Session, error)
}
