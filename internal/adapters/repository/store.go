// Package repository persists tracker state: player aggregates, log cursors
// and report markers.
package repository

import (
	"context"
	"maps"

	"github.com/okian/pzwatch/internal/domain/players"
)

// Snapshot is the full persisted state. It is always written whole.
type Snapshot struct {
	Players []players.Entry   // first-seen order
	Cursors map[string]uint64 // log id -> consumed byte offset
	Markers map[string]string // report schedule -> last fired slot
}

// Empty returns a snapshot with no players and initialised maps.
func Empty() Snapshot {
	return Snapshot{
		Cursors: map[string]uint64{},
		Markers: map[string]string{},
	}
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Players: make([]players.Entry, len(s.Players)),
		Cursors: maps.Clone(s.Cursors),
		Markers: maps.Clone(s.Markers),
	}
	for i, e := range s.Players {
		out.Players[i] = players.Entry{Subject: e.Subject, Record: e.Record.Clone()}
	}
	if out.Cursors == nil {
		out.Cursors = map[string]uint64{}
	}
	if out.Markers == nil {
		out.Markers = map[string]string{}
	}
	return out
}

// Store loads and saves snapshots.
type Store interface {
	// Load returns the saved snapshot, or an empty one if none exists.
	// Returns ErrCorruptSnapshot if the saved data cannot be read.
	Load(ctx context.Context) (Snapshot, error)
	// Save replaces the saved snapshot atomically.
	Save(ctx context.Context, s Snapshot) error
}
