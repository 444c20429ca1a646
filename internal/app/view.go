package service

import (
	"time"

	"github.com/okian/pzwatch/internal/domain/players"
)

// View is an immutable copy of tracker state, published after every cycle
// for concurrent readers.
type View struct {
	Players   []players.Entry
	Cursors   map[string]uint64
	Published time.Time
	Stats     Stats
}

// Stats are tracker counters since start.
type Stats struct {
	StartedAt           time.Time `json:"started_at"`
	Cycles              uint64    `json:"cycles"`
	FailedCycles        uint64    `json:"failed_cycles"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	EventsProcessed     uint64    `json:"events_processed"`
	EventsDuplicate     uint64    `json:"events_duplicate"`
	DecodeErrors        uint64    `json:"decode_errors"`
	HandlerErrors       uint64    `json:"handler_errors"`
	ReportsSent         uint64    `json:"reports_sent"`
	Rotations           uint64    `json:"rotations"`
	Saves               uint64    `json:"saves"`
	TrackedPlayers      int       `json:"tracked_players"`
	DedupeEntries       int       `json:"dedupe_entries"`
	UnsavedChanges      bool      `json:"unsaved_changes"`
	LastCycleAt         time.Time `json:"last_cycle_at,omitempty"`
	LastError           string    `json:"last_error,omitempty"`
}
