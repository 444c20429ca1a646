package testevents

import "time"

// Config holds configuration for a simulation run.
type Config struct {
	LogPath    string        // event log the tracker tails (source=file)
	Players    int           // number of simulated survivors
	NumEvents  int           // number of events to append
	Duplicates float64       // fraction of lines written twice, 0..1
	Partial    bool          // split some lines across two writes
	Interval   time.Duration // pause between batches
	BatchSize  int           // lines per write batch
	StatusURL  string        // tracker status API; empty skips verification
	Settle     time.Duration // wait before verifying
	Timeout    time.Duration // HTTP request timeout
	Seed       uint64        // random seed; 0 picks one
	Verbose    bool
}

// Event is one log line as the game mod writes it.
type Event struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data"`
}

// Stats holds run statistics.
type Stats struct {
	EventsGenerated int
	LinesWritten    int
	Duplicates      int
	PartialWrites   int
	Deaths          int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
