// Package model contains domain models passed between layers.
package model

import "github.com/goccy/go-json"

// Kind identifies the type of a log event. The set is closed; see Kinds.
type Kind string

// Event kinds written by the game-server mod.
const (
	KindDeath              Kind = "death"
	KindCharacterCreated   Kind = "character_created"
	KindLevelUp            Kind = "level_up"
	KindLogin              Kind = "login"
	KindSunrise            Kind = "sunrise"
	KindSunset             Kind = "sunset"
	KindDailySurvivors     Kind = "daily_survivors"
	KindLeaderboardRequest Kind = "leaderboard_request"
)

var kinds = []Kind{
	KindDeath,
	KindCharacterCreated,
	KindLevelUp,
	KindLogin,
	KindSunrise,
	KindSunset,
	KindDailySurvivors,
	KindLeaderboardRequest,
}

// Kinds returns every known event kind.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}

// RawEvent is one decoded log line. Payload is the undecoded "data" object;
// handlers decode it into the typed payload for Kind.
type RawEvent struct {
	Kind      Kind
	Timestamp string // literal text; numeric timestamps keep their JSON form
	Payload   json.RawMessage
}
