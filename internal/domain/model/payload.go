package model

// Coordinates is an in-game position.
type Coordinates struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DeathData is the payload of a death event.
type DeathData struct {
	Username      string  `json:"username" validate:"required"`
	SteamID       string  `json:"steam_id"`
	HoursSurvived float64 `json:"hours_survived" validate:"gte=0"`
	Skills        string  `json:"skills"`
	Coordinates
}

// SpawnData is the payload of a character_created event.
type SpawnData struct {
	Username string `json:"username" validate:"required"`
	SteamID  string `json:"steam_id"`
	Coordinates
}

// LevelUpData is the payload of a level_up event.
type LevelUpData struct {
	Username      string  `json:"username" validate:"required"`
	SteamID       string  `json:"steam_id"`
	Skill         string  `json:"skill" validate:"required"`
	Level         int     `json:"level" validate:"gte=0"`
	HoursSurvived float64 `json:"hours_survived" validate:"gte=0"`
}

// LoginData is the payload of a login event.
type LoginData struct {
	Username      string  `json:"username" validate:"required"`
	SteamID       string  `json:"steam_id"`
	HoursSurvived float64 `json:"hours_survived" validate:"gte=0"`
	Skills        string  `json:"skills"`
}

// DaylightData is the payload of sunrise and sunset events.
type DaylightData struct {
	GameDay    int     `json:"game_day"`
	LightLevel float64 `json:"light_level"`
}

// Survivor is one entry of a daily survivor report.
type Survivor struct {
	Username string  `json:"username"`
	Hours    float64 `json:"hours"`
	Coordinates
}

// SurvivorsData is the payload of a daily_survivors event.
type SurvivorsData struct {
	GameDay       int        `json:"game_day"`
	SurvivorCount int        `json:"survivor_count"`
	Survivors     []Survivor `json:"survivors"`
}

// LeaderboardRequest is the payload of a leaderboard_request event.
// Board is death, survival, hours or skill_<Name>; empty means death.
type LeaderboardRequest struct {
	Board string `json:"type"`
}
