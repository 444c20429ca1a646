// Package players holds per-player aggregate statistics and the mutations
// applied to them by log events.
package players

import "maps"

// Location is an in-game position persisted as [x, y, z].
type Location [3]float64

// Character is the state of a player's current life.
type Character struct {
	Alive         bool           `json:"alive"`
	SpawnTime     *string        `json:"spawn_time"` // RFC3339, null before the first respawn event
	HoursSurvived float64        `json:"hours_survived"`
	LastLocation  Location       `json:"last_location"`
	Skills        map[string]int `json:"skills"`
}

// Lifetime aggregates span every character a player has had.
type Lifetime struct {
	TotalHoursSurvived float64        `json:"total_hours_survived"`
	LongestSurvival    float64        `json:"longest_survival"`
	SkillMilestones    map[string]int `json:"skill_milestones"`
}

// Record is the aggregate state of one player.
type Record struct {
	SteamID          string    `json:"steam_id"`
	TotalDeaths      uint      `json:"total_deaths"`
	TotalRespawns    uint      `json:"total_respawns"`
	CurrentCharacter Character `json:"current_character"`
	Lifetime         Lifetime  `json:"lifetime_stats"`
}

// Entry pairs a player name with a record.
type Entry struct {
	Subject string
	Record  Record
}

func newRecord(steamID string) *Record {
	return &Record{
		SteamID: steamID,
		CurrentCharacter: Character{
			Skills: map[string]int{},
		},
		Lifetime: Lifetime{
			SkillMilestones: map[string]int{},
		},
	}
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := r
	out.CurrentCharacter.Skills = cloneSkills(r.CurrentCharacter.Skills)
	out.Lifetime.SkillMilestones = cloneSkills(r.Lifetime.SkillMilestones)
	if r.CurrentCharacter.SpawnTime != nil {
		t := *r.CurrentCharacter.SpawnTime
		out.CurrentCharacter.SpawnTime = &t
	}
	return out
}

// AverageSurvival is total hours over deaths, or 0 with no deaths.
func (r Record) AverageSurvival() float64 {
	if r.TotalDeaths == 0 {
		return 0
	}
	return r.Lifetime.TotalHoursSurvived / float64(r.TotalDeaths)
}

// DisplaySkill is the level shown on skill boards: the live value while
// alive, the lifetime milestone once dead.
func (r Record) DisplaySkill(skill string) int {
	if r.CurrentCharacter.Alive {
		return r.CurrentCharacter.Skills[skill]
	}
	return r.Lifetime.SkillMilestones[skill]
}

func cloneSkills(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return maps.Clone(m)
}
