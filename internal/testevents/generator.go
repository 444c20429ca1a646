package testevents

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var (
	survivorNames = []string{"Rick", "Ann", "Kate", "Baldspot", "Jay", "Marcy", "Eddie", "Nolan", "Tess", "Bill", "Wren", "Otto"}
	skillNames    = []string{"Aiming", "Fitness", "Strength", "Cooking", "Mechanics", "Carpentry", "Farming", "Sprinting"}
	boardNames    = []string{"death", "survival", "hours", "skill_Aiming", "skill_Cooking"}
)

// survivor is the generator's view of one simulated player.
type survivor struct {
	name    string
	steamID string
	alive   bool
	hours   float64
	skills  map[string]int
	x, y    float64
}

func (s *survivor) skillString() string {
	names := make([]string, 0, len(s.skills))
	for k := range s.skills {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, k := range names {
		parts = append(parts, fmt.Sprintf("%s:%d", k, s.skills[k]))
	}
	return strings.Join(parts, ",")
}

// generator produces a plausible event stream and remembers the expected
// death count per player.
type generator struct {
	rng       *rand.Rand
	survivors []*survivor
	clock     int64
	gameDay   int
	deaths    map[string]int
}

func newGenerator(players int, seed uint64, start int64) *generator {
	g := &generator{
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		clock:  start,
		deaths: map[string]int{},
	}
	for i := 0; i < players; i++ {
		name := survivorNames[i%len(survivorNames)]
		if i >= len(survivorNames) {
			name = fmt.Sprintf("%s%d", name, i/len(survivorNames))
		}
		g.survivors = append(g.survivors, &survivor{
			name:    name,
			steamID: uuid.NewString(),
			skills:  map[string]int{},
		})
	}
	return g
}

// next returns the next event. Timestamps strictly increase so every event
// has its own identity.
func (g *generator) next() Event {
	g.clock++
	s := g.survivors[g.rng.IntN(len(g.survivors))]

	if !s.alive {
		return g.spawn(s)
	}

	switch r := g.rng.IntN(100); {
	case r < 45:
		return g.levelUp(s)
	case r < 60:
		return g.login(s)
	case r < 75:
		return g.death(s)
	case r < 85:
		return g.daylight()
	case r < 95:
		return g.dailySurvivors()
	default:
		return Event{Type: "leaderboard_request", Timestamp: g.clock, Data: map[string]string{
			"type": boardNames[g.rng.IntN(len(boardNames))],
		}}
	}
}

func (g *generator) spawn(s *survivor) Event {
	s.alive = true
	s.hours = 0
	s.skills = map[string]int{}
	s.x, s.y = 10000+g.rng.Float64()*2000, 9000+g.rng.Float64()*2000
	return Event{Type: "character_created", Timestamp: g.clock, Data: map[string]any{
		"username": s.name, "steam_id": s.steamID, "x": s.x, "y": s.y, "z": 0,
	}}
}

func (g *generator) levelUp(s *survivor) Event {
	skill := skillNames[g.rng.IntN(len(skillNames))]
	if s.skills[skill] < 10 {
		s.skills[skill]++
	}
	s.hours += g.rng.Float64() * 6
	return Event{Type: "level_up", Timestamp: g.clock, Data: map[string]any{
		"username": s.name, "steam_id": s.steamID, "skill": skill,
		"level": s.skills[skill], "hours_survived": s.hours,
	}}
}

func (g *generator) login(s *survivor) Event {
	return Event{Type: "login", Timestamp: g.clock, Data: map[string]any{
		"username": s.name, "steam_id": s.steamID, "hours_survived": s.hours, "skills": s.skillString(),
	}}
}

func (g *generator) death(s *survivor) Event {
	s.alive = false
	s.hours += g.rng.Float64() * 24
	g.deaths[s.name]++
	return Event{Type: "death", Timestamp: g.clock, Data: map[string]any{
		"username": s.name, "steam_id": s.steamID, "hours_survived": s.hours,
		"skills": s.skillString(), "x": s.x, "y": s.y, "z": 0,
	}}
}

func (g *generator) daylight() Event {
	kind := "sunrise"
	if g.rng.IntN(2) == 0 {
		kind = "sunset"
	} else {
		g.gameDay++
	}
	return Event{Type: kind, Timestamp: g.clock, Data: map[string]any{
		"game_day": g.gameDay, "light_level": g.rng.Float64(),
	}}
}

func (g *generator) dailySurvivors() Event {
	list := make([]map[string]any, 0, len(g.survivors))
	for _, s := range g.survivors {
		if s.alive {
			list = append(list, map[string]any{"username": s.name, "hours": s.hours, "x": s.x, "y": s.y, "z": 0})
		}
	}
	return Event{Type: "daily_survivors", Timestamp: g.clock, Data: map[string]any{
		"game_day": g.gameDay, "survivor_count": len(list), "survivors": list,
	}}
}
