// Package ranking orders players and survivors for leaderboards.
//
// Every ranking is a stable descending sort: players with equal values keep
// the order in which they were first seen.
package ranking

import (
	"sort"
	"strconv"
	"strings"

	"github.com/okian/pzwatch/internal/domain/model"
	"github.com/okian/pzwatch/internal/domain/players"
)

// Default list lengths.
const (
	BoardSize     = 10
	SurvivorsSize = 15
)

// BoardKind names a leaderboard.
type BoardKind string

// Leaderboards.
const (
	BoardDeath    BoardKind = "death"
	BoardSurvival BoardKind = "survival"
	BoardHours    BoardKind = "hours"
	BoardSkill    BoardKind = "skill"
)

const skillPrefix = "skill_"

// Board identifies a leaderboard and, for skill boards, the skill.
type Board struct {
	Kind  BoardKind
	Skill string
}

// ParseBoard parses death, survival, hours or skill_<Name>. Empty means death.
func ParseBoard(s string) (Board, bool) {
	switch BoardKind(s) {
	case "", BoardDeath:
		return Board{Kind: BoardDeath}, true
	case BoardSurvival, BoardHours:
		return Board{Kind: BoardKind(s)}, true
	}
	if skill, ok := strings.CutPrefix(s, skillPrefix); ok && skill != "" {
		return Board{Kind: BoardSkill, Skill: skill}, true
	}
	return Board{}, false
}

func (b Board) String() string {
	if b.Kind == BoardSkill {
		return skillPrefix + b.Skill
	}
	return string(b.Kind)
}

// Row is one ranked player with the value the board is ordered by.
type Row struct {
	Subject string
	Value   float64
	Record  players.Record
}

// Rank builds the board b from entries.
func Rank(b Board, entries []players.Entry, k int) []Row {
	switch b.Kind {
	case BoardDeath:
		return Deaths(entries, k)
	case BoardSurvival:
		return Survival(entries, k)
	case BoardHours:
		return Hours(entries, k)
	case BoardSkill:
		return Skill(entries, b.Skill, k)
	default:
		return nil
	}
}

// Deaths ranks players with at least one death by death count.
func Deaths(entries []players.Entry, k int) []Row {
	return rank(entries, k, func(r players.Record) float64 { return float64(r.TotalDeaths) })
}

// Survival ranks players by their longest single life.
func Survival(entries []players.Entry, k int) []Row {
	return rank(entries, k, func(r players.Record) float64 { return r.Lifetime.LongestSurvival })
}

// Hours ranks players by total hours survived across all lives.
func Hours(entries []players.Entry, k int) []Row {
	return rank(entries, k, func(r players.Record) float64 { return r.Lifetime.TotalHoursSurvived })
}

// Skill ranks players by skill level. Dead players are ranked by their
// lifetime milestone, alive players by their live level.
func Skill(entries []players.Entry, skill string, k int) []Row {
	return rank(entries, k, func(r players.Record) float64 { return float64(r.DisplaySkill(skill)) })
}

// rank keeps entries whose value is positive and returns the top k.
func rank(entries []players.Entry, k int, value func(players.Record) float64) []Row {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		if v := value(e.Record); v > 0 {
			rows = append(rows, Row{Subject: e.Subject, Value: v, Record: e.Record})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Value > rows[j].Value })
	return limit(rows, k)
}

// Survivors orders a daily report by hours alive and returns the top k
// together with how many were left out.
func Survivors(list []model.Survivor, k int) ([]model.Survivor, int) {
	sorted := make([]model.Survivor, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Hours > sorted[j].Hours })
	top := limit(sorted, k)
	return top, len(sorted) - len(top)
}

func limit[T any](s []T, k int) []T {
	if k > 0 && len(s) > k {
		return s[:k]
	}
	return s
}

var medals = [...]string{"🥇", "🥈", "🥉"}

// Marker returns the position label for zero-based index i.
func Marker(i int) string {
	if i >= 0 && i < len(medals) {
		return medals[i]
	}
	return "**" + strconv.Itoa(i+1) + ".**"
}
