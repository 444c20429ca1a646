package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/okian/pzwatch/internal/domain/model"
	"github.com/okian/pzwatch/internal/domain/players"
	"github.com/okian/pzwatch/internal/domain/ranking"
)

// Embed colors.
const (
	ColorRespawn   = 0x00FF00
	ColorLevelUp   = 0xFFD700
	ColorSunrise   = 0xFFD700
	ColorSunset    = 0x191970
	ColorSurvivors = 0x00FF00
	ColorDeaths    = 0x9900FF
	ColorSurvival  = 0x00BFFF
	ColorHours     = 0xFFD700
	ColorSkill     = 0x1E90FF
)

// Death announces a death. rec is the player's state after the death was applied.
func Death(subject string, rec players.Record, d model.DeathData, now time.Time) model.Message {
	deaths := rec.TotalDeaths

	lines := []string{
		"⏱️ **Survived:** " + FormatHours(d.HoursSurvived),
		"📍 **Location:** " + location(d.X, d.Y, d.Z),
	}
	if top := topSkills(players.ParseSkills(d.Skills), 3); top != "" {
		lines = append(lines, "🎯 **Peak Skills:** "+top)
	}
	lines = append(lines,
		"",
		fmt.Sprintf("**Total Deaths:** %d", deaths),
		"**Longest Survival:** "+FormatHours(rec.Lifetime.LongestSurvival),
	)

	return model.Message{
		Title:       fmt.Sprintf("%s %s has died for the %s time!", DeathEmoji(deaths), subject, Ordinal(int(deaths))),
		Description: strings.Join(lines, "\n"),
		Color:       DeathColor(deaths),
		Timestamp:   now.UTC(),
		Footer:      "Rest in pieces 💀",
	}
}

// topSkills lists the n highest non-zero skills, highest first, ties by name.
func topSkills(skills map[string]int, n int) string {
	type kv struct {
		name  string
		level int
	}
	list := make([]kv, 0, len(skills))
	for name, level := range skills {
		if level > 0 {
			list = append(list, kv{name, level})
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].level != list[j].level {
			return list[i].level > list[j].level
		}
		return list[i].name < list[j].name
	})
	if len(list) > n {
		list = list[:n]
	}
	parts := make([]string, 0, len(list))
	for _, s := range list {
		parts = append(parts, fmt.Sprintf("%s %d", s.name, s.level))
	}
	return strings.Join(parts, ", ")
}

// Respawn announces a new character. rec is the state after the respawn.
func Respawn(subject string, rec players.Record, now time.Time) model.Message {
	lines := []string{fmt.Sprintf("💀 **Death Count:** %d", rec.TotalDeaths)}
	if rec.TotalDeaths > 0 {
		lines = append(lines, "📊 **Average Survival:** "+FormatHours(rec.AverageSurvival()))
	}
	lines = append(lines, fmt.Sprintf("🎮 **Character #%d**", rec.TotalRespawns))

	return model.Message{
		Title:       fmt.Sprintf("🔄 %s is back in the game!", subject),
		Description: strings.Join(lines, "\n"),
		Color:       ColorRespawn,
		Timestamp:   now.UTC(),
		Footer:      "Good luck out there!",
	}
}

// LevelUp announces a skill level.
func LevelUp(d model.LevelUpData, now time.Time) model.Message {
	return model.Message{
		Title:       fmt.Sprintf("🎉 %s leveled up!", d.Username),
		Description: fmt.Sprintf("**%s** reached level **%d**\n⏱️ After %s survived", d.Skill, d.Level, FormatHours(d.HoursSurvived)),
		Color:       ColorLevelUp,
		Timestamp:   now.UTC(),
		Footer:      "Keep grinding! 💪",
	}
}

// Sunrise announces the start of an in-game day. Days are shown one-based.
func Sunrise(d model.DaylightData, now time.Time) model.Message {
	return model.Message{
		Title:       "🌅 The sun is rising...",
		Description: fmt.Sprintf("**Day %d** begins.\n\n🔆 Light Level: %.2f\n\nStay alert. Stay alive.", d.GameDay+1, d.LightLevel),
		Color:       ColorSunrise,
		Timestamp:   now.UTC(),
		Footer:      "Good morning, survivor",
	}
}

// Sunset announces nightfall.
func Sunset(d model.DaylightData, now time.Time) model.Message {
	return model.Message{
		Title:       "🌙 Darkness falls...",
		Description: fmt.Sprintf("**Night %d** approaches.\n\n🌑 Light Level: %.2f\n\nThe dead are more dangerous in the dark.", d.GameDay+1, d.LightLevel),
		Color:       ColorSunset,
		Timestamp:   now.UTC(),
		Footer:      "Stay safe out there",
	}
}

// DailySurvivors renders the dawn report. It returns false when there is
// nobody to report.
func DailySurvivors(d model.SurvivorsData, now time.Time) (model.Message, bool) {
	if len(d.Survivors) == 0 {
		return model.Message{}, false
	}
	top, rest := ranking.Survivors(d.Survivors, ranking.SurvivorsSize)

	lines := []string{fmt.Sprintf("**☀️ Day %d Dawn Report**\n", d.GameDay+1)}
	for i, s := range top {
		name := s.Username
		if name == "" {
			name = "Unknown"
		}
		lines = append(lines, fmt.Sprintf("%s **%s** - %s", ranking.Marker(i), name, FormatHours(s.Hours)))
		if i < 5 {
			lines = append(lines, "      📍 "+location(s.X, s.Y, s.Z))
		}
	}
	if rest > 0 {
		lines = append(lines, fmt.Sprintf("\n*...and %d more survivors*", rest))
	}

	return model.Message{
		Title:       "🌅 Daily Survivor Status Report",
		Description: strings.Join(lines, "\n"),
		Color:       ColorSurvivors,
		Timestamp:   now.UTC(),
		Footer:      fmt.Sprintf("Total survivors currently online: %d", len(d.Survivors)),
	}, true
}

// Leaderboard renders board b over entries. It returns false when no player
// qualifies.
func Leaderboard(b ranking.Board, entries []players.Entry, now time.Time) (model.Message, bool) {
	rows := ranking.Rank(b, entries, ranking.BoardSize)
	if len(rows) == 0 {
		return model.Message{}, false
	}

	lines := make([]string, 0, len(rows))
	msg := model.Message{Timestamp: now.UTC()}

	switch b.Kind {
	case ranking.BoardDeath:
		for i, r := range rows {
			deaths := int(r.Record.TotalDeaths)
			lines = append(lines, fmt.Sprintf("%s %s: **%d** %s (avg: %s)",
				ranking.Marker(i), r.Subject, deaths, pluralWord(deaths, "death"), FormatHours(r.Record.AverageSurvival())))
		}
		msg.Title = "💀 Death Leaderboard 💀"
		msg.Description = strings.Join(lines, "\n")
		msg.Color = ColorDeaths
		msg.Footer = fmt.Sprintf("Total tracked players: %d", len(entries))

	case ranking.BoardSurvival:
		for i, r := range rows {
			alive := ""
			if r.Record.CurrentCharacter.Alive {
				alive = " 🟢"
			}
			lines = append(lines, fmt.Sprintf("%s %s: %s%s", ranking.Marker(i), r.Subject, FormatHours(r.Value), alive))
		}
		msg.Title = "⏱️ Longest Survival Streaks ⏱️"
		msg.Description = strings.Join(lines, "\n") + "\n\n🟢 = Currently Alive"
		msg.Color = ColorSurvival
		msg.Footer = "Survival of the fittest!"

	case ranking.BoardHours:
		for i, r := range rows {
			lines = append(lines, fmt.Sprintf("%s %s: %s", ranking.Marker(i), r.Subject, FormatHours(r.Value)))
		}
		msg.Title = "🏆 Most Experienced Survivors 🏆"
		msg.Description = strings.Join(lines, "\n")
		msg.Color = ColorHours
		msg.Footer = "Total playtime across all lives"

	case ranking.BoardSkill:
		for i, r := range rows {
			lines = append(lines, fmt.Sprintf("%s %s: Level **%d**", ranking.Marker(i), r.Subject, int(r.Value)))
		}
		emoji := SkillEmoji(b.Skill)
		msg.Title = fmt.Sprintf("%s Top %s Masters %s", emoji, b.Skill, emoji)
		msg.Description = strings.Join(lines, "\n")
		msg.Color = ColorSkill
		msg.Footer = fmt.Sprintf("Highest %s levels", b.Skill)

	default:
		return model.Message{}, false
	}
	return msg, true
}

func pluralWord(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
