package render_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/okian/pzwatch/internal/domain/model"
	"github.com/okian/pzwatch/internal/domain/players"
	"github.com/okian/pzwatch/internal/domain/ranking"
	"github.com/okian/pzwatch/internal/domain/render"
	. "github.com/smartystreets/goconvey/convey"
)

var now = time.Date(2024, 5, 5, 12, 0, 0, 0, time.UTC)

func TestFormatHours(t *testing.T) {
	Convey("Given in-game hour counts", t, func() {
		So(render.FormatHours(0), ShouldEqual, "0 hours")
		So(render.FormatHours(1), ShouldEqual, "1 hour")
		So(render.FormatHours(5.9), ShouldEqual, "5 hours")
		So(render.FormatHours(24), ShouldEqual, "1 day, 0 hours")
		So(render.FormatHours(25), ShouldEqual, "1 day, 1 hour")
		So(render.FormatHours(50), ShouldEqual, "2 days, 2 hours")
	})
}

func TestOrdinal(t *testing.T) {
	Convey("Given death counts", t, func() {
		cases := map[int]string{
			1: "1st", 2: "2nd", 3: "3rd", 4: "4th",
			11: "11th", 12: "12th", 13: "13th", 20: "20th",
			21: "21st", 22: "22nd", 101: "101st", 111: "111th",
			112: "112th", 120: "120th", 1013: "1013th",
		}
		for n, want := range cases {
			So(render.Ordinal(n), ShouldEqual, want)
		}
	})
}

func TestDeathSeverity(t *testing.T) {
	Convey("Given escalating death counts", t, func() {
		So(render.DeathEmoji(1), ShouldEqual, "💀")
		So(render.DeathEmoji(3), ShouldEqual, "☠️")
		So(render.DeathEmoji(5), ShouldEqual, "⚰️")
		So(render.DeathEmoji(10), ShouldEqual, "👻")
		So(render.DeathEmoji(11), ShouldEqual, "🏴‍☠️")
		So(render.DeathColor(1), ShouldEqual, 0xFF0000)
		So(render.DeathColor(2), ShouldEqual, 0xFF6600)
		So(render.DeathColor(4), ShouldEqual, 0xFF9900)
		So(render.DeathColor(7), ShouldEqual, 0xFFCC00)
		So(render.DeathColor(12), ShouldEqual, 0x990000)
	})
}

func TestDeath(t *testing.T) {
	Convey("Given a second death", t, func() {
		rec := players.Record{TotalDeaths: 2, Lifetime: players.Lifetime{LongestSurvival: 30}}
		d := model.DeathData{
			Username:      "Rick",
			HoursSurvived: 26,
			Skills:        "Aiming=3,Fitness=5,Cooking=1,Strength=5,Farming=0",
			Coordinates:   model.Coordinates{X: 10500, Y: 9400.5, Z: 0},
		}

		msg := render.Death("Rick", rec, d, now)

		Convey("Then the title should carry the ordinal and emoji", func() {
			So(msg.Title, ShouldEqual, "☠️ Rick has died for the 2nd time!")
			So(msg.Color, ShouldEqual, 0xFF6600)
			So(msg.Footer, ShouldEqual, "Rest in pieces 💀")
			So(msg.Timestamp, ShouldEqual, now)
		})

		Convey("Then the description should list survival, location and top skills", func() {
			So(msg.Description, ShouldContainSubstring, "⏱️ **Survived:** 1 day, 2 hours")
			So(msg.Description, ShouldContainSubstring, "📍 **Location:** (10500, 9400.5, 0)")
			So(msg.Description, ShouldContainSubstring, "🎯 **Peak Skills:** Fitness 5, Strength 5, Aiming 3")
			So(msg.Description, ShouldContainSubstring, "**Longest Survival:** 1 day, 6 hours")
		})

		Convey("Then peak skills should be omitted when none are known", func() {
			d.Skills = ""
			So(render.Death("Rick", rec, d, now).Description, ShouldNotContainSubstring, "Peak Skills")
		})
	})
}

func TestRespawnAndLevelUp(t *testing.T) {
	Convey("Given a respawned player with two deaths", t, func() {
		rec := players.Record{TotalDeaths: 2, TotalRespawns: 3, Lifetime: players.Lifetime{TotalHoursSurvived: 48}}
		msg := render.Respawn("Rick", rec, now)

		Convey("Then the respawn message should include the average survival", func() {
			So(msg.Title, ShouldEqual, "🔄 Rick is back in the game!")
			So(msg.Description, ShouldContainSubstring, "📊 **Average Survival:** 1 day, 0 hours")
			So(msg.Description, ShouldContainSubstring, "🎮 **Character #3**")
		})

		Convey("Then a first-life respawn should skip the average", func() {
			msg := render.Respawn("New", players.Record{TotalRespawns: 1}, now)
			So(msg.Description, ShouldNotContainSubstring, "Average")
		})

		Convey("Then a level up should name skill and level", func() {
			msg := render.LevelUp(model.LevelUpData{Username: "Rick", Skill: "Aiming", Level: 5, HoursSurvived: 3}, now)
			So(msg.Title, ShouldEqual, "🎉 Rick leveled up!")
			So(msg.Description, ShouldEqual, "**Aiming** reached level **5**\n⏱️ After 3 hours survived")
		})
	})
}

func TestDaylight(t *testing.T) {
	Convey("Given sunrise and sunset on game day 4", t, func() {
		d := model.DaylightData{GameDay: 4, LightLevel: 0.756}

		Convey("Then the day should be shown one-based with two decimals", func() {
			So(render.Sunrise(d, now).Description, ShouldStartWith, "**Day 5** begins.\n\n🔆 Light Level: 0.76")
			So(render.Sunset(d, now).Description, ShouldStartWith, "**Night 5** approaches.\n\n🌑 Light Level: 0.76")
			So(render.Sunset(d, now).Color, ShouldEqual, render.ColorSunset)
		})
	})
}

func TestDailySurvivors(t *testing.T) {
	Convey("Given a daily report with 17 survivors", t, func() {
		var list []model.Survivor
		for i := 0; i < 17; i++ {
			list = append(list, model.Survivor{Username: fmt.Sprintf("p%02d", i), Hours: float64(i)})
		}
		msg, ok := render.DailySurvivors(model.SurvivorsData{GameDay: 0, Survivors: list}, now)

		Convey("Then the top 15 should be listed with locations for the first five", func() {
			So(ok, ShouldBeTrue)
			So(msg.Description, ShouldStartWith, "**☀️ Day 1 Dawn Report**\n")
			So(msg.Description, ShouldContainSubstring, "🥇 **p16** - 16 hours")
			So(msg.Description, ShouldContainSubstring, "**15.** **p02** - 2 hours")
			So(msg.Description, ShouldNotContainSubstring, "p01")
			So(strings.Count(msg.Description, "📍"), ShouldEqual, 5)
			So(msg.Description, ShouldEndWith, "*...and 2 more survivors*")
			So(msg.Footer, ShouldEqual, "Total survivors currently online: 17")
		})

		Convey("Then an empty report should not render", func() {
			_, ok := render.DailySurvivors(model.SurvivorsData{}, now)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestLeaderboard(t *testing.T) {
	Convey("Given tracked players", t, func() {
		entries := []players.Entry{
			{Subject: "A", Record: players.Record{TotalDeaths: 10, Lifetime: players.Lifetime{TotalHoursSurvived: 100, LongestSurvival: 30}}},
			{Subject: "B", Record: players.Record{TotalDeaths: 1, CurrentCharacter: players.Character{Alive: true}, Lifetime: players.Lifetime{TotalHoursSurvived: 5, LongestSurvival: 5}}},
			{Subject: "C", Record: players.Record{TotalDeaths: 15, Lifetime: players.Lifetime{SkillMilestones: map[string]int{"Aiming": 8}}}},
		}

		Convey("When rendering the death board", func() {
			msg, ok := render.Leaderboard(ranking.Board{Kind: ranking.BoardDeath}, entries, now)

			Convey("Then it should list players by deaths with medals", func() {
				So(ok, ShouldBeTrue)
				lines := strings.Split(msg.Description, "\n")
				So(lines[0], ShouldStartWith, "🥇 C: **15** deaths")
				So(lines[1], ShouldEqual, "🥈 A: **10** deaths (avg: 10 hours)")
				So(lines[2], ShouldEqual, "🥉 B: **1** death (avg: 5 hours)")
				So(msg.Footer, ShouldEqual, "Total tracked players: 3")
				So(msg.Color, ShouldEqual, render.ColorDeaths)
			})
		})

		Convey("When rendering the survival board", func() {
			msg, ok := render.Leaderboard(ranking.Board{Kind: ranking.BoardSurvival}, entries, now)

			Convey("Then alive players should be marked", func() {
				So(ok, ShouldBeTrue)
				So(msg.Description, ShouldContainSubstring, "🥈 B: 5 hours 🟢")
				So(msg.Description, ShouldEndWith, "🟢 = Currently Alive")
			})
		})

		Convey("When rendering a skill board", func() {
			msg, ok := render.Leaderboard(ranking.Board{Kind: ranking.BoardSkill, Skill: "Aiming"}, entries, now)

			Convey("Then the dead player's milestone should be shown", func() {
				So(ok, ShouldBeTrue)
				So(msg.Title, ShouldEqual, "🎯 Top Aiming Masters 🎯")
				So(msg.Description, ShouldEqual, "🥇 C: Level **8**")
				So(msg.Footer, ShouldEqual, "Highest Aiming levels")
			})
		})

		Convey("When nobody qualifies", func() {
			_, ok := render.Leaderboard(ranking.Board{Kind: ranking.BoardSkill, Skill: "Tailoring"}, entries, now)
			So(ok, ShouldBeFalse)
		})
	})
}
