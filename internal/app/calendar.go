package service

import (
	"time"

	"github.com/okian/pzwatch/internal/domain/ranking"
)

// Report schedules. They double as keys in the persisted marker map.
const (
	scheduleDaily  = "daily"
	scheduleWeekly = "weekly"
)

// DefaultWeeklySkills are the skills covered by the Sunday skill boards.
var DefaultWeeklySkills = []string{"Aiming", "Fitness", "Strength", "Cooking", "Mechanics"}

var dailyBoards = []ranking.Board{
	{Kind: ranking.BoardDeath},
	{Kind: ranking.BoardSurvival},
	{Kind: ranking.BoardHours},
}

// dueReport is a scheduled report whose trigger minute covers now.
type dueReport struct {
	schedule string
	slot     string // unique per firing; compared with the stored marker
	boards   []ranking.Board
}

// dueReports returns the reports whose trigger minute is now:
// daily boards at 00:00 and 12:00, weekly skill boards Sunday 00:00.
func dueReports(now time.Time, weeklySkills []string) []dueReport {
	if now.Minute() != 0 {
		return nil
	}

	var due []dueReport
	if h := now.Hour(); h == 0 || h == 12 {
		due = append(due, dueReport{
			schedule: scheduleDaily,
			slot:     now.Format("daily:2006-01-02:15"),
			boards:   dailyBoards,
		})
	}
	if now.Weekday() == time.Sunday && now.Hour() == 0 && len(weeklySkills) > 0 {
		boards := make([]ranking.Board, 0, len(weeklySkills))
		for _, s := range weeklySkills {
			boards = append(boards, ranking.Board{Kind: ranking.BoardSkill, Skill: s})
		}
		due = append(due, dueReport{
			schedule: scheduleWeekly,
			slot:     now.Format("weekly:2006-01-02"),
			boards:   boards,
		})
	}
	return due
}
