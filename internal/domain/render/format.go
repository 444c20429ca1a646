// Package render builds notification messages from events and player state.
// All functions are pure; timestamps are supplied by the caller.
package render

import (
	"fmt"
	"math"
	"strconv"
)

// FormatHours renders in-game hours as "X days, Y hours", dropping the day
// part when it is zero.
func FormatHours(hours float64) string {
	if hours < 0 {
		hours = 0
	}
	days := int(math.Floor(hours / 24))
	rest := int(math.Mod(hours, 24))

	h := plural(rest, "hour")
	if days > 0 {
		return plural(days, "day") + ", " + h
	}
	return h
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// Ordinal renders 1st, 2nd, 3rd, 4th ... Every n whose last two digits fall
// in 10-20 takes "th" (11th, 112th, 120th).
func Ordinal(n int) string {
	suffix := "th"
	if m := n % 100; m < 10 || m > 20 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

// DeathEmoji escalates with the number of deaths.
func DeathEmoji(deaths uint) string {
	switch {
	case deaths <= 1:
		return "💀"
	case deaths <= 3:
		return "☠️"
	case deaths <= 5:
		return "⚰️"
	case deaths <= 10:
		return "👻"
	default:
		return "🏴‍☠️"
	}
}

// DeathColor escalates with the number of deaths.
func DeathColor(deaths uint) int {
	switch {
	case deaths <= 1:
		return 0xFF0000
	case deaths <= 3:
		return 0xFF6600
	case deaths <= 5:
		return 0xFF9900
	case deaths <= 10:
		return 0xFFCC00
	default:
		return 0x990000
	}
}

// SkillEmoji returns the icon used on a skill board.
func SkillEmoji(skill string) string {
	if e, ok := skillEmoji[skill]; ok {
		return e
	}
	return "📊"
}

var skillEmoji = map[string]string{
	"Aiming":    "🎯",
	"Fitness":   "💪",
	"Strength":  "🏋️",
	"Cooking":   "🍳",
	"Farming":   "🌾",
	"Mechanics": "🔧",
	"Carpentry": "🔨",
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func location(x, y, z float64) string {
	return "(" + coord(x) + ", " + coord(y) + ", " + coord(z) + ")"
}
