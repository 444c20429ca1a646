package players

import (
	"strconv"
	"strings"
)

// ParseSkills parses the mod's "Skill=Level,Other=Level" form.
// Whitespace around names and levels is ignored; malformed pairs are skipped.
func ParseSkills(s string) map[string]int {
	out := map[string]int{}
	for _, pair := range strings.Split(s, ",") {
		name, level, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		n, err := strconv.Atoi(strings.TrimSpace(level))
		if name == "" || err != nil {
			continue
		}
		out[name] = n
	}
	return out
}
