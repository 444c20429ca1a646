package players

import (
	"time"

	"github.com/okian/pzwatch/internal/domain/model"
)

// Store owns every Record. Records are created on first reference and
// never deleted. Iteration follows first-seen order.
//
// Store is not safe for concurrent use.
type Store struct {
	records map[string]*Record
	order   []string
	dirty   bool
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{records: make(map[string]*Record)}
}

// Init returns a copy of the record for subject, creating it if needed. For a
// known subject counters are left untouched; only an empty steam id is
// filled in.
func (s *Store) Init(subject, steamID string) Record {
	return s.init(subject, steamID).Clone()
}

func (s *Store) init(subject, steamID string) *Record {
	if r, ok := s.records[subject]; ok {
		if r.SteamID == "" && steamID != "" {
			r.SteamID = steamID
			s.dirty = true
		}
		return r
	}
	r := newRecord(steamID)
	s.records[subject] = r
	s.order = append(s.order, subject)
	s.dirty = true
	return r
}

// Get returns a copy of the record for subject.
func (s *Store) Get(subject string) (Record, bool) {
	r, ok := s.records[subject]
	if !ok {
		return Record{}, false
	}
	return r.Clone(), true
}

// Len returns the number of tracked players.
func (s *Store) Len() int { return len(s.order) }

// Entries returns deep copies of all records in first-seen order.
func (s *Store) Entries() []Entry {
	out := make([]Entry, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, Entry{Subject: name, Record: s.records[name].Clone()})
	}
	return out
}

// Restore replaces the store contents with entries, keeping their order.
// Duplicate subjects keep their first position and last value.
func (s *Store) Restore(entries []Entry) {
	s.records = make(map[string]*Record, len(entries))
	s.order = s.order[:0]
	for _, e := range entries {
		rec := e.Record.Clone()
		if _, ok := s.records[e.Subject]; !ok {
			s.order = append(s.order, e.Subject)
		}
		s.records[e.Subject] = &rec
	}
	s.dirty = false
}

// Dirty reports whether there are mutations not yet persisted.
func (s *Store) Dirty() bool { return s.dirty }

// MarkClean clears the dirty flag after a successful save.
func (s *Store) MarkClean() { s.dirty = false }

// ApplyDeath records the end of the current character's life.
func (s *Store) ApplyDeath(d model.DeathData) Record {
	r := s.init(d.Username, d.SteamID)
	skills := ParseSkills(d.Skills)

	r.TotalDeaths++
	r.CurrentCharacter.Alive = false
	r.CurrentCharacter.HoursSurvived = d.HoursSurvived
	r.CurrentCharacter.LastLocation = Location{d.X, d.Y, d.Z}
	r.CurrentCharacter.Skills = skills

	r.Lifetime.TotalHoursSurvived += d.HoursSurvived
	if d.HoursSurvived > r.Lifetime.LongestSurvival {
		r.Lifetime.LongestSurvival = d.HoursSurvived
	}
	raiseMilestones(r, skills)

	s.dirty = true
	return r.Clone()
}

// ApplyRespawn starts a fresh character.
func (s *Store) ApplyRespawn(d model.SpawnData, at time.Time) Record {
	r := s.init(d.Username, d.SteamID)
	spawned := at.Format(time.RFC3339)

	r.TotalRespawns++
	r.CurrentCharacter = Character{
		Alive:        true,
		SpawnTime:    &spawned,
		LastLocation: Location{d.X, d.Y, d.Z},
		Skills:       map[string]int{},
	}

	s.dirty = true
	return r.Clone()
}

// ApplyLevelUp sets a skill level on the current character and raises the
// lifetime milestone if it is a new high.
func (s *Store) ApplyLevelUp(d model.LevelUpData) Record {
	r := s.init(d.Username, d.SteamID)

	if r.CurrentCharacter.Skills == nil {
		r.CurrentCharacter.Skills = map[string]int{}
	}
	r.CurrentCharacter.Skills[d.Skill] = d.Level
	r.CurrentCharacter.HoursSurvived = d.HoursSurvived
	raiseMilestones(r, map[string]int{d.Skill: d.Level})

	s.dirty = true
	return r.Clone()
}

// ApplyLogin refreshes the current character from the login snapshot.
func (s *Store) ApplyLogin(d model.LoginData) Record {
	r := s.init(d.Username, d.SteamID)
	skills := ParseSkills(d.Skills)

	r.CurrentCharacter.Alive = true
	r.CurrentCharacter.HoursSurvived = d.HoursSurvived
	r.CurrentCharacter.Skills = skills
	raiseMilestones(r, skills)

	s.dirty = true
	return r.Clone()
}

func raiseMilestones(r *Record, skills map[string]int) {
	if r.Lifetime.SkillMilestones == nil {
		r.Lifetime.SkillMilestones = map[string]int{}
	}
	for name, level := range skills {
		if level > r.Lifetime.SkillMilestones[name] {
			r.Lifetime.SkillMilestones[name] = level
		}
	}
}
