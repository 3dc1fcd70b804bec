package level

// Section groups consecutive levels under a name on the level map.
type Section struct {
	Name  string
	Start int
	End   int
	Color string
}

// Sections divide the standard progression into named stages.
var Sections = []Section{
	{Name: "Low Strings", Start: 0, End: 5, Color: "#4FA3D1"},
	{Name: "Middle Strings", Start: 6, End: 11, Color: "#7BC67B"},
	{Name: "Full Neck", Start: 12, End: 17, Color: "#C89A3A"},
	{Name: "Mastery", Start: 18, End: 22, Color: "#D1604F"},
}

// LevelMap is the data shown on the level-progress map.
type LevelMap struct {
	Level              int
	MaxLevel           int
	TotalRegularLevels int
	Completed          []int
	Repetitions        []int
	Sections           []Section
}

// Map describes progress for a player currently at level.
func (m *Model) Map(current int) LevelMap {
	current = m.Clamp(current)
	lm := LevelMap{
		Level:    current,
		MaxLevel: m.MaxLevel,
		Sections: m.sections(),
	}
	for lvl := 0; lvl <= m.MaxLevel; lvl++ {
		if m.IsRepetition(lvl) {
			lm.Repetitions = append(lm.Repetitions, lvl)
		} else {
			lm.TotalRegularLevels++
		}
		if lvl < current {
			lm.Completed = append(lm.Completed, lvl)
		}
	}
	return lm
}

// SectionFor returns the section containing level.
func (m *Model) SectionFor(level int) (Section, bool) {
	for _, s := range m.sections() {
		if level >= s.Start && level <= s.End {
			return s, true
		}
	}
	return Section{}, false
}

func (m *Model) sections() []Section {
	out := make([]Section, 0, len(Sections))
	for _, s := range Sections {
		if s.Start > m.MaxLevel {
			break
		}
		if s.End > m.MaxLevel {
			s.End = m.MaxLevel
		}
		out = append(out, s)
	}
	if len(out) > 0 && out[len(out)-1].End < m.MaxLevel {
		out[len(out)-1].End = m.MaxLevel
	}
	return out
}
