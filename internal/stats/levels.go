package stats

import (
	"fmt"
	"io"

	"github.com/verte-zerg/tuifret/internal/level"
	"github.com/verte-zerg/tuifret/internal/note"
)

// LevelRows describes every level of m as table rows. The current level is
// marked with an asterisk.
func LevelRows(m *level.Model, current int) ([]string, [][]string) {
	headers := []string{"Level", "Kind", "Strings", "Frets", "Section"}
	rows := make([][]string, 0, m.MaxLevel+1)
	for lvl := 0; lvl <= m.MaxLevel; lvl++ {
		env, err := m.Envelope(lvl)
		if err != nil {
			continue
		}
		label := fmt.Sprintf("%d", lvl)
		if lvl == current {
			label = "*" + label
		}
		kind := "regular"
		if m.IsRepetition(lvl) {
			r := m.RepetitionRange(lvl)
			kind = fmt.Sprintf("review %d-%d", r.Start, r.End)
		}
		section := ""
		if s, ok := m.SectionFor(lvl); ok {
			section = s.Name
		}
		rows = append(rows, []string{
			label,
			kind,
			fmt.Sprintf("%d-%d", env.MinString+1, note.Strings),
			fmt.Sprintf("0-%d", env.MaxFret),
			section,
		})
	}
	return headers, rows
}

// RenderLevels prints the level table.
func RenderLevels(w io.Writer, m *level.Model, current int) error {
	headers, rows := LevelRows(m, current)
	for _, line := range formatTable(headers, rows, map[int]bool{0: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
