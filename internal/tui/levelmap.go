package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuifret/internal/level"
)

var (
	pendingLevelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	currentLevelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true).Underline(true)
)

// renderLevelMap draws every level grouped by section. Completed levels take
// the section color, review levels are marked with r.
func renderLevelMap(lm level.LevelMap, width int) string {
	done := 0
	for _, lvl := range lm.Completed {
		if !slices.Contains(lm.Repetitions, lvl) {
			done++
		}
	}
	lines := []string{
		titleStyle.Render("Level Map"),
		subtitleStyle.Render(fmt.Sprintf("Level %d of %d  Regular levels completed %d/%d", lm.Level, lm.MaxLevel, done, lm.TotalRegularLevels)),
		"",
	}
	for _, s := range lm.Sections {
		color := lipgloss.Color(s.Color)
		lines = append(lines, lipgloss.NewStyle().Foreground(color).Bold(true).Render(s.Name))
		cells := make([]string, 0, s.End-s.Start+1)
		for lvl := s.Start; lvl <= s.End; lvl++ {
			label := fmt.Sprintf("%2d", lvl)
			if slices.Contains(lm.Repetitions, lvl) {
				label += "r"
			} else {
				label += " "
			}
			style := pendingLevelStyle
			switch {
			case lvl == lm.Level:
				style = currentLevelStyle
			case slices.Contains(lm.Completed, lvl):
				style = lipgloss.NewStyle().Foreground(color)
			}
			cells = append(cells, style.Render(label))
		}
		row := strings.Join(cells, " ")
		if width > 0 {
			row = lipgloss.NewStyle().MaxWidth(width).Render(row)
		}
		lines = append(lines, row, "")
	}
	lines = append(lines, footerStyle.Render("r = review level   m/esc: back"))
	return strings.Join(lines, "\n")
}
