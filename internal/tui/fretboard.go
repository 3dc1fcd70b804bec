package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuifret/internal/level"
	"github.com/verte-zerg/tuifret/internal/note"
)

const (
	fretCellWidth = 4
	labelWidth    = 4
)

var fretMarkers = map[int]bool{3: true, 5: true, 7: true, 9: true, 12: true}

// position is a highlighted string/fret pair.
type position struct {
	str  int
	fret int
}

// boardCell is one rendered fret segment and its display width.
type boardCell struct {
	s     string
	width int
}

func fretboardCells(env level.Envelope, tuning note.Tuning, naming note.Naming, target *position) [][]boardCell {
	active := playableStrings(env)
	rows := make([][]boardCell, 0, note.Strings)
	for str := 0; str < note.Strings; str++ {
		row := make([]boardCell, 0, level.FretCount+1)
		label := naming.Name(tuning[str])
		if str == 0 {
			label = strings.ToLower(label)
		}
		labelStyle := mutedBoardStyle
		if active[str] {
			labelStyle = stringLabelStyle
		}
		row = append(row, boardCell{
			s:     labelStyle.Render(runewidth.FillLeft(label, labelWidth-1) + " "),
			width: labelWidth,
		})
		for fret := 0; fret < level.FretCount; fret++ {
			row = append(row, fretCell(str, fret, env.Contains(str, fret), target))
		}
		rows = append(rows, row)
	}
	return rows
}

// playableStrings flags the string indices the envelope opens.
func playableStrings(env level.Envelope) [note.Strings]bool {
	var active [note.Strings]bool
	for _, str := range env.Strings() {
		active[str] = true
	}
	return active
}

func fretCell(str, fret int, playable bool, target *position) boardCell {
	wire, bar := "─", "│"
	if fret == 0 {
		wire, bar = " ", "‖"
	}
	style := mutedBoardStyle
	if playable {
		style = boardStyle
	}
	if target != nil && target.str == str && target.fret == fret {
		return boardCell{
			s:     style.Render(wire) + targetStyle.Render("●") + style.Render(wire+bar),
			width: fretCellWidth,
		}
	}
	return boardCell{s: style.Render(wire + wire + wire + bar), width: fretCellWidth}
}

func renderFretboard(env level.Envelope, tuning note.Tuning, naming note.Naming, target *position) string {
	var b strings.Builder
	for _, row := range fretboardCells(env, tuning, naming, target) {
		for _, cell := range row {
			b.WriteString(cell.s)
		}
		b.WriteByte('\n')
	}
	b.WriteString(renderFretNumbers())
	return b.String()
}

func renderFretNumbers() string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", labelWidth))
	for fret := 0; fret < level.FretCount; fret++ {
		label := ""
		if fretMarkers[fret] {
			label = strconv.Itoa(fret)
		}
		b.WriteString(centerCell(label, fretCellWidth))
	}
	return markerStyle.Render(b.String())
}

// centerCell centers s inside a cell of width columns, leaving the bar column free.
func centerCell(s string, width int) string {
	inner := width - 1
	w := runewidth.StringWidth(s)
	if w >= inner {
		return runewidth.Truncate(s, inner, "") + " "
	}
	left := (inner - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", inner-w-left+1)
}

func boardWidth() int {
	return labelWidth + level.FretCount*fretCellWidth
}

var (
	boardStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	mutedBoardStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	targetStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	stringLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	markerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)
