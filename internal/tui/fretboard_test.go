package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuifret/internal/level"
	"github.com/verte-zerg/tuifret/internal/note"
)

func TestRenderFretboardMarksTarget(t *testing.T) {
	out := renderFretboard(level.Full, note.StandardTuning, note.NamingUS, &position{str: 2, fret: 5})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, note.Strings+1)
	for i, line := range lines {
		assert.Equal(t, boardWidth(), lipgloss.Width(line), "line %d", i)
		assert.Equal(t, i == 2, strings.Contains(line, "●"), "line %d", i)
	}
	assert.Contains(t, lines[0], "e ")
	assert.Contains(t, lines[note.Strings], "12")
}

func TestRenderFretboardWithoutTarget(t *testing.T) {
	out := renderFretboard(level.Progression[0], note.StandardTuning, note.NamingGerman, nil)
	assert.NotContains(t, out, "●")
	assert.Contains(t, out, "H")
}

func TestCenterCell(t *testing.T) {
	assert.Equal(t, " 3  ", centerCell("3", 4))
	assert.Equal(t, "12  ", centerCell("12", 4))
	assert.Equal(t, "    ", centerCell("", 4))
}

func TestRenderLevelMap(t *testing.T) {
	m := level.Standard()
	out := renderLevelMap(m.Map(4), 0)
	for _, s := range level.Sections {
		assert.Contains(t, out, s.Name)
	}
	assert.Contains(t, out, " 2r")
	assert.Contains(t, out, "Regular levels completed 3/")
}

func TestPlayableStrings(t *testing.T) {
	assert.Equal(t, [note.Strings]bool{false, false, false, false, false, true}, playableStrings(level.Progression[0]))
	assert.Equal(t, [note.Strings]bool{true, true, true, true, true, true}, playableStrings(level.Full))
}
