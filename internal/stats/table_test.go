package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Note", "Accuracy", "Correct"}
	rows := [][]string{
		{"C", "97.50%", "12"},
		{"F#/Gb", "8.00%", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	require.Len(t, lines, 3)
	assert.Equal(t, "Note  Accuracy Correct", lines[0])
	assert.Equal(t, "C       97.50%      12", lines[1])
	assert.Equal(t, "F#/Gb    8.00%       3", lines[2])
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Key", "N"}, [][]string{{"音", "1"}, {"ab", "2"}}, map[int]bool{1: true})
	require.Len(t, lines, 3)
	assert.Equal(t, "音  1", lines[1])
	assert.Equal(t, "ab  2", lines[2])
}
