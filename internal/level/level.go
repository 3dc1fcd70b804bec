// Package level maps player levels to the playable part of the fretboard.
//
// Regular levels walk a hand-authored progression table in which each entry
// adds one string or one fret to the previous one. Every Stride-th level is a
// repetition level that re-tests the regular levels since the previous
// repetition level.
package level

import (
	"errors"
	"fmt"
	"math"

	"github.com/verte-zerg/tuifret/internal/note"
)

// FretCount is the number of fret positions including the open string.
const FretCount = 13

// QuestionsPerRound is the fixed length of a round.
const QuestionsPerRound = 15

// PassRatio is the accuracy required to advance.
const PassRatio = 0.8

// DefaultStride places a repetition level at every third level (2, 5, 8, ...).
const DefaultStride = 3

// ErrInvalidLevel reports a negative level.
var ErrInvalidLevel = errors.New("invalid level")

// Envelope bounds the playable positions: strings MinString..5 and frets 0..MaxFret.
type Envelope struct {
	MinString int
	MaxFret   int
}

// Strings returns the playable string indices, highest index (lowest string) first.
func (e Envelope) Strings() []int {
	out := make([]int, 0, note.Strings-e.MinString)
	for s := note.Strings - 1; s >= e.MinString; s-- {
		out = append(out, s)
	}
	return out
}

// Contains reports whether the position lies inside the envelope.
func (e Envelope) Contains(str, fret int) bool {
	return str >= e.MinString && str < note.Strings && fret >= 0 && fret <= e.MaxFret
}

// Union widens e to cover o as well.
func (e Envelope) Union(o Envelope) Envelope {
	if o.MinString < e.MinString {
		e.MinString = o.MinString
	}
	if o.MaxFret > e.MaxFret {
		e.MaxFret = o.MaxFret
	}
	return e
}

// Full is the maximal envelope: every string, every fret.
var Full = Envelope{MinString: 0, MaxFret: FretCount - 1}

// Progression starts on the low E string and alternates a new fret with a
// new string until all six strings are in play, then finishes the neck.
var Progression = []Envelope{
	{MinString: 5, MaxFret: 2},
	{MinString: 5, MaxFret: 3},
	{MinString: 4, MaxFret: 3},
	{MinString: 4, MaxFret: 4},
	{MinString: 3, MaxFret: 4},
	{MinString: 3, MaxFret: 5},
	{MinString: 2, MaxFret: 5},
	{MinString: 2, MaxFret: 6},
	{MinString: 1, MaxFret: 6},
	{MinString: 1, MaxFret: 7},
	{MinString: 0, MaxFret: 7},
	{MinString: 0, MaxFret: 8},
	{MinString: 0, MaxFret: 9},
	{MinString: 0, MaxFret: 10},
	{MinString: 0, MaxFret: 11},
	{MinString: 0, MaxFret: 12},
}

// Range is an inclusive span of levels.
type Range struct {
	Start int
	End   int
}

// Model classifies levels and resolves their envelopes.
type Model struct {
	Stride   int
	Table    []Envelope
	MaxLevel int
}

// Standard returns the model used by the game.
func Standard() *Model {
	return New(DefaultStride, Progression)
}

// New builds a model for the stride and table. MaxLevel is the first regular
// level that reaches the last table entry.
func New(stride int, table []Envelope) *Model {
	if stride < 2 {
		stride = DefaultStride
	}
	m := &Model{Stride: stride, Table: table}
	last := len(table) - 1
	if last < 0 {
		last = 0
	}
	for lvl := 0; ; lvl++ {
		if m.IsRepetition(lvl) {
			continue
		}
		if m.ProgressionIndex(lvl) >= last {
			m.MaxLevel = lvl
			break
		}
	}
	return m
}

// IsRepetition reports whether level is a review level.
func (m *Model) IsRepetition(level int) bool {
	return level > 0 && (level+1)%m.Stride == 0
}

// RepetitionRange returns the regular levels a repetition level reviews.
// For any other level it returns {level, level}.
func (m *Model) RepetitionRange(level int) Range {
	if !m.IsRepetition(level) {
		return Range{Start: level, End: level}
	}
	end := level - 1
	start := end - (m.Stride - 2)
	if start < 0 {
		start = 0
	}
	return Range{Start: start, End: end}
}

// ProgressionIndex maps a level to its table slot by skipping repetition levels.
func (m *Model) ProgressionIndex(level int) int {
	return level - level/m.Stride
}

// Envelope returns the playable area for level. Negative levels are rejected;
// levels at or above MaxLevel get the full fretboard.
func (m *Model) Envelope(level int) (Envelope, error) {
	if level < 0 {
		return Envelope{}, fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}
	if level >= m.MaxLevel {
		return Full, nil
	}
	if !m.IsRepetition(level) {
		return m.lookup(level), nil
	}
	rng := m.RepetitionRange(level)
	env := Envelope{MinString: note.Strings - 1, MaxFret: 0}
	found := false
	for lvl := rng.Start; lvl <= rng.End; lvl++ {
		if m.IsRepetition(lvl) {
			continue
		}
		env = env.Union(m.lookup(lvl))
		found = true
	}
	if !found {
		return m.lookup(rng.End), nil
	}
	return env, nil
}

func (m *Model) lookup(level int) Envelope {
	idx := m.ProgressionIndex(level)
	if idx >= len(m.Table) {
		return Full
	}
	return m.Table[idx]
}

// RequiredScore is the number of correct answers needed to pass a round.
func RequiredScore() int {
	return int(math.Ceil(PassRatio * QuestionsPerRound))
}

// Clamp limits level to [0, MaxLevel].
func (m *Model) Clamp(level int) int {
	if level < 0 {
		return 0
	}
	if level > m.MaxLevel {
		return m.MaxLevel
	}
	return level
}
