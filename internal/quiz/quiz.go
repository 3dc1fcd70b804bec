// Package quiz builds multiple-choice fretboard questions.
package quiz

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/verte-zerg/tuifret/internal/level"
	"github.com/verte-zerg/tuifret/internal/note"
)

// OptionCount is the number of answers offered per question.
const OptionCount = 3

// maxDraws bounds distractor sampling.
const maxDraws = 100

// ErrGeneration reports that a question could not be assembled.
var ErrGeneration = errors.New("question generation failed")

// Question asks for the note at a string/fret position.
type Question struct {
	String  int
	Fret    int
	Correct note.PitchClass
	Options [OptionCount]note.PitchClass
}

// IsCorrect reports whether p answers the question.
func (q Question) IsCorrect(p note.PitchClass) bool {
	return p == q.Correct
}

// Generator produces randomized questions for a level.
type Generator struct {
	rnd    *rand.Rand
	levels *level.Model
	tuning note.Tuning
}

// New returns a Generator seeded with the current time.
func New(levels *level.Model) *Generator {
	return NewWithSource(levels, rand.NewSource(time.Now().UnixNano()))
}

// NewWithSeed returns a Generator with reproducible output.
func NewWithSeed(levels *level.Model, seed int64) *Generator {
	return NewWithSource(levels, rand.NewSource(seed))
}

// NewWithSource returns a Generator drawing from src.
func NewWithSource(levels *level.Model, src rand.Source) *Generator {
	return &Generator{
		rnd:    rand.New(src),
		levels: levels,
		tuning: note.StandardTuning,
	}
}

// Levels returns the difficulty model the generator samples from.
func (g *Generator) Levels() *level.Model {
	return g.levels
}

// Generate samples a position inside the level's envelope and builds three
// distinct options in random order, one of them correct.
func (g *Generator) Generate(lvl int) (Question, error) {
	env, err := g.levels.Envelope(lvl)
	if err != nil {
		return Question{}, err
	}
	str := env.MinString + g.rnd.Intn(note.Strings-env.MinString)
	fret := g.rnd.Intn(env.MaxFret + 1)
	correct := note.Resolve(g.tuning[str], fret)

	options, err := g.options(correct)
	if err != nil {
		return Question{}, fmt.Errorf("level %d string %d fret %d: %w", lvl, str, fret, err)
	}
	return Question{String: str, Fret: fret, Correct: correct, Options: options}, nil
}

func (g *Generator) options(correct note.PitchClass) ([OptionCount]note.PitchClass, error) {
	var out [OptionCount]note.PitchClass
	out[0] = correct
	n := 1
	for draws := 0; n < OptionCount; draws++ {
		if draws >= maxDraws {
			return out, fmt.Errorf("%w: only %d distinct options after %d draws", ErrGeneration, n, draws)
		}
		candidate := note.PitchClass(g.rnd.Intn(note.Count))
		if contains(out[:n], candidate) {
			continue
		}
		out[n] = candidate
		n++
	}
	g.rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out, nil
}

func contains(list []note.PitchClass, p note.PitchClass) bool {
	for _, v := range list {
		if v == p {
			return true
		}
	}
	return false
}
