package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuifret/internal/level"
	"github.com/verte-zerg/tuifret/internal/model"
	"github.com/verte-zerg/tuifret/internal/note"
	"github.com/verte-zerg/tuifret/internal/progress"
	"github.com/verte-zerg/tuifret/internal/quiz"
	"github.com/verte-zerg/tuifret/internal/round"
)

type memKV map[string]string

func (kv memKV) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := kv[key]
	return v, ok, nil
}

func (kv memKV) Set(_ context.Context, key, value string) error {
	kv[key] = value
	return nil
}

type savedRound struct {
	stats   model.RoundStats
	answers []model.AnswerStats
}

type memRecorder struct {
	rounds []savedRound
	err    error
}

func (r *memRecorder) InsertRound(_ context.Context, stats model.RoundStats, answers []model.AnswerStats) error {
	if r.err != nil {
		return r.err
	}
	r.rounds = append(r.rounds, savedRound{stats: stats, answers: answers})
	return nil
}

func newTestModel(t *testing.T, cfg model.Config, settings round.Settings) (*Model, *progress.Ledger, *memRecorder) {
	t.Helper()
	gen := quiz.NewWithSeed(level.Standard(), 7)
	engine := round.NewEngine(gen, settings)
	ledger := progress.NewLedger(memKV{}, nil, nil)
	rec := &memRecorder{}
	return NewModel(context.Background(), cfg, engine, ledger, rec, nil), ledger, rec
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func correctIndex(q quiz.Question) int {
	for i, opt := range q.Options {
		if opt == q.Correct {
			return i
		}
	}
	return -1
}

func TestFullRoundLevelsUpAndRecords(t *testing.T) {
	m, ledger, rec := newTestModel(t, model.Config{}, round.DefaultSettings())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.NotNil(t, m.prompt)

	for i := 0; i < level.QuestionsPerRound; i++ {
		require.NotNil(t, m.prompt, "question %d", i+1)
		idx := correctIndex(m.prompt.Question)
		require.GreaterOrEqual(t, idx, 0)
		_, cmd = m.Update(keyRunes(string(rune('1' + idx))))
		require.NotNil(t, cmd)
		require.NotNil(t, m.answer)
		assert.True(t, m.answer.Correct)
		m.Update(advanceMsg{ref: m.answer.Ref})
	}

	require.NotNil(t, m.outcome)
	assert.True(t, m.outcome.LeveledUp)
	assert.Equal(t, 1, m.level)
	assert.Equal(t, 1, ledger.Level(context.Background()))
	assert.Equal(t, level.QuestionsPerRound, ledger.Total(context.Background()))
	require.Len(t, rec.rounds, 1)
	assert.Len(t, rec.rounds[0].answers, level.QuestionsPerRound)
	assert.Contains(t, m.View(), "Level up!")
}

func typeNote(m *Model, name string) {
	for _, r := range name {
		m.Update(keyRunes(string(r)))
	}
}

// flatName spells p with a flat when it is not a natural note.
func flatName(p note.PitchClass) string {
	name := note.NamingUS.Name(p)
	if strings.HasSuffix(name, "#") {
		return strings.ToLower(note.NamingUS.Name(p.Add(1))) + "b"
	}
	return strings.ToLower(name)
}

func TestTypedAnswerAcceptsEnharmonicSpelling(t *testing.T) {
	m, _, _ := newTestModel(t, model.Config{}, round.DefaultSettings())
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	for i := 0; i < 3; i++ {
		require.NotNil(t, m.prompt)
		correct := m.prompt.Question.Correct
		typeNote(m, flatName(correct))
		assert.Equal(t, flatName(correct), m.typed)
		assert.Contains(t, m.View(), "> "+flatName(correct))

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		require.NotNil(t, cmd)
		require.NotNil(t, m.answer)
		assert.True(t, m.answer.Correct)
		assert.Equal(t, correct, m.answer.Chosen)
		assert.Empty(t, m.typed)
		m.Update(advanceMsg{ref: m.answer.Ref})
	}
	assert.Equal(t, 3, m.engine.Score())
}

func TestTypedAnswerOutsideOptions(t *testing.T) {
	m, _, _ := newTestModel(t, model.Config{}, round.DefaultSettings())
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.prompt)

	var missing note.PitchClass
	for _, p := range note.All() {
		found := false
		for _, opt := range m.prompt.Question.Options {
			found = found || opt == p
		}
		if !found {
			missing = p
			break
		}
	}
	typeNote(m, strings.ToLower(note.NamingUS.Name(missing)))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Nil(t, m.answer)
	assert.Contains(t, m.banner, "is not one of the options")

	typeNote(m, "bbb")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, m.answer)
	assert.Contains(t, m.banner, "Unknown note")
	assert.True(t, m.engine.Active())
}

func TestTypedAnswerEditing(t *testing.T) {
	m, _, _ := newTestModel(t, model.Config{}, round.DefaultSettings())
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.prompt)

	typeNote(m, "c#")
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "c", m.typed)
	typeNote(m, "isx")
	assert.Equal(t, "cis", m.typed)

	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Empty(t, m.typed)

	m.Update(keyRunes("s"))
	assert.False(t, m.engine.Active(), "s still stops the round with nothing typed")
	assert.Contains(t, m.banner, "discarded")
}

func TestStaleTickIgnored(t *testing.T) {
	m, _, _ := newTestModel(t, model.Config{}, round.DefaultSettings())
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.prompt)
	ref := m.prompt.Ref

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, m.prompt)
	assert.Contains(t, m.banner, "discarded")

	_, cmd := m.Update(tickMsg{ref: ref})
	assert.Nil(t, cmd)
	_, cmd = m.Update(advanceMsg{ref: ref})
	assert.Nil(t, cmd)
	assert.False(t, m.engine.Active())
}

func TestTimeoutShowsAnswer(t *testing.T) {
	m, _, _ := newTestModel(t, model.Config{}, round.Settings{BaseSeconds: 1})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.prompt)
	require.Equal(t, 1, m.prompt.Seconds)

	_, cmd := m.Update(tickMsg{ref: m.prompt.Ref})
	require.NotNil(t, cmd)
	require.NotNil(t, m.answer)
	assert.True(t, m.answer.TimedOut)
	assert.Contains(t, m.renderCountdown(), "Time's up!")

	_, cmd = m.Update(keyRunes("1"))
	assert.Nil(t, cmd, "answers after a timeout are ignored")
}

func TestOnlyFirstAnswerCounts(t *testing.T) {
	m, _, _ := newTestModel(t, model.Config{}, round.DefaultSettings())
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.prompt)

	_, cmd := m.Update(keyRunes("1"))
	require.NotNil(t, cmd)
	first := *m.answer
	_, cmd = m.Update(keyRunes("2"))
	assert.Nil(t, cmd)
	assert.Equal(t, first, *m.answer)
}

func TestStartLevelOverride(t *testing.T) {
	start := 5
	m, _, _ := newTestModel(t, model.Config{StartLevel: &start}, round.DefaultSettings())
	assert.Equal(t, 5, m.level)

	huge := 1000
	m, _, _ = newTestModel(t, model.Config{StartLevel: &huge}, round.DefaultSettings())
	assert.Equal(t, level.Standard().MaxLevel, m.level)
}

func TestSettingsKeysPersist(t *testing.T) {
	m, ledger, _ := newTestModel(t, model.Config{}, round.DefaultSettings())
	m.Update(keyRunes("+"))
	m.Update(keyRunes("a"))
	s := ledger.Settings(context.Background())
	assert.Equal(t, 6, s.BaseSeconds)
	assert.False(t, s.Adaptive)
	assert.Equal(t, s, m.engine.Settings())

	for i := 0; i < 40; i++ {
		m.Update(keyRunes("-"))
	}
	assert.Equal(t, minBaseSeconds, m.engine.Settings().BaseSeconds)
}

func TestRecorderFailureIsNotFatal(t *testing.T) {
	m, ledger, rec := newTestModel(t, model.Config{}, round.DefaultSettings())
	rec.err = errors.New("disk full")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	for m.prompt != nil {
		m.Update(keyRunes("1"))
		m.Update(advanceMsg{ref: m.answer.Ref})
	}
	require.NotNil(t, m.outcome)
	assert.Equal(t, m.outcome.Scored, ledger.Total(context.Background()))
}

func TestLevelMapToggle(t *testing.T) {
	m, _, _ := newTestModel(t, model.Config{}, round.DefaultSettings())
	m.Update(keyRunes("m"))
	assert.True(t, m.showMap)
	assert.Contains(t, m.View(), "Level Map")
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showMap)
}

func TestNamingCycle(t *testing.T) {
	m, _, _ := newTestModel(t, model.Config{NoteNames: "german"}, round.DefaultSettings())
	assert.Equal(t, "german", string(m.naming))
	m.Update(keyRunes("n"))
	assert.Equal(t, "mixed", string(m.naming))
	m.Update(keyRunes("n"))
	assert.Equal(t, "us", string(m.naming))
}

func TestFooterShowsScores(t *testing.T) {
	m, _, _ := newTestModel(t, model.Config{}, round.DefaultSettings())
	m.snapshot = progress.Snapshot{Today: 12, Yesterday: 9, Total: 140}
	out := m.renderFooter()
	for _, want := range []string{"Today 12", "Yesterday 9", "Total 140"} {
		assert.True(t, strings.Contains(out, want), "footer missing %q: %s", want, out)
	}
}
