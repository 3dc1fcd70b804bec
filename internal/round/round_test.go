package round

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuifret/internal/level"
	"github.com/verte-zerg/tuifret/internal/note"
	"github.com/verte-zerg/tuifret/internal/quiz"
)

func newTestEngine(t *testing.T, seed int64) *Engine {
	t.Helper()
	e := NewEngine(quiz.NewWithSeed(level.Standard(), seed), DefaultSettings())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e.SetClock(func() time.Time {
		now = now.Add(time.Second)
		return now
	})
	return e
}

func wrongOption(q quiz.Question) note.PitchClass {
	for _, opt := range q.Options {
		if opt != q.Correct {
			return opt
		}
	}
	panic("no wrong option")
}

// playRound answers the first `hits` questions correctly and the rest wrongly.
func playRound(t *testing.T, e *Engine, lvl, hits int) Outcome {
	t.Helper()
	p, err := e.Start(lvl, 0.5)
	require.NoError(t, err)
	for i := 0; ; i++ {
		choice := wrongOption(p.Question)
		if i < hits {
			choice = p.Question.Correct
		}
		fb, err := e.Answer(p.Ref, choice)
		require.NoError(t, err)
		assert.Equal(t, i < hits, fb.Correct)
		step, err := e.Advance(p.Ref)
		require.NoError(t, err)
		if step.Outcome != nil {
			require.Equal(t, level.QuestionsPerRound-1, i)
			return *step.Outcome
		}
		require.NotNil(t, step.Prompt)
		p = *step.Prompt
	}
}

func TestRoundPassesAtThreshold(t *testing.T) {
	e := newTestEngine(t, 1)
	out := playRound(t, e, 3, 12)
	assert.Equal(t, Completed, e.State())
	assert.Equal(t, 15, out.Answered)
	assert.Equal(t, 12, out.Scored)
	assert.Equal(t, 12, out.Required)
	assert.True(t, out.Passed)
	assert.True(t, out.LeveledUp)
	assert.Equal(t, 4, out.NextLevel)
	assert.Equal(t, 12, out.ScoreDelta)
	assert.Len(t, out.Answers, 15)
}

func TestRoundFailsBelowThreshold(t *testing.T) {
	e := newTestEngine(t, 2)
	out := playRound(t, e, 3, 11)
	assert.False(t, out.Passed)
	assert.False(t, out.LeveledUp)
	assert.Equal(t, 3, out.NextLevel)
	assert.Equal(t, 11, out.ScoreDelta)
}

func TestRoundAtMaxLevelDoesNotIncrement(t *testing.T) {
	e := newTestEngine(t, 3)
	maxLevel := level.Standard().MaxLevel
	out := playRound(t, e, maxLevel, 15)
	assert.True(t, out.Passed)
	assert.True(t, out.AtMaxLevel)
	assert.False(t, out.LeveledUp)
	assert.Equal(t, maxLevel, out.NextLevel)

	out = playRound(t, e, maxLevel, 11)
	assert.False(t, out.Passed)
	assert.False(t, out.AtMaxLevel, "a failed round at the top level is a retry")
	assert.Equal(t, maxLevel, out.NextLevel)

	out = playRound(t, e, 0, 15)
	assert.True(t, out.LeveledUp)
	assert.False(t, out.AtMaxLevel)
}

func TestRoundQuestionsStayInEnvelope(t *testing.T) {
	e := newTestEngine(t, 4)
	env, err := level.Standard().Envelope(5)
	require.NoError(t, err)
	p, err := e.Start(5, 0)
	require.NoError(t, err)
	assert.True(t, p.Repetition)
	for {
		assert.True(t, env.Contains(p.Question.String, p.Question.Fret))
		_, err := e.Answer(p.Ref, p.Question.Correct)
		require.NoError(t, err)
		step, err := e.Advance(p.Ref)
		require.NoError(t, err)
		if step.Prompt == nil {
			break
		}
		p = *step.Prompt
	}
}

func TestTimeoutRecordsMiss(t *testing.T) {
	e := newTestEngine(t, 5)
	p, err := e.Start(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Seconds)

	for i := 1; i < p.Seconds; i++ {
		res, err := e.Tick(p.Ref)
		require.NoError(t, err)
		assert.Equal(t, p.Seconds-i, res.Remaining)
		assert.False(t, res.TimedOut)
	}
	res, err := e.Tick(p.Ref)
	require.NoError(t, err)
	assert.True(t, res.TimedOut)
	assert.False(t, res.Feedback.Correct)
	assert.Equal(t, p.Question.Correct, res.Feedback.Answer)
	assert.Equal(t, Resolving, e.State())
	assert.Equal(t, 0, e.Score())

	_, err = e.Answer(p.Ref, p.Question.Correct)
	assert.True(t, errors.Is(err, ErrStale), "answer after time-up must be ignored")
	_, err = e.Tick(p.Ref)
	assert.True(t, errors.Is(err, ErrStale))
}

func TestOnlyFirstAnswerCounts(t *testing.T) {
	e := newTestEngine(t, 6)
	p, err := e.Start(0, 0.5)
	require.NoError(t, err)
	fb, err := e.Answer(p.Ref, wrongOption(p.Question))
	require.NoError(t, err)
	assert.False(t, fb.Correct)
	_, err = e.Answer(p.Ref, p.Question.Correct)
	assert.True(t, errors.Is(err, ErrStale))
	assert.Equal(t, 0, e.Score())
}

func TestStaleRefsAfterAdvance(t *testing.T) {
	e := newTestEngine(t, 7)
	first, err := e.Start(0, 0.5)
	require.NoError(t, err)
	_, err = e.Answer(first.Ref, first.Question.Correct)
	require.NoError(t, err)
	step, err := e.Advance(first.Ref)
	require.NoError(t, err)
	require.NotNil(t, step.Prompt)

	_, err = e.Tick(first.Ref)
	assert.True(t, errors.Is(err, ErrStale))
	_, err = e.Advance(first.Ref)
	assert.True(t, errors.Is(err, ErrStale))
	assert.Equal(t, 1, e.Answered())
	assert.Equal(t, step.Prompt.Seconds, e.Remaining())
}

func TestAdaptiveTimerFollowsRoundAccuracy(t *testing.T) {
	e := newTestEngine(t, 8)
	p, err := e.Start(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Seconds)
	_, err = e.Answer(p.Ref, p.Question.Correct)
	require.NoError(t, err)
	step, err := e.Advance(p.Ref)
	require.NoError(t, err)
	assert.Equal(t, 4, step.Prompt.Seconds)
}

func TestFixedTimerWhenAdaptiveDisabled(t *testing.T) {
	e := NewEngine(quiz.NewWithSeed(level.Standard(), 9), Settings{BaseSeconds: 6, Adaptive: false})
	p, err := e.Start(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, p.Seconds)
}

func TestStopDiscardsRound(t *testing.T) {
	e := newTestEngine(t, 10)
	p, err := e.Start(0, 0.5)
	require.NoError(t, err)
	_, err = e.Answer(p.Ref, p.Question.Correct)
	require.NoError(t, err)

	assert.True(t, e.Stop())
	assert.Equal(t, Idle, e.State())
	assert.Equal(t, 0, e.Score())
	_, ok := e.Outcome()
	assert.False(t, ok)

	_, err = e.Advance(p.Ref)
	assert.True(t, errors.Is(err, ErrStale))
	_, err = e.Tick(p.Ref)
	assert.True(t, errors.Is(err, ErrStale))
	assert.False(t, e.Stop())
}

func TestStaleRefFromPreviousRound(t *testing.T) {
	e := newTestEngine(t, 11)
	old, err := e.Start(0, 0.5)
	require.NoError(t, err)
	require.True(t, e.Stop())
	fresh, err := e.Start(0, 0.5)
	require.NoError(t, err)
	assert.Equal(t, old.Ref.Seq, fresh.Ref.Seq)
	assert.NotEqual(t, old.Ref.Round, fresh.Ref.Round)

	_, err = e.Tick(old.Ref)
	assert.True(t, errors.Is(err, ErrStale))
	assert.Equal(t, fresh.Seconds, e.Remaining())
}

func TestStartWhileActive(t *testing.T) {
	e := newTestEngine(t, 12)
	_, err := e.Start(0, 0.5)
	require.NoError(t, err)
	_, err = e.Start(1, 0.5)
	assert.True(t, errors.Is(err, ErrActive))
}

func TestRestartAfterCompletion(t *testing.T) {
	e := newTestEngine(t, 13)
	out := playRound(t, e, 1, 15)
	require.True(t, out.LeveledUp)
	_, ok := e.Outcome()
	assert.True(t, ok)

	p, err := e.Start(out.NextLevel, 1)
	require.NoError(t, err)
	assert.Equal(t, AwaitingAnswer, e.State())
	assert.Equal(t, 0, e.Answered())
	assert.Equal(t, 0, e.Score())
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 2, p.Level)
	env, err := level.Standard().Envelope(2)
	require.NoError(t, err)
	assert.True(t, env.Contains(p.Question.String, p.Question.Fret))
}

func TestStartRejectsNegativeLevel(t *testing.T) {
	e := newTestEngine(t, 14)
	_, err := e.Start(-1, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, level.ErrInvalidLevel))
	assert.Equal(t, Idle, e.State())
}

type stuckSource struct{}

func (stuckSource) Int63() int64 { return 0 }

func (stuckSource) Seed(int64) {}

func TestGenerationFailureAbortsToIdle(t *testing.T) {
	e := NewEngine(quiz.NewWithSource(level.Standard(), stuckSource{}), DefaultSettings())
	_, err := e.Start(0, 0.5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, quiz.ErrGeneration))
	assert.Equal(t, Idle, e.State())
	assert.False(t, e.Active())
}
