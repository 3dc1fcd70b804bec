// Package round runs a timed 15-question quiz round.
//
// The engine is driven from outside: the caller delivers one Tick per second,
// player answers, and an Advance after the feedback pause. Every prompt carries
// a Ref; events stamped with a Ref that no longer matches the live question are
// rejected with ErrStale, so a timer that fires late can never touch the next
// question or a later round.
package round

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuifret/internal/level"
	"github.com/verte-zerg/tuifret/internal/note"
	"github.com/verte-zerg/tuifret/internal/pacing"
	"github.com/verte-zerg/tuifret/internal/quiz"
)

// State is the engine's lifecycle position.
type State int

// Engine states.
const (
	Idle State = iota
	AwaitingAnswer
	Resolving
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingAnswer:
		return "awaiting-answer"
	case Resolving:
		return "resolving"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrStale reports an event for a question or round that is no longer live.
	ErrStale = errors.New("stale round event")
	// ErrActive reports a start request while a round is running.
	ErrActive = errors.New("round already active")
)

// Settings control the countdown.
type Settings struct {
	BaseSeconds int
	Adaptive    bool
}

// DefaultSettings match a fresh install.
func DefaultSettings() Settings {
	return Settings{BaseSeconds: pacing.DefaultBaseSeconds, Adaptive: true}
}

// Ref identifies one question of one round.
type Ref struct {
	Round uuid.UUID
	Seq   int
}

// Prompt is what the player sees for a new question.
type Prompt struct {
	Ref        Ref
	Number     int
	Level      int
	Repetition bool
	Question   quiz.Question
	Seconds    int
}

// TickResult is the countdown state after a tick.
type TickResult struct {
	Remaining int
	TimedOut  bool
	Feedback  Feedback
}

// Feedback reports how a question was resolved.
type Feedback struct {
	Ref      Ref
	Correct  bool
	TimedOut bool
	Chosen   note.PitchClass
	Answer   note.PitchClass
	Score    int
}

// Answer is the log entry of one resolved question.
type Answer struct {
	Number   int
	String   int
	Fret     int
	Note     note.PitchClass
	Chosen   note.PitchClass
	Correct  bool
	TimedOut bool
	Seconds  int
	Elapsed  time.Duration
}

// Outcome is the verdict of a completed round.
type Outcome struct {
	RoundID    uuid.UUID
	StartedAt  time.Time
	EndedAt    time.Time
	Level      int
	Repetition bool
	Answered   int
	Scored     int
	Required   int
	Passed     bool
	LeveledUp  bool
	// AtMaxLevel marks a passed round at MaxLevel, where the level stays put.
	AtMaxLevel bool
	NextLevel  int
	ScoreDelta int
	Answers    []Answer
}

// Step is the result of Advance: either the next prompt or the outcome.
type Step struct {
	Prompt  *Prompt
	Outcome *Outcome
}

// Engine is the round state machine. It is not safe for concurrent use; the
// UI event loop is its only caller.
type Engine struct {
	gen      *quiz.Generator
	levels   *level.Model
	settings Settings
	now      func() time.Time

	state     State
	id        uuid.UUID
	seq       int
	level     int
	startedAt time.Time

	answered  int
	correct   int
	question  quiz.Question
	seconds   int
	remaining int
	askedAt   time.Time
	answers   []Answer
	outcome   *Outcome
}

// NewEngine returns an idle engine.
func NewEngine(gen *quiz.Generator, settings Settings) *Engine {
	if settings.BaseSeconds <= 0 {
		settings.BaseSeconds = pacing.DefaultBaseSeconds
	}
	return &Engine{
		gen:      gen,
		levels:   gen.Levels(),
		settings: settings,
		now:      time.Now,
	}
}

// SetClock replaces the time source used for answer latency.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// SetSettings changes the countdown for subsequent questions.
func (e *Engine) SetSettings(s Settings) {
	if s.BaseSeconds <= 0 {
		s.BaseSeconds = pacing.DefaultBaseSeconds
	}
	e.settings = s
}

// Levels returns the difficulty model rounds are played on.
func (e *Engine) Levels() *level.Model {
	return e.levels
}

// Settings returns the countdown settings.
func (e *Engine) Settings() Settings {
	return e.settings
}

// State returns the lifecycle state. State, Remaining, Answered and Outcome
// let a presentation layer redraw without replaying events.
func (e *Engine) State() State {
	return e.state
}

// Active reports whether a round is in progress.
func (e *Engine) Active() bool {
	return e.state == AwaitingAnswer || e.state == Resolving
}

// Remaining returns the seconds left on the current question.
func (e *Engine) Remaining() int {
	return e.remaining
}

// Score returns correct answers so far in the current round.
func (e *Engine) Score() int {
	return e.correct
}

// Answered returns the number of questions resolved and advanced past.
func (e *Engine) Answered() int {
	return e.answered
}

// Outcome returns the verdict of the last completed round.
func (e *Engine) Outcome() (Outcome, bool) {
	if e.state != Completed || e.outcome == nil {
		return Outcome{}, false
	}
	return *e.outcome, true
}

// Start begins a round at level. seedAccuracy sizes the first countdown
// before the round has any accuracy of its own.
func (e *Engine) Start(lvl int, seedAccuracy float64) (Prompt, error) {
	if e.Active() {
		return Prompt{}, ErrActive
	}
	if _, err := e.levels.Envelope(lvl); err != nil {
		return Prompt{}, err
	}
	e.reset()
	e.id = uuid.New()
	e.level = e.levels.Clamp(lvl)
	e.startedAt = e.now()
	return e.ask(seedAccuracy)
}

// Tick counts down one second of the current question.
func (e *Engine) Tick(ref Ref) (TickResult, error) {
	if e.state != AwaitingAnswer || !e.live(ref) {
		return TickResult{}, ErrStale
	}
	e.remaining--
	if e.remaining > 0 {
		return TickResult{Remaining: e.remaining}, nil
	}
	e.remaining = 0
	fb := e.resolve(note.PitchClass(-1), true)
	return TickResult{Remaining: 0, TimedOut: true, Feedback: fb}, nil
}

// Answer resolves the current question with the chosen option. Only the
// first answer for a question is accepted.
func (e *Engine) Answer(ref Ref, chosen note.PitchClass) (Feedback, error) {
	if e.state != AwaitingAnswer || !e.live(ref) {
		return Feedback{}, ErrStale
	}
	return e.resolve(chosen, false), nil
}

// Advance moves past a resolved question to the next prompt or, after the
// last question, to Completed. A generation failure aborts the round.
func (e *Engine) Advance(ref Ref) (Step, error) {
	if e.state != Resolving || !e.live(ref) {
		return Step{}, ErrStale
	}
	e.answered++
	if e.answered < level.QuestionsPerRound {
		p, err := e.ask(pacing.Accuracy(e.correct, e.answered))
		if err != nil {
			return Step{}, err
		}
		return Step{Prompt: &p}, nil
	}
	out := e.complete()
	return Step{Outcome: &out}, nil
}

// Stop aborts a running round and discards its score. It reports whether a
// round was running.
func (e *Engine) Stop() bool {
	if !e.Active() {
		return false
	}
	e.reset()
	return true
}

func (e *Engine) live(ref Ref) bool {
	return ref.Round == e.id && ref.Seq == e.seq && e.id != uuid.Nil
}

func (e *Engine) ask(accuracy float64) (Prompt, error) {
	q, err := e.gen.Generate(e.level)
	if err != nil {
		e.reset()
		return Prompt{}, fmt.Errorf("round aborted: %w", err)
	}
	e.seq++
	e.question = q
	e.seconds = pacing.Seconds(e.settings.BaseSeconds, e.settings.Adaptive, accuracy)
	if e.seconds < 1 {
		e.seconds = 1
	}
	e.remaining = e.seconds
	e.askedAt = e.now()
	e.state = AwaitingAnswer
	return Prompt{
		Ref:        Ref{Round: e.id, Seq: e.seq},
		Number:     e.answered + 1,
		Level:      e.level,
		Repetition: e.levels.IsRepetition(e.level),
		Question:   q,
		Seconds:    e.seconds,
	}, nil
}

func (e *Engine) resolve(chosen note.PitchClass, timedOut bool) Feedback {
	correct := !timedOut && e.question.IsCorrect(chosen)
	if correct {
		e.correct++
	}
	e.answers = append(e.answers, Answer{
		Number:   e.answered + 1,
		String:   e.question.String,
		Fret:     e.question.Fret,
		Note:     e.question.Correct,
		Chosen:   chosen,
		Correct:  correct,
		TimedOut: timedOut,
		Seconds:  e.seconds,
		Elapsed:  e.now().Sub(e.askedAt),
	})
	e.state = Resolving
	return Feedback{
		Ref:      Ref{Round: e.id, Seq: e.seq},
		Correct:  correct,
		TimedOut: timedOut,
		Chosen:   chosen,
		Answer:   e.question.Correct,
		Score:    e.correct,
	}
}

func (e *Engine) complete() Outcome {
	required := level.RequiredScore()
	atMax := e.level >= e.levels.MaxLevel
	passed := e.correct >= required
	out := Outcome{
		RoundID:    e.id,
		StartedAt:  e.startedAt,
		EndedAt:    e.now(),
		Level:      e.level,
		Repetition: e.levels.IsRepetition(e.level),
		Answered:   e.answered,
		Scored:     e.correct,
		Required:   required,
		Passed:     passed,
		AtMaxLevel: passed && atMax,
		LeveledUp:  passed && !atMax,
		NextLevel:  e.level,
		ScoreDelta: e.correct,
		Answers:    e.answers,
	}
	if out.LeveledUp {
		out.NextLevel = e.level + 1
	}
	e.state = Completed
	e.id = uuid.Nil
	e.outcome = &out
	return out
}

func (e *Engine) reset() {
	e.state = Idle
	e.id = uuid.Nil
	e.seq = 0
	e.answered = 0
	e.correct = 0
	e.question = quiz.Question{}
	e.seconds = 0
	e.remaining = 0
	e.answers = nil
	e.outcome = nil
}
