// Package tui provides the Bubble Tea fretboard quiz interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	bar "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuifret/internal/level"
	"github.com/verte-zerg/tuifret/internal/model"
	"github.com/verte-zerg/tuifret/internal/note"
	"github.com/verte-zerg/tuifret/internal/progress"
	"github.com/verte-zerg/tuifret/internal/round"
)

const (
	defaultFeedback = 900 * time.Millisecond
	minBaseSeconds  = 1
	maxBaseSeconds  = 30
	maxTypedLen     = 3
)

// RoundRecorder persists completed rounds for stats.
type RoundRecorder interface {
	InsertRound(ctx context.Context, stats model.RoundStats, answers []model.AnswerStats) error
}

type tickMsg struct{ ref round.Ref }

type advanceMsg struct{ ref round.Ref }

// Model implements the Bubble Tea quiz UI.
type Model struct {
	ctx      context.Context
	engine   *round.Engine
	levels   *level.Model
	ledger   *progress.Ledger
	recorder RoundRecorder
	logger   *slog.Logger

	naming   note.Naming
	feedback time.Duration
	keys     keyMap
	help     help.Model
	timer    bar.Model

	width  int
	height int

	level    int
	snapshot progress.Snapshot

	prompt    *round.Prompt
	answer    *round.Feedback
	typed     string
	remaining int
	outcome   *round.Outcome
	banner    string
	showMap   bool
}

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	correctStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	wrongStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	optionStyle   = lipgloss.NewStyle().Padding(0, 2).Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#4A4A4A"))
	pickedStyle   = optionStyle.BorderForeground(lipgloss.Color("#C89A3A"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	bannerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

// NewModel constructs a quiz TUI model. The player's stored level is used
// unless cfg.StartLevel overrides it.
func NewModel(ctx context.Context, cfg model.Config, engine *round.Engine, ledger *progress.Ledger, recorder RoundRecorder, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	naming, err := note.ParseNaming(cfg.NoteNames)
	if err != nil {
		naming = note.NamingUS
	}
	feedback := defaultFeedback
	if cfg.FeedbackMs > 0 {
		feedback = time.Duration(cfg.FeedbackMs) * time.Millisecond
	}
	m := &Model{
		ctx:      ctx,
		engine:   engine,
		levels:   engine.Levels(),
		ledger:   ledger,
		recorder: recorder,
		logger:   logger,
		naming:   naming,
		feedback: feedback,
		keys:     defaultKeyMap(),
		help:     help.New(),
		timer:    bar.New(bar.WithDefaultGradient(), bar.WithoutPercentage()),
	}
	m.snapshot = ledger.Snapshot(ctx)
	m.level = m.snapshot.Level
	if cfg.StartLevel != nil {
		m.level = *cfg.StartLevel
	}
	m.level = m.levels.Clamp(m.level)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.timer.Width = min(boardWidth(), max(10, msg.Width-4))
		return m, nil
	case tickMsg:
		return m, m.handleTick(msg.ref)
	case advanceMsg:
		return m, m.handleAdvance(msg.ref)
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if cmd, ok := m.handleTyping(msg); ok {
		return cmd
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.engine.Stop()
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	case key.Matches(msg, m.keys.LevelMap):
		m.showMap = !m.showMap
		return nil
	case key.Matches(msg, m.keys.Stop):
		if m.showMap {
			m.showMap = false
			return nil
		}
		if m.engine.Stop() {
			m.prompt, m.answer = nil, nil
			m.banner = "Round stopped, score discarded."
		}
		return nil
	}
	if m.engine.Active() {
		if idx := m.keys.answerIndex(msg.String()); idx >= 0 {
			return m.handleAnswer(idx)
		}
		return nil
	}
	switch {
	case key.Matches(msg, m.keys.Start):
		return m.startRound()
	case key.Matches(msg, m.keys.Slower):
		m.adjustTimer(1)
	case key.Matches(msg, m.keys.Faster):
		m.adjustTimer(-1)
	case key.Matches(msg, m.keys.Adaptive):
		s := m.engine.Settings()
		s.Adaptive = !s.Adaptive
		m.saveSettings(s)
	case key.Matches(msg, m.keys.Naming):
		m.naming = nextNaming(m.naming)
	}
	return nil
}

func (m *Model) startRound() tea.Cmd {
	m.showMap = false
	m.banner = ""
	m.outcome = nil
	p, err := m.engine.Start(m.level, m.ledger.SeedAccuracy(m.ctx))
	if err != nil {
		m.abort(err)
		return nil
	}
	m.ask(p)
	return m.tickCmd(p.Ref)
}

func (m *Model) handleAnswer(idx int) tea.Cmd {
	if m.prompt == nil || m.answer != nil {
		return nil
	}
	fb, err := m.engine.Answer(m.prompt.Ref, m.prompt.Question.Options[idx])
	if err != nil {
		return nil
	}
	m.answer = &fb
	return m.advanceCmd(fb.Ref)
}

// handleTyping collects a typed note name while a question is open. Keys that
// cannot belong to a note name fall through to the regular bindings.
func (m *Model) handleTyping(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.prompt == nil || m.answer != nil || !m.engine.Active() {
		return nil, false
	}
	switch msg.Type {
	case tea.KeyRunes:
		text := string(msg.Runes)
		if m.typed == "" && !startsNoteName(text) {
			return nil, false
		}
		if m.typed != "" && !continuesNoteName(text) {
			return nil, false
		}
		if utf8.RuneCountInString(m.typed+text) <= maxTypedLen {
			m.typed += text
		}
		return nil, true
	case tea.KeyBackspace:
		if m.typed == "" {
			return nil, false
		}
		_, size := utf8.DecodeLastRuneInString(m.typed)
		m.typed = m.typed[:len(m.typed)-size]
		return nil, true
	case tea.KeyEnter:
		if m.typed == "" {
			return nil, false
		}
		return m.submitTyped(), true
	default:
		return nil, false
	}
}

func (m *Model) submitTyped() tea.Cmd {
	typed := m.typed
	m.typed = ""
	p, err := note.Parse(typed)
	if err != nil {
		m.banner = fmt.Sprintf("Unknown note %q.", typed)
		return nil
	}
	for i, opt := range m.prompt.Question.Options {
		if opt == p {
			m.banner = ""
			return m.handleAnswer(i)
		}
	}
	m.banner = fmt.Sprintf("%s is not one of the options.", m.naming.Name(p))
	return nil
}

func startsNoteName(s string) bool {
	return len(s) == 1 && strings.ContainsAny(strings.ToLower(s), "abcdefgh")
}

func continuesNoteName(s string) bool {
	for _, r := range s {
		if !strings.ContainsRune("#♯♭bBeEiIsS", r) {
			return false
		}
	}
	return true
}

func (m *Model) handleTick(ref round.Ref) tea.Cmd {
	res, err := m.engine.Tick(ref)
	if err != nil {
		return nil
	}
	m.remaining = res.Remaining
	if res.TimedOut {
		m.typed = ""
		m.answer = &res.Feedback
		return m.advanceCmd(ref)
	}
	return m.tickCmd(ref)
}

func (m *Model) handleAdvance(ref round.Ref) tea.Cmd {
	step, err := m.engine.Advance(ref)
	switch {
	case errors.Is(err, round.ErrStale):
		return nil
	case err != nil:
		m.abort(err)
		return nil
	case step.Outcome != nil:
		m.finish(*step.Outcome)
		return nil
	default:
		m.ask(*step.Prompt)
		return m.tickCmd(step.Prompt.Ref)
	}
}

func (m *Model) ask(p round.Prompt) {
	m.prompt = &p
	m.answer = nil
	m.typed = ""
	m.remaining = p.Seconds
}

func (m *Model) abort(err error) {
	m.logger.Error("round aborted", "level", m.level, "error", err)
	m.prompt, m.answer = nil, nil
	m.banner = fmt.Sprintf("Round aborted: %v", err)
}

func (m *Model) finish(out round.Outcome) {
	m.ledger.Apply(m.ctx, out)
	if m.recorder != nil {
		stats, answers := roundRecord(out, m.engine.Settings())
		if err := m.recorder.InsertRound(m.ctx, stats, answers); err != nil {
			m.logger.Warn("failed to save round", "round", stats.ID, "error", err)
		}
	}
	m.logger.Info("round completed", "level", out.Level, "scored", out.Scored, "passed", out.Passed)
	m.level = m.levels.Clamp(out.NextLevel)
	m.snapshot = m.ledger.Snapshot(m.ctx)
	m.prompt, m.answer = nil, nil
	m.outcome = &out
}

func (m *Model) adjustTimer(delta int) {
	s := m.engine.Settings()
	s.BaseSeconds = min(maxBaseSeconds, max(minBaseSeconds, s.BaseSeconds+delta))
	m.saveSettings(s)
}

func (m *Model) saveSettings(s round.Settings) {
	m.engine.SetSettings(s)
	m.ledger.SaveSettings(m.ctx, s)
}

func (m *Model) tickCmd(ref round.Ref) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{ref: ref}
	})
}

func (m *Model) advanceCmd(ref round.Ref) tea.Cmd {
	return tea.Tick(m.feedback, func(time.Time) tea.Msg {
		return advanceMsg{ref: ref}
	})
}

func nextNaming(n note.Naming) note.Naming {
	switch n {
	case note.NamingUS:
		return note.NamingGerman
	case note.NamingGerman:
		return note.NamingMixed
	default:
		return note.NamingUS
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch {
	case m.showMap:
		body = renderLevelMap(m.levels.Map(m.level), m.width)
	case m.prompt != nil:
		body = m.renderQuestion()
	default:
		body = m.renderIdle()
	}
	sections := []string{body}
	if m.banner != "" {
		sections = append(sections, bannerStyle.Render(m.banner))
	}
	sections = append(sections, m.renderFooter(), m.help.View(m.keys))
	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderQuestion() string {
	p := m.prompt
	env, err := m.levels.Envelope(p.Level)
	if err != nil {
		env = level.Full
	}
	kind := ""
	if p.Repetition {
		r := m.levels.RepetitionRange(p.Level)
		kind = fmt.Sprintf("  review of levels %d-%d", r.Start, r.End)
	}
	header := titleStyle.Render(fmt.Sprintf("Level %d  Question %d/%d  Score %d", p.Level, p.Number, level.QuestionsPerRound, m.engine.Score())) +
		subtitleStyle.Render(kind)

	board := renderFretboard(env, note.StandardTuning, m.naming, &position{str: p.Question.String, fret: p.Question.Fret})

	options := make([]string, 0, len(p.Question.Options))
	for i, opt := range p.Question.Options {
		label := fmt.Sprintf("%d  %s", i+1, m.naming.Name(opt))
		style := optionStyle
		if m.answer != nil && !m.answer.TimedOut && opt == m.answer.Chosen {
			style = pickedStyle
		}
		options = append(options, style.Render(label))
	}
	if m.typed != "" {
		options = append(options, subtitleStyle.Render("  > "+m.typed))
	}
	choices := lipgloss.JoinHorizontal(lipgloss.Top, options...)
	lines := []string{
		header,
		"",
		board,
		"",
		choices,
		m.renderCountdown(),
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderCountdown() string {
	if m.answer != nil {
		return m.renderFeedback()
	}
	seconds := max(1, m.prompt.Seconds)
	return m.timer.ViewAs(float64(m.remaining)/float64(seconds)) + fmt.Sprintf(" %ds", m.remaining)
}

func (m *Model) renderFeedback() string {
	fb := m.answer
	switch {
	case fb.Correct:
		return correctStyle.Render("Correct!")
	case fb.TimedOut:
		return wrongStyle.Render(fmt.Sprintf("Time's up! It was %s.", m.naming.Name(fb.Answer)))
	default:
		return wrongStyle.Render(fmt.Sprintf("Wrong, it was %s.", m.naming.Name(fb.Answer)))
	}
}

func (m *Model) renderIdle() string {
	lines := []string{titleStyle.Render(fmt.Sprintf("Level %d", m.level))}
	if s, ok := m.levels.SectionFor(m.level); ok {
		lines[0] += subtitleStyle.Render("  " + s.Name)
	}
	if m.outcome != nil {
		lines = append(lines, "", renderOutcome(*m.outcome))
	}
	env, err := m.levels.Envelope(m.level)
	if err != nil {
		env = level.Full
	}
	settings := m.engine.Settings()
	adaptive := "off"
	if settings.Adaptive {
		adaptive = "on"
	}
	lines = append(lines,
		"",
		renderFretboard(env, note.StandardTuning, m.naming, nil),
		"",
		subtitleStyle.Render(fmt.Sprintf("Timer %ds  Adaptive %s  Names %s", settings.BaseSeconds, adaptive, m.naming)),
		"Press enter to start a round.",
	)
	return strings.Join(lines, "\n")
}

func renderOutcome(out round.Outcome) string {
	score := fmt.Sprintf("Scored %d/%d (needed %d).", out.Scored, out.Answered, out.Required)
	switch {
	case out.LeveledUp:
		return correctStyle.Render(score + fmt.Sprintf(" Level up! Next: level %d.", out.NextLevel))
	case out.AtMaxLevel:
		return correctStyle.Render(score + " Top level passed.")
	default:
		return wrongStyle.Render(score + " Try again.")
	}
}

func (m *Model) renderFooter() string {
	s := m.snapshot
	footer := fmt.Sprintf("Today %d  Yesterday %d  Total %d", s.Today, s.Yesterday, s.Total)
	return footerStyle.Render(footer)
}
