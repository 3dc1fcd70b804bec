// Package progress keeps the player's level and score ledger in a key/value store.
package progress

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/verte-zerg/tuifret/internal/round"
)

// Keys used in the key/value store.
const (
	KeyLevel          = "level"
	KeyTotal          = "score.total"
	KeyToday          = "score.today"
	KeyYesterday      = "score.yesterday"
	KeyDate           = "score.date"
	KeyHistory        = "score.history"
	KeyQuestionsTotal = "questions.total"
	KeySettings       = "settings"
)

const dateLayout = "2006-01-02"

// KV is the persistence contract: named string values.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Clock supplies the current time for daily rollover.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// DateKey formats t as YYYY-MM-DD in t's location.
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// Snapshot is the player's persisted progress.
type Snapshot struct {
	Level     int
	Total     int
	Today     int
	Yesterday int
	Questions int
	History   map[string]int
}

type settingsJSON struct {
	BaseTimerSeconds      *int  `json:"baseTimerSeconds"`
	AdaptiveTimingEnabled *bool `json:"adaptiveTimingEnabled"`
}

// Ledger reads and writes progress. Unreadable values fall back to defaults
// and failed writes are logged; neither is returned to the caller.
type Ledger struct {
	kv     KV
	clock  Clock
	logger *slog.Logger
}

// NewLedger returns a ledger over kv. A nil clock uses the wall clock and a
// nil logger uses slog.Default.
func NewLedger(kv KV, clock Clock, logger *slog.Logger) *Ledger {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{kv: kv, clock: clock, logger: logger}
}

// Level returns the stored player level.
func (l *Ledger) Level(ctx context.Context) int {
	lvl := l.getInt(ctx, KeyLevel)
	if lvl < 0 {
		l.logger.Warn("negative stored level, resetting", "level", lvl)
		return 0
	}
	return lvl
}

// SetLevel stores the player level.
func (l *Ledger) SetLevel(ctx context.Context, lvl int) {
	l.setInt(ctx, KeyLevel, lvl)
}

// Total returns the lifetime score.
func (l *Ledger) Total(ctx context.Context) int {
	return l.getInt(ctx, KeyTotal)
}

// Today returns today's score after applying any pending day rollover.
func (l *Ledger) Today(ctx context.Context) int {
	l.rollover(ctx)
	return l.getInt(ctx, KeyToday)
}

// Yesterday returns the previous day's score after any pending rollover.
func (l *Ledger) Yesterday(ctx context.Context) int {
	l.rollover(ctx)
	return l.getInt(ctx, KeyYesterday)
}

// History returns the score per date.
func (l *Ledger) History(ctx context.Context) map[string]int {
	history := map[string]int{}
	raw, ok := l.get(ctx, KeyHistory)
	if !ok || raw == "" {
		return history
	}
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		l.logger.Warn("corrupt score history, starting empty", "error", err)
		return map[string]int{}
	}
	return history
}

// Snapshot reads all progress values at once.
func (l *Ledger) Snapshot(ctx context.Context) Snapshot {
	l.rollover(ctx)
	return Snapshot{
		Level:     l.Level(ctx),
		Total:     l.Total(ctx),
		Today:     l.getInt(ctx, KeyToday),
		Yesterday: l.getInt(ctx, KeyYesterday),
		Questions: l.getInt(ctx, KeyQuestionsTotal),
		History:   l.History(ctx),
	}
}

// SeedAccuracy estimates skill from lifetime totals for sizing the first
// countdown of a round. It is 0 without history.
func (l *Ledger) SeedAccuracy(ctx context.Context) float64 {
	questions := l.getInt(ctx, KeyQuestionsTotal)
	if questions <= 0 {
		return 0
	}
	acc := float64(l.Total(ctx)) / float64(questions)
	if acc > 1 {
		acc = 1
	}
	if acc < 0 {
		acc = 0
	}
	return acc
}

// Settings returns the stored timer settings, defaulting missing fields.
func (l *Ledger) Settings(ctx context.Context) round.Settings {
	s := round.DefaultSettings()
	raw, ok := l.get(ctx, KeySettings)
	if !ok || raw == "" {
		return s
	}
	var stored settingsJSON
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		l.logger.Warn("corrupt settings, using defaults", "error", err)
		return s
	}
	if stored.BaseTimerSeconds != nil && *stored.BaseTimerSeconds > 0 {
		s.BaseSeconds = *stored.BaseTimerSeconds
	}
	if stored.AdaptiveTimingEnabled != nil {
		s.Adaptive = *stored.AdaptiveTimingEnabled
	}
	return s
}

// SaveSettings stores the timer settings.
func (l *Ledger) SaveSettings(ctx context.Context, s round.Settings) {
	base := s.BaseSeconds
	adaptive := s.Adaptive
	data, err := json.Marshal(settingsJSON{BaseTimerSeconds: &base, AdaptiveTimingEnabled: &adaptive})
	if err != nil {
		l.logger.Error("failed to encode settings", "error", err)
		return
	}
	l.set(ctx, KeySettings, string(data))
}

// Apply records a completed round: the score goes to today, the lifetime
// total and the history, and the level moves to the outcome's next level.
func (l *Ledger) Apply(ctx context.Context, out round.Outcome) {
	l.rollover(ctx)
	today := DateKey(l.clock.Now())

	l.setInt(ctx, KeyToday, l.getInt(ctx, KeyToday)+out.ScoreDelta)
	l.setInt(ctx, KeyTotal, l.getInt(ctx, KeyTotal)+out.ScoreDelta)
	l.setInt(ctx, KeyQuestionsTotal, l.getInt(ctx, KeyQuestionsTotal)+out.Answered)

	history := l.History(ctx)
	history[today] += out.ScoreDelta
	if data, err := json.Marshal(history); err != nil {
		l.logger.Error("failed to encode score history", "error", err)
	} else {
		l.set(ctx, KeyHistory, string(data))
	}

	l.SetLevel(ctx, out.NextLevel)
}

// Reset clears level and scores. Settings are kept.
func (l *Ledger) Reset(ctx context.Context) {
	for _, key := range []string{KeyLevel, KeyTotal, KeyToday, KeyYesterday, KeyQuestionsTotal} {
		l.set(ctx, key, "0")
	}
	l.set(ctx, KeyHistory, "{}")
	l.set(ctx, KeyDate, DateKey(l.clock.Now()))
}

// rollover moves today's score to yesterday when the stored date is stale.
func (l *Ledger) rollover(ctx context.Context) {
	now := l.clock.Now()
	today := DateKey(now)
	stored, _ := l.get(ctx, KeyDate)
	if stored == today {
		return
	}
	if stored != "" {
		if stored == DateKey(now.AddDate(0, 0, -1)) {
			l.setInt(ctx, KeyYesterday, l.getInt(ctx, KeyToday))
		} else {
			l.setInt(ctx, KeyYesterday, 0)
		}
		l.setInt(ctx, KeyToday, 0)
	}
	l.set(ctx, KeyDate, today)
}

func (l *Ledger) get(ctx context.Context, key string) (string, bool) {
	v, ok, err := l.kv.Get(ctx, key)
	if err != nil {
		l.logger.Warn("failed to read progress value", "key", key, "error", err)
		return "", false
	}
	return v, ok
}

func (l *Ledger) getInt(ctx context.Context, key string) int {
	raw, ok := l.get(ctx, key)
	if !ok || raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		l.logger.Warn("corrupt progress value, using 0", "key", key, "value", raw, "error", err)
		return 0
	}
	return n
}

func (l *Ledger) set(ctx context.Context, key, value string) {
	if err := l.kv.Set(ctx, key, value); err != nil {
		l.logger.Warn("failed to write progress value", "key", key, "error", err)
	}
}

func (l *Ledger) setInt(ctx context.Context, key string, n int) {
	l.set(ctx, key, strconv.Itoa(n))
}
