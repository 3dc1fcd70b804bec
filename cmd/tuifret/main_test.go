package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuifret/internal/config"
	"github.com/verte-zerg/tuifret/internal/level"
	"github.com/verte-zerg/tuifret/internal/model"
	"github.com/verte-zerg/tuifret/internal/progress"
	"github.com/verte-zerg/tuifret/internal/store"
)

func TestValidateConfig(t *testing.T) {
	valid := model.Config{BaseSeconds: 5, Adaptive: true, NoteNames: "german", FeedbackMs: 900}
	require.NoError(t, validateConfig(valid))

	bad := valid
	bad.BaseSeconds = 0
	assert.Error(t, validateConfig(bad))

	bad = valid
	bad.NoteNames = "solfege"
	assert.Error(t, validateConfig(bad))

	bad = valid
	bad.FeedbackMs = -1
	assert.Error(t, validateConfig(bad))

	neg := -1
	bad = valid
	bad.StartLevel = &neg
	err := validateConfig(bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, level.ErrInvalidLevel))
}

func TestApplyConfigRespectsFlags(t *testing.T) {
	cmd := newRootCmd()
	timer := 5
	fromFile := 8
	applyIntConfig(cmd, "timer", &timer, &fromFile)
	assert.Equal(t, 8, timer)

	require.NoError(t, cmd.Flags().Set("timer", "3"))
	timer = 3
	applyIntConfig(cmd, "timer", &timer, &fromFile)
	assert.Equal(t, 3, timer)

	names := "us"
	applyStringConfig(cmd, "note-names", &names, nil)
	assert.Equal(t, "us", names)
}

func TestStatsConfig(t *testing.T) {
	cfg, err := statsConfig("2026-03-01", 10, 5)
	require.NoError(t, err)
	require.NotNil(t, cfg.Since)
	assert.Equal(t, 10, cfg.Last)

	_, err = statsConfig("March", 0, 5)
	assert.Error(t, err)
	_, err = statsConfig("", -1, 5)
	assert.Error(t, err)
	_, err = statsConfig("", 0, 0)
	assert.Error(t, err)
}

func TestDefaultConfigTemplateLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuifret", "config.toml")
	require.NoError(t, ensureConfigFile(path))
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Nil(t, cfg.Quiz.Timer)

	require.NoError(t, os.WriteFile(path, []byte("[quiz]\ntimer = 7\n"), 0o644))
	require.NoError(t, ensureConfigFile(path))
	cfg, err = config.LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Quiz.Timer)
	assert.Equal(t, 7, *cfg.Quiz.Timer)
}

func TestOpenLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "tuifret.log")
	logger, closeLog, err := openLogger(path)
	require.NoError(t, err)
	logger.Info("hello", "level", 3)
	closeLog()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=hello")
	assert.Contains(t, string(data), "level=3")
}

func TestPrintStats(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "tuifret.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	ctx := context.Background()
	ledger := progress.NewLedger(st, nil, nil)
	cfg := model.StatsConfig{CurveWindow: defaultCurveWindow}

	var buf bytes.Buffer
	require.NoError(t, printStats(ctx, &buf, st, ledger, cfg))
	assert.Equal(t, "No rounds found.\n", buf.String())

	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rs := model.RoundStats{
		ID:          "round-1",
		StartedAt:   start,
		EndedAt:     start.Add(time.Minute),
		Level:       0,
		Answered:    2,
		Correct:     1,
		Required:    2,
		BaseSeconds: 5,
		DurationMs:  60000,
	}
	answers := []model.AnswerStats{
		{Number: 1, String: 5, Fret: 1, Note: "F", Chosen: "F", Correct: true, Seconds: 5, ElapsedMs: 900},
		{Number: 2, String: 5, Fret: 2, Note: "F#", Seconds: 5, ElapsedMs: 5000},
	}
	require.NoError(t, st.InsertRound(ctx, rs, answers))

	buf.Reset()
	require.NoError(t, printStats(ctx, &buf, st, ledger, cfg))
	out := buf.String()
	assert.Contains(t, out, "Rounds: 1")
	assert.Contains(t, out, "Learning Curves")
	assert.Contains(t, out, "By Note")
	assert.Contains(t, out, "By String (1 = high e)")
	assert.Contains(t, out, "No daily scores yet.")
	assert.NotContains(t, out, "\x1b[")
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))
}
