package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Quiz.Timer)
	assert.Nil(t, cfg.Quiz.Adaptive)
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[quiz]
timer = 7
adaptive = false
note-names = "german"

[stats]
curve-window = 5
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Quiz.Timer)
	assert.Equal(t, 7, *cfg.Quiz.Timer)
	require.NotNil(t, cfg.Quiz.Adaptive)
	assert.False(t, *cfg.Quiz.Adaptive)
	require.NotNil(t, cfg.Quiz.NoteNames)
	assert.Equal(t, "german", *cfg.Quiz.NoteNames)
	assert.Nil(t, cfg.Quiz.FeedbackMs)
	require.NotNil(t, cfg.Stats.CurveWindow)
	assert.Equal(t, 5, *cfg.Stats.CurveWindow)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[quiz]\ntimmer = 3\n"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "cfg"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	assert.Equal(t, filepath.Join(dir, "cfg", "tuifret", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join(dir, "data", "tuifret", "tuifret.db"), DefaultDBPath())
	assert.Equal(t, filepath.Join(dir, "state", "tuifret", "tuifret.log"), DefaultLogPath())
}
