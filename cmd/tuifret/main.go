// Package main provides the CLI entrypoint for tuifret.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/tuifret/internal/config"
	"github.com/verte-zerg/tuifret/internal/level"
	"github.com/verte-zerg/tuifret/internal/model"
	"github.com/verte-zerg/tuifret/internal/note"
	"github.com/verte-zerg/tuifret/internal/pacing"
	"github.com/verte-zerg/tuifret/internal/progress"
	"github.com/verte-zerg/tuifret/internal/quiz"
	"github.com/verte-zerg/tuifret/internal/round"
	"github.com/verte-zerg/tuifret/internal/stats"
	"github.com/verte-zerg/tuifret/internal/statsui"
	"github.com/verte-zerg/tuifret/internal/store"
	"github.com/verte-zerg/tuifret/internal/tui"
)

const (
	defaultNoteNames   = "us"
	defaultFeedbackMs  = 900
	defaultCurveWindow = 20
	plainHistoryDays   = 14
	maxTimerSeconds    = 30
)

var (
	playTimer      int
	playAdaptive   bool
	playNoteNames  string
	playFeedbackMs int
	playLevel      int

	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool

	resetYes bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuifret",
		Short:         "TUI guitar fretboard trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().IntVar(&playTimer, "timer", pacing.DefaultBaseSeconds, "base seconds per question")
	rootCmd.Flags().BoolVar(&playAdaptive, "adaptive", true, "scale the timer with accuracy")
	rootCmd.Flags().StringVar(&playNoteNames, "note-names", defaultNoteNames, "note naming: us, german or mixed")
	rootCmd.Flags().IntVar(&playFeedbackMs, "feedback-ms", defaultFeedbackMs, "pause after each answer in milliseconds")
	rootCmd.Flags().IntVar(&playLevel, "level", 0, "start at this level instead of the stored one")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newLevelsCmd())
	rootCmd.AddCommand(newResetCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, closeLog, err := openLogger(config.DefaultLogPath())
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st, logger)

	ctx := context.Background()
	ledger := progress.NewLedger(st, progress.SystemClock{}, logger)

	stored := ledger.Settings(ctx)
	if !cmd.Flags().Changed("timer") {
		playTimer = stored.BaseSeconds
	}
	if !cmd.Flags().Changed("adaptive") {
		playAdaptive = stored.Adaptive
	}
	applyIntConfig(cmd, "timer", &playTimer, fileCfg.Quiz.Timer)
	applyBoolConfig(cmd, "adaptive", &playAdaptive, fileCfg.Quiz.Adaptive)
	applyStringConfig(cmd, "note-names", &playNoteNames, fileCfg.Quiz.NoteNames)
	applyIntConfig(cmd, "feedback-ms", &playFeedbackMs, fileCfg.Quiz.FeedbackMs)

	cfg := model.Config{
		BaseSeconds: playTimer,
		Adaptive:    playAdaptive,
		NoteNames:   playNoteNames,
		FeedbackMs:  playFeedbackMs,
	}
	if cmd.Flags().Changed("level") {
		lvl := playLevel
		cfg.StartLevel = &lvl
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	settings := round.Settings{BaseSeconds: cfg.BaseSeconds, Adaptive: cfg.Adaptive}
	if cmd.Flags().Changed("timer") || cmd.Flags().Changed("adaptive") {
		ledger.SaveSettings(ctx, settings)
	}

	levels := level.Standard()
	engine := round.NewEngine(quiz.New(levels), settings)
	logger.Info("starting quiz", "level", ledger.Level(ctx), "timer", settings.BaseSeconds, "adaptive", settings.Adaptive)

	program := tea.NewProgram(tui.NewModel(ctx, cfg, engine, ledger, st, logger), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N rounds")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print stats as text instead of opening the browser")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "curve-window", &statsCurveWindow, fileCfg.Stats.CurveWindow)

	cfg, err := statsConfig(statsSince, statsLast, statsCurveWindow)
	if err != nil {
		return err
	}

	logger, closeLog, err := openLogger(config.DefaultLogPath())
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st, logger)

	ledger := progress.NewLedger(st, progress.SystemClock{}, logger)
	out := cmd.OutOrStdout()
	if statsPlain || !isTerminal(out) {
		return printStats(cmd.Context(), out, st, ledger, cfg)
	}
	program := tea.NewProgram(statsui.NewModel(st, ledger, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func printStats(ctx context.Context, w io.Writer, st *store.Store, ledger *progress.Ledger, cfg model.StatsConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	report, err := stats.BuildReport(ctx, st, ledger, cfg)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	return stats.RenderReport(w, report, cfg.CurveWindow, 0, plainHistoryDays, false)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

func statsConfig(since string, last, window int) (model.StatsConfig, error) {
	cfg := model.StatsConfig{Last: last, CurveWindow: window}
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	if last < 0 {
		return cfg, fmt.Errorf("--last must be >= 0")
	}
	if window < 1 {
		return cfg, fmt.Errorf("--curve-window must be >= 1")
	}
	return cfg, nil
}

func newLevelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "Print the level table",
		Args:  cobra.NoArgs,
		RunE:  runLevelsCmd,
	}
}

func runLevelsCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st, slog.Default())

	ledger := progress.NewLedger(st, progress.SystemClock{}, slog.Default())
	if err := stats.RenderLevels(cmd.OutOrStdout(), level.Standard(), ledger.Level(context.Background())); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear level and scores",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().BoolVar(&resetYes, "yes", false, "confirm the reset")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	if !resetYes {
		return fmt.Errorf("refusing to reset progress without --yes")
	}
	logger, closeLog, err := openLogger(config.DefaultLogPath())
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st, logger)

	progress.NewLedger(st, progress.SystemClock{}, logger).Reset(context.Background())
	logger.Info("progress reset")
	_, err = fmt.Fprintln(cmd.OutOrStdout(), "Progress reset. Settings and round history are kept.")
	return err
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuifret configuration
# Uncomment a value to enable it. CLI flags override config values,
# config values override the timer settings saved from the game.

[quiz]
# timer = %d              # Base seconds per question
# adaptive = true        # Scale the timer with accuracy
# note-names = %q       # us, german or mixed
# feedback-ms = %d      # Pause after each answer

[stats]
# curve-window = %d      # Moving average window for curves
`,
		pacing.DefaultBaseSeconds,
		defaultNoteNames,
		defaultFeedbackMs,
		defaultCurveWindow,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.BaseSeconds < 1 || cfg.BaseSeconds > maxTimerSeconds {
		return fmt.Errorf("--timer must be between 1 and %d", maxTimerSeconds)
	}
	if cfg.FeedbackMs < 0 {
		return fmt.Errorf("--feedback-ms must be >= 0")
	}
	if _, err := note.ParseNaming(cfg.NoteNames); err != nil {
		return fmt.Errorf("--note-names: %w", err)
	}
	if cfg.StartLevel != nil && *cfg.StartLevel < 0 {
		return fmt.Errorf("--level must be >= 0: %w", level.ErrInvalidLevel)
	}
	return nil
}

func closeStore(st *store.Store, logger *slog.Logger) {
	if err := st.Close(); err != nil {
		logger.Warn("failed to close db", "error", err)
	}
}
