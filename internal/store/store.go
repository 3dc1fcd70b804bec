// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tuifret/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Answer groupings accepted by ListAnswerAggregates.
const (
	GroupByNote   = "note"
	GroupByString = "string_idx"
	GroupByFret   = "fret"
)

// timeLayout is fixed-width UTC so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for progress values and round history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS rounds (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			level INTEGER NOT NULL,
			repetition INTEGER NOT NULL,
			answered INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			required INTEGER NOT NULL,
			passed INTEGER NOT NULL,
			base_seconds INTEGER NOT NULL,
			adaptive INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS round_answers (
			round_id TEXT NOT NULL,
			number INTEGER NOT NULL,
			string_idx INTEGER NOT NULL,
			fret INTEGER NOT NULL,
			note TEXT NOT NULL,
			chosen TEXT NOT NULL,
			correct INTEGER NOT NULL,
			timed_out INTEGER NOT NULL,
			seconds INTEGER NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			PRIMARY KEY (round_id, number)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_ended_at ON rounds(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_round_answers_note ON round_answers(note);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the value stored under key and whether it exists.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Format(time.RFC3339Nano))
	return err
}

// InsertRound stores a completed round and its answers.
func (s *Store) InsertRound(ctx context.Context, stats model.RoundStats, answers []model.AnswerStats) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO rounds (id, started_at, ended_at, level, repetition, answered, correct, required, passed, base_seconds, adaptive, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stats.ID,
		stats.StartedAt.UTC().Format(timeLayout),
		stats.EndedAt.UTC().Format(timeLayout),
		stats.Level,
		boolInt(stats.Repetition),
		stats.Answered,
		stats.Correct,
		stats.Required,
		boolInt(stats.Passed),
		stats.BaseSeconds,
		boolInt(stats.Adaptive),
		stats.DurationMs,
	)
	if err != nil {
		return err
	}

	if len(answers) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO round_answers (round_id, number, string_idx, fret, note, chosen, correct, timed_out, seconds, elapsed_ms)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, a := range answers {
			if _, err = stmt.ExecContext(ctx, stats.ID, a.Number, a.String, a.Fret, a.Note, a.Chosen,
				boolInt(a.Correct), boolInt(a.TimedOut), a.Seconds, a.ElapsedMs); err != nil {
				return err
			}
		}
	}

	err = tx.Commit()
	return err
}

// ListRounds returns round aggregates filtered by stats config, oldest first.
func (s *Store) ListRounds(ctx context.Context, cfg model.StatsConfig) ([]model.RoundAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, level, correct, answered, passed, duration_ms
		FROM rounds
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var rounds []model.RoundAggregate
	for rows.Next() {
		var agg model.RoundAggregate
		var endedAt string
		var passed int
		if err := rows.Scan(&agg.RoundID, &endedAt, &agg.Level, &agg.Correct, &agg.Answered, &passed, &agg.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		agg.Passed = passed != 0
		rounds = append(rounds, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(rounds) > cfg.Last {
		rounds = rounds[len(rounds)-cfg.Last:]
	}
	return rounds, nil
}

// ListAnswerAggregates aggregates answers of the given rounds by note,
// string or fret.
func (s *Store) ListAnswerAggregates(ctx context.Context, roundIDs []string, groupBy string) ([]model.AnswerAggregate, error) {
	switch groupBy {
	case GroupByNote, GroupByString, GroupByFret:
	default:
		return nil, fmt.Errorf("unsupported answer grouping %q", groupBy)
	}
	if len(roundIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(roundIDs))
	args := make([]any, len(roundIDs))
	for i, id := range roundIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT CAST(%[1]s AS TEXT) AS grp, SUM(correct) AS correct, SUM(1 - correct) AS incorrect,
		SUM(timed_out) AS timed_out, SUM(elapsed_ms) AS elapsed_ms
		FROM round_answers
		WHERE round_id IN (%[2]s)
		GROUP BY %[1]s
		ORDER BY %[1]s`, groupBy, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.AnswerAggregate
	for rows.Next() {
		var agg model.AnswerAggregate
		if err := rows.Scan(&agg.Key, &agg.Correct, &agg.Incorrect, &agg.TimedOut, &agg.ElapsedSumMs); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
