// Package model defines shared data structures.
package model

import "time"

// Config defines play settings resolved from flags, config file and store.
type Config struct {
	BaseSeconds int
	Adaptive    bool
	NoteNames   string
	FeedbackMs  int
	StartLevel  *int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Since       *time.Time
	Last        int
	CurveWindow int
}

// RoundStats captures a completed round.
type RoundStats struct {
	ID          string
	StartedAt   time.Time
	EndedAt     time.Time
	Level       int
	Repetition  bool
	Answered    int
	Correct     int
	Required    int
	Passed      bool
	BaseSeconds int
	Adaptive    bool
	DurationMs  int64
}

// AnswerStats stores one resolved question of a round.
type AnswerStats struct {
	Number    int
	String    int
	Fret      int
	Note      string
	Chosen    string
	Correct   bool
	TimedOut  bool
	Seconds   int
	ElapsedMs int64
}

// RoundAggregate summarizes a round for reporting.
type RoundAggregate struct {
	RoundID    string
	EndedAt    time.Time
	Level      int
	Correct    int
	Answered   int
	Passed     bool
	DurationMs int64
}

// AnswerAggregate aggregates answers grouped by note, string or fret.
type AnswerAggregate struct {
	Key          string
	Correct      int
	Incorrect    int
	TimedOut     int
	ElapsedSumMs int64
}

// Total is the number of answers in the aggregate.
func (a AnswerAggregate) Total() int {
	return a.Correct + a.Incorrect
}
