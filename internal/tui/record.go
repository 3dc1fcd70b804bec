package tui

import (
	"github.com/verte-zerg/tuifret/internal/model"
	"github.com/verte-zerg/tuifret/internal/note"
	"github.com/verte-zerg/tuifret/internal/round"
)

// roundRecord converts a completed round into its stored form. Notes are
// kept in US spelling so stats group the same regardless of display naming.
func roundRecord(out round.Outcome, settings round.Settings) (model.RoundStats, []model.AnswerStats) {
	stats := model.RoundStats{
		ID:          out.RoundID.String(),
		StartedAt:   out.StartedAt,
		EndedAt:     out.EndedAt,
		Level:       out.Level,
		Repetition:  out.Repetition,
		Answered:    out.Answered,
		Correct:     out.Scored,
		Required:    out.Required,
		Passed:      out.Passed,
		BaseSeconds: settings.BaseSeconds,
		Adaptive:    settings.Adaptive,
		DurationMs:  out.EndedAt.Sub(out.StartedAt).Milliseconds(),
	}
	answers := make([]model.AnswerStats, 0, len(out.Answers))
	for _, a := range out.Answers {
		chosen := ""
		if !a.TimedOut {
			chosen = note.NamingUS.Name(a.Chosen)
		}
		answers = append(answers, model.AnswerStats{
			Number:    a.Number,
			String:    a.String,
			Fret:      a.Fret,
			Note:      note.NamingUS.Name(a.Note),
			Chosen:    chosen,
			Correct:   a.Correct,
			TimedOut:  a.TimedOut,
			Seconds:   a.Seconds,
			ElapsedMs: a.Elapsed.Milliseconds(),
		})
	}
	return stats, answers
}
