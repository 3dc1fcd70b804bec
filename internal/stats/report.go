package stats

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/verte-zerg/tuifret/internal/model"
	"github.com/verte-zerg/tuifret/internal/progress"
	"github.com/verte-zerg/tuifret/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Rounds         []model.RoundAggregate
	WindowRoundIDs []string
	ByNote         []model.AnswerAggregate
	ByString       []model.AnswerAggregate
	ByFret         []model.AnswerAggregate
	Progress       progress.Snapshot
}

// BuildReport loads and prepares data for stats rendering. Answer tables
// cover the last CurveWindow rounds.
func BuildReport(ctx context.Context, st *store.Store, ledger *progress.Ledger, cfg model.StatsConfig) (Report, error) {
	rounds, err := st.ListRounds(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	windowIDs := lastRoundIDs(rounds, cfg.CurveWindow)

	byNote, err := st.ListAnswerAggregates(ctx, windowIDs, store.GroupByNote)
	if err != nil {
		return Report{}, err
	}
	byString, err := st.ListAnswerAggregates(ctx, windowIDs, store.GroupByString)
	if err != nil {
		return Report{}, err
	}
	byFret, err := st.ListAnswerAggregates(ctx, windowIDs, store.GroupByFret)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		Rounds:         rounds,
		WindowRoundIDs: windowIDs,
		ByNote:         byNote,
		ByString:       numberStrings(byString),
		ByFret:         byFret,
	}
	if ledger != nil {
		report.Progress = ledger.Snapshot(ctx)
	}
	return report, nil
}

// RenderReport prints the whole report as plain text. historyDays limits the
// daily score table.
func RenderReport(w io.Writer, report Report, window, totalWidth, historyDays int, useColor bool) error {
	if err := RenderSummary(w, report.Rounds); err != nil {
		return err
	}
	if len(report.Rounds) == 0 {
		return nil
	}
	p := report.Progress
	if _, err := fmt.Fprintf(w, "Level %d  Today %d  Yesterday %d  Total %d\n\n", p.Level, p.Today, p.Yesterday, p.Total); err != nil {
		return err
	}
	if err := RenderCurves(w, report.Rounds, window, totalWidth, defaultPlotHeight, useColor); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	if err := RenderAnswerTable(w, "By Note", "Note", report.ByNote); err != nil {
		return err
	}
	if err := RenderAnswerTable(w, "By String (1 = high e)", "String", report.ByString); err != nil {
		return err
	}
	if err := RenderAnswerTable(w, "By Fret", "Fret", report.ByFret); err != nil {
		return err
	}
	return RenderHistory(w, p.History, historyDays)
}

func lastRoundIDs(rounds []model.RoundAggregate, window int) []string {
	if window > 0 && len(rounds) > window {
		rounds = rounds[len(rounds)-window:]
	}
	ids := make([]string, len(rounds))
	for i, r := range rounds {
		ids[i] = r.RoundID
	}
	return ids
}

// numberStrings relabels string indexes (0 = high e) as guitar string numbers.
func numberStrings(aggs []model.AnswerAggregate) []model.AnswerAggregate {
	out := make([]model.AnswerAggregate, len(aggs))
	for i, agg := range aggs {
		if idx, err := strconv.Atoi(agg.Key); err == nil {
			agg.Key = strconv.Itoa(idx + 1)
		}
		out[i] = agg
	}
	return out
}
