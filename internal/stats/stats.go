// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/tuifret/internal/model"
)

const sparkChars = " .:-=+*#%@"

// RoundMetrics computes accuracy and average seconds per question for a round.
func RoundMetrics(correct, answered int, durationMs int64) (accuracy, secsPerQuestion float64) {
	if answered <= 0 {
		return 0, 0
	}
	accuracy = float64(correct) / float64(answered)
	if durationMs > 0 {
		secsPerQuestion = float64(durationMs) / 1000.0 / float64(answered)
	}
	return accuracy, secsPerQuestion
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := minMax(values)
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(len(sparkChars)-1)))
		b.WriteByte(sparkChars[clampInt(idx, 0, len(sparkChars)-1)])
	}
	return b.String()
}

// Summary holds headline numbers over a set of rounds.
type Summary struct {
	Rounds       int
	Passed       int
	BestScore    int
	AvgScore     float64
	AvgAccuracy  float64
	HighestLevel int
}

// Summarize computes headline numbers for rounds.
func Summarize(rounds []model.RoundAggregate) Summary {
	var s Summary
	s.Rounds = len(rounds)
	if s.Rounds == 0 {
		return s
	}
	var totalScore, totalAcc float64
	for _, r := range rounds {
		acc, _ := RoundMetrics(r.Correct, r.Answered, r.DurationMs)
		totalAcc += acc
		totalScore += float64(r.Correct)
		if r.Passed {
			s.Passed++
		}
		if r.Correct > s.BestScore {
			s.BestScore = r.Correct
		}
		if r.Level > s.HighestLevel {
			s.HighestLevel = r.Level
		}
	}
	s.AvgScore = totalScore / float64(s.Rounds)
	s.AvgAccuracy = totalAcc / float64(s.Rounds)
	return s
}

// RenderSummary prints a summary block for rounds.
func RenderSummary(w io.Writer, rounds []model.RoundAggregate) error {
	if len(rounds) == 0 {
		_, err := fmt.Fprintln(w, "No rounds found.")
		return err
	}
	s := Summarize(rounds)
	lines := []string{
		"Summary",
		fmt.Sprintf("Rounds: %d", s.Rounds),
		fmt.Sprintf("Passed: %d (%.1f%%)", s.Passed, float64(s.Passed)/float64(s.Rounds)*100),
		fmt.Sprintf("Avg Score: %.2f", s.AvgScore),
		fmt.Sprintf("Best Score: %d", s.BestScore),
		fmt.Sprintf("Avg Accuracy: %.2f%%", s.AvgAccuracy*100),
		fmt.Sprintf("Highest Level: %d", s.HighestLevel),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints accuracy and level curves sized to totalWidth.
func RenderCurves(w io.Writer, rounds []model.RoundAggregate, window, totalWidth, height int, useColor bool) error {
	if len(rounds) == 0 {
		return nil
	}
	accs := make([]float64, len(rounds))
	levels := make([]float64, len(rounds))
	for i, r := range rounds {
		acc, _ := RoundMetrics(r.Correct, r.Answered, r.DurationMs)
		accs[i] = acc * 100
		levels[i] = float64(r.Level)
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeries(w, "Learning Curves", []Series{
		{Name: "Accuracy", Values: MovingAverage(accs, window)},
		{Name: "Level", Values: levels},
	}, width, height, useColor)
}

// RenderAnswerTable prints answer aggregates, weakest first.
func RenderAnswerTable(w io.Writer, title, keyHeader string, aggs []model.AnswerAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No answers found.")
		return err
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	headers, rows := AnswerRows(keyHeader, aggs)
	for _, line := range formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// AnswerRows formats answer aggregates as table rows sorted by lowest accuracy.
func AnswerRows(keyHeader string, aggs []model.AnswerAggregate) ([]string, [][]string) {
	sorted := append([]model.AnswerAggregate(nil), aggs...)
	sort.Slice(sorted, func(i, j int) bool {
		ai, aj := Accuracy(sorted[i]), Accuracy(sorted[j])
		if ai == aj {
			return sorted[i].Key < sorted[j].Key
		}
		return ai < aj
	})
	headers := []string{keyHeader, "Accuracy", "Avg Time (ms)", "Correct", "Incorrect", "Timeouts"}
	rows := make([][]string, 0, len(sorted))
	for _, agg := range sorted {
		avg := 0.0
		if agg.Total() > 0 {
			avg = float64(agg.ElapsedSumMs) / float64(agg.Total())
		}
		rows = append(rows, []string{
			agg.Key,
			fmt.Sprintf("%.2f%%", Accuracy(agg)*100),
			fmt.Sprintf("%.0f", avg),
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
			fmt.Sprintf("%d", agg.TimedOut),
		})
	}
	return headers, rows
}

// RenderHistory prints the most recent days of the score history with a sparkline.
func RenderHistory(w io.Writer, history map[string]int, days int) error {
	if len(history) == 0 {
		_, err := fmt.Fprintln(w, "No daily scores yet.")
		return err
	}
	dates := make([]string, 0, len(history))
	for d := range history {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	if days > 0 && len(dates) > days {
		dates = dates[len(dates)-days:]
	}
	values := make([]float64, len(dates))
	rows := make([][]string, 0, len(dates))
	for i, d := range dates {
		values[i] = float64(history[d])
		rows = append(rows, []string{d, fmt.Sprintf("%d", history[d])})
	}
	if _, err := fmt.Fprintf(w, "Daily Scores  %s\n", Sparkline(values)); err != nil {
		return err
	}
	for _, line := range formatTable([]string{"Date", "Score"}, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func minMax(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
