package stats

import (
	"sort"

	"github.com/verte-zerg/tuifret/internal/model"
)

// Accuracy is the share of correct answers; aggregates without answers count as perfect.
func Accuracy(agg model.AnswerAggregate) float64 {
	total := agg.Total()
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}

// WeakestKeys returns up to top keys with the lowest accuracy.
func WeakestKeys(aggs []model.AnswerAggregate, top int) []string {
	if len(aggs) == 0 {
		return nil
	}
	candidates := make([]model.AnswerAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Incorrect > 0 {
			candidates = append(candidates, agg)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ai, aj := Accuracy(candidates[i]), Accuracy(candidates[j])
		if ai == aj {
			return candidates[i].Key < candidates[j].Key
		}
		return ai < aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	out := make([]string, 0, top)
	for _, agg := range candidates[:top] {
		out = append(out, agg.Key)
	}
	return out
}
