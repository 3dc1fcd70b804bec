// Package pacing computes the per-question time budget.
package pacing

import "math"

// DefaultBaseSeconds is the unscaled time per question.
const DefaultBaseSeconds = 5

const (
	minMultiplier = 0.7
	maxMultiplier = 2.0
	slope         = 1.3
)

// Seconds returns the countdown for the next question. With adaptive timing
// off it returns base unchanged; otherwise low accuracy stretches the budget
// up to 2x and high accuracy shrinks it down to 0.7x.
func Seconds(base int, adaptive bool, accuracy float64) int {
	if !adaptive {
		return base
	}
	return int(math.Round(float64(base) * Multiplier(accuracy)))
}

// Multiplier maps accuracy in [0,1] to the timer scale factor.
func Multiplier(accuracy float64) float64 {
	accuracy = clamp(accuracy, 0, 1)
	return clamp(maxMultiplier-accuracy*slope, minMultiplier, maxMultiplier)
}

// Accuracy is correct/answered, treating an empty history as one question.
func Accuracy(correct, answered int) float64 {
	if answered < 1 {
		answered = 1
	}
	return clamp(float64(correct)/float64(answered), 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
