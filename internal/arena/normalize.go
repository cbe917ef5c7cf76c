package arena

import "math"

// Normalizer maps a non-negative skill gap to the probability that the
// first prepared combatant wins.
type Normalizer func(delta float64) float64

// Logistic is 1 / (1 + e^-delta). It is 0.5 for equal scores and
// approaches 1 as the gap grows.
func Logistic(delta float64) float64 {
	return 1 / (1 + math.Exp(-delta))
}

// Linear is delta / 100. Gaps of 100 or more always favour the first
// combatant.
func Linear(delta float64) float64 {
	return delta / 100
}

// Delta is the absolute skill gap.
func Delta(score1, score2 float64) float64 {
	return math.Abs(score1 - score2)
}
