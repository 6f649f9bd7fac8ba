package tuner

import (
	"math"

	"chess-tuner/internal/model"
)

// kCalibrationDelta, kCalibrationGoal, and kCalibrationRate are the
// reference tuner's find_optimal_k constants: each step estimates
// d(error)/dK by central difference at +-delta, then moves K against that
// derivative scaled by rate, stopping once the derivative's magnitude falls
// below goal.
const (
	kCalibrationDelta = 1e-5
	kCalibrationGoal  = 1e-6
	kCalibrationRate  = 10
)

// sigmoid maps a raw evaluation score through the logistic curve the
// optimizer fits against game results, matching the reference tuner's
// natural-base sig(x) = 1/(1+exp(-K·x/400)).
func sigmoid(k, score float64) float64 {
	return 1 / (1 + math.Exp(-k*score/400))
}

// meanSquaredError evaluates every entry under params at scaling constant k.
func meanSquaredError(entries []Entry, params model.Vector, maxPhase int, k float64) float64 {
	if len(entries) == 0 {
		return 0
	}
	var sum float64
	for _, e := range entries {
		s := scoreOf(e, params, maxPhase)
		d := e.Label - sigmoid(k, s)
		sum += d * d
	}
	return sum / float64(len(entries))
}

// CalibrateK finds the logistic scaling constant that best fits entries
// under the vector already loaded into params, starting from start, via
// find_optimal_k's central-difference gradient descent: K -= deviation*rate,
// where deviation is the central-difference estimate of d(error)/dK,
// repeated until that estimate is within kCalibrationGoal of zero.
func CalibrateK(entries []Entry, params model.Vector, maxPhase int, start float64) float64 {
	k := start
	deviation := 1.0
	for math.Abs(deviation) > kCalibrationGoal {
		up := meanSquaredError(entries, params, maxPhase, k+kCalibrationDelta)
		down := meanSquaredError(entries, params, maxPhase, k-kCalibrationDelta)
		deviation = (up - down) / (2 * kCalibrationDelta)
		k -= deviation * kCalibrationRate
	}
	return k
}
