package service

import "math"

// timeBonusShare is the fraction of problem points available as a speed
// bonus, and timeBonusCutoff the fraction of the time limit under which
// the bonus starts to accrue.
const (
	timeBonusShare  = 0.2
	timeBonusCutoff = 0.5
)

// Score computes the points earned by one submission.
//
// Correctness pays out proportionally to the passed test cases. A speed
// bonus applies independently of correctness when the measured execution
// time stays under half the time limit; it grows linearly as execution
// time approaches zero, topping out at 10% of the problem points. A zero
// execution time means nothing was measured and earns no bonus. The
// result is rounded to two decimals.
func Score(passed, total int, executionTimeMs float64, problemPoints float64, timeLimitMs int) float64 {
	if problemPoints <= 0 {
		return 0
	}

	var score float64
	if total > 0 && passed > 0 {
		if passed > total {
			passed = total
		}
		score = (float64(passed) / float64(total)) * problemPoints
	}

	if executionTimeMs > 0 && timeLimitMs > 0 {
		ratio := executionTimeMs / float64(timeLimitMs)
		if ratio < timeBonusCutoff {
			score += (timeBonusCutoff - ratio) * timeBonusShare * problemPoints
		}
	}

	return round2(score)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
