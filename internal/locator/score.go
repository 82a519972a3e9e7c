package locator

import "math"

// qualityScore ranks a venue from its available signals. The function is pure:
// identical inputs always yield the identical score, which keeps result
// ordering reproducible.
//
// Weighting: rating contributes 0-5 points, review volume up to 2 points
// (log scale), distance subtracts up to 3 points (1 point per 5 miles),
// currently-open adds 1 point. Clamped at zero.
func qualityScore(rating float64, ratingCount int, distanceMiles float64, openNow bool) float64 {
	score := rating

	if ratingCount > 0 {
		score += math.Min(2.0, math.Log10(float64(ratingCount)))
	}

	score -= math.Min(3.0, distanceMiles/5.0)

	if openNow {
		score += 1.0
	}

	return math.Max(0.0, score)
}
