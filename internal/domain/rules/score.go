package rules

import "math"

// MaxScore caps stored compatibility scores below 1.0 so the UI never
// renders a flat 100%.
const MaxScore = 0.99

// ClampScore normalizes a raw score into [0, MaxScore] at two-decimal
// precision. NaN and infinities collapse to 0.
func ClampScore(raw float64) float64 {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0
	}
	if raw < 0 {
		return 0
	}
	rounded := math.Round(raw*100) / 100
	if rounded > MaxScore {
		return MaxScore
	}
	return rounded
}
