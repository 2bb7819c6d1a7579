package scoring

import "fmt"

// InvalidConfigError reports malformed metric bounds passed to [Normalize].
// It indicates a configuration or programming error, never a per-request
// condition, and is therefore surfaced instead of being coerced.
type InvalidConfigError struct {
	Reason string
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return "scoring: invalid metric bounds: " + e.Reason
}

// Normalize maps raw into a 0–100 score using piecewise-linear scaling
// against the given bounds:
//
//   - raw is first clipped into [min, max];
//   - values inside [idealMin, idealMax] score 100;
//   - below the ideal band the score climbs linearly from 0 at min to 100 at
//     idealMin;
//   - above the ideal band the score descends linearly from 100 at idealMax
//     to 0 at max.
//
// The degenerate cases idealMin == min and idealMax == max leave no room to
// climb or descend, so any value outside the ideal band on that side scores 0.
// The result is clamped into [0, 100] to absorb floating-point drift.
//
// Normalize is pure: identical inputs always yield identical output.
// It returns an [*InvalidConfigError] when min >= max or idealMin > idealMax.
func Normalize(raw, min, max, idealMin, idealMax float64) (float64, error) {
	if min >= max {
		return 0, &InvalidConfigError{
			Reason: fmt.Sprintf("min_value (%g) must be < max_value (%g)", min, max),
		}
	}
	if idealMin > idealMax {
		return 0, &InvalidConfigError{
			Reason: fmt.Sprintf("ideal_min (%g) must be <= ideal_max (%g)", idealMin, idealMax),
		}
	}

	v := raw
	if v < min {
		v = min
	}
	if v > max {
		v = max
	}

	if v >= idealMin && v <= idealMax {
		return 100, nil
	}

	var score float64
	if v < idealMin {
		if idealMin == min {
			return 0, nil
		}
		score = 100 * (v - min) / (idealMin - min)
	} else {
		if idealMax == max {
			return 0, nil
		}
		score = 100 * (max - v) / (max - idealMax)
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, nil
}
