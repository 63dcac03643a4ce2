package types

import "math"

// Scale midpoints used as neutral defaults when a producer cannot score a
// dimension. Out-of-range or NaN values are never stored or propagated.
const (
	NeutralScore      = 5.0
	NeutralImportance = 0.5
)

// ClampScore bounds a 0-10 scalar. NaN collapses to the neutral midpoint.
func ClampScore(v float64) float64 {
	if math.IsNaN(v) {
		return NeutralScore
	}
	return math.Min(10, math.Max(0, v))
}

// ClampUnit bounds a 0-1 scalar. NaN collapses to the neutral midpoint.
func ClampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return NeutralImportance
	}
	return math.Min(1, math.Max(0, v))
}

// ClampDepth bounds a depth level to [1,10]. Applied after every routing
// adjustment step.
func ClampDepth(depth int) int {
	if depth < 1 {
		return 1
	}
	if depth > 10 {
		return 10
	}
	return depth
}
