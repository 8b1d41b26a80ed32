package termstructure

import (
	"math"
	"sort"
)

// findBracketOrBoundary finds two adjacent node indices that bracket the target time.
// If the target is outside the range, returns the nearest boundary pair.
func findBracketOrBoundary(times []float64, target float64) (i1, i2 int) {
	if len(times) < 2 {
		panic("findBracketOrBoundary: need at least 2 nodes")
	}

	// Binary search for first node >= target
	idx := sort.SearchFloat64s(times, target)

	if idx <= 0 {
		return 0, 1
	}
	if idx >= len(times) {
		return len(times) - 2, len(times) - 1
	}
	return idx - 1, idx
}

// logLinear interpolates discount factors log-linearly, extrapolating the
// boundary segment's forward rate outside the node range.
func logLinear(times, dfs []float64, t float64) float64 {
	if len(times) == 1 {
		return dfs[0]
	}
	i1, i2 := findBracketOrBoundary(times, t)
	t1, t2 := times[i1], times[i2]
	if t2 == t1 {
		return dfs[i1]
	}
	forwardRate := math.Log(dfs[i1]/dfs[i2]) / (t2 - t1)
	return dfs[i1] * math.Exp(-forwardRate*(t-t1))
}
