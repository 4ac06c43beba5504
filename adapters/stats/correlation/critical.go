package correlation

import (
	"math"

	"gridstat/domain/stats"
)

// Critical values of the t distribution at alpha = 0.05, anchored per df.
// These tables are the established behavioral contract for significance
// flagging; they are deliberately not replaced by an exact t CDF, which would
// change observable output. Values for df 31..120 fall back to the largest
// anchor at or below df, and beyond 120 to the normal z value.
var (
	criticalTwoTailed = map[int]float64{
		1: 12.706, 2: 4.303, 3: 3.182, 4: 2.776, 5: 2.571,
		6: 2.447, 7: 2.365, 8: 2.306, 9: 2.262, 10: 2.228,
		11: 2.201, 12: 2.179, 13: 2.160, 14: 2.145, 15: 2.131,
		16: 2.120, 17: 2.110, 18: 2.101, 19: 2.093, 20: 2.086,
		21: 2.080, 22: 2.074, 23: 2.069, 24: 2.064, 25: 2.060,
		26: 2.056, 27: 2.052, 28: 2.048, 29: 2.045, 30: 2.042,
		40: 2.021, 60: 2.000, 80: 1.990, 100: 1.984, 120: 1.980,
	}
	criticalOneTailed = map[int]float64{
		1: 6.314, 2: 2.920, 3: 2.353, 4: 2.132, 5: 2.015,
		6: 1.943, 7: 1.895, 8: 1.860, 9: 1.833, 10: 1.812,
		11: 1.796, 12: 1.782, 13: 1.771, 14: 1.761, 15: 1.753,
		16: 1.746, 17: 1.740, 18: 1.734, 19: 1.729, 20: 1.725,
		21: 1.721, 22: 1.717, 23: 1.714, 24: 1.711, 25: 1.708,
		26: 1.706, 27: 1.703, 28: 1.701, 29: 1.699, 30: 1.697,
		40: 1.684, 60: 1.671, 80: 1.664, 100: 1.660, 120: 1.658,
	}
	// Anchors above df 30, largest-at-or-below lookup.
	anchors = []int{120, 100, 80, 60, 40}
)

const (
	zTwoTailed = 1.96
	zOneTailed = 1.645
)

// CriticalValue returns the alpha=0.05 critical |t| for the given degrees of
// freedom and tail type.
func CriticalValue(df int, tail stats.TailType) float64 {
	table := criticalTwoTailed
	z := zTwoTailed
	if tail == stats.TailOne {
		table = criticalOneTailed
		z = zOneTailed
	}
	if df > 120 {
		return z
	}
	if v, ok := table[df]; ok {
		return v
	}
	for _, anchor := range anchors {
		if df >= anchor {
			return table[anchor]
		}
	}
	return z
}

// Significant applies the correlation t test: t = r*sqrt(df/(1-r^2)) against
// the anchored critical value. df below 3 is never significant; a perfect
// correlation always is.
func Significant(r float64, df int, tail stats.TailType) bool {
	if df < 3 {
		return false
	}
	if math.Abs(r) >= 1 {
		return true
	}
	t := r * math.Sqrt(float64(df)/(1-r*r))
	return math.Abs(t) > CriticalValue(df, tail)
}
