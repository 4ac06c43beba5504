// Package moments computes sample moment statistics: mean, variance, order
// statistics, mode, skewness/kurtosis, percentiles and frequency binning.
// Every entry point is a pure function of its input sample.
package moments

import (
	"math"
	"sort"

	"gridstat/domain/stats"
	"gridstat/internal/errors"
)

// Describe computes the full descriptive summary of a non-empty sample
func Describe(sample []float64) (*stats.DescriptiveStatistics, error) {
	n := len(sample)
	if n == 0 {
		return nil, errors.EmptyInput("descriptive statistics")
	}

	sorted := make([]float64, n)
	copy(sorted, sample)
	sort.Float64s(sorted)

	mean := Mean(sample)
	variance := SampleVariance(sample, mean)
	stdDev := math.Sqrt(variance)
	min := sorted[0]
	max := sorted[n-1]

	q1 := interpolatedQuantile(sorted, 0.25)
	q2 := interpolatedQuantile(sorted, 0.50)
	q3 := interpolatedQuantile(sorted, 0.75)

	d := &stats.DescriptiveStatistics{
		Count:    n,
		Mean:     mean,
		Median:   q2,
		Mode:     mode(sorted),
		Variance: variance,
		StdDev:   stdDev,
		Range:    max - min,
		Min:      min,
		Max:      max,
		Skewness: skewness(sample, mean),
		Kurtosis: kurtosis(sample, mean),
		Q1:       q1,
		Q2:       q2,
		Q3:       q3,
		IQR:      q3 - q1,
	}
	return d, nil
}

// Percentiles evaluates the sample at each probability in probs (0..1),
// using the same order-statistic interpolation as the quartiles.
func Percentiles(sample []float64, probs []float64) ([]float64, error) {
	if len(sample) == 0 {
		return nil, errors.EmptyInput("percentile")
	}
	for _, p := range probs {
		if p < 0 || p > 1 {
			return nil, errors.InvalidInput("percentile probabilities must be in [0,1]")
		}
	}

	sorted := make([]float64, len(sample))
	copy(sorted, sample)
	sort.Float64s(sorted)

	out := make([]float64, len(probs))
	for i, p := range probs {
		out[i] = interpolatedQuantile(sorted, p)
	}
	return out, nil
}

// Frequencies bins the sample into bins equal-width intervals spanning
// [min, max]. The uppermost edge is nudged past the true max so the maximum
// value lands inside the last bin instead of falling off the edge.
func Frequencies(sample []float64, bins int) ([]stats.FrequencyBin, error) {
	if len(sample) == 0 {
		return nil, errors.EmptyInput("frequency binning")
	}
	if bins <= 0 {
		return nil, errors.InvalidInput("bin count must be positive")
	}

	min, max := sample[0], sample[0]
	for _, v := range sample[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	width := (max - min) / float64(bins)
	out := make([]stats.FrequencyBin, bins)
	for i := range out {
		out[i].Lower = min + float64(i)*width
		out[i].Upper = min + float64(i+1)*width
	}
	// Make the true max inclusive in the last bin.
	out[bins-1].Upper = math.Nextafter(max, math.Inf(1))

	for _, v := range sample {
		idx := 0
		if width > 0 {
			idx = int(math.Floor((v - min) / width))
		}
		if idx < 0 {
			idx = 0
		}
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out, nil
}

// Mean returns the arithmetic mean; 0 for an empty slice
func Mean(sample []float64) float64 {
	if len(sample) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range sample {
		sum += v
	}
	return sum / float64(len(sample))
}

// SampleVariance returns the n-1 denominator variance about mean; 0 when n < 2
func SampleVariance(sample []float64, mean float64) float64 {
	if len(sample) < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range sample {
		diff := v - mean
		sumSq += diff * diff
	}
	return sumSq / float64(len(sample)-1)
}

// SampleStdDev returns the n-1 denominator standard deviation
func SampleStdDev(sample []float64) float64 {
	return math.Sqrt(SampleVariance(sample, Mean(sample)))
}

// interpolatedQuantile evaluates the sorted sample at fractional rank (n-1)*p,
// linearly interpolating between the bracketing order statistics.
func interpolatedQuantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	rank := float64(n-1) * p
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if hi >= n {
		hi = n - 1
	}
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// mode returns the most frequent value, or nil when every value is unique.
// Ties keep the first value that reached the maximum count in sorted order.
func mode(sorted []float64) *float64 {
	bestCount := 1
	var best float64

	i := 0
	for i < len(sorted) {
		j := i + 1
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		if j-i > bestCount {
			bestCount = j - i
			best = sorted[i]
		}
		i = j
	}

	if bestCount < 2 {
		return nil
	}
	return &best
}

// skewness is the third standardized moment over the population (n) standard
// deviation; the n/n-1 asymmetry against SampleVariance is deliberate and
// matches the established output contract.
func skewness(sample []float64, mean float64) float64 {
	sd := populationStdDev(sample, mean)
	if sd == 0 {
		return 0
	}
	n := float64(len(sample))
	sum := 0.0
	for _, v := range sample {
		z := (v - mean) / sd
		sum += z * z * z
	}
	return sum / n
}

// kurtosis is the excess kurtosis: fourth standardized moment minus 3, again
// over the population standard deviation.
func kurtosis(sample []float64, mean float64) float64 {
	sd := populationStdDev(sample, mean)
	if sd == 0 {
		return 0
	}
	n := float64(len(sample))
	sum := 0.0
	for _, v := range sample {
		z := (v - mean) / sd
		sum += z * z * z * z
	}
	return sum/n - 3.0
}

func populationStdDev(sample []float64, mean float64) float64 {
	n := float64(len(sample))
	if n == 0 {
		return 0
	}
	sumSq := 0.0
	for _, v := range sample {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / n)
}
