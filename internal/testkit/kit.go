// Package testkit provides deterministic synthetic samples for engine tests.
package testkit

import (
	"math"
	"math/rand"
)

// Source wraps a seeded generator so fixtures are reproducible per test
type Source struct {
	rng *rand.Rand
}

// NewSource creates a deterministic sample source
func NewSource(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Normal draws n values from N(mean, sd)
func (s *Source) Normal(n int, mean, sd float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = mean + sd*s.rng.NormFloat64()
	}
	return out
}

// Linear produces y = slope*x + intercept + noise over the given x values
func (s *Source) Linear(x []float64, slope, intercept, noise float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = slope*v + intercept + noise*s.rng.NormFloat64()
	}
	return out
}

// Sequence returns 1..n as floats
func Sequence(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

// WithMissing copies values and replaces every stride-th cell with NaN
func WithMissing(values []float64, stride int) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	for i := stride - 1; i < len(out); i += stride {
		out[i] = math.NaN()
	}
	return out
}
