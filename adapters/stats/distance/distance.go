// Package distance computes pairwise case-distance matrices. The input is a
// set of aligned variable columns; distances run between cases (rows), not
// variables.
package distance

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"gridstat/domain/stats"
	"gridstat/internal/errors"
)

// Engine computes distance matrices. It holds no state; concurrent calls are
// safe.
type Engine struct{}

// NewEngine creates a distance engine
func NewEngine() *Engine {
	return &Engine{}
}

// Matrix computes the n x n symmetric case-distance matrix under the given
// metric. Only the upper triangle is computed; the lower triangle is its
// mirror and the diagonal is zero.
func (e *Engine) Matrix(columns [][]float64, metric stats.DistanceMetric) (*stats.DistanceMatrix, error) {
	if len(columns) == 0 {
		return nil, errors.EmptyInput("distance")
	}
	n := len(columns[0])
	for _, col := range columns {
		if len(col) != n {
			return nil, errors.DimensionMismatch("columns must be equal length")
		}
	}
	if n == 0 {
		return nil, errors.EmptyInput("distance")
	}

	dist, err := metricFunc(metric)
	if err != nil {
		return nil, err
	}

	// Transpose into per-case vectors.
	cases := make([][]float64, n)
	for row := 0; row < n; row++ {
		cases[row] = make([]float64, len(columns))
		for v, col := range columns {
			cases[row][v] = col[row]
		}
	}

	result := &stats.DistanceMatrix{
		Cases:  n,
		Values: make([][]float64, n),
		Metric: metric,
	}
	for i := range result.Values {
		result.Values[i] = make([]float64, n)
	}

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			for j := i + 1; j < n; j++ {
				d := dist(cases[i], cases[j])
				result.Values[i][j] = d
				result.Values[j][i] = d
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func metricFunc(metric stats.DistanceMetric) (func(a, b []float64) float64, error) {
	switch metric {
	case stats.MetricEuclidean:
		return func(a, b []float64) float64 {
			return math.Sqrt(squaredEuclidean(a, b))
		}, nil
	case stats.MetricSquaredEuclidean:
		return squaredEuclidean, nil
	case stats.MetricManhattan:
		return func(a, b []float64) float64 {
			sum := 0.0
			for i := range a {
				sum += math.Abs(a[i] - b[i])
			}
			return sum
		}, nil
	case stats.MetricChebyshev:
		return func(a, b []float64) float64 {
			max := 0.0
			for i := range a {
				if d := math.Abs(a[i] - b[i]); d > max {
					max = d
				}
			}
			return max
		}, nil
	default:
		return nil, errors.InvalidInput("unknown distance metric")
	}
}

func squaredEuclidean(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}
