// Package correlation builds full Pearson and Spearman correlation matrices
// with per-pair significance flags, under listwise or pairwise missing-data
// strategies, plus partial correlations through the precision matrix.
package correlation

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"gridstat/adapters/stats/moments"
	"gridstat/domain/core"
	"gridstat/domain/dataset"
	"gridstat/domain/stats"
	"gridstat/internal/errors"
)

// Engine computes correlation matrices. It holds no state; concurrent calls
// are safe.
type Engine struct{}

// NewEngine creates a correlation engine
func NewEngine() *Engine {
	return &Engine{}
}

// Matrix computes a k x k correlation matrix over pre-aligned columns. Under
// the listwise policy, rows with any missing cell are dropped once before a
// single pass over all pairs; under pairwise, each pair keeps its own rows
// where both members are present and carries its own effective sample size.
func (e *Engine) Matrix(variables []core.VariableKey, columns [][]float64, method stats.Method, tail stats.TailType, policy stats.MissingPolicy) (*stats.CorrelationResult, error) {
	k := len(variables)
	if k == 0 || len(columns) != k {
		return nil, errors.DimensionMismatch("one column per variable is required")
	}
	rows := len(columns[0])
	for _, col := range columns {
		if len(col) != rows {
			return nil, errors.DimensionMismatch("columns must be equal length")
		}
	}
	if rows == 0 {
		return nil, errors.EmptyInput("correlation")
	}

	switch policy {
	case stats.MissingListwise:
		return e.listwiseMatrix(variables, columns, method, tail)
	case stats.MissingPairwise:
		return e.pairwiseMatrix(variables, columns, method, tail)
	default:
		return nil, errors.InvalidInput("unknown missing-data policy")
	}
}

func (e *Engine) listwiseMatrix(variables []core.VariableKey, columns [][]float64, method stats.Method, tail stats.TailType) (*stats.CorrelationResult, error) {
	complete := dataset.CompleteRows(columns)
	n := 0
	if len(complete) > 0 {
		n = len(complete[0])
	}
	if n == 0 {
		return nil, errors.EmptyInput("correlation after listwise deletion")
	}
	if method == stats.MethodSpearman {
		for i, col := range complete {
			complete[i] = moments.Midranks(col)
		}
	}

	k := len(variables)
	result := newResultShell(variables, method, tail, n)
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			i, j := i, j
			// Each pair reads its own two columns and writes only its own
			// mirrored cells, so the pairs are independent.
			g.Go(func() error {
				r := pearson(complete[i], complete[j])
				sig := Significant(r, n-2, tail)
				result.Coefficients[i][j] = r
				result.Coefficients[j][i] = r
				result.Significant[i][j] = sig
				result.Significant[j][i] = sig
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) pairwiseMatrix(variables []core.VariableKey, columns [][]float64, method stats.Method, tail stats.TailType) (*stats.CorrelationResult, error) {
	k := len(variables)
	rows := len(columns[0])
	result := newResultShell(variables, method, tail, rows)
	result.PairSampleSizes = make([][]int, k)
	for i := range result.PairSampleSizes {
		result.PairSampleSizes[i] = make([]int, k)
		result.PairSampleSizes[i][i] = rows
	}

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			i, j := i, j
			g.Go(func() error {
				x, y := dataset.CompletePairRows(columns[i], columns[j])
				n := len(x)
				if n == 0 {
					return errors.EmptyInput("correlation pair after pairwise deletion")
				}
				if method == stats.MethodSpearman {
					// Ranks are recomputed on the pair-specific subset.
					x = moments.Midranks(x)
					y = moments.Midranks(y)
				}
				r := pearson(x, y)
				sig := Significant(r, n-2, tail)
				result.Coefficients[i][j] = r
				result.Coefficients[j][i] = r
				result.Significant[i][j] = sig
				result.Significant[j][i] = sig
				result.PairSampleSizes[i][j] = n
				result.PairSampleSizes[j][i] = n
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func newResultShell(variables []core.VariableKey, method stats.Method, tail stats.TailType, n int) *stats.CorrelationResult {
	k := len(variables)
	vars := make([]core.VariableKey, k)
	copy(vars, variables)
	result := &stats.CorrelationResult{
		Variables:    vars,
		Coefficients: make([][]float64, k),
		Significant:  make([][]bool, k),
		Method:       method,
		Tail:         tail,
		SampleSize:   n,
	}
	for i := 0; i < k; i++ {
		result.Coefficients[i] = make([]float64, k)
		result.Significant[i] = make([]bool, k)
		result.Coefficients[i][i] = 1.0
		result.Significant[i][i] = true
	}
	return result
}

// pearson computes the product-moment correlation of two equal-length
// vectors. A zero-variance vector yields 0 rather than NaN.
func pearson(x, y []float64) float64 {
	n := len(x)
	meanX := moments.Mean(x)
	meanY := moments.Mean(y)

	var sumXY, sumXX, sumYY float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		dy := y[i] - meanY
		sumXY += dx * dy
		sumXX += dx * dx
		sumYY += dy * dy
	}
	denom := math.Sqrt(sumXX * sumYY)
	if denom == 0 {
		return 0
	}
	r := sumXY / denom
	// Clamp floating-point overshoot.
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}
