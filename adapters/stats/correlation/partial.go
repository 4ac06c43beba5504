package correlation

import (
	"math"

	"gridstat/adapters/stats/linalg"
	"gridstat/domain/core"
	"gridstat/domain/dataset"
	"gridstat/domain/stats"
	"gridstat/internal/errors"
)

// fixed two-tailed alpha=0.05 approximation used by the partial test
const partialCritical = 1.96

// Partial computes partial correlations among variables while controlling for
// the control set. Columns carry variables first, then controls, pre-aligned
// per row. The full Pearson matrix over all of them is inverted; the partial
// coefficient between variables i and j is -P[i][j]/sqrt(P[i][i]*P[j][j]) on
// the precision matrix P.
func (e *Engine) Partial(variables, controls []core.VariableKey, columns [][]float64) (*stats.CorrelationResult, error) {
	v := len(variables)
	c := len(controls)
	if v < 2 {
		return nil, errors.InvalidInput("partial correlation needs at least two variables")
	}
	if len(columns) != v+c {
		return nil, errors.DimensionMismatch("one column per variable and control is required")
	}

	all := make([]core.VariableKey, 0, v+c)
	all = append(all, variables...)
	all = append(all, controls...)

	complete := dataset.CompleteRows(columns)
	n := 0
	if len(complete) > 0 {
		n = len(complete[0])
	}
	if n == 0 {
		return nil, errors.EmptyInput("partial correlation after listwise deletion")
	}

	full, err := e.listwiseMatrix(all, complete, stats.MethodPearson, stats.TailTwo)
	if err != nil {
		return nil, err
	}

	precision, err := linalg.Invert(full.Coefficients)
	if err != nil {
		return nil, errors.Wrap(err, "correlation matrix is not invertible")
	}

	ctrl := make([]core.VariableKey, c)
	copy(ctrl, controls)
	result := newResultShell(variables, stats.MethodPearson, stats.TailTwo, n)
	result.Controls = ctrl

	df := n - 2 - c
	for i := 0; i < v; i++ {
		for j := i + 1; j < v; j++ {
			r := -precision[i][j] / math.Sqrt(precision[i][i]*precision[j][j])
			// Degenerate pairs keep the non-significant default.
			sig := false
			if df > 0 && math.Abs(r) < 1 {
				t := r * math.Sqrt(float64(df)/(1-r*r))
				sig = math.Abs(t) > partialCritical
			}
			result.Coefficients[i][j] = r
			result.Coefficients[j][i] = r
			result.Significant[i][j] = sig
			result.Significant[j][i] = sig
		}
	}
	return result, nil
}
