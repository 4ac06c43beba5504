// Package regression fits ordinary least squares with full inferential
// statistics: coefficient standard errors, t statistics, normal-approximation
// p-values and confidence intervals, standardized betas, residuals and fit
// summary scalars.
package regression

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"gridstat/adapters/stats/linalg"
	"gridstat/adapters/stats/moments"
	"gridstat/domain/core"
	"gridstat/domain/stats"
	"gridstat/internal/errors"
)

// fixed 95% normal-approximation critical value for confidence intervals
const ciCritical = 1.96

// Engine fits OLS models. It holds no state; concurrent calls are safe.
type Engine struct{}

// NewEngine creates a regression engine
func NewEngine() *Engine {
	return &Engine{}
}

// Fit regresses y on the predictor columns, intercept first. All inputs must
// be pre-aligned and free of missing values. The fit fails cleanly on a length
// mismatch, on n <= k+1 cases, or on collinear predictors; no partial result
// is ever returned.
func (e *Engine) Fit(dependent core.VariableKey, y []float64, independents []core.VariableKey, predictors [][]float64) (*stats.LinearRegressionResult, error) {
	n := len(y)
	k := len(predictors)
	if n == 0 {
		return nil, errors.EmptyInput("regression")
	}
	if k == 0 || len(independents) != k {
		return nil, errors.DimensionMismatch("one key per predictor column is required")
	}
	for _, col := range predictors {
		if len(col) != n {
			return nil, errors.DimensionMismatch("predictor length does not match dependent")
		}
	}
	p := k + 1
	if n <= p {
		return nil, errors.InsufficientDF("regression needs more cases than parameters")
	}

	// The solver factors its input in place, so it gets a working copy and the
	// pristine design matrix stays behind for predictions and X'X.
	design := buildDesign(y, predictors)
	working := make([][]float64, n)
	for i := range design {
		working[i] = make([]float64, p)
		copy(working[i], design[i])
	}

	coeffs, err := linalg.SolveLeastSquares(working, y)
	if err != nil {
		return nil, err
	}

	predicted, err := linalg.MatVec(design, coeffs)
	if err != nil {
		return nil, err
	}
	residuals := make([]float64, n)
	for i := range y {
		residuals[i] = y[i] - predicted[i]
	}

	meanY := moments.Mean(y)
	ssTot := 0.0
	ssRes := 0.0
	for i := range y {
		d := y[i] - meanY
		ssTot += d * d
		ssRes += residuals[i] * residuals[i]
	}
	ssReg := ssTot - ssRes

	rSquared := 0.0
	if ssTot > 0 {
		rSquared = ssReg / ssTot
	}
	dfRes := float64(n - p)
	adjusted := 1.0 - (1.0-rSquared)*float64(n-1)/dfRes
	mse := ssRes / dfRes

	// Coefficient covariance is MSE * (X'X)^-1; a singular cross-product means
	// collinear predictors and fails the whole fit.
	xtxInv, err := linalg.Invert(linalg.CrossProduct(design))
	if err != nil {
		return nil, err
	}

	stdErrors := make([]float64, p)
	tStats := make([]float64, p)
	pValues := make([]float64, p)
	intervals := make([][2]float64, p)
	for i := 0; i < p; i++ {
		se := math.Sqrt(mse * xtxInv[i][i])
		stdErrors[i] = se
		t := 0.0
		if se > 0 {
			t = coeffs[i] / se
		} else if coeffs[i] != 0 {
			t = math.Copysign(math.Inf(1), coeffs[i])
		}
		tStats[i] = t
		pValues[i] = 2.0 * (1.0 - distuv.UnitNormal.CDF(math.Abs(t)))
		intervals[i] = [2]float64{coeffs[i] - ciCritical*se, coeffs[i] + ciCritical*se}
	}

	beta := standardizedBetas(coeffs, y, predictors)

	keys := make([]core.VariableKey, k)
	copy(keys, independents)
	result := &stats.LinearRegressionResult{
		Dependent:           dependent,
		Independents:        keys,
		Coefficients:        coeffs,
		StdErrors:           stdErrors,
		TStats:              tStats,
		PValues:             pValues,
		ConfidenceIntervals: intervals,
		Beta:                beta,
		Predicted:           predicted,
		Residuals:           residuals,
		R:                   math.Sqrt(math.Max(rSquared, 0)),
		RSquared:            rSquared,
		AdjustedRSquared:    adjusted,
		StdErrorOfEstimate:  math.Sqrt(mse),
		SampleSize:          n,
	}
	return result, nil
}

// buildDesign assembles the intercept-first design matrix
func buildDesign(y []float64, predictors [][]float64) [][]float64 {
	n := len(y)
	p := len(predictors) + 1
	design := make([][]float64, n)
	for i := 0; i < n; i++ {
		design[i] = make([]float64, p)
		design[i][0] = 1.0
		for j, col := range predictors {
			design[i][j+1] = col[i]
		}
	}
	return design
}

// standardizedBetas rescales each slope by SD(x)/SD(y) using n-1 sample
// standard deviations; the intercept has no beta and stays 0.
func standardizedBetas(coeffs []float64, y []float64, predictors [][]float64) []float64 {
	beta := make([]float64, len(coeffs))
	sdY := moments.SampleStdDev(y)
	if sdY == 0 {
		return beta
	}
	for i, col := range predictors {
		beta[i+1] = coeffs[i+1] * moments.SampleStdDev(col) / sdY
	}
	return beta
}
