package stats

import (
	"fmt"
	"math"

	"gridstat/domain/core"
)

// ============================================================================
// STABLE PRIMITIVES (Canonical, never change)
// ============================================================================

// Method defines the correlation method used
type Method string

const (
	MethodPearson  Method = "pearson"  // Pearson product-moment correlation
	MethodSpearman Method = "spearman" // Spearman rank correlation (Pearson on midranks)
)

// TailType defines the tail of the significance test
type TailType string

const (
	TailOne TailType = "one"
	TailTwo TailType = "two"
)

// DistanceMetric defines the case-distance metric
type DistanceMetric string

const (
	MetricEuclidean        DistanceMetric = "euclidean"
	MetricSquaredEuclidean DistanceMetric = "squared_euclidean"
	MetricManhattan        DistanceMetric = "manhattan"
	MetricChebyshev        DistanceMetric = "chebyshev"
)

// MissingPolicy defines how rows with missing values are excluded
type MissingPolicy string

const (
	MissingListwise MissingPolicy = "listwise" // drop a row if any selected variable is missing
	MissingPairwise MissingPolicy = "pairwise" // per pair, keep rows where both members are present
)

// ============================================================================
// RESULT VALUES (immutable, produced once per analysis invocation)
// ============================================================================

// DescriptiveStatistics summarizes a single numeric sample.
// INVARIANTS:
// - Count > 0
// - Variance >= 0 and StdDev*StdDev == Variance within floating tolerance
// - Q1 <= Q2 <= Q3
type DescriptiveStatistics struct {
	Count    int      `json:"count"`
	Mean     float64  `json:"mean"`
	Median   float64  `json:"median"`
	Mode     *float64 `json:"mode,omitempty"` // nil when every value is unique
	Variance float64  `json:"variance"`       // sample variance, n-1 denominator
	StdDev   float64  `json:"std_dev"`
	Range    float64  `json:"range"`
	Min      float64  `json:"min"`
	Max      float64  `json:"max"`
	Skewness float64  `json:"skewness"` // population (n) moments
	Kurtosis float64  `json:"kurtosis"` // excess kurtosis, population (n) moments
	Q1       float64  `json:"q1"`
	Q2       float64  `json:"q2"`
	Q3       float64  `json:"q3"`
	IQR      float64  `json:"iqr"`
}

// FrequencyBin is one equal-width bin of a frequency table
type FrequencyBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// CorrelationResult holds a full correlation matrix with per-pair significance.
// INVARIANTS:
// - Coefficients and Significant are square with side len(Variables)
// - Coefficients[i][j] == Coefficients[j][i], diagonal exactly 1.0 and flagged significant
// - Controls is non-nil only for partial correlation
type CorrelationResult struct {
	Variables    []core.VariableKey `json:"variables"`
	Coefficients [][]float64        `json:"coefficients"`
	Significant  [][]bool           `json:"significant"`
	Method       Method             `json:"method"`
	Controls     []core.VariableKey `json:"controls,omitempty"`
	Tail         TailType           `json:"tail"`
	SampleSize   int                `json:"sample_size"`
	// PairSampleSizes carries per-pair effective sample sizes under pairwise
	// deletion; nil for listwise results where SampleSize covers every pair.
	PairSampleSizes [][]int `json:"pair_sample_sizes,omitempty"`
}

// DistanceMatrix holds pairwise case distances.
// INVARIANTS: square over Cases, symmetric, zero diagonal.
type DistanceMatrix struct {
	Cases  int            `json:"cases"`
	Values [][]float64    `json:"values"`
	Metric DistanceMetric `json:"metric"`
}

// LinearRegressionResult holds an OLS fit with full inferential statistics.
// INVARIANT: len(Coefficients) == len(StdErrors) == len(TStats) == len(PValues)
// == len(Independents)+1, intercept first.
type LinearRegressionResult struct {
	Dependent    core.VariableKey   `json:"dependent"`
	Independents []core.VariableKey `json:"independents"`

	Coefficients        []float64    `json:"coefficients"`
	StdErrors           []float64    `json:"std_errors"`
	TStats              []float64    `json:"t_stats"`
	PValues             []float64    `json:"p_values"`
	ConfidenceIntervals [][2]float64 `json:"confidence_intervals"` // 95%, normal approximation
	Beta                []float64    `json:"beta"`                 // standardized coefficients, Beta[0] == 0

	Predicted []float64 `json:"predicted"`
	Residuals []float64 `json:"residuals"`

	R                  float64 `json:"r"`
	RSquared           float64 `json:"r_squared"`
	AdjustedRSquared   float64 `json:"adjusted_r_squared"`
	StdErrorOfEstimate float64 `json:"std_error_of_estimate"`

	SampleSize int `json:"sample_size"`
}

// ============================================================================
// INVARIANT CHECKS
// ============================================================================

// Validate checks the descriptive-statistics invariants
func (d *DescriptiveStatistics) Validate() error {
	if d.Count <= 0 {
		return fmt.Errorf("Count must be > 0, got %d", d.Count)
	}
	if d.Variance < 0 {
		return fmt.Errorf("Variance must be >= 0, got %f", d.Variance)
	}
	if d.Q1 > d.Q2 || d.Q2 > d.Q3 {
		return fmt.Errorf("quartiles out of order: q1=%f q2=%f q3=%f", d.Q1, d.Q2, d.Q3)
	}
	return nil
}

// Validate checks the correlation-matrix invariants
func (c *CorrelationResult) Validate() error {
	k := len(c.Variables)
	if k == 0 {
		return fmt.Errorf("correlation result has no variables")
	}
	if len(c.Coefficients) != k || len(c.Significant) != k {
		return fmt.Errorf("matrix side %d does not match %d variables", len(c.Coefficients), k)
	}
	for i := 0; i < k; i++ {
		if len(c.Coefficients[i]) != k || len(c.Significant[i]) != k {
			return fmt.Errorf("row %d is not square", i)
		}
		if c.Coefficients[i][i] != 1.0 {
			return fmt.Errorf("diagonal [%d][%d] must be 1.0, got %f", i, i, c.Coefficients[i][i])
		}
		if !c.Significant[i][i] {
			return fmt.Errorf("diagonal [%d][%d] must be flagged significant", i, i)
		}
		for j := 0; j < i; j++ {
			if c.Coefficients[i][j] != c.Coefficients[j][i] {
				return fmt.Errorf("matrix not symmetric at [%d][%d]", i, j)
			}
		}
	}
	return nil
}

// Validate checks the distance-matrix invariants
func (m *DistanceMatrix) Validate() error {
	if len(m.Values) != m.Cases {
		return fmt.Errorf("matrix side %d does not match %d cases", len(m.Values), m.Cases)
	}
	for i := range m.Values {
		if len(m.Values[i]) != m.Cases {
			return fmt.Errorf("row %d is not square", i)
		}
		if m.Values[i][i] != 0 {
			return fmt.Errorf("diagonal [%d][%d] must be 0, got %f", i, i, m.Values[i][i])
		}
		for j := 0; j < i; j++ {
			if m.Values[i][j] != m.Values[j][i] {
				return fmt.Errorf("matrix not symmetric at [%d][%d]", i, j)
			}
		}
	}
	return nil
}

// Validate checks the regression-result invariants
func (r *LinearRegressionResult) Validate() error {
	p := len(r.Independents) + 1
	if len(r.Coefficients) != p || len(r.StdErrors) != p || len(r.TStats) != p || len(r.PValues) != p {
		return fmt.Errorf("coefficient vectors must all have length %d", p)
	}
	if len(r.ConfidenceIntervals) != p || len(r.Beta) != p {
		return fmt.Errorf("interval and beta vectors must have length %d", p)
	}
	if len(r.Predicted) != r.SampleSize || len(r.Residuals) != r.SampleSize {
		return fmt.Errorf("per-case vectors must have length %d", r.SampleSize)
	}
	for i, pv := range r.PValues {
		if math.IsNaN(pv) || pv < 0 || pv > 1 {
			return fmt.Errorf("PValues[%d] must be in [0,1], got %f", i, pv)
		}
	}
	return nil
}
