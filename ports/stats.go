package ports

import (
	"gridstat/domain/core"
	"gridstat/domain/dataset"
	"gridstat/domain/stats"
)

// StatsPort is the single call contract between the statistical core and the
// presentation layers. Every operation is a pure function of the table data
// it is given: it returns one immutable analysis envelope or an explicit
// failure, never a partially populated result, and retains no caller state.
type StatsPort interface {
	// Describe summarizes one variable after dropping its missing cells.
	Describe(table *dataset.Table, variable core.VariableKey) (*stats.AnalysisResult, error)

	// Percentiles evaluates one variable at explicit probabilities in [0,1].
	Percentiles(table *dataset.Table, variable core.VariableKey, probs []float64) ([]float64, error)

	// Frequencies bins one variable into equal-width intervals.
	Frequencies(table *dataset.Table, variable core.VariableKey, bins int) ([]stats.FrequencyBin, error)

	// Correlate builds the correlation matrix over the selected variables.
	// Listwise deletion happens before the matrix pass; pairwise deletion is
	// applied inside the engine per pair.
	Correlate(table *dataset.Table, variables []core.VariableKey, method stats.Method, tail stats.TailType, policy stats.MissingPolicy) (*stats.AnalysisResult, error)

	// PartialCorrelate computes partial correlations among variables
	// controlling for the control set (Pearson, listwise, two-tailed).
	PartialCorrelate(table *dataset.Table, variables, controls []core.VariableKey) (*stats.AnalysisResult, error)

	// Distances computes the case-distance matrix over listwise-complete rows.
	Distances(table *dataset.Table, variables []core.VariableKey, metric stats.DistanceMetric) (*stats.AnalysisResult, error)

	// Regress fits OLS of the dependent on the independents over
	// listwise-complete rows.
	Regress(table *dataset.Table, dependent core.VariableKey, independents []core.VariableKey) (*stats.AnalysisResult, error)
}
