// Package engine is the stateless facade over the statistical core. It
// resolves named variables against a table, applies the caller-level
// missing-data handling, dispatches to the computation engines and wraps
// their values in analysis envelopes.
package engine

import (
	"math"

	"gridstat/adapters/stats/correlation"
	"gridstat/adapters/stats/distance"
	"gridstat/adapters/stats/moments"
	"gridstat/adapters/stats/regression"
	"gridstat/domain/core"
	"gridstat/domain/dataset"
	"gridstat/domain/stats"
	"gridstat/internal/errors"
	"gridstat/ports"
)

// StatsEngine implements ports.StatsPort. It has no fields: every call is a
// pure function of its inputs and concurrent calls never interact.
type StatsEngine struct{}

// NewStatsEngine creates the engine facade
func NewStatsEngine() *StatsEngine {
	return &StatsEngine{}
}

var _ ports.StatsPort = (*StatsEngine)(nil)

// Describe summarizes one variable after dropping its missing cells
func (e *StatsEngine) Describe(table *dataset.Table, variable core.VariableKey) (*stats.AnalysisResult, error) {
	sample, err := e.completeColumn(table, variable)
	if err != nil {
		return nil, err
	}
	d, err := moments.Describe(sample)
	if err != nil {
		return nil, err
	}
	return stats.NewDescriptiveResult(d), nil
}

// Percentiles evaluates one variable at explicit probabilities
func (e *StatsEngine) Percentiles(table *dataset.Table, variable core.VariableKey, probs []float64) ([]float64, error) {
	sample, err := e.completeColumn(table, variable)
	if err != nil {
		return nil, err
	}
	return moments.Percentiles(sample, probs)
}

// Frequencies bins one variable into equal-width intervals
func (e *StatsEngine) Frequencies(table *dataset.Table, variable core.VariableKey, bins int) ([]stats.FrequencyBin, error) {
	sample, err := e.completeColumn(table, variable)
	if err != nil {
		return nil, err
	}
	return moments.Frequencies(sample, bins)
}

// Correlate builds the correlation matrix over the selected variables
func (e *StatsEngine) Correlate(table *dataset.Table, variables []core.VariableKey, method stats.Method, tail stats.TailType, policy stats.MissingPolicy) (*stats.AnalysisResult, error) {
	// The pairwise engine does its own per-pair filtering and needs the raw
	// columns with their missing markers intact.
	columns, err := table.Select(variables)
	if err != nil {
		return nil, errors.DimensionMismatch("correlation input: " + err.Error())
	}
	result, err := correlation.NewEngine().Matrix(variables, columns, method, tail, policy)
	if err != nil {
		return nil, err
	}
	return stats.NewCorrelationResultEnvelope(result), nil
}

// PartialCorrelate computes partial correlations controlling for the controls
func (e *StatsEngine) PartialCorrelate(table *dataset.Table, variables, controls []core.VariableKey) (*stats.AnalysisResult, error) {
	all := make([]core.VariableKey, 0, len(variables)+len(controls))
	all = append(all, variables...)
	all = append(all, controls...)
	columns, err := table.Select(all)
	if err != nil {
		return nil, errors.DimensionMismatch("partial correlation input: " + err.Error())
	}
	result, err := correlation.NewEngine().Partial(variables, controls, columns)
	if err != nil {
		return nil, err
	}
	return stats.NewCorrelationResultEnvelope(result), nil
}

// Distances computes the case-distance matrix over listwise-complete rows
func (e *StatsEngine) Distances(table *dataset.Table, variables []core.VariableKey, metric stats.DistanceMetric) (*stats.AnalysisResult, error) {
	columns, err := table.SelectComplete(variables)
	if err != nil {
		return nil, errors.DimensionMismatch("distance input: " + err.Error())
	}
	result, err := distance.NewEngine().Matrix(columns, metric)
	if err != nil {
		return nil, err
	}
	return stats.NewDistanceResult(result), nil
}

// Regress fits OLS of the dependent on the independents
func (e *StatsEngine) Regress(table *dataset.Table, dependent core.VariableKey, independents []core.VariableKey) (*stats.AnalysisResult, error) {
	all := make([]core.VariableKey, 0, len(independents)+1)
	all = append(all, dependent)
	all = append(all, independents...)
	columns, err := table.SelectComplete(all)
	if err != nil {
		return nil, errors.DimensionMismatch("regression input: " + err.Error())
	}
	result, err := regression.NewEngine().Fit(dependent, columns[0], independents, columns[1:])
	if err != nil {
		return nil, err
	}
	return stats.NewRegressionResult(result), nil
}

// completeColumn resolves one variable and drops its missing cells
func (e *StatsEngine) completeColumn(table *dataset.Table, variable core.VariableKey) ([]float64, error) {
	values, ok := table.Column(variable)
	if !ok {
		return nil, errors.DimensionMismatch("variable " + variable.String() + " not found")
	}
	sample := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			sample = append(sample, v)
		}
	}
	return sample, nil
}
