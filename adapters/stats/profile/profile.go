// Package profile summarizes table columns ahead of analysis: summary
// statistics, missing rate, cardinality and degeneracy flags. Profiles guide
// the caller's choice of variables and missing-data policy; they are not part
// of the numerical core.
package profile

import (
	"math"

	"github.com/montanaflynn/stats"

	"gridstat/domain/core"
	"gridstat/domain/dataset"
	"gridstat/internal/errors"
)

// ColumnProfile describes one table column
type ColumnProfile struct {
	Variable        core.VariableKey `json:"variable"`
	SampleSize      int              `json:"sample_size"`
	ValidCount      int              `json:"valid_count"`
	MissingRate     float64          `json:"missing_rate"`
	Mean            float64          `json:"mean"`
	StdDev          float64          `json:"std_dev"`
	Min             float64          `json:"min"`
	Max             float64          `json:"max"`
	Median          float64          `json:"median"`
	Q25             float64          `json:"q25"`
	Q75             float64          `json:"q75"`
	Cardinality     int              `json:"cardinality"`
	ZeroVariance    bool             `json:"zero_variance"`
	HighCardinality bool             `json:"high_cardinality"`
}

// Profiler computes column profiles. Stateless.
type Profiler struct{}

// NewProfiler creates a profiler
func NewProfiler() *Profiler {
	return &Profiler{}
}

// Table profiles every column of a table
func (p *Profiler) Table(t *dataset.Table) ([]ColumnProfile, error) {
	profiles := make([]ColumnProfile, 0, t.ColumnCount())
	for _, col := range t.Columns {
		profile, err := p.Column(col.Key, col.Values)
		if err != nil {
			return nil, errors.Wrapf(err, "profiling column %s", col.Key)
		}
		profiles = append(profiles, *profile)
	}
	return profiles, nil
}

// Column profiles a single column, ignoring missing cells
func (p *Profiler) Column(key core.VariableKey, values []float64) (*ColumnProfile, error) {
	if len(values) == 0 {
		return nil, errors.EmptyInput("column profile")
	}

	valid := make([]float64, 0, len(values))
	distinct := make(map[float64]struct{})
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		valid = append(valid, v)
		distinct[v] = struct{}{}
	}
	profile := &ColumnProfile{
		Variable:    key,
		SampleSize:  len(values),
		ValidCount:  len(valid),
		MissingRate: 1.0 - float64(len(valid))/float64(len(values)),
		Cardinality: len(distinct),
	}
	if len(valid) == 0 {
		profile.ZeroVariance = true
		return profile, nil
	}

	mean, _ := stats.Mean(valid)
	stdDev, _ := stats.StandardDeviation(valid)
	min, _ := stats.Min(valid)
	max, _ := stats.Max(valid)
	median, _ := stats.Median(valid)
	q25, _ := stats.Percentile(valid, 25)
	q75, _ := stats.Percentile(valid, 75)

	profile.Mean = mean
	profile.StdDev = stdDev
	profile.Min = min
	profile.Max = max
	profile.Median = median
	profile.Q25 = q25
	profile.Q75 = q75
	profile.ZeroVariance = stdDev*stdDev < 1e-10
	profile.HighCardinality = float64(len(distinct))/float64(len(valid)) > 0.9
	return profile, nil
}
