package stats

import (
	"fmt"

	"gridstat/domain/core"
)

// AnalysisKind discriminates the closed set of analysis result payloads
type AnalysisKind string

const (
	KindDescriptive        AnalysisKind = "descriptive"
	KindCorrelation        AnalysisKind = "correlation"
	KindPartialCorrelation AnalysisKind = "partial_correlation"
	KindDistance           AnalysisKind = "distance"
	KindRegression         AnalysisKind = "regression"
)

// AnalysisResult is the envelope handed to output-collection layers. It is a
// closed variant over the result values: exactly one payload field matching
// Kind is set, and consumers switch on Kind rather than inspecting types.
type AnalysisResult struct {
	ID   core.AnalysisID `json:"id"`
	Kind AnalysisKind    `json:"kind"`

	Descriptive *DescriptiveStatistics  `json:"descriptive,omitempty"`
	Correlation *CorrelationResult      `json:"correlation,omitempty"`
	Distance    *DistanceMatrix         `json:"distance,omitempty"`
	Regression  *LinearRegressionResult `json:"regression,omitempty"`

	CreatedAt core.Timestamp `json:"created_at"`
}

// NewDescriptiveResult wraps descriptive statistics in an analysis envelope
func NewDescriptiveResult(d *DescriptiveStatistics) *AnalysisResult {
	return &AnalysisResult{
		ID:          core.AnalysisID(core.NewID()),
		Kind:        KindDescriptive,
		Descriptive: d,
		CreatedAt:   core.Now(),
	}
}

// NewCorrelationResultEnvelope wraps a correlation matrix; partial results
// (non-nil Controls) are tagged with their own kind.
func NewCorrelationResultEnvelope(c *CorrelationResult) *AnalysisResult {
	kind := KindCorrelation
	if c.Controls != nil {
		kind = KindPartialCorrelation
	}
	return &AnalysisResult{
		ID:          core.AnalysisID(core.NewID()),
		Kind:        kind,
		Correlation: c,
		CreatedAt:   core.Now(),
	}
}

// NewDistanceResult wraps a distance matrix in an analysis envelope
func NewDistanceResult(m *DistanceMatrix) *AnalysisResult {
	return &AnalysisResult{
		ID:        core.AnalysisID(core.NewID()),
		Kind:      KindDistance,
		Distance:  m,
		CreatedAt: core.Now(),
	}
}

// NewRegressionResult wraps a regression fit in an analysis envelope
func NewRegressionResult(r *LinearRegressionResult) *AnalysisResult {
	return &AnalysisResult{
		ID:         core.AnalysisID(core.NewID()),
		Kind:       KindRegression,
		Regression: r,
		CreatedAt:  core.Now(),
	}
}

// Validate checks that exactly one payload is set and that it matches Kind
func (r *AnalysisResult) Validate() error {
	set := 0
	if r.Descriptive != nil {
		set++
		if r.Kind != KindDescriptive {
			return fmt.Errorf("descriptive payload under kind %q", r.Kind)
		}
	}
	if r.Correlation != nil {
		set++
		if r.Kind != KindCorrelation && r.Kind != KindPartialCorrelation {
			return fmt.Errorf("correlation payload under kind %q", r.Kind)
		}
		if r.Kind == KindPartialCorrelation && r.Correlation.Controls == nil {
			return fmt.Errorf("partial correlation result missing controls")
		}
	}
	if r.Distance != nil {
		set++
		if r.Kind != KindDistance {
			return fmt.Errorf("distance payload under kind %q", r.Kind)
		}
	}
	if r.Regression != nil {
		set++
		if r.Kind != KindRegression {
			return fmt.Errorf("regression payload under kind %q", r.Kind)
		}
	}
	if set != 1 {
		return fmt.Errorf("analysis result must carry exactly one payload, got %d", set)
	}
	return nil
}
