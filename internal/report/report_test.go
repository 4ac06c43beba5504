package report

import (
	"strings"
	"testing"

	"gridstat/domain/core"
	"gridstat/domain/stats"
	"gridstat/internal/errors"
)

func TestMarkdown_Descriptive(t *testing.T) {
	mode := 4.0
	result := stats.NewDescriptiveResult(&stats.DescriptiveStatistics{
		Count: 5, Mean: 4, Median: 4, Mode: &mode,
		Q1: 3, Q2: 4, Q3: 5, StdDev: 1.2, Variance: 1.44,
	})

	md, err := Markdown(result)
	if err != nil {
		t.Fatalf("Markdown failed: %v", err)
	}
	for _, want := range []string{"# Descriptive Statistics", "| N | 5 |", "| Mode | 4.0000 |"} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestMarkdown_CorrelationStarsSignificantCells(t *testing.T) {
	result := stats.NewCorrelationResultEnvelope(&stats.CorrelationResult{
		Variables:    []core.VariableKey{"a", "b"},
		Coefficients: [][]float64{{1, 0.82}, {0.82, 1}},
		Significant:  [][]bool{{true, true}, {true, true}},
		Method:       stats.MethodPearson,
		Tail:         stats.TailTwo,
		SampleSize:   30,
	})

	md, err := Markdown(result)
	if err != nil {
		t.Fatalf("Markdown failed: %v", err)
	}
	if !strings.Contains(md, "0.820*") {
		t.Error("significant off-diagonal cell should be starred")
	}
	// The diagonal is trivially significant and never starred.
	if strings.Contains(md, "1.000*") {
		t.Error("diagonal cells must not be starred")
	}
}

func TestMarkdown_PartialNamesControls(t *testing.T) {
	result := stats.NewCorrelationResultEnvelope(&stats.CorrelationResult{
		Variables:    []core.VariableKey{"a", "b"},
		Coefficients: [][]float64{{1, 0.2}, {0.2, 1}},
		Significant:  [][]bool{{true, false}, {false, true}},
		Method:       stats.MethodPearson,
		Controls:     []core.VariableKey{"z", "w"},
		Tail:         stats.TailTwo,
		SampleSize:   40,
	})

	md, err := Markdown(result)
	if err != nil {
		t.Fatalf("Markdown failed: %v", err)
	}
	if !strings.Contains(md, "Controlling for: z, w") {
		t.Error("partial report must name its control variables")
	}
}

func TestMarkdown_Regression(t *testing.T) {
	result := stats.NewRegressionResult(&stats.LinearRegressionResult{
		Dependent:           "y",
		Independents:        []core.VariableKey{"x"},
		Coefficients:        []float64{3, 2},
		StdErrors:           []float64{0.1, 0.05},
		TStats:              []float64{30, 40},
		PValues:             []float64{0, 0},
		ConfidenceIntervals: [][2]float64{{2.8, 3.2}, {1.9, 2.1}},
		Beta:                []float64{0, 0.99},
		Predicted:           []float64{5, 7},
		Residuals:           []float64{0, 0},
		RSquared:            0.98,
		SampleSize:          2,
	})

	md, err := Markdown(result)
	if err != nil {
		t.Fatalf("Markdown failed: %v", err)
	}
	for _, want := range []string{"y ~ x", "(Intercept)", "[1.9000, 2.1000]"} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestHTML_RendersTables(t *testing.T) {
	result := stats.NewDescriptiveResult(&stats.DescriptiveStatistics{Count: 3, Mean: 1})

	out, err := HTML(result)
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	if !strings.Contains(out, "<table>") || !strings.Contains(out, "<h1") {
		t.Errorf("HTML output missing table or heading: %s", out)
	}
}

func TestMarkdown_RejectsMalformedEnvelope(t *testing.T) {
	_, err := Markdown(&stats.AnalysisResult{Kind: stats.KindDescriptive})
	if !errors.HasCode(err, errors.CodeInvalidInput) {
		t.Errorf("code = %s, want %s", errors.GetCode(err), errors.CodeInvalidInput)
	}
}
