package engine

import (
	"math"
	"testing"

	"gridstat/domain/core"
	"gridstat/domain/dataset"
	"gridstat/domain/stats"
	"gridstat/internal/errors"
	"gridstat/internal/testkit"
)

// fixtureTable builds a small table with one missing cell per tracked column.
func fixtureTable(t *testing.T) *dataset.Table {
	t.Helper()
	table := dataset.NewTable("fixture")
	src := testkit.NewSource(23)

	x := testkit.Sequence(30)
	y := src.Linear(x, 2, 1, 0.2)
	z := src.Normal(30, 5, 2)

	if err := table.AddColumn("x", testkit.WithMissing(x, 10)); err != nil {
		t.Fatalf("AddColumn failed: %v", err)
	}
	if err := table.AddColumn("y", y); err != nil {
		t.Fatalf("AddColumn failed: %v", err)
	}
	if err := table.AddColumn("z", z); err != nil {
		t.Fatalf("AddColumn failed: %v", err)
	}
	return table
}

func TestDescribe_DropsMissingCells(t *testing.T) {
	table := fixtureTable(t)

	result, err := NewStatsEngine().Describe(table, "x")
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if result.Kind != stats.KindDescriptive {
		t.Errorf("kind = %s, want %s", result.Kind, stats.KindDescriptive)
	}
	if err := result.Validate(); err != nil {
		t.Errorf("envelope invalid: %v", err)
	}
	// 30 rows with every 10th missing leaves 27 valid cells.
	if result.Descriptive.Count != 27 {
		t.Errorf("count = %d, want 27", result.Descriptive.Count)
	}
}

func TestDescribe_UnknownVariable(t *testing.T) {
	table := fixtureTable(t)

	_, err := NewStatsEngine().Describe(table, "missing")
	if !errors.HasCode(err, errors.CodeDimensionMismatch) {
		t.Errorf("code = %s, want %s", errors.GetCode(err), errors.CodeDimensionMismatch)
	}
}

func TestPercentiles(t *testing.T) {
	table := dataset.NewTable("p")
	if err := table.AddColumn("v", testkit.Sequence(5)); err != nil {
		t.Fatalf("AddColumn failed: %v", err)
	}

	got, err := NewStatsEngine().Percentiles(table, "v", []float64{0, 0.5, 1})
	if err != nil {
		t.Fatalf("Percentiles failed: %v", err)
	}
	want := []float64{1, 3, 5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("percentile[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestFrequencies(t *testing.T) {
	table := dataset.NewTable("f")
	if err := table.AddColumn("v", []float64{1, 1, 2, 9, 10}); err != nil {
		t.Fatalf("AddColumn failed: %v", err)
	}

	bins, err := NewStatsEngine().Frequencies(table, "v", 2)
	if err != nil {
		t.Fatalf("Frequencies failed: %v", err)
	}
	if len(bins) != 2 {
		t.Fatalf("got %d bins, want 2", len(bins))
	}
	if bins[0].Count != 3 || bins[1].Count != 2 {
		t.Errorf("counts = %d/%d, want 3/2", bins[0].Count, bins[1].Count)
	}
}

func TestCorrelate_ListwiseEnvelope(t *testing.T) {
	table := fixtureTable(t)

	result, err := NewStatsEngine().Correlate(table,
		[]core.VariableKey{"x", "y"}, stats.MethodPearson, stats.TailTwo, stats.MissingListwise)
	if err != nil {
		t.Fatalf("Correlate failed: %v", err)
	}
	if result.Kind != stats.KindCorrelation {
		t.Errorf("kind = %s, want %s", result.Kind, stats.KindCorrelation)
	}
	if err := result.Validate(); err != nil {
		t.Errorf("envelope invalid: %v", err)
	}
	m := result.Correlation
	if m.SampleSize != 27 {
		t.Errorf("listwise n = %d, want 27", m.SampleSize)
	}
	if m.Coefficients[0][1] < 0.99 {
		t.Errorf("r(x,y) = %f, want ~1 for a near-perfect line", m.Coefficients[0][1])
	}
	if !m.Significant[0][1] {
		t.Error("near-perfect correlation at n=27 must be significant")
	}
}

func TestCorrelate_PairwiseSampleSizes(t *testing.T) {
	table := fixtureTable(t)

	result, err := NewStatsEngine().Correlate(table,
		[]core.VariableKey{"x", "y", "z"}, stats.MethodPearson, stats.TailTwo, stats.MissingPairwise)
	if err != nil {
		t.Fatalf("Correlate failed: %v", err)
	}
	m := result.Correlation
	if m.PairSampleSizes == nil {
		t.Fatal("pairwise result must carry per-pair sample sizes")
	}
	// x has 3 missing cells; y and z are complete.
	if m.PairSampleSizes[0][1] != 27 {
		t.Errorf("n(x,y) = %d, want 27", m.PairSampleSizes[0][1])
	}
	if m.PairSampleSizes[1][2] != 30 {
		t.Errorf("n(y,z) = %d, want 30", m.PairSampleSizes[1][2])
	}
}

func TestPartialCorrelate_Envelope(t *testing.T) {
	table := fixtureTable(t)

	result, err := NewStatsEngine().PartialCorrelate(table,
		[]core.VariableKey{"x", "y"}, []core.VariableKey{"z"})
	if err != nil {
		t.Fatalf("PartialCorrelate failed: %v", err)
	}
	if result.Kind != stats.KindPartialCorrelation {
		t.Errorf("kind = %s, want %s", result.Kind, stats.KindPartialCorrelation)
	}
	if err := result.Validate(); err != nil {
		t.Errorf("envelope invalid: %v", err)
	}
	if len(result.Correlation.Controls) != 1 || result.Correlation.Controls[0] != "z" {
		t.Errorf("controls = %v, want [z]", result.Correlation.Controls)
	}
}

func TestDistances_ListwiseRows(t *testing.T) {
	table := fixtureTable(t)

	result, err := NewStatsEngine().Distances(table,
		[]core.VariableKey{"x", "y"}, stats.MetricEuclidean)
	if err != nil {
		t.Fatalf("Distances failed: %v", err)
	}
	if result.Kind != stats.KindDistance {
		t.Errorf("kind = %s, want %s", result.Kind, stats.KindDistance)
	}
	if result.Distance.Cases != 27 {
		t.Errorf("cases = %d, want 27 after listwise deletion", result.Distance.Cases)
	}
	if err := result.Validate(); err != nil {
		t.Errorf("envelope invalid: %v", err)
	}
}

func TestRegress_Envelope(t *testing.T) {
	table := fixtureTable(t)

	result, err := NewStatsEngine().Regress(table, "y", []core.VariableKey{"x"})
	if err != nil {
		t.Fatalf("Regress failed: %v", err)
	}
	if result.Kind != stats.KindRegression {
		t.Errorf("kind = %s, want %s", result.Kind, stats.KindRegression)
	}
	fit := result.Regression
	if fit.SampleSize != 27 {
		t.Errorf("n = %d, want 27 after listwise deletion", fit.SampleSize)
	}
	if math.Abs(fit.Coefficients[1]-2) > 0.1 {
		t.Errorf("slope = %f, want ~2", fit.Coefficients[1])
	}
	if fit.RSquared < 0.99 {
		t.Errorf("R^2 = %f, want ~1", fit.RSquared)
	}
}
