package dataset

import (
	"math"
	"testing"

	"gridstat/domain/core"
)

func TestAddColumn_LengthRule(t *testing.T) {
	table := NewTable("t")
	if err := table.AddColumn("a", []float64{1, 2, 3}); err != nil {
		t.Fatalf("first column rejected: %v", err)
	}
	if err := table.AddColumn("b", []float64{4, 5, 6}); err != nil {
		t.Fatalf("matching column rejected: %v", err)
	}
	if err := table.AddColumn("c", []float64{7, 8}); err == nil {
		t.Error("short column accepted; all columns must share one length")
	}
	if table.RowCount() != 3 || table.ColumnCount() != 2 {
		t.Errorf("shape = %dx%d, want 3x2", table.RowCount(), table.ColumnCount())
	}
}

func TestColumnLookup(t *testing.T) {
	table := NewTable("t")
	if err := table.AddColumn("a", []float64{1, 2}); err != nil {
		t.Fatalf("AddColumn failed: %v", err)
	}

	values, ok := table.Column("a")
	if !ok || len(values) != 2 {
		t.Errorf("Column(a) = %v, %v", values, ok)
	}
	if _, ok := table.Column("zzz"); ok {
		t.Error("lookup of unknown key must report absence")
	}

	if _, err := table.Select([]core.VariableKey{"a", "zzz"}); err == nil {
		t.Error("Select with an unknown key must fail")
	}
}

func TestSelectComplete_ListwiseDeletion(t *testing.T) {
	nan := math.NaN()
	table := NewTable("t")
	if err := table.AddColumn("a", []float64{1, nan, 3, 4}); err != nil {
		t.Fatalf("AddColumn failed: %v", err)
	}
	if err := table.AddColumn("b", []float64{10, 20, 30, nan}); err != nil {
		t.Fatalf("AddColumn failed: %v", err)
	}

	cols, err := table.SelectComplete(table.VariableKeys())
	if err != nil {
		t.Fatalf("SelectComplete failed: %v", err)
	}
	// Rows 1 and 3 each have a gap somewhere, so only rows 0 and 2 survive.
	wantA := []float64{1, 3}
	wantB := []float64{10, 30}
	for i := range wantA {
		if cols[0][i] != wantA[i] || cols[1][i] != wantB[i] {
			t.Errorf("row %d = (%f, %f), want (%f, %f)", i, cols[0][i], cols[1][i], wantA[i], wantB[i])
		}
	}
	if len(cols[0]) != 2 || len(cols[1]) != 2 {
		t.Errorf("kept %d/%d rows, want 2/2", len(cols[0]), len(cols[1]))
	}
}

func TestCompletePairRows(t *testing.T) {
	nan := math.NaN()
	x := []float64{1, nan, 3, 4, 5}
	y := []float64{10, 20, nan, 40, 50}

	outX, outY := CompletePairRows(x, y)
	if len(outX) != 3 || len(outY) != 3 {
		t.Fatalf("kept %d rows, want 3", len(outX))
	}
	wantX := []float64{1, 4, 5}
	wantY := []float64{10, 40, 50}
	for i := range wantX {
		if outX[i] != wantX[i] || outY[i] != wantY[i] {
			t.Errorf("pair %d = (%f, %f), want (%f, %f)", i, outX[i], outY[i], wantX[i], wantY[i])
		}
	}
}

func TestCompleteRows_DoesNotMutateInput(t *testing.T) {
	nan := math.NaN()
	a := []float64{1, nan, 3}
	b := []float64{4, 5, 6}

	CompleteRows([][]float64{a, b})
	if !math.IsNaN(a[1]) || b[1] != 5 {
		t.Error("listwise deletion must copy, not edit, its input columns")
	}
}
