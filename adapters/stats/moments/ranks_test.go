package moments

import (
	"testing"
)

func TestMidranks_TieAveraging(t *testing.T) {
	got := Midranks([]float64{10, 20, 20, 30})
	want := []float64{1, 2.5, 2.5, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rank[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestMidranks_NoTies(t *testing.T) {
	got := Midranks([]float64{3.5, 1.25, 9, -4})
	want := []float64{3, 2, 4, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rank[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestMidranks_AllTied(t *testing.T) {
	got := Midranks([]float64{2, 2, 2})
	for i, r := range got {
		if r != 2 {
			t.Errorf("rank[%d] = %f, want 2 for fully tied sample", i, r)
		}
	}
}

func TestMidranks_MonotoneRelabeling(t *testing.T) {
	// Ranks depend only on order, so a monotone relabeling leaves them alone.
	a := Midranks([]float64{10, 20, 20, 30})
	b := Midranks([]float64{-1, 0, 0, 1000})
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("rank[%d] differs after monotone relabeling: %f vs %f", i, a[i], b[i])
		}
	}
}

func TestMidranks_Empty(t *testing.T) {
	if got := Midranks(nil); len(got) != 0 {
		t.Errorf("Midranks(nil) = %v, want empty", got)
	}
}
