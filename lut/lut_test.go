package lut

import (
	"math"
	"testing"
)

func TestTable1DStepInvariant(t *testing.T) {
	cases := []struct {
		min, max float64
		count    int
	}{
		{0, 100, 11},
		{-50, 50, 2},
		{100, 300, 3},
		{0, 1, 1001},
	}
	for _, tc := range cases {
		tab, err := NewTable1D(tc.min, tc.max, tc.count)
		if err != nil {
			t.Fatalf("NewTable1D(%g, %g, %d): %v", tc.min, tc.max, tc.count, err)
		}
		wantStep := (tc.max - tc.min) / float64(tc.count-1)
		if tab.Step() != wantStep {
			t.Errorf("step = %g, want %g", tab.Step(), wantStep)
		}
		if got := Index(tc.min, tab.Step(), tc.min); got != 0 {
			t.Errorf("Index(min) = %g, want 0", got)
		}
		if got := Index(tc.min, tab.Step(), tc.max); math.Abs(got-float64(tc.count-1)) > 1e-9 {
			t.Errorf("Index(max) = %g, want %d", got, tc.count-1)
		}
	}
}

func TestTable1DInvalidAxis(t *testing.T) {
	if _, err := NewTable1D(0, 100, 0); err == nil {
		t.Error("count 0 accepted")
	}
	if _, err := NewTable1D(100, 100, 5); err == nil {
		t.Error("max == min accepted")
	}
	if _, err := NewTable1D(100, 50, 5); err == nil {
		t.Error("max < min accepted")
	}
}

func TestTable2DDegenerateColumn(t *testing.T) {
	// A single-column table is allowed and acts one-dimensionally in y.
	tab, err := NewTable2D(5, 5, 1, 0, 100, 3)
	if err != nil {
		t.Fatalf("NewTable2D degenerate: %v", err)
	}
	if tab.StepX() != 0 {
		t.Errorf("stepX = %g, want 0", tab.StepX())
	}
	for y, v := range []int16{10, 20, 30} {
		if err := tab.SetValue(0, y, v); err != nil {
			t.Fatalf("SetValue: %v", err)
		}
	}
	if got := tab.Interpolate(5, 50, Bilinear); got != 20 {
		t.Errorf("Interpolate(5, 50) = %g, want 20", got)
	}
	if got := tab.Interpolate(5, 75, Bilinear); got != 25 {
		t.Errorf("Interpolate(5, 75) = %g, want 25", got)
	}
}

func TestTable2DDegenerateRow(t *testing.T) {
	// A single-row table is allowed and acts one-dimensionally in x.
	tab, err := NewTable2D(0, 10, 3, 0, 10, 1)
	if err != nil {
		t.Fatalf("NewTable2D degenerate: %v", err)
	}
	if tab.StepY() != 0 {
		t.Errorf("stepY = %g, want 0", tab.StepY())
	}
	for x, v := range []int16{10, 20, 30} {
		if err := tab.SetValue(x, 0, v); err != nil {
			t.Fatalf("SetValue: %v", err)
		}
	}
	if got := tab.Interpolate(0, 5, Bilinear); got != 10 {
		t.Errorf("Interpolate(0, 5) = %g, want 10", got)
	}
	if got := tab.Interpolate(5, 5, Bilinear); got != 20 {
		t.Errorf("Interpolate(5, 5) = %g, want 20", got)
	}
	if got := tab.Interpolate(7.5, 0, Bilinear); got != 25 {
		t.Errorf("Interpolate(7.5, 0) = %g, want 25", got)
	}
	if got, ok := tab.InterpolateWithNoData(7.5, 0, -32768); !ok || got != 25 {
		t.Errorf("InterpolateWithNoData(7.5, 0) = %g, %v, want 25, true", got, ok)
	}
}

func TestTable2DInvalidAxes(t *testing.T) {
	if _, err := NewTable2D(0, 10, 2, 0, 0, 2); err == nil {
		t.Error("maxY == minY accepted")
	}
	if _, err := NewTable2D(10, 0, 2, 0, 10, 2); err == nil {
		t.Error("maxX < minX accepted")
	}
	if _, err := NewTable2D(0, 10, 0, 0, 10, 2); err == nil {
		t.Error("numX 0 accepted")
	}
}

func TestTable2DValueBounds(t *testing.T) {
	tab, err := NewTable2D(0, 10, 2, 0, 10, 2)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tab.Value(2, 0); err == nil {
		t.Error("x index out of range accepted")
	}
	if _, err := tab.Value(0, 2); err == nil {
		t.Error("y index out of range accepted")
	}
	if _, err := tab.Value(-1, 0); err == nil {
		t.Error("negative index accepted")
	}
}

func TestIndexHelpers(t *testing.T) {
	// min 100, step 50: exact 175 sits at fractional index 1.5.
	if got := LowValue(100, 50, 175); got != 1 {
		t.Errorf("LowValue = %d, want 1", got)
	}
	if got := HighValue(100, 50, 175); got != 2 {
		t.Errorf("HighValue = %d, want 2", got)
	}
	if got := NearValue(100, 50, 175); got != 2 {
		t.Errorf("NearValue = %d, want 2", got)
	}
	if got := NearValue(100, 50, 170); got != 1 {
		t.Errorf("NearValue(170) = %d, want 1", got)
	}
	if got := HighValue(100, 50, 150); got != 1 {
		t.Errorf("HighValue at exact sample = %d, want 1", got)
	}
}

// fill2x2 builds a 2-by-2 cell table over x [0,1], y [0,1].
func fill2x2(t *testing.T, ll, lr, ur, ul int16) *Table2D {
	t.Helper()
	tab, err := NewTable2D(0, 1, 2, 0, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	tab.SetValue(0, 0, ll)
	tab.SetValue(1, 0, lr)
	tab.SetValue(1, 1, ur)
	tab.SetValue(0, 1, ul)
	return tab
}

const noData = int16(-32766)

func TestInterpolateWithNoDataMatchesPlain(t *testing.T) {
	tab := fill2x2(t, 100, 200, 400, 300)
	points := []struct{ x, y float64 }{
		{0.5, 0.5}, {0.25, 0.75}, {0, 0}, {1, 1}, {0.9, 0.1},
	}
	for _, p := range points {
		plain := tab.Interpolate(p.x, p.y, Bilinear)
		repaired, ok := tab.InterpolateWithNoData(p.x, p.y, noData)
		if !ok {
			t.Fatalf("no value at (%g, %g) with zero missing corners", p.x, p.y)
		}
		if repaired != plain {
			t.Errorf("(%g, %g): repaired %g != plain %g", p.x, p.y, repaired, plain)
		}
	}
}

func TestInterpolateWithNoDataAllMissing(t *testing.T) {
	tab := fill2x2(t, noData, noData, noData, noData)
	if _, ok := tab.InterpolateWithNoData(0.5, 0.5, noData); ok {
		t.Error("all-missing cell produced a value")
	}
}

func TestInterpolateWithNoDataEdgeRefusal(t *testing.T) {
	// Both bottom corners missing; a query hugging the bottom edge must be
	// refused, while the same column mid-cell is repaired.
	tab := fill2x2(t, noData, noData, 400, 300)
	if _, ok := tab.InterpolateWithNoData(0.5, 0.05, noData); ok {
		t.Error("query within 10%% of an all-missing edge produced a value")
	}
	if _, ok := tab.InterpolateWithNoData(0.5, 0.5, noData); !ok {
		t.Error("mid-cell query with two missing corners was refused")
	}
	// Left edge missing.
	tab = fill2x2(t, noData, 200, 400, noData)
	if _, ok := tab.InterpolateWithNoData(0.05, 0.5, noData); ok {
		t.Error("query hugging missing left edge produced a value")
	}
}

func TestInterpolateWithNoDataSingleCornerRepair(t *testing.T) {
	// Only ll missing. Query near the top edge: y-closeness preferred, so
	// ll is repaired from its y neighbor ul.
	tab := fill2x2(t, noData, 200, 400, 300)
	got, ok := tab.InterpolateWithNoData(0.4, 0.8, noData)
	if !ok {
		t.Fatal("single missing corner refused")
	}
	want := Bilinear(300, 200, 400, 300, 0, 0.4, 1, 0, 0.8, 1)
	if got != want {
		t.Errorf("repair from y neighbor: got %g, want %g", got, want)
	}

	// Query near the right edge mid-height: x-closeness preferred, so ll
	// is repaired from its x neighbor lr.
	got, ok = tab.InterpolateWithNoData(0.85, 0.5, noData)
	if !ok {
		t.Fatal("single missing corner refused")
	}
	want = Bilinear(200, 200, 400, 300, 0, 0.85, 1, 0, 0.5, 1)
	if got != want {
		t.Errorf("repair from x neighbor: got %g, want %g", got, want)
	}
}

func TestInterpolateWithNoDataDiagonalFallback(t *testing.T) {
	// Three corners missing, only ur valid. Every repair falls through to
	// the diagonal donor for ll, so the cell flattens to ur's value away
	// from the refused edges.
	tab := fill2x2(t, noData, noData, 400, noData)
	got, ok := tab.InterpolateWithNoData(0.5, 0.5, noData)
	if !ok {
		t.Fatal("three missing corners mid-cell refused")
	}
	if got != 400 {
		t.Errorf("diagonal repair: got %g, want 400", got)
	}
	// Near a missing edge it must still refuse.
	if _, ok := tab.InterpolateWithNoData(0.5, 0.05, noData); ok {
		t.Error("three missing corners near a missing edge produced a value")
	}
}

func TestInterpolateBracketClamp(t *testing.T) {
	// Queries at and past the top of the axis must use the last full cell.
	tab, err := NewTable2D(0, 2, 3, 0, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			tab.SetValue(x, y, int16(10*x+y))
		}
	}
	if got := tab.Interpolate(2, 2, Bilinear); got != 22 {
		t.Errorf("Interpolate at max corner = %g, want 22", got)
	}
	if got := tab.Interpolate(5, 5, Bilinear); got != 22 {
		t.Errorf("Interpolate past max = %g, want clamped 22", got)
	}
	if got := tab.Interpolate(-1, -1, Bilinear); got != 0 {
		t.Errorf("Interpolate below min = %g, want clamped 0", got)
	}
}

func TestTable1DInterpolate(t *testing.T) {
	tab, err := NewTable1D(100, 300, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range []int16{100, 200, 300} {
		tab.SetValue(i, v)
	}
	if got := tab.Interpolate(150, Linear); got != 150 {
		t.Errorf("Interpolate(150) = %g, want 150", got)
	}
	if got := tab.Interpolate(300, Linear); got != 300 {
		t.Errorf("Interpolate(300) = %g, want 300", got)
	}
	if got := tab.Interpolate(500, Linear); got != 300 {
		t.Errorf("Interpolate(500) = %g, want clamped 300", got)
	}
}
