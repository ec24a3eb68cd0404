package game

import (
	"math"
	"testing"
)

func TestCellAt_FloorQuantization(t *testing.T) {
	size := 0.0001
	cases := []struct {
		lat, lng float64
		want     Cell
	}{
		{0, 0, Cell{0, 0}},
		{0.00015, 0.00025, Cell{1, 2}},
		{-0.00005, -0.00005, Cell{-1, -1}},
		{-0.0001, 0.0001, Cell{-1, 1}},
	}
	for _, tc := range cases {
		if got := CellAt(tc.lat, tc.lng, size); got != tc.want {
			t.Fatalf("CellAt(%v,%v) = %v want %v", tc.lat, tc.lng, got, tc.want)
		}
	}
}

func TestChebyshev(t *testing.T) {
	if d := Chebyshev(Cell{0, 0}, Cell{3, -2}); d != 3 {
		t.Fatalf("distance = %d want 3", d)
	}
	if d := Chebyshev(Cell{-1, -1}, Cell{-1, -1}); d != 0 {
		t.Fatalf("distance = %d want 0", d)
	}
	if d := Chebyshev(Cell{5, 5}, Cell{4, 9}); d != 4 {
		t.Fatalf("distance = %d want 4", d)
	}
}

func TestRectFromBounds_InclusiveCells(t *testing.T) {
	size := 0.0001
	r := RectFromBounds(Bounds{South: 0.00005, North: 0.00035, West: -0.00015, East: 0.00005}, size)
	want := CellRect{IMin: 0, IMax: 3, JMin: -2, JMax: 0}
	if r != want {
		t.Fatalf("rect = %+v want %+v", r, want)
	}
}

func TestRectFromBounds_EdgeOnGridLine(t *testing.T) {
	// North/east edges exactly on a grid line must not pull in the
	// zero-area row/column beyond the viewport.
	size := 0.0001
	r := RectFromBounds(Bounds{South: 0, North: 0.0002, West: 0, East: 0.0001}, size)
	want := CellRect{IMin: 0, IMax: 1, JMin: 0, JMax: 0}
	if r != want {
		t.Fatalf("rect = %+v want %+v", r, want)
	}
}

func TestCellRect_Count(t *testing.T) {
	r := CellRect{IMin: -1, IMax: 1, JMin: 2, JMax: 4}
	if r.Count() != 9 {
		t.Fatalf("count = %d want 9", r.Count())
	}
	empty := CellRect{IMin: 0, IMax: -1}
	if !empty.Empty() || empty.Count() != 0 {
		t.Fatalf("expected empty rect")
	}

	// 2^32 x 2^32: a plain multiply wraps to 0; Count must saturate instead.
	huge := CellRect{IMin: 0, IMax: 1<<32 - 1, JMin: 0, JMax: 1<<32 - 1}
	if huge.Count() != math.MaxInt {
		t.Fatalf("huge count = %d want MaxInt", huge.Count())
	}
}
