package cfmask

import "testing"

func TestFillLocalMinimaBasin(t *testing.T) {
	// A 3x3 image with a pit in the center, bounded by a wall of 10s.
	rows, cols := 3, 3
	in := []int16{
		10, 10, 10,
		10, 1, 10,
		10, 10, 10,
	}
	out := make([]int16, rows*cols)
	if err := fillLocalMinima(in, rows, cols, 0, out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The center pixel should be raised to the level of its boundary (10),
	// since it has no fill-adjacent escape route.
	if out[4] != 10 {
		t.Errorf("center pixel = %d, want 10", out[4])
	}
}

func TestFillLocalMinimaAllFill(t *testing.T) {
	in := []int16{FillValue, FillValue, FillValue, FillValue}
	out := make([]int16, 4)
	if err := fillLocalMinima(in, 2, 2, 0, out); err != ErrEntireImageFill {
		t.Errorf("expected ErrEntireImageFill, got %v", err)
	}
}

func TestFillLocalMinimaBoundaryEscape(t *testing.T) {
	// A pixel adjacent to fill is a boundary seed: its output is set to
	// boundaryVal (6, within [hmin, hmax] = [5, 7]) rather than to its own
	// value or to hmax.
	rows, cols := 1, 3
	in := []int16{FillValue, 5, 7}
	out := make([]int16, 3)
	if err := fillLocalMinima(in, rows, cols, 6, out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[1] != 6 {
		t.Errorf("boundary pixel = %d, want boundaryVal 6", out[1])
	}
}
