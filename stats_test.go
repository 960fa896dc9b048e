package cfmask

import "testing"

func TestPercentile(t *testing.T) {
	samples := []float64{10, 20, 30, 40, 50}
	if got := percentile(samples, 50); got != 30 {
		t.Errorf("median = %v, want 30", got)
	}
	if got := percentile(samples, 0); got != 10 {
		t.Errorf("0th percentile = %v, want 10", got)
	}
	if got := percentile(samples, 100); got != 50 {
		t.Errorf("100th percentile = %v, want 50", got)
	}
}

func TestPercentileEmpty(t *testing.T) {
	if got := percentile(nil, 50); got != 0 {
		t.Errorf("percentile of empty slice = %v, want 0", got)
	}
}

func TestClamp01(t *testing.T) {
	cases := map[float64]float64{-1: 0, 0.5: 0.5, 2: 1}
	for in, want := range cases {
		if got := clamp01(in); got != want {
			t.Errorf("clamp01(%v) = %v, want %v", in, got, want)
		}
	}
}
