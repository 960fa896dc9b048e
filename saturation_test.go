package cfmask

import "testing"

func TestSaturationCeilingsLandsat8(t *testing.T) {
	scn := &Scene{
		Satellite: Landsat8,
		SunZenith: 30,
		Gain:      map[BandRole]float64{Blue: 2e-5, Green: 2e-5, Red: 2e-5, NIR: 2e-5, SWIR1: 2e-5, SWIR2: 2e-5},
		Bias:      map[BandRole]float64{Blue: -0.1, Green: -0.1, Red: -0.1, NIR: -0.1, SWIR1: -0.1, SWIR2: -0.1},
	}
	var table [366]float64
	ceilings, err := SaturationCeilings(scn, table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, role := range ReflectiveRoles {
		if ceilings[role] <= 0 {
			t.Errorf("ceiling for %v should be positive, got %d", role, ceilings[role])
		}
	}
}

func TestSaturationCeilingsNeedsEarthSunDistance(t *testing.T) {
	scn := &Scene{
		Satellite: Landsat5,
		SunZenith: 25,
		DayOfYear: 180,
		Gain:      map[BandRole]float64{Blue: 0.01, Green: 0.01, Red: 0.01, NIR: 0.01, SWIR1: 0.01, SWIR2: 0.01},
		Bias:      map[BandRole]float64{Blue: -1, Green: -1, Red: -1, NIR: -1, SWIR1: -1, SWIR2: -1},
	}
	var table [366]float64
	for i := range table {
		table[i] = 1.0
	}
	ceilings, err := SaturationCeilings(scn, table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ceilings[Blue] == 0 {
		t.Error("expected non-zero ceiling for blue band")
	}
}

func TestClampSaturated(t *testing.T) {
	// Only pixels exactly at the metadata saturation reference (255) are
	// rewritten, and they're rewritten up to the computed ceiling (1000).
	band := []int16{100, 500, 255, FillValue, 1000}
	ClampSaturated(band, 255, 1000)
	want := []int16{100, 500, 1000, FillValue, 1000}
	for i := range band {
		if band[i] != want[i] {
			t.Errorf("index %d: got %d, want %d", i, band[i], want[i])
		}
	}
}
