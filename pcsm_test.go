package cfmask

import "testing"

func TestBasicCloudTest(t *testing.T) {
	// ndsi/ndvi both low, swir2 bright, thermal cold: classic cloud.
	if !basicCloudTest(0.1, 0.1, 400, 2000, true) {
		t.Error("expected cloud test to pass")
	}
	// Same spectral signature but warm thermal should fail when thermal is
	// available (thermal only gates, never substitutes).
	if basicCloudTest(0.1, 0.1, 400, 3000, true) {
		t.Error("expected cloud test to fail on warm thermal")
	}
	// Without thermal, the same spectral signature alone should pass.
	if !basicCloudTest(0.1, 0.1, 400, 0, false) {
		t.Error("expected cloud test to pass without thermal gating")
	}
}

func TestBasicSnowTest(t *testing.T) {
	if !basicSnowTest(0.5, 1500, 1500, 500, true) {
		t.Error("expected snow test to pass")
	}
	if basicSnowTest(0.5, 1500, 1500, 2000, true) {
		t.Error("expected snow test to fail on warm thermal")
	}
}

func TestZheWaterTest(t *testing.T) {
	if !zheWaterTest(0.0, 1000) {
		t.Error("expected water test to pass for low ndvi, low NIR")
	}
	if zheWaterTest(0.5, 1000) {
		t.Error("expected water test to fail for high ndvi")
	}
}

func TestWhitenessSaturationOverride(t *testing.T) {
	ceiling := map[BandRole]int{Blue: 1000, Green: 1000, Red: 1000}
	w, satBV := whiteness(999, 500, 500, ceiling)
	if !satBV {
		t.Error("expected saturation flag for blue band near ceiling")
	}
	if w != 0 {
		t.Errorf("expected whiteness forced to 0 when saturated, got %v", w)
	}
}

func TestHotTest(t *testing.T) {
	if !hotTest(2000, 500, false) {
		t.Error("expected HOT test to pass")
	}
	if hotTest(500, 500, false) {
		t.Error("expected HOT test to fail")
	}
	if !hotTest(500, 500, true) {
		t.Error("expected HOT test to pass via saturation override")
	}
}

func TestRatioTest(t *testing.T) {
	if !ratioTest(900, 1000) {
		t.Error("expected ratio test to pass")
	}
	if ratioTest(700, 1000) {
		t.Error("expected ratio test to fail")
	}
}
