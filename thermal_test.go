package cfmask

import "testing"

func TestConvertThermalToBrightnessTemperature(t *testing.T) {
	band := []int16{FillValue, 20000}
	const gain, bias = 0.0003342, 0.1
	const k1, k2 = 774.8853, 1321.0789

	ConvertThermalToBrightnessTemperature(band, gain, bias, k1, k2)

	if band[0] != FillValue {
		t.Errorf("fill pixel should pass through unchanged, got %d", band[0])
	}
	if band[1] == 20000 {
		t.Error("expected thermal DN to be converted to brightness temperature")
	}
}
