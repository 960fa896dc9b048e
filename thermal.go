package cfmask

import "math"

// ConvertThermalToBrightnessTemperature rewrites a thermal band's raw
// scaled-radiance DNs into brightness temperature in degrees Celsius x100,
// using the scene's K1/K2 Planck-inverse constants and thermal gain/bias.
// Grounded on input.c's OpenInput/dn_to_bt_saturation conversion step; must
// run once at ingest, before any pass reads the thermal band, since every
// thermal threshold in pcsm.go and ocsm.go is expressed in this scale.
func ConvertThermalToBrightnessTemperature(band []int16, gain, bias, k1, k2 float64) {
	for i, dn := range band {
		if dn == FillValue {
			continue
		}
		radiance := gain*float64(dn) + bias
		kelvin := k2 / math.Log(k1/radiance+1)
		band[i] = int16(math.Round(100 * (kelvin - 273.15)))
	}
}
