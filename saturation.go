package cfmask

import (
	"fmt"
	"math"
)

// esunTable holds the mean exoatmospheric solar irradiance (W/m^2/um) per
// reflective band, used by the pre-Landsat-8 saturation ceiling formula.
// Landsat 8's ceiling formula needs no irradiance term.
var esunTable = map[Satellite]map[BandRole]float64{
	Landsat4: {Blue: 1983.0, Green: 1795.0, Red: 1539.0, NIR: 1028.0, SWIR1: 219.8, SWIR2: 83.49},
	Landsat5: {Blue: 1983.0, Green: 1796.0, Red: 1536.0, NIR: 1031.0, SWIR1: 220.0, SWIR2: 83.44},
	Landsat7: {Blue: 1997.0, Green: 1812.0, Red: 1533.0, NIR: 1039.0, SWIR1: 230.8, SWIR2: 84.9},
}

// SaturationCeilings computes, per reflective band, the maximum attainable
// TOA-reflectance DN given the scene's calibration gain/bias and, for
// pre-Landsat-8 sensors, the Earth-Sun distance on the acquisition day and
// the band's ESUN constant. It also computes the thermal band's
// brightness-temperature ceiling when the scene carries thermal
// calibration constants (K1/K2). At ingest, ClampSaturated raises pixels
// whose DN equals a band's saturation reference to that band's ceiling.
//
// Landsat 8:    satu_value_max = round(10000 * (gain*65535 + bias) / cos(sun_zenith))
// Others:       satu_value_max = round(10000 * pi * (gain*255 + bias) * d^2 /
//                                       (esun * cos(sun_zenith)))
// Thermal band: satu_value_max = round(100 * (K2/ln(K1/(gain*max_dn+bias)+1) - 273.15))
// where d is the Earth-Sun distance in astronomical units on DayOfYear.
func SaturationCeilings(scn *Scene, earthSunDistance [366]float64) (map[BandRole]int, error) {
	cosZen := math.Cos(scn.SunZenith * math.Pi / 180.0)
	out := make(map[BandRole]int, len(ReflectiveRoles)+1)

	if scn.Satellite == Landsat8 {
		const maxDN = 65535.0
		for _, role := range ReflectiveRoles {
			gain, bias := scn.Gain[role], scn.Bias[role]
			val := 10000.0 * (gain*maxDN + bias) / cosZen
			out[role] = int(math.Round(val))
		}
		if scn.K1 != 0 {
			out[Thermal] = thermalCeiling(scn, maxDN)
		}
		return out, nil
	}

	esun, ok := esunTable[scn.Satellite]
	if !ok {
		return nil, fmt.Errorf("%w: no ESUN table for %s", ErrUnknownSatellite, scn.Satellite)
	}
	if scn.DayOfYear < 1 || scn.DayOfYear > 366 {
		return nil, fmt.Errorf("cfmask: day of year %d out of range", scn.DayOfYear)
	}
	d := earthSunDistance[scn.DayOfYear-1]
	const maxDN = 255.0
	for _, role := range ReflectiveRoles {
		gain, bias := scn.Gain[role], scn.Bias[role]
		val := 10000.0 * math.Pi * (gain*maxDN + bias) * d * d / (esun[role] * cosZen)
		out[role] = int(math.Round(val))
	}
	if scn.K1 != 0 {
		out[Thermal] = thermalCeiling(scn, maxDN)
	}
	return out, nil
}

// thermalCeiling computes the brightness-temperature saturation ceiling (in
// degrees Celsius x100, the scale ConvertThermalToBrightnessTemperature
// produces) for the scene's thermal band, given the max attainable DN.
func thermalCeiling(scn *Scene, maxDN float64) int {
	radiance := scn.GainThermal*maxDN + scn.BiasThermal
	kelvin := scn.K2 / math.Log(scn.K1/radiance+1)
	return int(math.Round(100 * (kelvin - 273.15)))
}

// ClampSaturated rewrites any DN equal to the band's saturation-reference
// value up to the band's saturation ceiling, mirroring
// potential_cloud_shadow_snow_mask.c's "if (buf == satu_value_ref) buf =
// satu_value_max". The ceil-1 off-by-one used by the whiteness test is a
// separate, deliberately preserved quirk and does not belong here.
func ClampSaturated(band []int16, ref, ceiling int) {
	r := int16(ref)
	c := int16(ceiling)
	for i, v := range band {
		if v == r {
			band[i] = c
		}
	}
}
