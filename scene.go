package cfmask

import (
	"fmt"

	"github.com/soniakeys/meeus/v3/julian"
)

// GeoCoord is a latitude/longitude pair in decimal degrees, grounded on the
// Geo_coord_t shape carried through the original metadata structures.
type GeoCoord struct {
	Lat float64
	Lon float64
}

// Scene carries the per-scene metadata needed to run the classifier: solar
// geometry, platform identity, radiometric calibration coefficients and
// corner coordinates. The ESPA adapter builds it and the CLI attaches the
// saturation ceilings and cirrus option; from then on it is threaded
// read-only through every pass, mirroring the Scene+Buffers split
// called out as a design note: no package-level globals.
type Scene struct {
	Satellite   Satellite
	Instrument  Instrument
	AcquiredAt  CalendarDate
	DayOfYear   int
	SunZenith   float64 // degrees
	SunAzimuth  float64 // degrees
	PixelSizeX  float64 // meters
	PixelSizeY  float64 // meters
	Rows        int
	Cols        int
	ULCorner    GeoCoord
	LRCorner    GeoCoord
	Gain        map[BandRole]float64
	Bias        map[BandRole]float64
	GainThermal float64
	BiasThermal float64
	K1          float64 // thermal constant for brightness-temperature conversion
	K2          float64
	UseCirrus   bool

	// SaturationRef carries each band's metadata saturate_value (the raw DN
	// the producer flags as the saturation reference), keyed by BandRole.
	// ClampSaturated tests pixel equality against this value, not the
	// computed ceiling.
	SaturationRef map[BandRole]int

	// orientationFlipped and originalSunAzimuth back the scene-orientation
	// fix: when set, SunAzimuth has been rotated 180 degrees for processing
	// and originalSunAzimuth holds the value to restore before metadata
	// emission.
	orientationFlipped bool
	originalSunAzimuth float64

	// saturationCeiling holds the per-band saturation DN ceiling computed by
	// SaturationCeilings; PCSM's whiteness/HOT tests need it per pixel, so it
	// is cached on the Scene once at ingest rather than recomputed per pass.
	saturationCeiling map[BandRole]int
}

// SetSaturationCeiling attaches a precomputed saturation ceiling table
// (see SaturationCeilings) to the scene for use by PCSM's whiteness test.
func (s *Scene) SetSaturationCeiling(ceiling map[BandRole]int) {
	s.saturationCeiling = ceiling
}

// ApplyOrientationFix rotates SunAzimuth 180 degrees (mod 360) when the
// scene is south-up (ul_lat - lr_lat < 1e-5), the condition under which the
// shadow-projection geometry in RunOCSM would otherwise point the wrong
// way. The original value is retained for RestoreSunAzimuth.
func (s *Scene) ApplyOrientationFix() {
	if s.ULCorner.Lat-s.LRCorner.Lat >= 1e-5 {
		return
	}
	s.originalSunAzimuth = s.SunAzimuth
	s.orientationFlipped = true
	az := s.SunAzimuth + 180
	if az >= 360 {
		az -= 360
	}
	s.SunAzimuth = az
}

// RestoreSunAzimuth undoes ApplyOrientationFix, returning SunAzimuth to the
// value read from the source metadata, for use before metadata emission.
func (s *Scene) RestoreSunAzimuth() {
	if !s.orientationFlipped {
		return
	}
	s.SunAzimuth = s.originalSunAzimuth
	s.orientationFlipped = false
}

// CalendarDate is a minimal Gregorian calendar date, used only to derive
// DayOfYear for the Earth-Sun distance table lookup.
type CalendarDate struct {
	Year  int
	Month int
	Day   int
}

// Validate checks the solar geometry ranges the original ingest adapter
// enforces before any classification begins.
func (s *Scene) Validate() error {
	if s.SunZenith < -90 || s.SunZenith > 90 {
		return fmt.Errorf("%w: %.3f", ErrSunZenithRange, s.SunZenith)
	}
	if s.SunAzimuth < -360 || s.SunAzimuth > 360 {
		return fmt.Errorf("%w: %.3f", ErrSunAzimuthRange, s.SunAzimuth)
	}
	return nil
}

// DayOfYearFromDate converts a calendar date to an ordinal day-of-year
// (1-based), using the same Gregorian leap-year predicate exposed by
// meeus/julian so that forward (date->doy) and the library's reverse
// (doy->date) conversions stay consistent.
func DayOfYearFromDate(d CalendarDate) int {
	leap := julian.LeapYearGregorian(d.Year)
	daysBefore := [12]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}
	doy := daysBefore[d.Month-1] + d.Day
	if leap && d.Month > 2 {
		doy++
	}
	return doy
}
