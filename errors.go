package cfmask

import "errors"

// Sentinel errors for the cfmask pipeline. Call sites wrap these with
// fmt.Errorf and %w to attach scene-specific context, so callers can still
// match them with errors.Is.
var (
	ErrNoBands          = errors.New("cfmask: scene has no reflectance bands")
	ErrBandSizeMismatch = errors.New("cfmask: band dimensions do not match scene size")
	ErrMissingThermal   = errors.New("cfmask: thermal band requested but not present")
	ErrUnknownSatellite = errors.New("cfmask: invalid satellite")
	ErrUnknownSensor    = errors.New("cfmask: invalid sensor/instrument")
	ErrSunZenithRange   = errors.New("cfmask: solar zenith angle out of range")
	ErrSunAzimuthRange  = errors.New("cfmask: solar azimuth angle out of range")
	ErrEntireImageFill  = errors.New("cfmask: entire image is fill")
	ErrTooManyClouds    = errors.New("cfmask: too many clouds identified")
	ErrInconsistentRuns = errors.New("cfmask: inconsistent number of pixels in cloud run list")
	ErrNoClearPixels    = errors.New("cfmask: no clear pixels found in scene")
	ErrEarthSunTable    = errors.New("cfmask: failed reading Earth-Sun distance table")
	ErrEsunEnvUnset     = errors.New("cfmask: ESUN environment variable is not set")
)
