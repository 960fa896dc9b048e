package cfmask

import "fmt"

// Satellite identifies the Landsat platform a scene was acquired from.
type Satellite int

const (
	Landsat4 Satellite = iota
	Landsat5
	Landsat7
	Landsat8
)

func (s Satellite) String() string {
	switch s {
	case Landsat4:
		return "LANDSAT_4"
	case Landsat5:
		return "LANDSAT_5"
	case Landsat7:
		return "LANDSAT_7"
	case Landsat8:
		return "LANDSAT_8"
	default:
		return "UNKNOWN"
	}
}

// ParseSatellite maps an ESPA metadata satellite string to a Satellite.
func ParseSatellite(s string) (Satellite, error) {
	switch s {
	case "LANDSAT_4":
		return Landsat4, nil
	case "LANDSAT_5":
		return Landsat5, nil
	case "LANDSAT_7":
		return Landsat7, nil
	case "LANDSAT_8":
		return Landsat8, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSatellite, s)
	}
}

// Instrument identifies the sensor that acquired the scene. Landsat 4/5 use
// the Thematic Mapper, Landsat 7 the Enhanced TM+, Landsat 8 the
// Operational Land Imager (with or without the Thermal Infrared Sensor).
type Instrument int

const (
	TM Instrument = iota
	ETM
	OLI
	OLITIRS
)

func (i Instrument) String() string {
	switch i {
	case TM:
		return "TM"
	case ETM:
		return "ETM"
	case OLI:
		return "OLI"
	case OLITIRS:
		return "OLI_TIRS"
	default:
		return "UNKNOWN"
	}
}

// ParseInstrument maps an ESPA metadata instrument string to an Instrument.
func ParseInstrument(s string) (Instrument, error) {
	switch s {
	case "TM":
		return TM, nil
	case "ETM":
		return ETM, nil
	case "OLI":
		return OLI, nil
	case "OLI_TIRS":
		return OLITIRS, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSensor, s)
	}
}

// HasThermal reports whether the instrument carries a thermal band usable
// by the classifier. Landsat 8 OLI-only scenes (no TIRS) have none.
func (i Instrument) HasThermal() bool {
	return i != OLI
}

// BandRole names a reflective or thermal band by its spectral role rather
// than its per-satellite band number, so PCSM/OCSM code never branches on
// satellite to find "the NIR band".
type BandRole int

const (
	Blue BandRole = iota
	Green
	Red
	NIR
	SWIR1
	SWIR2
	Thermal
	Cirrus
	numBandRoles
)

func (r BandRole) String() string {
	switch r {
	case Blue:
		return "blue"
	case Green:
		return "green"
	case Red:
		return "red"
	case NIR:
		return "nir"
	case SWIR1:
		return "swir1"
	case SWIR2:
		return "swir2"
	case Thermal:
		return "thermal"
	case Cirrus:
		return "cirrus"
	default:
		return "unknown"
	}
}

// ReflectiveRoles lists the six bands every scene must carry, in the order
// saturation tables and ESUN tables index them.
var ReflectiveRoles = [...]BandRole{Blue, Green, Red, NIR, SWIR1, SWIR2}

// FillValue is the sentinel DN marking a pixel with no valid observation in
// any input band.
const FillValue int16 = -9999
