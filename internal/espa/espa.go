// Package espa parses the ESPA internal scene metadata XML format into a
// cfmask.Scene plus the set of band files to read. Deliberately built on
// encoding/xml rather than a third-party XML library: no repo in the
// example pack depends on one, and the ESPA schema is fixed and fully
// described by struct tags, with no need for streaming or schema
// validation beyond what Go's decoder already provides.
package espa

import (
	"encoding/xml"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	cfmask "github.com/GNINNUR/espa-cloud-masking"
)

// Metadata mirrors the subset of the ESPA internal metadata XML schema
// this pipeline consumes, grounded on
// original_source/not-validated-prototype-l8_cfmask/src/input.h's
// Input_meta_t and the GetXMLInput parsing logic in input.c.
type Metadata struct {
	XMLName xml.Name     `xml:"espa_metadata"`
	Global  GlobalMeta   `xml:"global_metadata"`
	Bands   []BandMeta   `xml:"bands>band"`
}

type GlobalMeta struct {
	Satellite      string      `xml:"satellite"`
	Instrument     string      `xml:"instrument"`
	AcquisitionDate string     `xml:"acquisition_date"`
	SolarAngles    SolarAngles `xml:"solar_angles"`
	Corners        []Corner    `xml:"corner"`
	ProjInfo       ProjInfo    `xml:"projection_information"`
}

type SolarAngles struct {
	Zenith  float64 `xml:"zenith,attr"`
	Azimuth float64 `xml:"azimuth,attr"`
}

type Corner struct {
	Location string  `xml:"location,attr"` // "UL" or "LR"
	Lat      float64 `xml:"latitude,attr"`
	Lon      float64 `xml:"longitude,attr"`
}

type ProjInfo struct {
	PixelSize []float64 `xml:"pixel_size"`
}

// BandMeta describes one band's calibration and storage location.
type BandMeta struct {
	Product  string  `xml:"product,attr"`
	Name     string  `xml:"name,attr"`
	FileName string  `xml:"file_name"`
	Gain     float64 `xml:"toa_gain,attr"`
	Bias     float64 `xml:"toa_bias,attr"`
	SatValue int     `xml:"saturate_value,attr"`
	K1       float64 `xml:"k1_constant,attr"`
	K2       float64 `xml:"k2_constant,attr"`
	Lines    int     `xml:"lines,attr"`
	Samples  int     `xml:"samples,attr"`
}

// bandNamePattern strips the ESPA band-name prefix ("band", "toa_band",
// "sr_band", "bt_band") and captures the leading digit run, so
// "toa_band2", "bt_band10" and "band6_vcid_1" all resolve to their band
// number regardless of trailing gain-state suffixes.
var bandNamePattern = regexp.MustCompile(`^(?:toa_band|sr_band|bt_band|band)(\d+)`)

// tmEtmBandRoles and oliBandRoles map per-satellite band numbers to
// BandRole, grounded on input.c's GetXMLInput satellite/band-name table:
// TM and ETM+ (Landsat 4/5/7) number blue..swir2 as band1..band5,band7 with
// thermal at band6; OLI/OLI_TIRS (Landsat 8) shift blue..swir2 to
// band2..band7, add cirrus at band9 and thermal at band10.
var tmEtmBandRoles = map[int]cfmask.BandRole{
	1: cfmask.Blue, 2: cfmask.Green, 3: cfmask.Red, 4: cfmask.NIR,
	5: cfmask.SWIR1, 6: cfmask.Thermal, 7: cfmask.SWIR2,
}

var oliBandRoles = map[int]cfmask.BandRole{
	2: cfmask.Blue, 3: cfmask.Green, 4: cfmask.Red, 5: cfmask.NIR,
	6: cfmask.SWIR1, 7: cfmask.SWIR2, 9: cfmask.Cirrus, 10: cfmask.Thermal,
}

// roleForBand classifies a band's ESPA name into a BandRole given the
// scene's instrument.
func roleForBand(inst cfmask.Instrument, name string) (cfmask.BandRole, bool) {
	m := bandNamePattern.FindStringSubmatch(strings.ToLower(name))
	if m == nil {
		return 0, false
	}
	num, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	table := tmEtmBandRoles
	if inst == cfmask.OLI || inst == cfmask.OLITIRS {
		table = oliBandRoles
	}
	role, ok := table[num]
	return role, ok
}

// Parse reads an ESPA metadata XML document and returns the populated
// Scene plus the band-role -> file-name table (names as given in the XML,
// relative to its directory) for the bandio adapter to open.
func Parse(path string) (*cfmask.Scene, map[cfmask.BandRole]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cfmask: opening metadata: %w", err)
	}
	defer f.Close()

	var meta Metadata
	if err := xml.NewDecoder(f).Decode(&meta); err != nil {
		return nil, nil, fmt.Errorf("cfmask: decoding metadata: %w", err)
	}

	sat, err := cfmask.ParseSatellite(meta.Global.Satellite)
	if err != nil {
		return nil, nil, err
	}
	inst, err := cfmask.ParseInstrument(meta.Global.Instrument)
	if err != nil {
		return nil, nil, err
	}

	scn := &cfmask.Scene{
		Satellite:     sat,
		Instrument:    inst,
		SunZenith:     meta.Global.SolarAngles.Zenith,
		SunAzimuth:    meta.Global.SolarAngles.Azimuth,
		Gain:          make(map[cfmask.BandRole]float64),
		Bias:          make(map[cfmask.BandRole]float64),
		SaturationRef: make(map[cfmask.BandRole]int),
	}

	if len(meta.Global.ProjInfo.PixelSize) >= 2 {
		scn.PixelSizeX = meta.Global.ProjInfo.PixelSize[0]
		scn.PixelSizeY = meta.Global.ProjInfo.PixelSize[1]
	}

	for _, c := range meta.Global.Corners {
		coord := cfmask.GeoCoord{Lat: c.Lat, Lon: c.Lon}
		switch strings.ToUpper(c.Location) {
		case "UL":
			scn.ULCorner = coord
		case "LR":
			scn.LRCorner = coord
		}
	}

	if date, err := parseDate(meta.Global.AcquisitionDate); err == nil {
		scn.AcquiredAt = date
		scn.DayOfYear = cfmask.DayOfYearFromDate(date)
	}

	files := make(map[cfmask.BandRole]string)
	for _, b := range meta.Bands {
		role, ok := roleForBand(inst, b.Name)
		if !ok {
			continue
		}
		files[role] = b.FileName
		if b.Lines > 0 && b.Samples > 0 {
			scn.Rows, scn.Cols = b.Lines, b.Samples
		}
		scn.SaturationRef[role] = b.SatValue
		if role == cfmask.Thermal {
			scn.GainThermal, scn.BiasThermal = b.Gain, b.Bias
			scn.K1, scn.K2 = b.K1, b.K2
			continue
		}
		scn.Gain[role] = b.Gain
		scn.Bias[role] = b.Bias
	}
	if len(files) == 0 {
		return nil, nil, cfmask.ErrNoBands
	}

	scn.ApplyOrientationFix()

	return scn, files, nil
}

func parseDate(s string) (cfmask.CalendarDate, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return cfmask.CalendarDate{}, fmt.Errorf("cfmask: invalid acquisition date %q", s)
	}
	y, err := strconv.Atoi(parts[0])
	if err != nil {
		return cfmask.CalendarDate{}, err
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return cfmask.CalendarDate{}, err
	}
	d, err := strconv.Atoi(parts[2])
	if err != nil {
		return cfmask.CalendarDate{}, err
	}
	return cfmask.CalendarDate{Year: y, Month: m, Day: d}, nil
}
