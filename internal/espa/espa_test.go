package espa

import (
	"testing"

	cfmask "github.com/GNINNUR/espa-cloud-masking"
)

func TestRoleForBandTMETM(t *testing.T) {
	cases := []struct {
		name string
		want cfmask.BandRole
	}{
		{"band1", cfmask.Blue},
		{"band2", cfmask.Green},
		{"band3", cfmask.Red},
		{"band4", cfmask.NIR},
		{"band5", cfmask.SWIR1},
		{"band6_vcid_1", cfmask.Thermal},
		{"band7", cfmask.SWIR2},
	}
	for _, c := range cases {
		role, ok := roleForBand(cfmask.ETM, c.name)
		if !ok {
			t.Errorf("%s: expected a match", c.name)
			continue
		}
		if role != c.want {
			t.Errorf("%s: got role %v, want %v", c.name, role, c.want)
		}
	}
}

func TestRoleForBandOLI(t *testing.T) {
	cases := []struct {
		name string
		want cfmask.BandRole
	}{
		{"toa_band2", cfmask.Blue},
		{"toa_band3", cfmask.Green},
		{"toa_band4", cfmask.Red},
		{"toa_band5", cfmask.NIR},
		{"toa_band6", cfmask.SWIR1},
		{"toa_band7", cfmask.SWIR2},
		{"toa_band9", cfmask.Cirrus},
		{"bt_band10", cfmask.Thermal},
	}
	for _, c := range cases {
		role, ok := roleForBand(cfmask.OLITIRS, c.name)
		if !ok {
			t.Errorf("%s: expected a match", c.name)
			continue
		}
		if role != c.want {
			t.Errorf("%s: got role %v, want %v", c.name, role, c.want)
		}
	}
}

func TestRoleForBandUnrecognized(t *testing.T) {
	if _, ok := roleForBand(cfmask.ETM, "qa_pixel"); ok {
		t.Error("expected qa_pixel to not match any band role")
	}
}
