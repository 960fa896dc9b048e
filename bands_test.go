package cfmask

import "testing"

func TestParseSatellite(t *testing.T) {
	cases := []struct {
		in      string
		want    Satellite
		wantErr bool
	}{
		{"LANDSAT_4", Landsat4, false},
		{"LANDSAT_5", Landsat5, false},
		{"LANDSAT_7", Landsat7, false},
		{"LANDSAT_8", Landsat8, false},
		{"SENTINEL_2", 0, true},
	}
	for _, c := range cases {
		got, err := ParseSatellite(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseSatellite(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSatellite(%q): unexpected error %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseSatellite(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestInstrumentHasThermal(t *testing.T) {
	if OLI.HasThermal() {
		t.Error("OLI-only instrument should report no thermal band")
	}
	for _, inst := range []Instrument{TM, ETM, OLITIRS} {
		if !inst.HasThermal() {
			t.Errorf("%v should report a thermal band", inst)
		}
	}
}
