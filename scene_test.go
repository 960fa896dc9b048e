package cfmask

import "testing"

func TestDayOfYearFromDate(t *testing.T) {
	cases := []struct {
		date CalendarDate
		want int
	}{
		{CalendarDate{2020, 1, 1}, 1},
		{CalendarDate{2020, 3, 1}, 61}, // 2020 is a leap year
		{CalendarDate{2021, 3, 1}, 60}, // 2021 is not
		{CalendarDate{2020, 12, 31}, 366},
	}
	for _, c := range cases {
		if got := DayOfYearFromDate(c.date); got != c.want {
			t.Errorf("DayOfYearFromDate(%+v) = %d, want %d", c.date, got, c.want)
		}
	}
}

func TestApplyOrientationFix(t *testing.T) {
	scn := &Scene{
		SunAzimuth: 315,
		ULCorner:   GeoCoord{Lat: 10.0},
		LRCorner:   GeoCoord{Lat: 10.0},
	}
	scn.ApplyOrientationFix()
	if scn.SunAzimuth != 135 {
		t.Errorf("expected flipped azimuth 135, got %v", scn.SunAzimuth)
	}
	scn.RestoreSunAzimuth()
	if scn.SunAzimuth != 315 {
		t.Errorf("expected restored azimuth 315, got %v", scn.SunAzimuth)
	}
}

func TestApplyOrientationFixNoOpWhenNormal(t *testing.T) {
	scn := &Scene{
		SunAzimuth: 135,
		ULCorner:   GeoCoord{Lat: 40.0},
		LRCorner:   GeoCoord{Lat: 38.0},
	}
	scn.ApplyOrientationFix()
	if scn.SunAzimuth != 135 {
		t.Errorf("expected unchanged azimuth for normal orientation, got %v", scn.SunAzimuth)
	}
}

func TestSceneValidate(t *testing.T) {
	cases := []struct {
		name    string
		scn     Scene
		wantErr bool
	}{
		{"valid", Scene{SunZenith: 30, SunAzimuth: 120}, false},
		{"zenith too high", Scene{SunZenith: 91, SunAzimuth: 0}, true},
		{"zenith too low", Scene{SunZenith: -91, SunAzimuth: 0}, true},
		{"azimuth too high", Scene{SunZenith: 0, SunAzimuth: 361}, true},
	}
	for _, c := range cases {
		err := c.scn.Validate()
		if c.wantErr && err == nil {
			t.Errorf("%s: expected error", c.name)
		}
		if !c.wantErr && err != nil {
			t.Errorf("%s: unexpected error %v", c.name, err)
		}
	}
}
