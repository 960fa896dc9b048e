package cfmask

import "testing"

func TestFlattenPriority(t *testing.T) {
	buf := NewBuffers(1, 5)
	buf.Mask[0] = FillBit
	buf.Mask[1] = CloudBit | ShadowBit // cloud wins over shadow
	buf.Mask[2] = ShadowBit | SnowBit  // shadow wins over snow
	buf.Mask[3] = SnowBit | WaterBit   // snow wins over water
	buf.Mask[4] = WaterBit

	out, stats := Flatten(buf)

	want := []byte{OutFill, OutCloud, OutCloudShadow, OutSnow, OutWater}
	for i, w := range want {
		if out[i] != w {
			t.Errorf("pixel %d = %d, want %d", i, out[i], w)
		}
	}
	if stats.Total != 4 || stats.Fill != 1 || stats.Cloud != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
