package cfmask

// Stats summarizes the categorical coverage of a flattened scene, matching
// the percent-coverage fields the ESPA metadata adapter reports alongside
// the output bands. Total is the non-fill pixel count (data_count), not the
// scene's raw pixel count, so PercentOf reports coverage of actual data.
type Stats struct {
	Clear, Water, CloudShadow, Snow, Cloud, Fill int
	Total                                        int
}

func (s Stats) PercentOf(count int) float64 {
	if s.Total == 0 {
		return 0
	}
	return 100.0 * float64(count) / float64(s.Total)
}

// Flatten collapses the per-pixel bitmask into the single-byte categorical
// output band, with cloud taking priority over shadow over snow over
// water, and fill overriding everything. Grounded on
// potential_cloud_shadow_snow_mask.c / object_cloud_shadow_match.c's final
// pixel_mask -> output-byte pass.
func Flatten(buf *Buffers) ([]byte, Stats) {
	out := make([]byte, len(buf.Mask))
	var stats Stats
	for i, m := range buf.Mask {
		switch {
		case m&FillBit != 0:
			out[i] = OutFill
			stats.Fill++
		case m&CloudBit != 0:
			out[i] = OutCloud
			stats.Cloud++
		case m&ShadowBit != 0:
			out[i] = OutCloudShadow
			stats.CloudShadow++
		case m&SnowBit != 0:
			out[i] = OutSnow
			stats.Snow++
		case m&WaterBit != 0:
			out[i] = OutWater
			stats.Water++
		default:
			out[i] = OutClear
			stats.Clear++
		}
	}
	stats.Total = len(buf.Mask) - stats.Fill
	return out, stats
}
