package cfmask

import (
	"sort"

	"github.com/samber/lo"
)

// percentile returns the value below which pct percent (0-100) of samples
// fall, using linear interpolation between the two bracketing order
// statistics. Grounded on misc.h's prctile/prctile2 signatures (declared
// but not shipped in the kept source set); since the exact histogram
// implementation did not survive the source filtering, this reproduces its
// documented behavior directly: a percentile over clear-pixel samples only,
// computed with the nearest-rank-with-interpolation convention used
// throughout the original for t_templ/t_temph/t_wtemp/clr_mask thresholds.
func percentile(samples []float64, pct float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}

	pos := (pct / 100.0) * float64(len(sorted)-1)
	lo_, hi := int(pos), int(pos)+1
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo_)
	return sorted[lo_]*(1-frac) + sorted[hi]*frac
}

// percentileInt16 is the int16-sample variant used for thermal and
// reflective-band boundary thresholds (t_templ, t_temph, t_wtemp,
// nir_boundary, swir1_boundary).
func percentileInt16(samples []int16, pct float64) float64 {
	asFloat := make([]float64, len(samples))
	for i, v := range samples {
		asFloat[i] = float64(v)
	}
	return percentile(asFloat, pct)
}

// clamp01 restricts a probability-like value to [0, 1].
func clamp01(v float64) float64 {
	return lo.Clamp(v, 0.0, 1.0)
}

// minMaxInt16 returns the min and max of a non-empty slice.
func minMaxInt16(samples []int16) (min, max int16) {
	min = lo.Min(samples)
	max = lo.Max(samples)
	return
}
