package cfmask

import (
	"math"
	"sync"

	"github.com/alitto/pond"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Pixel bitmask bits (Mask byte per pixel).
const (
	WaterBit  byte = 0x01
	ShadowBit byte = 0x02
	SnowBit   byte = 0x04
	CloudBit  byte = 0x08
	FillBit   byte = 0x10
)

// Clear-mask bits (ClearMask byte per pixel), valid only where FillBit is
// not set.
const (
	ClearBit      byte = 0x01
	ClearWaterBit byte = 0x02
	ClearLandBit  byte = 0x04
)

// Confidence levels for the output confidence band.
const (
	ConfidenceNone byte = 0
	ConfidenceLow  byte = 1
	ConfidenceMed  byte = 2
	ConfidenceHigh byte = 3
	ConfidenceFill byte = 255
)

// Categorical output pixel values (flatten.go's emitted band).
const (
	OutClear       byte = 0
	OutWater       byte = 1
	OutCloudShadow byte = 2
	OutSnow        byte = 3
	OutCloud       byte = 4
	OutFill        byte = 255
)

// Buffers holds the per-scene band data and the working masks threaded
// through every pass. It is the mutable counterpart to the immutable Scene,
// per the design note against package-level globals.
type Buffers struct {
	Rows, Cols int
	Bands      [numBandRoles][]int16
	Mask       []byte
	ClearMask  []byte
	Confidence []byte
}

// NewBuffers allocates a zeroed Buffers sized for rows x cols.
func NewBuffers(rows, cols int) *Buffers {
	b := &Buffers{Rows: rows, Cols: cols}
	for i := range b.Bands {
		// Thermal/Cirrus are left nil until SetBand is called; reflective
		// bands are expected for every scene.
		_ = i
	}
	b.Mask = make([]byte, rows*cols)
	b.ClearMask = make([]byte, rows*cols)
	b.Confidence = make([]byte, rows*cols)
	return b
}

func (b *Buffers) SetBand(role BandRole, data []int16) error {
	if len(data) != b.Rows*b.Cols {
		return ErrBandSizeMismatch
	}
	b.Bands[role] = data
	return nil
}

func (b *Buffers) HasThermal() bool { return b.Bands[Thermal] != nil }
func (b *Buffers) HasCirrus() bool  { return b.Bands[Cirrus] != nil }

// PCSMThresholds carries the dynamic, clear-pixel-derived thresholds
// computed in passes 2-4, needed by later OCSM height-search refinement.
type PCSMThresholds struct {
	TempLow, TempHigh, WaterTemp float64
	TempDiff                     float64
	ClearMask, WaterClearMask    float64
	ClearPTM, LandPTM, WaterPTM  float64
}

// rowRange splits [0,rows) into contiguous chunks for pond-based row-striped
// fan-out, the shape used throughout passes 1/3/4/6.
func rowRange(rows, chunks int) [][2]int {
	if chunks < 1 {
		chunks = 1
	}
	if chunks > rows {
		chunks = rows
	}
	size := (rows + chunks - 1) / chunks
	out := make([][2]int, 0, chunks)
	for r := 0; r < rows; r += size {
		end := r + size
		if end > rows {
			end = rows
		}
		out = append(out, [2]int{r, end})
	}
	return out
}

type passCounters struct {
	clear, clearLand, clearWater, imageData int
}

// RunPCSM executes the six-pass potential cloud/shadow/snow/water mask.
// pool fans out the row-striped per-pixel passes across workers, mirroring
// the teacher's pond.New(...) worker-pool idiom applied here at row-chunk
// granularity instead of whole-file granularity.
func RunPCSM(scn *Scene, buf *Buffers, prob float64, pool *pond.WorkerPool, log *logrus.Entry) (*PCSMThresholds, error) {
	for _, role := range ReflectiveRoles {
		if buf.Bands[role] == nil {
			return nil, ErrNoBands
		}
	}
	nWorkers := 1
	if pool != nil {
		nWorkers = pool.MaxWorkers()
	}
	chunks := rowRange(buf.Rows, nWorkers)

	log.WithField("pass", 1).Info("basic per-pixel tests")
	counters := pcsmPass1(scn, buf, pool, chunks)

	clearPTM := 100.0 * float64(counters.clear) / float64(max1(counters.imageData))
	landPTM := 100.0 * float64(counters.clearLand) / float64(max1(counters.imageData))
	waterPTM := 100.0 * float64(counters.clearWater) / float64(max1(counters.imageData))

	th := &PCSMThresholds{ClearPTM: clearPTM, LandPTM: landPTM, WaterPTM: waterPTM}

	log.WithField("pass", 2).Info("thermal percentile thresholds")
	pcsmPass2(scn, buf, th, clearPTM, landPTM, waterPTM)

	log.WithField("pass", 3).Info("cloud probabilities")
	landProb, waterProb := pcsmPass3(scn, buf, th, pool, chunks)

	log.WithField("pass", 4).Info("dynamic thresholds and final cloud decision")
	pcsmPass4(scn, buf, th, landProb, waterProb, prob, landPTM, waterPTM, pool, chunks)

	log.WithField("pass", 5).Info("boundary percentiles and fill-local-minima")
	filledNIR, filledSWIR1, err := pcsmPass5(buf)
	if err != nil {
		return nil, err
	}

	log.WithField("pass", 6).Info("potential shadow from fill difference")
	pcsmPass6(buf, filledNIR, filledSWIR1, pool, chunks)

	return th, nil
}

func max1(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

// basicCloudTest: (ndsi-0.8)<eps && (ndvi-0.8)<eps && swir2>300, further
// ANDed with thermal<2700 only when thermal is available. The
// pre-thermal-conjunction truthiness is preserved exactly: thermal only
// gates the result, it never substitutes for a missing visible test.
func basicCloudTest(ndsi, ndvi float64, swir2, thermal int16, hasThermal bool) bool {
	const eps = 1e-5
	ok := (ndsi-0.8) < eps && (ndvi-0.8) < eps && swir2 > 300
	if hasThermal {
		ok = ok && thermal < 2700
	}
	return ok
}

func basicSnowTest(ndsi float64, nir, green, thermal int16, hasThermal bool) bool {
	const eps = 1e-5
	ok := (ndsi-0.15) > eps && nir > 1100 && green > 1000
	if hasThermal {
		ok = ok && thermal < 1000
	}
	return ok
}

func zheWaterTest(ndvi float64, nir int16) bool {
	return (ndvi <= 0.01 && nir < 1100) || (ndvi > 0 && ndvi <= 0.1 && nir < 500)
}

// whiteness returns the mean absolute deviation of blue/green/red from
// their mean, normalized by the mean, and a saturation flag (true if any
// visible band is at or above its saturation ceiling minus one).
func whiteness(blue, green, red int16, satCeil map[BandRole]int) (float64, bool) {
	mean := (float64(blue) + float64(green) + float64(red)) / 3.0
	if mean == 0 {
		return 0, false
	}
	w := (math.Abs(float64(blue)-mean) + math.Abs(float64(green)-mean) + math.Abs(float64(red)-mean)) / mean

	satBV := int(blue) >= satCeil[Blue]-1 || int(green) >= satCeil[Green]-1 || int(red) >= satCeil[Red]-1
	if satBV {
		w = 0
	}
	return w, satBV
}

func hotTest(blue, red int16, satBV bool) bool {
	const eps = 1e-5
	return (float64(blue)-0.5*float64(red)-800) > eps || satBV
}

func ratioTest(nir, swir1 int16) bool {
	const eps = 1e-5
	return float64(nir)/float64(swir1)-0.75 > eps
}

func cirrusTest(cirrus int16) bool {
	const eps = 1e-5
	return float64(cirrus)/400.0-0.25 > eps
}

func isFillPixel(buf *Buffers, i int) bool {
	for _, role := range ReflectiveRoles {
		if buf.Bands[role][i] == FillValue {
			return true
		}
	}
	if buf.HasThermal() && buf.Bands[Thermal][i] <= FillValue {
		return true
	}
	return false
}

func pcsmPass1(scn *Scene, buf *Buffers, pool *pond.WorkerPool, chunks [][2]int) passCounters {
	cols := buf.Cols
	partials := make([]passCounters, len(chunks))
	var wg sync.WaitGroup
	for ci, rng := range chunks {
		ci, rng := ci, rng
		run := func() {
			defer wg.Done()
			var pc passCounters
			for r := rng[0]; r < rng[1]; r++ {
				for c := 0; c < cols; c++ {
					i := r*cols + c
					if isFillPixel(buf, i) {
						buf.Mask[i] |= FillBit
						buf.Confidence[i] = ConfidenceFill
						continue
					}
					pc.imageData++

					blue, green, red := buf.Bands[Blue][i], buf.Bands[Green][i], buf.Bands[Red][i]
					nir, swir1, swir2 := buf.Bands[NIR][i], buf.Bands[SWIR1][i], buf.Bands[SWIR2][i]
					var thermal int16
					hasThermal := buf.HasThermal()
					if hasThermal {
						thermal = buf.Bands[Thermal][i]
					}

					ndvi := safeRatio(float64(nir)-float64(red), float64(nir)+float64(red))
					ndsi := safeRatio(float64(green)-float64(swir1), float64(green)+float64(swir1))

					isWater := zheWaterTest(ndvi, nir)
					if isWater {
						buf.Mask[i] |= WaterBit
					}

					if basicSnowTest(ndsi, nir, green, thermal, hasThermal) {
						buf.Mask[i] |= SnowBit
					}

					cloud := basicCloudTest(ndsi, ndvi, swir2, thermal, hasThermal)
					if cloud {
						w, satBV := whiteness(blue, green, red, scn.saturationCeiling)
						cloud = w < 0.7
						if cloud {
							cloud = hotTest(blue, red, satBV)
						}
						if cloud {
							cloud = ratioTest(nir, swir1)
						}
					}
					if scn.UseCirrus && buf.HasCirrus() {
						cloud = cloud || cirrusTest(buf.Bands[Cirrus][i])
					}
					if cloud {
						buf.Mask[i] |= CloudBit
					} else {
						pc.clear++
						if isWater {
							pc.clearWater++
						} else {
							pc.clearLand++
						}
					}
				}
			}
			partials[ci] = pc
		}
		wg.Add(1)
		if pool != nil {
			pool.Submit(run)
		} else {
			run()
		}
	}
	wg.Wait()

	var total passCounters
	for _, p := range partials {
		total.clear += p.clear
		total.clearLand += p.clearLand
		total.clearWater += p.clearWater
		total.imageData += p.imageData
	}
	return total
}

func safeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// pcsmPass2 collects thermal samples over provisional clear pixels and
// derives t_templ/t_temph/t_wtemp. Short-circuit A: when clearPTM (a
// percentage) is at or below 0.001, thresholds collapse and every non-cloud, non-fill pixel is
// marked SHADOW outright (the fill-respecting tightening of the original's
// unconditional sweep, per the Open Question resolution in DESIGN.md).
func pcsmPass2(scn *Scene, buf *Buffers, th *PCSMThresholds, clearPTM, landPTM, waterPTM float64) {
	const shortCircuitThreshold = 0.001

	if clearPTM <= shortCircuitThreshold {
		th.TempLow, th.TempHigh, th.WaterTemp, th.TempDiff = -1, -1, -1, 0
		for i := range buf.Mask {
			if buf.Mask[i]&FillBit != 0 || buf.Mask[i]&CloudBit != 0 {
				continue
			}
			buf.Mask[i] |= ShadowBit
		}
		return
	}

	landBit, waterBit := ClearLandBit, ClearWaterBit
	if landPTM < 0.1 {
		landBit = ClearBit
	}
	if waterPTM < 0.1 {
		waterBit = ClearBit
	}

	var landTemp, waterTemp []int16
	for i := range buf.Mask {
		if buf.Mask[i]&FillBit != 0 || buf.Mask[i]&CloudBit != 0 {
			continue
		}
		isWater := buf.Mask[i]&WaterBit != 0
		if isWater {
			buf.ClearMask[i] |= waterBit
		} else {
			buf.ClearMask[i] |= landBit
		}
		if !buf.HasThermal() {
			continue
		}
		t := buf.Bands[Thermal][i]
		if isWater {
			waterTemp = append(waterTemp, t)
		} else {
			landTemp = append(landTemp, t)
		}
	}

	if !buf.HasThermal() {
		return
	}

	const lowPct, highPct = 17.5, 82.5
	const buffer = 400.0

	if len(landTemp) > 0 {
		th.TempLow = percentileInt16(landTemp, lowPct) - buffer
		th.TempHigh = percentileInt16(landTemp, highPct) + buffer
	}
	if len(waterTemp) > 0 {
		th.WaterTemp = percentileInt16(waterTemp, highPct)
	}
	th.TempDiff = th.TempHigh - th.TempLow
}

// pcsmPass3 computes per-pixel cloud probability: brightness/temperature
// probability over water, variability/temperature probability over land.
func pcsmPass3(scn *Scene, buf *Buffers, th *PCSMThresholds, pool *pond.WorkerPool, chunks [][2]int) (land, water []float64) {
	n := buf.Rows * buf.Cols
	land = make([]float64, n)
	water = make([]float64, n)
	var wg sync.WaitGroup
	for _, rng := range chunks {
		rng := rng
		run := func() {
			defer wg.Done()
			for i := rng[0] * buf.Cols; i < rng[1]*buf.Cols; i++ {
				if buf.Mask[i]&FillBit != 0 {
					continue
				}
				isWater := buf.Mask[i]&WaterBit != 0
				if isWater {
					brightness := clamp01(float64(buf.Bands[SWIR1][i]) / 1100.0)
					prob := brightness
					if buf.HasThermal() {
						wtempProb := lo.Max([]float64{0, (th.WaterTemp - float64(buf.Bands[Thermal][i])) / 400.0})
						prob *= wtempProb
					}
					final := 100.0 * prob
					if scn.UseCirrus && buf.HasCirrus() {
						final += 100.0 * float64(buf.Bands[Cirrus][i]) / 400.0
					}
					water[i] = final
					continue
				}

				blue, green, red := buf.Bands[Blue][i], buf.Bands[Green][i], buf.Bands[Red][i]
				nir, swir1 := buf.Bands[NIR][i], buf.Bands[SWIR1][i]
				ndvi := math.Max(0, safeRatio(float64(nir)-float64(red), float64(nir)+float64(red)))
				ndsi := math.Max(0, safeRatio(float64(green)-float64(swir1), float64(green)+float64(swir1)))
				w, _ := whiteness(blue, green, red, scn.saturationCeiling)
				variability := 1 - lo.Max([]float64{ndsi, ndvi, w})
				prob := variability
				if buf.HasThermal() && th.TempDiff != 0 {
					tempProb := lo.Max([]float64{0, (th.TempHigh - float64(buf.Bands[Thermal][i])) / th.TempDiff})
					prob *= tempProb
				}
				final := 100.0 * prob
				if scn.UseCirrus && buf.HasCirrus() {
					final += 100.0 * float64(buf.Bands[Cirrus][i]) / 400.0
				}
				land[i] = final
			}
		}
		wg.Add(1)
		if pool != nil {
			pool.Submit(run)
		} else {
			run()
		}
	}
	wg.Wait()
	return land, water
}

// pcsmPass4 derives the dynamic land/water cloud-probability thresholds
// from the 82.5th percentile of clear-pixel probabilities plus the
// configured cloud-probability bump, then makes the final cloud/no-cloud
// decision per pixel with a three-tier confidence assignment. Any pixel
// whose thermal value falls more than 3500 below t_templ+400 is forced
// CLOUD/HIGH unconditionally, overriding the probability test.
func pcsmPass4(scn *Scene, buf *Buffers, th *PCSMThresholds, land, water []float64, prob, landPTM, waterPTM float64, pool *pond.WorkerPool, chunks [][2]int) {
	var clearLandProbs, clearWaterProbs []float64
	for i := range buf.Mask {
		if buf.Mask[i]&FillBit != 0 || buf.Mask[i]&CloudBit != 0 {
			continue
		}
		if buf.Mask[i]&WaterBit != 0 {
			clearWaterProbs = append(clearWaterProbs, water[i])
		} else {
			clearLandProbs = append(clearLandProbs, land[i])
		}
	}
	clrMask := percentile(clearLandProbs, 82.5) + prob
	wclrMask := percentile(clearWaterProbs, 82.5) + prob
	th.ClearMask, th.WaterClearMask = clrMask, wclrMask

	var wg sync.WaitGroup
	for _, rng := range chunks {
		rng := rng
		run := func() {
			defer wg.Done()
			for i := rng[0] * buf.Cols; i < rng[1]*buf.Cols; i++ {
				if buf.Mask[i]&FillBit != 0 {
					continue
				}
				if buf.HasThermal() && float64(buf.Bands[Thermal][i]) < th.TempLow+400-3500 {
					buf.Mask[i] |= CloudBit
					buf.Confidence[i] = ConfidenceHigh
					continue
				}

				cloudBit := buf.Mask[i]&CloudBit != 0
				isWater := buf.Mask[i]&WaterBit != 0
				var aboveThreshold bool
				var p float64
				if isWater {
					p, aboveThreshold = water[i], water[i] > wclrMask
				} else {
					p, aboveThreshold = land[i], land[i] > clrMask
				}

				switch {
				case cloudBit && aboveThreshold:
					buf.Confidence[i] = ConfidenceHigh
				case p > (boolThreshold(isWater, wclrMask, clrMask) - 10):
					buf.Mask[i] &^= CloudBit
					buf.Confidence[i] = ConfidenceMed
				default:
					buf.Mask[i] &^= CloudBit
					buf.Confidence[i] = ConfidenceLow
				}
			}
		}
		wg.Add(1)
		if pool != nil {
			pool.Submit(run)
		} else {
			run()
		}
	}
	wg.Wait()
}

func boolThreshold(isWater bool, waterVal, landVal float64) float64 {
	if isWater {
		return waterVal
	}
	return landVal
}

// pcsmPass5 computes the 17.5th-percentile NIR/SWIR1 boundary values over
// clear-land pixels and runs fill-local-minima on the full NIR and SWIR1
// rasters. The two fills have no data dependency on each other, so they run
// as a two-task fork-join exactly as the original's
// "#pragma omp parallel sections" splits them.
func pcsmPass5(buf *Buffers) (filledNIR, filledSWIR1 []int16, err error) {
	var nirSamples, swir1Samples []int16
	for i := range buf.Mask {
		if buf.Mask[i]&FillBit != 0 || buf.Mask[i]&CloudBit != 0 || buf.Mask[i]&WaterBit != 0 {
			continue
		}
		nirSamples = append(nirSamples, buf.Bands[NIR][i])
		swir1Samples = append(swir1Samples, buf.Bands[SWIR1][i])
	}
	nirBoundary := int16(percentileInt16(nirSamples, 17.5))
	swir1Boundary := int16(percentileInt16(swir1Samples, 17.5))

	filledNIR = make([]int16, buf.Rows*buf.Cols)
	filledSWIR1 = make([]int16, buf.Rows*buf.Cols)

	var wg sync.WaitGroup
	var nirErr, swir1Err error
	wg.Add(2)
	go func() {
		defer wg.Done()
		nirErr = fillLocalMinima(buf.Bands[NIR], buf.Rows, buf.Cols, nirBoundary, filledNIR)
	}()
	go func() {
		defer wg.Done()
		swir1Err = fillLocalMinima(buf.Bands[SWIR1], buf.Rows, buf.Cols, swir1Boundary, filledSWIR1)
	}()
	wg.Wait()

	if nirErr != nil {
		return nil, nil, nirErr
	}
	if swir1Err != nil {
		return nil, nil, swir1Err
	}
	return filledNIR, filledSWIR1, nil
}

// pcsmPass6 flags potential shadow pixels where the filled (reconstructed)
// NIR/SWIR1 surface sits more than 200 DN above the observed value, then
// resolves water/cloud ambiguity in favor of cloud.
func pcsmPass6(buf *Buffers, filledNIR, filledSWIR1 []int16, pool *pond.WorkerPool, chunks [][2]int) {
	var wg sync.WaitGroup
	for _, rng := range chunks {
		rng := rng
		run := func() {
			defer wg.Done()
			for i := rng[0] * buf.Cols; i < rng[1]*buf.Cols; i++ {
				if buf.Mask[i]&FillBit != 0 {
					continue
				}
				nirDiff := int(filledNIR[i]) - int(buf.Bands[NIR][i])
				swir1Diff := int(filledSWIR1[i]) - int(buf.Bands[SWIR1][i])
				shadowProb := nirDiff
				if swir1Diff < shadowProb {
					shadowProb = swir1Diff
				}
				if shadowProb > 200 {
					buf.Mask[i] |= ShadowBit
				}
				if buf.Mask[i]&WaterBit != 0 && buf.Mask[i]&CloudBit != 0 {
					buf.Mask[i] &^= WaterBit
				}
			}
		}
		wg.Add(1)
		if pool != nil {
			pool.Submit(run)
		} else {
			run()
		}
	}
	wg.Wait()
}
