package cfmask

import (
	"math"

	"github.com/sirupsen/logrus"
)

const (
	minCloudObj      = 9       // clouds at or below this pixel count are discarded as noise
	maxCloudType     = 3000000 // safety bound on cloud-pixel collection per object
	platformHeightM  = 705000.0
	minCloudHeightM  = 200.0
	maxCloudHeightM  = 12000.0
	dryLapseRate     = 9.8 // K/km
	wetLapseRate     = 6.5
	maxSimilarity    = 0.95
)

// viewGeometry holds the sun-relative scan-line geometry derived from the
// image's four extreme corner pixels, used to project a cloud pixel onto
// its predicted shadow location at a given cloud-base height.
type viewGeometry struct {
	a, b, c                float64
	invABDistance          float64
	invCosOmigaPerMinusPar float64
	cosOmigaPar, sinOmigaPar float64
}

// computeViewGeo is grounded verbatim on object_cloud_shadow_match.c's
// viewgeo: it fits the mean along-track slope from the upper and lower
// scan-line edges, builds the perpendicular-to-track line through the
// scene, and caches the trig terms mat_truecloud needs per pixel.
func computeViewGeo(xul, yul, xur, yur, xll, yll, xlr, ylr float64) viewGeometry {
	kUpper := safeRatio(yur-yul, xur-xul)
	kLower := safeRatio(ylr-yll, xlr-xll)
	kAver := (kUpper + kLower) / 2.0
	omigaPar := math.Atan(kAver)

	a := yul - yll
	b := xll - xul
	c := yll*xul - xll*yul
	omigaPer := math.Atan(safeRatio(b, a))

	return viewGeometry{
		a: a, b: b, c: c,
		invABDistance:          1.0 / math.Sqrt(a*a+b*b),
		invCosOmigaPerMinusPar: 1.0 / math.Cos(omigaPer-omigaPar),
		cosOmigaPar:            math.Cos(omigaPar),
		sinOmigaPar:            math.Sin(omigaPar),
	}
}

// matTrueCloud projects pixel (x,y) by h meters of cloud-base height along
// the scan-perpendicular axis, grounded verbatim on mat_truecloud.
func matTrueCloud(x, y, h float64, g viewGeometry) (xNew, yNew float64) {
	dist := (g.a*x + g.b*y + g.c) * g.invABDistance
	distPar := dist * g.invCosOmigaPerMinusPar
	distMove := distPar * h / platformHeightM
	deltaX := distMove * g.cosOmigaPar
	deltaY := distMove * g.sinOmigaPar
	return x + deltaX, y + deltaY
}

type sunGeometry struct {
	tanSunElevation float64
	shadowUnitX     float64
	shadowUnitY     float64
	sunAzimuth      float64
	iStep           int
	invShadowStep   float64
}

func computeSunGeometry(scn *Scene) sunGeometry {
	sunEle := 90 - scn.SunZenith
	tanSunEle := math.Tan(sunEle * math.Pi / 180.0)
	sunTazi := scn.SunAzimuth - 90
	pixelSize := scn.PixelSizeX

	iStep := int(math.Round(2 * pixelSize * tanSunEle))
	if float64(iStep) < 2*pixelSize {
		iStep = int(math.Round(2 * pixelSize))
	}

	return sunGeometry{
		tanSunElevation: tanSunEle,
		shadowUnitX:     math.Cos(sunTazi * math.Pi / 180.0),
		shadowUnitY:     math.Sin(sunTazi * math.Pi / 180.0),
		sunAzimuth:      scn.SunAzimuth,
		iStep:           iStep,
		invShadowStep:   1.0 / (pixelSize * tanSunEle),
	}
}

// extremeCorners scans the four edges of the non-fill footprint for the
// image's upper-left, upper-right, lower-left and lower-right extreme
// pixels, the anchor points computeViewGeo needs.
func extremeCorners(buf *Buffers) (ul, ur, ll, lr [2]float64) {
	cols := buf.Cols
	isValid := func(i int) bool { return buf.Mask[i]&FillBit == 0 }

	findInRow := func(r int, leftToRight bool) (int, bool) {
		if leftToRight {
			for c := 0; c < cols; c++ {
				if isValid(r*cols + c) {
					return c, true
				}
			}
		} else {
			for c := cols - 1; c >= 0; c-- {
				if isValid(r*cols + c) {
					return c, true
				}
			}
		}
		return 0, false
	}

	for r := 0; r < buf.Rows; r++ {
		if c, ok := findInRow(r, true); ok {
			ul = [2]float64{float64(c), float64(r)}
			break
		}
	}
	for r := 0; r < buf.Rows; r++ {
		if c, ok := findInRow(r, false); ok {
			ur = [2]float64{float64(c), float64(r)}
			break
		}
	}
	for r := buf.Rows - 1; r >= 0; r-- {
		if c, ok := findInRow(r, true); ok {
			ll = [2]float64{float64(c), float64(r)}
			break
		}
	}
	for r := buf.Rows - 1; r >= 0; r-- {
		if c, ok := findInRow(r, false); ok {
			lr = [2]float64{float64(c), float64(r)}
			break
		}
	}
	return
}

// cloudPixels records a cloud object's member pixels for the height search.
type cloudPixels struct {
	rows, cols []int
	thermal    []int16
}

func gatherCloudPixels(labels *CloudLabels, cols int) map[int]*cloudPixels {
	out := make(map[int]*cloudPixels)
	for i, n := range labels.CloudMap {
		if n == 0 {
			continue
		}
		cp, ok := out[n]
		if !ok {
			cp = &cloudPixels{}
			out[n] = cp
		}
		cp.rows = append(cp.rows, i/cols)
		cp.cols = append(cp.cols, i%cols)
	}
	return out
}

// RunOCSM matches each surviving cloud object to its shadow by projecting
// it along the sun-shadow vector over a search of candidate cloud-base
// heights, taking the height whose projection best overlaps an unassigned
// shadow-candidate pixel. Grounded on
// object_cloud_shadow_match.c's object_cloud_shadow_match.
func RunOCSM(scn *Scene, buf *Buffers, th *PCSMThresholds, cldpix, sdpix int, log *logrus.Entry) error {
	rows, cols := buf.Rows, buf.Cols
	n := rows * cols

	cloudCounter, imageryPixelCount := 0, 0
	for i := 0; i < n; i++ {
		if buf.Mask[i]&FillBit != 0 {
			continue
		}
		imageryPixelCount++
		if buf.Mask[i]&CloudBit != 0 {
			cloudCounter++
		}
	}
	revisedPTM := safeRatio(float64(cloudCounter), float64(max1(imageryPixelCount)))

	calMask := make([]byte, n)

	if th.ClearPTM <= 0.1 || revisedPTM >= 0.90 {
		log.Warn("insufficient clear pixels or excessive cloud cover; skipping geometric shadow match")
		for i := 0; i < n; i++ {
			if buf.Mask[i]&FillBit == 0 && buf.Mask[i]&CloudBit == 0 {
				buf.Mask[i] |= ShadowBit
			}
		}
		dilateBit(copyMask(buf.Mask, CloudBit), rows, cols, cldpix, CloudBit, buf.Mask)
		dilateBit(copyMask(buf.Mask, ShadowBit), rows, cols, sdpix, ShadowBit, buf.Mask)
		return nil
	}

	sun := computeSunGeometry(scn)
	ul, ur, ll, lr := extremeCorners(buf)
	geo := computeViewGeo(ul[0], ul[1], ur[0], ur[1], ll[0], ll[1], lr[0], lr[1])

	labels, err := identifyClouds(extractBit(buf.Mask, CloudBit), rows, cols)
	if err != nil {
		return err
	}

	pixelsByCloud := gatherCloudPixels(labels, cols)
	for i, n := range labels.CloudMap {
		if n != 0 && labels.PixelCount[n] > minCloudObj {
			calMask[i] |= CloudBit
		}
	}

	for cloudID, cp := range pixelsByCloud {
		count := labels.PixelCount[cloudID]
		if count <= minCloudObj || count > maxCloudType {
			continue
		}

		tSimilar, tBuffer := 0.1, 0.98
		if count <= int(0.1*float64(imageryPixelCount)) {
			tSimilar, tBuffer = 0.3, 0.95
		}

		tempObj := make([]int16, 0, count)
		if buf.HasThermal() {
			for k := range cp.rows {
				tempObj = append(tempObj, buf.Bands[Thermal][cp.rows[k]*cols+cp.cols[k]])
			}
		}

		minHeight, maxHeight := minCloudHeightM, maxCloudHeightM
		var tObj float64
		if buf.HasThermal() && len(tempObj) > 0 {
			radius := math.Sqrt(float64(count) / (2 * math.Pi))
			const numPix = 3.0
			pctObj := ((radius - numPix) * (radius - numPix)) / (radius * radius)
			if pctObj >= 1.0 {
				min, _ := minMaxInt16(tempObj)
				tObj = float64(min)
			} else {
				tObj = percentileInt16(tempObj, 100*pctObj)
			}
			tObjInt := math.Round(tObj)
			for k, t := range tempObj {
				if float64(t) > tObjInt {
					tempObj[k] = int16(tObjInt)
				}
			}

			mh := math.Round(10 * (th.TempLow - tObj) / dryLapseRate)
			xh := math.Round(10 * (th.TempHigh - tObj) / wetLapseRate)
			if mh > minHeight {
				minHeight = mh
			}
			if xh < maxHeight {
				maxHeight = xh
			}
		}
		if minHeight > maxHeight {
			continue
		}

		recordThresh := 0.0
		var matchedPositions [][2]int

		for baseH := minHeight; baseH < maxHeight; baseH += float64(sun.iStep) {
			var matchAll, totalAll, outAll int
			projected := make([][2]int, 0, len(cp.rows))
			for k := range cp.rows {
				h := baseH
				if buf.HasThermal() && len(tempObj) > 0 {
					h = 10*(tObj-float64(tempObj[k]))*(1.0/wetLapseRate) + baseH
				}
				x, y := matTrueCloud(float64(cp.cols[k]), float64(cp.rows[k]), h, geo)
				iXY := h * sun.invShadowStep
				if sun.sunAzimuth-180 < 1e-5 {
					x -= iXY * sun.shadowUnitX
					y -= iXY * sun.shadowUnitY
				} else {
					x += iXY * sun.shadowUnitX
					y += iXY * sun.shadowUnitY
				}
				row, col := int(math.Round(y)), int(math.Round(x))
				projected = append(projected, [2]int{row, col})

				if row < 0 || row >= rows || col < 0 || col >= cols {
					outAll++
					continue
				}
				idx := row*cols + col
				if labels.CloudMap[idx] == cloudID {
					// Landing back on the cloud's own pixels is excluded
					// from both match_all and total_all entirely.
					continue
				}
				totalAll++
				if buf.Mask[idx]&(CloudBit|ShadowBit|FillBit) != 0 {
					matchAll++
				}
			}
			matchAll += outAll
			totalAll += outAll
			if totalAll == 0 {
				continue
			}
			threshMatch := float64(matchAll) / float64(totalAll)

			// The else-if/else below fire when the outer condition is
			// false — score decayed below the buffer tolerance, the
			// height ceiling was reached, or record_thresh saturated —
			// not only on an improved score, mirroring
			// object_cloud_shadow_match.c's height-search iteration.
			if threshMatch >= tBuffer*recordThresh && baseH < maxHeight-float64(sun.iStep) && recordThresh < maxSimilarity {
				if threshMatch > recordThresh {
					recordThresh = threshMatch
					matchedPositions = projected
				}
			} else if recordThresh > tSimilar {
				for _, pos := range matchedPositions {
					r := clampInt(pos[0], 0, rows-1)
					c := clampInt(pos[1], 0, cols-1)
					calMask[r*cols+c] |= ShadowBit
				}
				break
			} else {
				recordThresh = 0
			}
		}
	}

	dilateBit(copyMaskBits(calMask, CloudBit), rows, cols, cldpix, CloudBit, buf.Mask)
	dilateBit(copyMaskBits(calMask, ShadowBit), rows, cols, sdpix, ShadowBit, buf.Mask)
	return nil
}

func copyMask(src []byte, bit byte) []byte {
	out := make([]byte, len(src))
	for i, v := range src {
		if v&bit != 0 {
			out[i] |= bit
		}
		if v&FillBit != 0 {
			out[i] |= FillBit
		}
	}
	return out
}

func copyMaskBits(src []byte, bit byte) []byte { return copyMask(src, bit) }

func extractBit(mask []byte, bit byte) []byte {
	out := make([]byte, len(mask))
	for i, v := range mask {
		if v&bit != 0 {
			out[i] = bit
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
