package cfmask

// cloudRun is a maximal horizontal run of cloud-bit pixels within one row.
// nextIndex chains runs belonging to the same cloud into a singly linked
// list addressed by slice index, mirroring RLE_T.next_index.
type cloudRun struct {
	row, startCol, colCount int
	nextIndex               int
}

// createCloudRuns scans each row of mask independently for maximal runs of
// CloudBit pixels. Grounded verbatim on
// original_source/not-validated-prototype-l8_cfmask/src/identify_clouds.c's
// create_cloud_runs: Go's append-driven growth stands in for the C
// implementation's realloc-doubling-from-10000 strategy.
func createCloudRuns(mask []byte, rows, cols int) []cloudRun {
	runs := make([]cloudRun, 0, 10000)
	for row := 0; row < rows; row++ {
		rowMask := mask[row*cols : row*cols+cols]
		col := 0
		for col < cols {
			if rowMask[col]&CloudBit == 0 {
				col++
				continue
			}
			runLen := 1
			for col+runLen < cols && rowMask[col+runLen]&CloudBit != 0 {
				runLen++
			}
			runs = append(runs, cloudRun{row: row, startCol: col, colCount: runLen, nextIndex: -1})
			col += runLen + 1
		}
	}
	return runs
}

// CloudLabels is the result of identifyClouds: a per-pixel cloud number
// (0 = no cloud), the pixel count per cloud, and the number of clouds. The
// per-cloud run lists stay internal to identifyClouds.
type CloudLabels struct {
	CloudMap        []int // rows*cols, 0 = not a cloud pixel
	PixelCount      []int // indexed by cloud number, [0] unused
	NumClouds       int   // number of distinct clouds (cloud numbers are 1..NumClouds)
}

// identifyClouds groups individual CloudBit pixels into connected cloud
// objects via row-wise RLE plus a lazy cross-row merge: each run checks the
// previous row for overlapping cloud numbers (including the one-pixel
// diagonal tolerance on both ends), adopts the first one found, then keeps
// scanning the rest of its column range to merge in any *additional*
// distinct clouds it touches. Merges are applied lazily (previous row and
// already-painted current-row pixels are rewritten in place); a final pass
// reconciles cloud_map and tallies pixel counts. Grounded verbatim on
// identify_clouds.c's identify_clouds.
func identifyClouds(mask []byte, rows, cols int) (*CloudLabels, error) {
	runs := createCloudRuns(mask, rows, cols)
	cloudMap := make([]int, rows*cols)
	if len(runs) == 0 {
		return &CloudLabels{CloudMap: cloudMap, PixelCount: nil, NumClouds: 0}, nil
	}

	// cloudLookup[n] = index of the head run for cloud number n, or -1 once
	// that number has been merged away. cloudLookup[0] is reserved.
	cloudLookup := make([]int, len(runs)+1)
	cloudLookup[0] = -1
	nextCloudNumber := 1

	for ri := range runs {
		run := &runs[ri]
		endCol := run.startCol + run.colCount
		assigned := 0
		useNext := true

		if run.row > 0 {
			prevRow := cloudMap[(run.row-1)*cols : (run.row-1)*cols+cols]
			start := run.startCol - 1
			if start < 0 {
				start = 0
			}

			col := start
			for ; col <= endCol && col < cols; col++ {
				if n := prevRow[col]; n != 0 {
					run.nextIndex = cloudLookup[n]
					cloudLookup[n] = ri
					curRow := cloudMap[run.row*cols : run.row*cols+cols]
					for fc := run.startCol; fc < endCol; fc++ {
						curRow[fc] = n
					}
					assigned = n
					useNext = false
					col++
					break
				}
			}

			for ; col <= endCol && col < cols; col++ {
				n := prevRow[col]
				if n == 0 || n == assigned {
					continue
				}
				curRow := cloudMap[run.row*cols : run.row*cols+cols]
				for fc := 0; fc < cols; fc++ {
					if prevRow[fc] == n {
						prevRow[fc] = assigned
					}
				}
				for fc := 0; fc < col; fc++ {
					if curRow[fc] == n {
						curRow[fc] = assigned
					}
				}
				last := cloudLookup[n]
				for runs[last].nextIndex != -1 {
					last = runs[last].nextIndex
				}
				runs[last].nextIndex = cloudLookup[assigned]
				cloudLookup[assigned] = cloudLookup[n]
				cloudLookup[n] = -1
			}
		}

		if useNext {
			curRow := cloudMap[run.row*cols : run.row*cols+cols]
			for fc := run.startCol; fc < endCol; fc++ {
				curRow[fc] = nextCloudNumber
			}
			run.nextIndex = -1
			cloudLookup[nextCloudNumber] = ri
			nextCloudNumber++
			if nextCloudNumber < 0 {
				return nil, ErrTooManyClouds
			}
		}
	}

	// Condense the lookup table, dropping merged-away (-1) slots.
	cloudCount := nextCloudNumber
	next := 1
	for ci := 1; ci < cloudCount; ci++ {
		if cloudLookup[ci] != -1 {
			cloudLookup[next] = cloudLookup[ci]
			next++
		}
	}
	cloudCount = next

	pixelCount := make([]int, cloudCount)
	for ci := 1; ci < cloudCount; ci++ {
		runIdx := cloudLookup[ci]
		count := 0
		for runIdx != -1 {
			run := runs[runIdx]
			curRow := cloudMap[run.row*cols : run.row*cols+cols]
			endCol := run.startCol + run.colCount
			for fc := run.startCol; fc < endCol; fc++ {
				curRow[fc] = ci
			}
			count += run.colCount
			runIdx = run.nextIndex
		}
		pixelCount[ci] = count
	}

	return &CloudLabels{CloudMap: cloudMap, PixelCount: pixelCount, NumClouds: cloudCount - 1}, nil
}
