package cfmask

// dilateBit grows every set bit of searchBit in mask by a (2*radius+1)
// square structuring element: a pixel not already set gets set if any
// pixel in its window already carries the bit. Fill pixels in out are left
// untouched. Grounded on
// original_source/not-validated-prototype-l8_cfmask/src/object_cloud_shadow_match.c's
// image_dilate.
func dilateBit(mask []byte, rows, cols, radius int, searchBit byte, out []byte) {
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if out[i]&FillBit != 0 {
				continue
			}
			if mask[i]&searchBit != 0 {
				out[i] |= searchBit
				continue
			}
			found := false
			for dr := -radius; dr <= radius && !found; dr++ {
				nr := r + dr
				if nr < 0 || nr >= rows {
					continue
				}
				for dc := -radius; dc <= radius; dc++ {
					nc := c + dc
					if nc < 0 || nc >= cols {
						continue
					}
					if mask[nr*cols+nc]&searchBit != 0 {
						found = true
						break
					}
				}
			}
			if found {
				out[i] |= searchBit
			}
		}
	}
}
