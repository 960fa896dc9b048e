// Package bandio reads the raw 16-bit signed little-endian band rasters
// ESPA scenes are delivered as, and writes the raw 8-bit output rasters.
// The read/write shape is grounded on
// the teacher's Stream abstraction (an io.ReadSeeker wrapped with typed
// accessors), adapted here from a multibeam-record stream to a flat
// fixed-size raster.
package bandio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// ReadInt16Band reads a whole band of rows*cols little-endian int16 values
// from path.
func ReadInt16Band(path string, rows, cols int) ([]int16, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cfmask: opening band %s: %w", path, err)
	}
	defer f.Close()

	n := rows * cols
	raw := make([]byte, n*2)
	if _, err := io.ReadFull(f, raw); err != nil {
		return nil, fmt.Errorf("cfmask: reading band %s: %w", path, err)
	}

	out := make([]int16, n)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(raw[i*2 : i*2+2]))
	}
	return out, nil
}

// WriteByteBand writes a single-byte-per-pixel raster (the categorical
// cfmask band or the confidence band) to path.
func WriteByteBand(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cfmask: creating output band %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("cfmask: writing output band %s: %w", path, err)
	}
	return nil
}
