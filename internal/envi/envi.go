// Package envi writes the ENVI-format ".hdr" sidecar describing a raw
// single-band raster, the minimal companion a band written by bandio
// needs to be readable by downstream GIS tooling.
package envi

import (
	"fmt"
	"os"
)

// Header describes the fields this pipeline's two output bands need.
type Header struct {
	Samples, Lines int
	DataType       int // ENVI data type code: 1 = byte, 2 = int16
	Interleave     string
	ByteOrder      int // 0 = little-endian
	MapInfo        string
}

const template = `ENVI
description = {cfmask output}
samples = %d
lines = %d
bands = 1
header offset = 0
file type = ENVI Standard
data type = %d
interleave = %s
byte order = %d
`

// Write emits path with the given header fields.
func Write(path string, h Header) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cfmask: creating ENVI header %s: %w", path, err)
	}
	defer f.Close()

	interleave := h.Interleave
	if interleave == "" {
		interleave = "bsq"
	}
	_, err = fmt.Fprintf(f, template, h.Samples, h.Lines, h.DataType, interleave, h.ByteOrder)
	if err != nil {
		return fmt.Errorf("cfmask: writing ENVI header %s: %w", path, err)
	}
	return nil
}
