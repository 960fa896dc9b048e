// Package esun loads the Earth-Sun distance table used by the saturation
// ceiling formula for pre-Landsat-8 sensors.
package esun

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

const tableFile = "EarthSunDistance.txt"

// LoadTable reads the 366-row (one per possible day-of-year, including the
// leap-year 366th) Earth-Sun distance table located at
// $ESUN/EarthSunDistance.txt, grounded on
// original_source/cfmask/src/input.c's OpenInput: the ESUN environment
// variable names the directory, and the file is read as a flat list of
// 366 floats (astronomical units), one per line.
func LoadTable() ([366]float64, error) {
	var table [366]float64

	dir := os.Getenv("ESUN")
	if dir == "" {
		return table, fmt.Errorf("cfmask: ESUN environment variable is not set")
	}

	f, err := os.Open(filepath.Join(dir, tableFile))
	if err != nil {
		return table, fmt.Errorf("cfmask: opening Earth-Sun distance table: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for i := 0; i < 366; i++ {
		if !scanner.Scan() {
			return table, fmt.Errorf("cfmask: end of file met before reading all 366 Earth-Sun distance values")
		}
		var v float64
		if _, err := fmt.Sscanf(scanner.Text(), "%f", &v); err != nil {
			return table, fmt.Errorf("cfmask: parsing Earth-Sun distance table line %d: %w", i+1, err)
		}
		table[i] = v
	}
	return table, nil
}
