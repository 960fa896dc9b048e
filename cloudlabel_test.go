package cfmask

import "testing"

func TestIdentifyCloudsSingleBlob(t *testing.T) {
	rows, cols := 3, 3
	mask := make([]byte, rows*cols)
	for _, i := range []int{0, 1, 3, 4} {
		mask[i] = CloudBit
	}
	labels, err := identifyClouds(mask, rows, cols)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if labels.NumClouds != 1 {
		t.Fatalf("NumClouds = %d, want 1", labels.NumClouds)
	}
	if labels.PixelCount[1] != 4 {
		t.Errorf("PixelCount[1] = %d, want 4", labels.PixelCount[1])
	}
}

func TestIdentifyCloudsTwoDisjointBlobs(t *testing.T) {
	rows, cols := 1, 5
	mask := []byte{CloudBit, 0, 0, 0, CloudBit}
	labels, err := identifyClouds(mask, rows, cols)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if labels.NumClouds != 2 {
		t.Fatalf("NumClouds = %d, want 2", labels.NumClouds)
	}
}

func TestIdentifyCloudsDiagonalMerge(t *testing.T) {
	// Two runs on adjacent rows offset diagonally should merge into one
	// cloud, per the one-pixel diagonal tolerance on the overlap check.
	rows, cols := 2, 4
	mask := []byte{
		CloudBit, CloudBit, 0, 0,
		0, 0, CloudBit, CloudBit,
	}
	labels, err := identifyClouds(mask, rows, cols)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if labels.NumClouds != 1 {
		t.Fatalf("NumClouds = %d, want 1 (diagonal merge)", labels.NumClouds)
	}
}

func TestIdentifyCloudsNoClouds(t *testing.T) {
	mask := make([]byte, 9)
	labels, err := identifyClouds(mask, 3, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if labels.NumClouds != 0 {
		t.Errorf("NumClouds = %d, want 0", labels.NumClouds)
	}
}
