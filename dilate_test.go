package cfmask

import "testing"

func TestDilateBitGrowsWindow(t *testing.T) {
	rows, cols := 3, 3
	mask := make([]byte, rows*cols)
	mask[4] = CloudBit // center pixel
	out := make([]byte, rows*cols)

	dilateBit(mask, rows, cols, 1, CloudBit, out)

	for i := 0; i < rows*cols; i++ {
		if out[i]&CloudBit == 0 {
			t.Errorf("pixel %d: expected CloudBit set within a radius-1 dilation of the center", i)
		}
	}
}

func TestDilateBitSkipsFillOutput(t *testing.T) {
	rows, cols := 1, 3
	mask := []byte{CloudBit, 0, 0}
	out := []byte{0, FillBit, 0}

	dilateBit(mask, rows, cols, 2, CloudBit, out)

	if out[1]&CloudBit != 0 {
		t.Error("fill pixel should never receive a dilated bit")
	}
	if out[2]&CloudBit == 0 {
		t.Error("non-fill neighbor should receive the dilated bit")
	}
}
