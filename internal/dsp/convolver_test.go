package dsp

import (
	"math"
	"testing"
)

// referenceConvolve computes the full linear convolution of x and h by
// direct summation, used as an oracle for the block-based FFT path.
func referenceConvolve(x, h []float64) []float64 {
	out := make([]float64, len(x)+len(h)-1)
	for i, xv := range x {
		if xv == 0 {
			continue
		}
		for j, hv := range h {
			out[i+j] += xv * hv
		}
	}
	return out
}

func TestOverlapSaveConvolverMatchesDirectConvolution(t *testing.T) {
	h := []float64{0.5, 0.25, 0.125, 0.0625}
	blockSize := 8

	c, err := NewOverlapSaveConvolver(h, blockSize)
	if err != nil {
		t.Fatalf("NewOverlapSaveConvolver: %v", err)
	}

	nBlocks := 4
	x := make([]float64, nBlocks*blockSize)
	for i := range x {
		x[i] = math.Sin(float64(i) * 0.3)
	}

	want := referenceConvolve(x, h)

	got := make([]float64, 0, len(x))
	out := make([]float64, blockSize)
	for b := 0; b < nBlocks; b++ {
		c.Process(x[b*blockSize:(b+1)*blockSize], out)
		got = append(got, out...)
	}

	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("sample %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestOverlapSaveConvolverImpulseResponse(t *testing.T) {
	h := []float64{1, 2, 3}
	blockSize := 4

	c, err := NewOverlapSaveConvolver(h, blockSize)
	if err != nil {
		t.Fatalf("NewOverlapSaveConvolver: %v", err)
	}

	impulse := make([]float64, blockSize)
	impulse[0] = 1

	out := make([]float64, blockSize)
	c.Process(impulse, out)

	want := []float64{1, 2, 3, 0}
	for i, w := range want {
		if math.Abs(out[i]-w) > 1e-9 {
			t.Errorf("sample %d: got %v, want %v", i, out[i], w)
		}
	}
}

func TestOverlapSaveConvolverResetZeroesHistory(t *testing.T) {
	h := []float64{1, 1}
	blockSize := 4

	c, err := NewOverlapSaveConvolver(h, blockSize)
	if err != nil {
		t.Fatalf("NewOverlapSaveConvolver: %v", err)
	}

	out := make([]float64, blockSize)
	c.Process([]float64{1, 1, 1, 1}, out)
	c.Reset()

	c.Process([]float64{0, 0, 0, 0}, out)
	for i, v := range out {
		if v != 0 {
			t.Errorf("sample %d after Reset = %v, want 0", i, v)
		}
	}
}
