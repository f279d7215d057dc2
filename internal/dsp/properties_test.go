package dsp

import (
	"testing"

	"pgregory.net/rapid"
)

// TestDelayLineIsLinear checks the delay identity/linearity property:
// delaying a+b equals delaying a plus delaying b, for any delay and any
// two equal-length signals.
func TestDelayLineIsLinear(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		delay := rapid.IntRange(0, 16).Draw(rt, "delay")
		n := rapid.IntRange(1, 64).Draw(rt, "n")

		a := rapid.SliceOfN(rapid.Float64Range(-1, 1), n, n).Draw(rt, "a")
		b := rapid.SliceOfN(rapid.Float64Range(-1, 1), n, n).Draw(rt, "b")
		sum := make([]float64, n)
		for i := range a {
			sum[i] = a[i] + b[i]
		}

		da := NewDelayLine(1, delay)
		db := NewDelayLine(1, delay)
		dsum := NewDelayLine(1, delay)

		outA := make([]float64, n)
		outB := make([]float64, n)
		outSum := make([]float64, n)
		da.Process([][]float64{a}, [][]float64{outA})
		db.Process([][]float64{b}, [][]float64{outB})
		dsum.Process([][]float64{sum}, [][]float64{outSum})

		for i := 0; i < n; i++ {
			got := outA[i] + outB[i]
			if diff := got - outSum[i]; diff > 1e-9 || diff < -1e-9 {
				rt.Fatalf("sample %d: delay(a)+delay(b) = %v, delay(a+b) = %v", i, got, outSum[i])
			}
		}
	})
}

// TestDelayLinePreservesSampleCount checks that a delay line never
// drops or duplicates samples across repeated calls of varying size.
func TestDelayLinePreservesSampleCount(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		delay := rapid.IntRange(0, 8).Draw(rt, "delay")
		d := NewDelayLine(1, delay)

		nCalls := rapid.IntRange(1, 10).Draw(rt, "nCalls")
		total := 0
		var allIn, allOut []float64
		for i := 0; i < nCalls; i++ {
			n := rapid.IntRange(1, 32).Draw(rt, "blockLen")
			in := rapid.SliceOfN(rapid.Float64Range(-1, 1), n, n).Draw(rt, "in")
			out := make([]float64, n)
			d.Process([][]float64{in}, [][]float64{out})
			allIn = append(allIn, in...)
			allOut = append(allOut, out...)
			total += n
		}
		if total == 0 {
			rt.Fatal("total samples processed was 0")
		}
		for i, got := range allOut {
			want := 0.0
			if i >= delay {
				want = allIn[i-delay]
			}
			if got != want {
				rt.Fatalf("output sample %d = %v, want %v (input delayed by %d)", i, got, want, delay)
			}
		}
	})
}

// TestVariableBlockSizeAdapterIsTransparent checks that chunking the
// same input differently never changes the (delayed) output, only how
// it's delivered across calls.
func TestVariableBlockSizeAdapterIsTransparent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		blockSize := rapid.IntRange(1, 8).Draw(rt, "blockSize")
		n := rapid.IntRange(1, 64).Draw(rt, "n")
		in := rapid.SliceOfN(rapid.Float64Range(-1, 1), n, n).Draw(rt, "in")

		whole := NewVariableBlockSizeAdapter(passThrough{}, blockSize)
		var wholeOut []float64
		wholeOut = whole.Process(in, wholeOut)

		chunked := NewVariableBlockSizeAdapter(passThrough{}, blockSize)
		var chunkedOut []float64
		i := 0
		for i < len(in) {
			step := rapid.IntRange(1, len(in)-i).Draw(rt, "step")
			chunkedOut = chunked.Process(in[i:i+step], chunkedOut)
			i += step
		}

		if len(wholeOut) != len(chunkedOut) {
			rt.Fatalf("len mismatch: whole=%d chunked=%d", len(wholeOut), len(chunkedOut))
		}
		for j := range wholeOut {
			if wholeOut[j] != chunkedOut[j] {
				rt.Fatalf("sample %d: whole=%v chunked=%v", j, wholeOut[j], chunkedOut[j])
			}
		}
	})
}

// TestBlockAlignerPreservesTotalEnergy checks that feeding disjoint
// (non-overlapping) streams through the aligner reproduces every
// sample unchanged, just relocated onto the shared timeline.
func TestBlockAlignerPreservesTotalEnergy(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := NewBlockAligner()

		offset := rapid.Int64Range(0, 0).Draw(rt, "offset0")
		n1 := rapid.IntRange(1, 16).Draw(rt, "n1")
		s1 := rapid.SliceOfN(rapid.Float64Range(-1, 1), n1, n1).Draw(rt, "s1")
		a.Add(offset, s1)

		n2 := rapid.IntRange(1, 16).Draw(rt, "n2")
		s2 := rapid.SliceOfN(rapid.Float64Range(-1, 1), n2, n2).Draw(rt, "s2")
		off2 := offset + int64(n1)
		a.Add(off2, s2)

		total := n1 + n2
		got := a.Get(total)
		for i := 0; i < n1; i++ {
			if got[i] != s1[i] {
				rt.Fatalf("sample %d: got %v want %v", i, got[i], s1[i])
			}
		}
		for i := 0; i < n2; i++ {
			if got[n1+i] != s2[i] {
				rt.Fatalf("sample %d: got %v want %v", n1+i, got[n1+i], s2[i])
			}
		}
	})
}
