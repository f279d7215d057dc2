package dsp

// BlockProcessor is the interface VariableBlockSizeAdapter drives: a
// single-channel processor that consumes and produces exactly
// blockSize samples at a time (an OverlapSaveConvolver, typically).
type BlockProcessor interface {
	Process(in, out []float64)
}

// VariableBlockSizeAdapter lets a fixed-block-size processor accept
// input in arbitrarily sized chunks. Input samples are buffered until a
// full inner block has accumulated, at which point the inner processor
// runs once and the produced samples are queued for output. Because the
// inner processor cannot run until its first block is full, the adapter
// is primed with one block of silence at construction so that it always
// has output ready to hand back in sample-for-sample lockstep with the
// caller's input feed: this introduces exactly one inner block of
// latency, a fixed and well-defined cost called out by its callers.
type VariableBlockSizeAdapter struct {
	inner     BlockProcessor
	blockSize int

	inBuf  []float64 // pending input samples, len < blockSize between fills
	inLen  int
	outBuf []float64 // produced samples not yet delivered
	outPos int
}

// NewVariableBlockSizeAdapter wraps inner, which operates on fixed
// blocks of blockSize samples.
func NewVariableBlockSizeAdapter(inner BlockProcessor, blockSize int) *VariableBlockSizeAdapter {
	if blockSize <= 0 {
		panic("dsp: NewVariableBlockSizeAdapter requires a positive blockSize")
	}
	a := &VariableBlockSizeAdapter{
		inner:     inner,
		blockSize: blockSize,
		inBuf:     make([]float64, blockSize),
		outBuf:    make([]float64, blockSize),
	}
	// Prime with one block of silence: out of the gate the adapter
	// already has a full output block ready, bought at the cost of one
	// block of latency relative to the inner processor's own output.
	scratch := make([]float64, blockSize)
	inner.Process(scratch, a.outBuf)
	return a
}

// Process consumes in (any length) and appends the corresponding
// delayed output samples to out, returning the extended slice. The
// number of samples appended always equals len(in): the adapter's
// latency is constant, so every input sample eventually produces
// exactly one output sample.
func (a *VariableBlockSizeAdapter) Process(in []float64, out []float64) []float64 {
	for len(in) > 0 {
		n := minInt(len(in), a.blockSize-a.inLen)

		for i := 0; i < n; i++ {
			a.inBuf[a.inLen] = in[i]
			a.inLen++

			if a.outPos >= len(a.outBuf) {
				a.outPos = 0
			}
			out = append(out, a.outBuf[a.outPos])
			a.outPos++

			if a.inLen == a.blockSize {
				inner := make([]float64, a.blockSize)
				copy(inner, a.inBuf)
				a.inner.Process(inner, a.outBuf)
				a.inLen = 0
				a.outPos = 0
			}
		}
		in = in[n:]
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
