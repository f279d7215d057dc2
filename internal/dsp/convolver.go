package dsp

import (
	algofft "github.com/MeKo-Christian/algo-fft"
)

// OverlapSaveConvolver performs streaming FIR convolution of a single
// channel against a fixed impulse response using the overlap-save
// method in the frequency domain. It is built once per impulse
// response (the decorrelation filters are fixed for the lifetime of a
// render) and then fed fixed-size blocks of input, each call producing
// exactly one block of output with the convolution's latency already
// absorbed into the internal history.
//
// The FFT size is chosen as the next power of two at least twice the
// larger of the block size and the impulse response length, the standard overlap-save sizing that keeps circular
// wrap-around confined to the discarded region of each transform.
type OverlapSaveConvolver struct {
	blockSize int
	fftSize   int
	plan      *algofft.PlanReal64
	filterFD  []complex128 // FFT(impulse response, zero-padded to fftSize)
	history   []float64    // the last fftSize input samples
	freqBuf   []complex128
	timeBuf   []float64
}

// NewOverlapSaveConvolver builds a convolver for the given impulse
// response, processing input in blocks of blockSize samples.
func NewOverlapSaveConvolver(impulseResponse []float64, blockSize int) (*OverlapSaveConvolver, error) {
	if blockSize <= 0 {
		panic("dsp: NewOverlapSaveConvolver requires a positive blockSize")
	}

	fftSize := nextPow2(2 * maxInt(blockSize, len(impulseResponse)))

	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		return nil, err
	}

	padded := make([]float64, fftSize)
	copy(padded, impulseResponse)
	filterFD := make([]complex128, fftSize/2+1)
	plan.Forward(filterFD, padded)

	return &OverlapSaveConvolver{
		blockSize: blockSize,
		fftSize:   fftSize,
		plan:      plan,
		filterFD:  filterFD,
		history:   make([]float64, fftSize),
		freqBuf:   make([]complex128, fftSize/2+1),
		timeBuf:   make([]float64, fftSize),
	}, nil
}

// Process convolves one block of blockSize input samples and writes
// blockSize output samples to out, which may alias in. Each call
// advances the convolver's internal history by exactly one block.
func (c *OverlapSaveConvolver) Process(in, out []float64) {
	if len(in) != c.blockSize || len(out) != c.blockSize {
		panic("dsp: OverlapSaveConvolver.Process requires len(in) == len(out) == blockSize")
	}

	// Slide the history window: discard the oldest block, append the
	// new one, so history always holds the trailing fftSize samples of
	// input (zero-primed at construction).
	carry := c.fftSize - c.blockSize
	copy(c.history[:carry], c.history[c.blockSize:])
	copy(c.history[carry:], in)

	c.plan.Forward(c.freqBuf, c.history)
	for i := range c.freqBuf {
		c.freqBuf[i] *= c.filterFD[i]
	}
	c.plan.Inverse(c.timeBuf, c.freqBuf)

	// The valid (non-wrapped) linear-convolution samples of this
	// transform occupy the tail blockSize samples of timeBuf.
	copy(out, c.timeBuf[carry:])
}

// Reset zeros the convolver's input history, as if newly constructed.
func (c *OverlapSaveConvolver) Reset() {
	for i := range c.history {
		c.history[i] = 0
	}
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
